package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"capdash/internal/hypergraph"
	"capdash/internal/search"
)

var searchFormat string

var searchCmd = &cobra.Command{
	Use:   "search <payload.json> <query>",
	Short: "List capabilities matching a fuzzy query",
	Long: `Apply the dashboard's typo-tolerant matcher to one snapshot and list
the capabilities it keeps. Matching covers name, description, tool names,
tool servers, and the fully-qualified identifier.

Examples:
  capdash search snapshot.json "database"
  capdash search snapshot.json "datbase"     # typo still matches`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchFormat, "format", "human", "Output format: human, json, or yaml")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	data, err := readPayload(args[0])
	if err != nil {
		return err
	}
	payload, err := parsePayload(data)
	if err != nil {
		return err
	}

	g := hypergraph.Ingest(payload, logger)
	matched := search.FilterCapabilities(g.Capabilities, args[1])

	if searchFormat != "human" {
		return writeEncoded(matched, searchFormat)
	}

	if len(matched) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, c := range matched {
		fmt.Printf("%s  (%s)\n", c.Name, c.ID)
		if c.Description != "" {
			fmt.Printf("    %s\n", c.Description)
		}
	}
	return nil
}
