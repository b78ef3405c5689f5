package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"capdash/internal/view"
)

var (
	deriveSearch string
	deriveFormat string
	deriveLayers bool
	deriveStats  bool
)

var deriveCmd = &cobra.Command{
	Use:   "derive <payload.json>",
	Short: "Derive the dashboard view from a raw graph snapshot",
	Long: `Run the full derivation pipeline over one raw hypergraph payload and
print the presentation-ready view: capabilities grouped into recency
buckets, optionally with the flow layers of each capability's latest run.

Use "-" to read the payload from stdin.

Examples:
  capdash derive snapshot.json
  capdash derive snapshot.json --search "database" --layers
  curl -s $GRAPH_URL | capdash derive - --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runDerive,
}

func init() {
	deriveCmd.Flags().StringVar(&deriveSearch, "search", "", "Filter capabilities with the fuzzy matcher")
	deriveCmd.Flags().StringVar(&deriveFormat, "format", "human", "Output format: human, json, or yaml")
	deriveCmd.Flags().BoolVar(&deriveLayers, "layers", false, "Include flow layers in human output")
	deriveCmd.Flags().BoolVar(&deriveStats, "stats", false, "Include snapshot statistics in human output")
	rootCmd.AddCommand(deriveCmd)
}

func runDerive(cmd *cobra.Command, args []string) error {
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

	state := view.NewSessionState(cfg.View.Palette)
	v := view.Derive(payload, state, view.Options{
		Query:   deriveSearch,
		Now:     time.Now(),
		Buckets: bucketDefsFromConfig(cfg),
	}, logger)

	if deriveFormat == "human" {
		renderViewHuman(os.Stdout, v, deriveLayers, deriveStats)
		return nil
	}
	return writeEncoded(v, deriveFormat)
}
