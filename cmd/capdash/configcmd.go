package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"capdash/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage capdash configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config to .capdash/config.json",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if err := cfg.Save(rootFlag); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Printf("wrote %s/%s/config.json\n", rootFlag, config.ConfigDirName)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return writeEncoded(cfg, "json")
}
