// Package main provides the bizgraph CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/bizgraph/internal/config"
	"github.com/matsen/bizgraph/internal/logger"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	configPath  string
	debugLog    bool
	jsonLog     bool
	queryParams []string

	// cfg is the effective configuration, loaded before any command runs.
	cfg *config.Config
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bizgraph",
	Short: "Live force-directed view of business entity graphs",
	Long: `bizgraph fetches batches of business entities (accounts, contacts,
opportunities, cases) and their relationships from a data source, merges
them into one graph, and lays it out with a force simulation.

Commands:
  - render: lay out one or more batches and write an SVG or scene JSON
  - serve:  poll a data source and serve a continuously updated view
  - legend: show the colors assigned to entity and relationship types
  - config: show the effective configuration

Configuration is read from ~/.config/bizgraph/config.yml, then BIZGRAPH_*
environment variables (a .env file is loaded if present), then flags.
All commands output JSON by default; use --human for text.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/bizgraph/config.yml)")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "log-json", false, "Write logs as JSON lines")
	rootCmd.PersistentFlags().StringArrayVar(&queryParams, "param", nil, "Query parameter key=value appended to every batch URL (repeatable)")
	rootCmd.Version = Version
}

// loadConfig reads .env and the config file, then initializes logging.
func loadConfig(cmd *cobra.Command, args []string) error {
	// Load .env file if present (for BIZGRAPH_* overrides)
	_ = godotenv.Load()

	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadGlobalConfig()
	}
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	logger.Init(logger.Options{Debug: debugLog || cfg.Debug, JSON: jsonLog})
	return nil
}
