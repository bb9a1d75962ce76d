package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/bizgraph/internal/config"
)

func init() {
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration after applying the config file and BIZGRAPH_*
environment variables.

Keys:
  data_url       Primary batch URL (polled by serve)
  base_url       Base for relative batch URLs
  full_url       Target of the legend's Full Screen link
  width, height  Canvas size
  ticks          Steps run by render
  tick_rate      Steps per second in serve
  seed           Layout random seed
  addr           serve listen address
  poll_interval  serve poll period (0 fetches once)
  fetch_rate     Requests per second to the data source
  fetch_timeout  HTTP timeout per fetch
  glyph_width    Pixels per character when estimating label width`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in the config file",
	Long: `Set one key in the config file and save it. Environment overrides are
not written to the file.

Examples:
  bizgraph config set data_url https://crm.example.com/graph
  bizgraph config set tick-rate 60`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

// configFilePath returns --config or the global config path.
func configFilePath() string {
	if configPath != "" {
		return configPath
	}
	return config.GlobalConfigPath()
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := configFilePath()
	resp := configResponse(path, cfg)

	if !humanOutput {
		return outputJSON(resp)
	}
	outputHuman("config:        %s\n", resp.Path)
	outputHuman("data_url:      %s\n", resp.DataURL)
	outputHuman("base_url:      %s\n", resp.BaseURL)
	outputHuman("full_url:      %s\n", resp.FullURL)
	outputHuman("width:         %g\n", resp.Width)
	outputHuman("height:        %g\n", resp.Height)
	outputHuman("ticks:         %d\n", resp.Ticks)
	outputHuman("tick_rate:     %g\n", resp.TickRate)
	outputHuman("seed:          %d\n", resp.Seed)
	outputHuman("addr:          %s\n", resp.Addr)
	outputHuman("poll_interval: %s\n", resp.PollInterval)
	outputHuman("fetch_rate:    %g\n", resp.FetchRate)
	outputHuman("fetch_timeout: %s\n", resp.FetchTimeout)
	outputHuman("glyph_width:   %g\n", resp.GlyphWidth)
	outputHuman("debug:         %t\n", resp.Debug)
	return nil
}

func configResponse(path string, c *config.Config) ConfigResponse {
	return ConfigResponse{
		Path:         path,
		DataURL:      c.DataURL,
		BaseURL:      c.BaseURL,
		FullURL:      c.FullURL,
		Width:        c.Width,
		Height:       c.Height,
		Ticks:        c.Ticks,
		TickRate:     c.TickRate,
		Seed:         c.Seed,
		Addr:         c.Addr,
		PollInterval: c.PollInterval.String(),
		FetchRate:    c.FetchRate,
		FetchTimeout: c.FetchTimeout.String(),
		GlyphWidth:   c.GlyphWidth,
		Debug:        c.Debug,
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	resp, err := setConfigValue(configFilePath(), args[0], args[1])
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	config.ResetGlobalConfigCache()

	if humanOutput {
		outputHuman("Updated %s to %s in %s\n", resp.Key, resp.Value, resp.Path)
		return nil
	}
	return outputJSON(resp)
}

// setConfigValue updates key in the config file at path, leaving every
// other key as the file has it.
func setConfigValue(path, key, value string) (UpdateResponse, error) {
	c, err := config.LoadFile(path)
	if err != nil {
		return UpdateResponse{}, err
	}
	if err := c.Set(key, value); err != nil {
		return UpdateResponse{}, err
	}
	if err := c.Validate(); err != nil {
		return UpdateResponse{}, err
	}
	if err := c.Save(path); err != nil {
		return UpdateResponse{}, fmt.Errorf("saving config: %w", err)
	}
	return UpdateResponse{
		Status: "updated",
		Path:   path,
		Key:    config.NormalizeKey(key),
		Value:  value,
	}, nil
}
