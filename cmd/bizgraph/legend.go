package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/matsen/bizgraph/internal/config"
	"github.com/matsen/bizgraph/internal/graph"
	"github.com/matsen/bizgraph/internal/palette"
)

var legendURLs []string

func init() {
	legendCmd.Flags().StringArrayVar(&legendURLs, "url", nil, "Batch URL or file (repeatable; default: data_url from config)")
	rootCmd.AddCommand(legendCmd)
}

var legendCmd = &cobra.Command{
	Use:   "legend",
	Short: "Show colors assigned to entity and relationship types",
	Long: `Fetch batches, merge them in order, and print the legend: one entry per
entity type followed by one per relationship type, in first-seen order.

Examples:
  bizgraph legend --url batch.json
  bizgraph legend --human`,
	Args: cobra.NoArgs,
	RunE: runLegend,
}

func runLegend(cmd *cobra.Command, args []string) error {
	urls, err := withParams(dataURLs(legendURLs, cfg), queryParams)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if len(urls) == 0 {
		exitWithError(ExitConfigError, "no data source: pass --url or set data_url\n\n%s", config.HelpfulConfigMessage())
	}

	batches, err := fetchAll(cmd.Context(), newClient(cfg), urls)
	if err != nil {
		exitWithError(exitCodeFor(err), "fetching batches: %v", err)
	}

	entries := buildLegend(batches)
	if humanOutput {
		printLegendHuman(color.Output, entries)
		return nil
	}
	return outputJSON(LegendResponse{Entries: entries})
}

// buildLegend merges batches and assigns colors the way a render would.
func buildLegend(batches []*graph.Batch) []palette.Entry {
	sess := newSession(cfg)
	for _, b := range batches {
		sess.Enqueue(b)
	}
	sess.Turn()
	return sess.Snapshot().Legend
}

// printLegendHuman writes one colored swatch line per entry.
func printLegendHuman(w io.Writer, entries []palette.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No types assigned.")
		return
	}

	width := 0
	for _, e := range entries {
		width = max(width, runewidth.StringWidth(e.Label))
	}

	for _, e := range entries {
		swatch := "  "
		if e.Kind == palette.KindStroke {
			swatch = "──"
		}
		if r, g, b, ok := palette.RGB255(e.Color); ok {
			if e.Kind == palette.KindStroke {
				swatch = color.RGB(int(r), int(g), int(b)).Sprint(swatch)
			} else {
				swatch = color.BgRGB(int(r), int(g), int(b)).Sprint(swatch)
			}
		}
		fmt.Fprintf(w, "%s %s  %-6s %s\n", swatch, runewidth.FillRight(e.Label, width), e.Kind, e.Color)
	}
}
