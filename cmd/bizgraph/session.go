package main

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/matsen/bizgraph/internal/config"
	"github.com/matsen/bizgraph/internal/graph"
	"github.com/matsen/bizgraph/internal/layout"
	"github.com/matsen/bizgraph/internal/scene"
	"github.com/matsen/bizgraph/internal/source"
	"github.com/matsen/bizgraph/internal/viewer"
)

// newClient builds a source client from the configuration.
func newClient(c *config.Config) *source.Client {
	return source.NewClient(
		source.WithBaseURL(c.BaseURL),
		source.WithRateLimit(c.FetchRate),
		source.WithTimeout(c.FetchTimeout),
		source.WithUserAgent("bizgraph/"+Version),
	)
}

// newSession builds a viewer session from the configuration.
func newSession(c *config.Config) *viewer.Session {
	params := layout.DefaultParams()
	params.RandSeed = c.Seed
	return viewer.NewSession(viewer.Options{
		Width:    c.Width,
		Height:   c.Height,
		FullURL:  c.FullURL,
		Params:   &params,
		Measurer: scene.EstimateMeasurer{GlyphWidth: c.GlyphWidth},
	})
}

// fetchAll fetches every URL concurrently and returns the batches in URL
// order. The first failure cancels the rest.
func fetchAll(ctx context.Context, f source.Fetcher, urls []string) ([]*graph.Batch, error) {
	batches := make([]*graph.Batch, len(urls))
	g, ctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		g.Go(func() error {
			b, err := f.Fetch(ctx, u)
			if err != nil {
				return err
			}
			batches[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

// dataURLs returns the URLs given on the command line, or the configured
// data URL when none were given.
func dataURLs(flagURLs []string, c *config.Config) []string {
	if len(flagURLs) > 0 {
		return flagURLs
	}
	if c.DataURL != "" {
		return []string{c.DataURL}
	}
	return nil
}

// withParams appends every key=value pair in params to each URL, in order.
func withParams(urls, params []string) ([]string, error) {
	type kv struct{ key, value string }
	pairs := make([]kv, 0, len(params))
	for _, p := range params {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: --param %q is not key=value", config.ErrInvalidConfig, p)
		}
		pairs = append(pairs, kv{k, v})
	}

	out := make([]string, len(urls))
	for i, u := range urls {
		for _, p := range pairs {
			u = source.BuildURL(u, p.key, p.value)
		}
		out[i] = u
	}
	return out, nil
}
