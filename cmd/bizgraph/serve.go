package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matsen/bizgraph/internal/logger"
	"github.com/matsen/bizgraph/internal/viewer"
)

var (
	serveAddr    string
	serveURL     string
	servePoll    time.Duration
	serveRate    float64
	serveOrigins []string
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: addr from config)")
	serveCmd.Flags().StringVar(&serveURL, "url", "", "Batch URL to poll (default: data_url from config)")
	serveCmd.Flags().DurationVar(&servePoll, "poll", 0, "Poll interval, 0 to fetch once (default: poll_interval from config)")
	serveCmd.Flags().Float64Var(&serveRate, "tick-rate", 0, "Simulation steps per second (default: tick_rate from config)")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "cors-origin", nil, "Allowed CORS origins for the JSON endpoints (default: any)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a live, continuously laid out view",
	Long: `Poll a data source and serve the merged graph over HTTP while the force
layout runs.

Endpoints:
  /             HTML page with an auto-refreshing drawing
  /frame.svg    current frame
  /scene.json   current scene description
  /legend.json  color assignments
  /stats.json   graph and simulation counters
  /full         redirect to the full view (full_url)
  /health       liveness

Examples:
  bizgraph serve --url https://crm.example.com/graph?id=001 --poll 30s
  bizgraph serve --addr :9000
  bizgraph serve --url https://crm.example.com/graph --param id=001 --param depth=2`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	applyFlag(cmd, "addr", serveAddr, &cfg.Addr)
	applyFlag(cmd, "url", serveURL, &cfg.DataURL)
	applyFlag(cmd, "poll", servePoll, &cfg.PollInterval)
	applyFlag(cmd, "tick-rate", serveRate, &cfg.TickRate)
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess := newSession(cfg)
	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: viewer.NewServer(sess, viewer.ServerOptions{
			DataURL:        cfg.DataURL,
			FullURL:        cfg.FullURL,
			AllowedOrigins: serveOrigins,
		}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.DataURL != "" {
		urls, err := withParams([]string{cfg.DataURL}, queryParams)
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		client := newClient(cfg)
		g.Go(func() error {
			return sess.Poll(ctx, client, urls[0], cfg.PollInterval)
		})
	} else {
		logger.Warn("no data source configured; serving an empty graph")
	}

	g.Go(func() error {
		return sess.Run(ctx, cfg.TickRate)
	})

	g.Go(func() error {
		logger.Info("serving", "addr", cfg.Addr, "url", cfg.DataURL, "poll", cfg.PollInterval)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		exitWithError(ExitError, "serve: %v", err)
	}
	logger.Info("stopped")
	return nil
}
