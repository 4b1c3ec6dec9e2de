package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/loom-ui/loom/examples/counter"
	"github.com/loom-ui/loom/internal/config"
	"github.com/loom-ui/loom/pkg/engine"
	"github.com/loom-ui/loom/pkg/preview"
)

// demos maps --app values to root components.
var demos = map[string]preview.RootFunc{
	"counter": func() *engine.Definition { return counter.Counter(nil) },
	"todos":   func() *engine.Definition { return counter.TodoList(nil) },
}

func previewCmd() *cobra.Command {
	var (
		port    int
		host    string
		dir     string
		app     string
		metrics bool
		debug   bool
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Start the preview server",
		Long: `Start the preview server and serve a demo component tree.

The server renders on the server side and streams host mutations to
connected browsers over WebSocket. Configuration is read from
loom.yaml when present; flags override it.

Examples:
  loom preview
  loom preview --port=8080
  loom preview --app=todos --metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(dir, host, port, app, metrics, debug)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from loom.yaml)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from loom.yaml)")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Project directory holding loom.yaml")
	cmd.Flags().StringVarP(&app, "app", "a", "counter", "Demo app to serve (counter, todos)")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Expose Prometheus metrics at /metrics")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	return cmd
}

func runPreview(dir, host string, port int, app string, metrics, debug bool) error {
	cfg, err := config.Resolve(dir)
	if err != nil {
		return err
	}
	if host != "" {
		cfg.Host = host
	}
	if port != 0 {
		cfg.Port = port
	}
	if metrics {
		cfg.Metrics = true
	}
	if debug {
		cfg.Debug = true
	}

	root, ok := demos[app]
	if !ok {
		return fmt.Errorf("unknown app %q (available: counter, todos)", app)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("  Preview:  http://%s\n", cfg.Addr())
	if cfg.Metrics {
		fmt.Printf("  Metrics:  http://%s/metrics\n", cfg.Addr())
	}

	srv := preview.New(cfg, root, preview.WithLogger(logger))
	return srv.ListenAndServe(ctx)
}
