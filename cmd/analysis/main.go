package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"clausewise/internal/app"
	"clausewise/internal/httputil"
	"clausewise/internal/queue"
)

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	if deps.Config.QueueProvider != "nats" {
		deps.Log.Warn("analysis worker without a broker only serves its own process", "queue_provider", deps.Config.QueueProvider)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := run(ctx, deps)
	if err := deps.Close(); err != nil {
		deps.Log.Warn("failed to close dependencies", "err", err)
	}
	if runErr != nil {
		deps.Log.Error("analysis service stopped", "err", runErr)
		stop()
		os.Exit(1)
	}
}

// run serves analyze tasks and a health endpoint until ctx is done or either
// fails.
func run(ctx context.Context, deps app.Deps) error {
	deps.Log.Info("analysis worker starting")
	g, ctx := errgroup.WithContext(ctx)

	// Run queue worker
	g.Go(func() error {
		return deps.Queue.Serve(ctx, queue.TaskTypeAnalyze, deps.Analyzer.TaskHandler())
	})

	// Run health check server
	g.Go(func() error {
		return httputil.ServeHealth(ctx, deps.Log, "analysis", fmt.Sprintf(":%d", deps.Config.Port))
	})

	return g.Wait()
}
