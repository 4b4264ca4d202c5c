// Command server runs the HTTP front-end (internal/api) as a long-lived
// daemon, following cmd/crawler/main.go's config-load, store-init,
// signal-driven graceful shutdown shape.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/romangod6/sitemaptree/config"
	"github.com/romangod6/sitemaptree/internal/api"
	"github.com/romangod6/sitemaptree/internal/discover"
	"github.com/romangod6/sitemaptree/internal/obslog"
	"github.com/romangod6/sitemaptree/internal/store"
	"github.com/romangod6/sitemaptree/internal/webclient"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "server: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := obslog.New(obslog.Options{Level: cfg.Logging.Level, FilePath: cfg.Logging.FilePath})
	defer logger.Sync() //nolint:errcheck

	treeStore, err := newTreeStore(cfg)
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.Error(err))
	}
	defer treeStore.Close()

	if err := treeStore.Initialize(context.Background()); err != nil {
		logger.Fatal("failed to initialize storage tables", zap.Error(err))
	}

	client, err := webclient.NewCollyClient(
		webclient.WithConnectTimeout(cfg.ConnectTimeout()),
		webclient.WithReadTimeout(cfg.ReadTimeout()),
		webclient.WithUserAgent(cfg.Client.UserAgent),
		webclient.WithDelay(cfg.Delay(), cfg.Jitter()),
		webclient.WithProxy(cfg.Client.Proxy),
		webclient.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal("failed to build HTTP client", zap.Error(err))
	}

	orchestrator := discover.NewOrchestrator(client, logger,
		discover.WithParallelism(cfg.Discovery.Parallelism),
		discover.WithMaxDepth(cfg.Discovery.MaxDepth),
	)

	defaultOpts := discover.DefaultOptions()
	defaultOpts.KnownPaths = cfg.Discovery.WellKnownPaths

	server := api.NewServer(cfg.Server.Port, orchestrator, treeStore, logger, defaultOpts)

	go func() {
		logger.Info("starting API server", zap.Int("port", cfg.Server.Port))
		if err := server.Start(); err != nil {
			logger.Error("API server stopped", zap.Error(err))
		}
	}()

	waitForShutdown(server, logger)
}

func newTreeStore(cfg *config.Config) (store.TreeStore, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		return store.NewPostgresTreeStore(cfg.Storage.DSN)
	default:
		return store.NewSQLiteTreeStore(cfg.Storage.DSN)
	}
}

func waitForShutdown(server *api.Server, logger *zap.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("error shutting down server", zap.Error(err))
		return
	}
	logger.Info("server shut down gracefully")
}
