package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/snakeladder/internal/api"
	"github.com/mcoot/snakeladder/internal/config"
	"github.com/mcoot/snakeladder/internal/dependencies/random"
	"github.com/mcoot/snakeladder/internal/factory"
)

const hubSweepInterval = time.Minute

func main() {
	cfg, err := config.Load(random.New())
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if cfg.EphemeralSecret {
		logger.Warn("JWT_SECRET not set, using a generated secret; tokens will not survive a restart")
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	app, err := factory.New(factory.ConfigFromSettings(cfg, logger))
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close application", slog.String("error", err.Error()))
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		GameController: app.GameController,
		BoardService:   app.BoardService,
		HubManager:     app.HubManager,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Addr = cfg.Addr()
	server := api.NewServer(router, serverConfig, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(ctx)
	})
	g.Go(func() error {
		return app.HubManager.RunJanitor(ctx, hubSweepInterval)
	})
	if app.Dispatcher != nil {
		g.Go(func() error {
			return app.Dispatcher.Run(ctx)
		})
	}

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.Storage.Type),
		slog.Bool("hardware", cfg.Hardware.Enabled),
	)

	return g.Wait()
}
