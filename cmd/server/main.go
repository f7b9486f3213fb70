package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/userdash/internal/config"
	"github.com/JonMunkholm/userdash/internal/core"
	"github.com/JonMunkholm/userdash/internal/database"
	"github.com/JonMunkholm/userdash/internal/logging"
	"github.com/JonMunkholm/userdash/internal/logs"
	"github.com/JonMunkholm/userdash/internal/users"
	"github.com/JonMunkholm/userdash/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"field_rules", cfg.Fields.RulesFile,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()
	pool, err := database.Open(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	service, err := core.NewService(core.Options{
		Users:     users.NewPostgresSource(pool),
		Logs:      logs.NewPostgresSource(pool),
		RulesFile: cfg.Fields.RulesFile,
	})
	if err != nil {
		slog.Error("failed to create service",
			"error", err,
			"code", core.MapError(err).Code,
		)
		os.Exit(1)
	}

	epoch := service.Columns()
	slog.Info("columns resolved",
		"epoch", epoch.ID,
		"columns", len(epoch.Columns),
		"customizations", len(epoch.Customs),
	)

	server := web.NewServer(service, cfg)

	// Cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartRulesReloader(jobCtx, cfg.Fields.ReloadInterval)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
