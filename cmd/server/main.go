package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iammorganparry/circle/internal/api"
	"github.com/iammorganparry/circle/internal/config"
	"github.com/iammorganparry/circle/internal/narrative"
	"github.com/iammorganparry/circle/internal/portal"
	"github.com/iammorganparry/circle/internal/seed"
	"github.com/iammorganparry/circle/internal/store"
	"github.com/iammorganparry/circle/internal/telemetry"
)

func main() {
	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Tracing
	shutdownTracing, err := telemetry.Setup(ctx, "circle-server", cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("trace flush failed", "error", err)
		}
	}()

	// SQLite
	db, err := store.Open(cfg.DBDriver, cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	// Narrative
	gen, err := narrative.New(ctx, narrative.Options{
		Provider: cfg.AIProvider,
		Model:    cfg.AIModel,
		APIKey:   cfg.AIAPIKey,
	}, logger)
	if err != nil {
		return err
	}
	writer := narrative.NewWriter(gen, cfg.AITimeout, logger)

	svc := portal.NewService(db, writer, logger)

	// Seed data
	if cfg.Seed {
		if err := applySeed(ctx, svc, cfg.SeedFile, logger); err != nil {
			return err
		}
	}

	if cfg.APIKey == "" {
		logger.Warn("CIRCLE_API_KEY is empty, bearer auth disabled")
	}

	router := api.NewRouter(svc, cfg.APIKey, logger)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.AITimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("circle server starting",
			"addr", srv.Addr,
			"db_driver", cfg.DBDriver,
			"narrative", writer.Provider(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func applySeed(ctx context.Context, svc *portal.Service, path string, logger *slog.Logger) error {
	var (
		d   *seed.Data
		err error
	)
	if path != "" {
		d, err = seed.Load(path)
	} else {
		d, err = seed.Default()
	}
	if err != nil {
		return err
	}

	applied, err := seed.Apply(ctx, svc.Stores(), d, time.Now())
	if err != nil {
		return err
	}
	if applied {
		logger.Info("seed data applied", "cohorts", len(d.Cohorts), "users", len(d.Users))
	} else {
		logger.Debug("database already populated, seed skipped")
	}
	return nil
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
