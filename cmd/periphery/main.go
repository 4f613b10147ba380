package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sydlexius/periphery/internal/api"
	"github.com/sydlexius/periphery/internal/config"
	"github.com/sydlexius/periphery/internal/database"
	"github.com/sydlexius/periphery/internal/discogs"
	"github.com/sydlexius/periphery/internal/event"
	"github.com/sydlexius/periphery/internal/logging"
	"github.com/sydlexius/periphery/internal/search"
	"github.com/sydlexius/periphery/internal/session"
	"github.com/sydlexius/periphery/internal/store"
	"github.com/sydlexius/periphery/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("VP_CONFIG_PATH")
	if configPath == "" {
		configPath = "/data/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, logCloser := logging.New(logging.Config{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		FilePath: cfg.Logging.FilePath,
	})
	if logCloser != nil {
		defer logCloser.Close() //nolint:errcheck
	}
	slog.SetDefault(logger)

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("closing database", "error", err)
		}
	}()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("database ready", slog.String("path", cfg.Database.Path))

	catalog := discogs.New(discogs.Config{
		Token:              cfg.Discogs.Token,
		UserAgent:          cfg.Discogs.UserAgent,
		MinRequestInterval: cfg.Discogs.MinRequestInterval,
		RetryMax:           cfg.Discogs.RetryMax,
	}, logger)

	eventBus := event.NewBus(logger, 256)
	go eventBus.Start()
	defer eventBus.Stop()

	// Log search lifecycle events
	searchLog := logger.With(slog.String("component", "search-events"))
	for _, eventType := range []event.Type{
		event.SearchStarted, event.SearchCompleted, event.SearchFailed,
		event.SessionSaved,
	} {
		eventBus.Subscribe(eventType, func(e event.Event) {
			searchLog.Info(string(e.Type), slog.Any("data", e.Data))
		})
	}

	engine := search.NewEngine(catalog, logger, cfg.Search.MaxReleases)
	engine.SetEventBus(eventBus)

	logger.Info("starting periphery",
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
	)

	router := api.NewRouter(api.RouterDeps{
		Engine:   engine,
		Catalog:  catalog,
		Sessions: session.NewRegistry(),
		Saved:    store.NewService(db),
		Logger:   logger,
		BasePath: cfg.Server.BasePath,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     router.Handler(),
		ReadTimeout: 15 * time.Second,
		// No write timeout: an expansion request blocks for the full
		// rate-limited fetch sequence.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", slog.String("addr", addr), slog.String("base_path", cfg.Server.BasePath))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
