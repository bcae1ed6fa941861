package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"phishing-detection-api/classifier"
	"phishing-detection-api/config"
	"phishing-detection-api/database"
	"phishing-detection-api/features"
	"phishing-detection-api/handlers"
	"phishing-detection-api/llm"
	"phishing-detection-api/services"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		slog.Error("api stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	slog.Info("database connected", "driver", cfg.Database.Driver)

	cache, err := services.NewCacheService(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, running without cache and live stream", "error", err)
	}
	defer cache.Close()

	loader := classifier.Load(cfg.Models.Dir)
	whois := features.NewWhoisExtractor(
		features.NewWhoisLookup(cfg.Features.WhoisTimeout),
		cache,
		cfg.Features.WhoisCacheTTL,
	)
	pages := features.NewPageFetcher(cfg.Features.FetchTimeout, cfg.Features.MaxPageTextSize)
	detector := classifier.NewDetector(loader, whois, pages)

	analyzer := llm.NewAnalyzer(llm.NewClient(cfg.LLM))
	if analyzer.Available(ctx) {
		slog.Info("llm available", "model", analyzer.Model(), "base_url", analyzer.BaseURL())
	} else {
		slog.Warn("llm unavailable, llm endpoints fall back to classifiers", "base_url", analyzer.BaseURL())
	}

	router := handlers.NewRouter(handlers.Deps{
		Config:   cfg,
		DB:       db,
		Cache:    cache,
		Detector: detector,
		Analyzer: analyzer,
		Logger:   logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
