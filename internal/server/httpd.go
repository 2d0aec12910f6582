// Package server wires configuration, storage, the content filter, and the
// HTTP surface into a running service.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wcxxx57/bilibili-study-tool/internal/api"
	"github.com/wcxxx57/bilibili-study-tool/internal/bili"
	"github.com/wcxxx57/bilibili-study-tool/internal/config"
	"github.com/wcxxx57/bilibili-study-tool/internal/contentfilter"
	"github.com/wcxxx57/bilibili-study-tool/internal/database"
	"github.com/wcxxx57/bilibili-study-tool/internal/logger"
	"github.com/wcxxx57/bilibili-study-tool/internal/processor"
	"github.com/wcxxx57/bilibili-study-tool/internal/semantic"
	"github.com/wcxxx57/bilibili-study-tool/internal/telemetry"
)

const shutdownTimeout = 30 * time.Second

// Run loads configuration from configPath, starts the HTTP server, and blocks
// until a shutdown signal or a fatal server error.
func Run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service",
		logger.String("name", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port),
		logger.Bool("debug", cfg.Service.Debug),
	)

	catalog := contentfilter.LoadCatalog(cfg.Filter.CatalogPath, log)
	log.Info("keyword catalog loaded",
		logger.String("path", cfg.Filter.CatalogPath),
		logger.Int("categories", catalog.Len()),
	)

	seg := newSegmenter(log)

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	log.Info("database opened", logger.String("path", cfg.Database.Path))

	prefs := database.NewPreferenceRepository(db)

	tp := telemetry.NewProvider()

	analyzer := contentfilter.NewAnalyzer(log, catalog, seg, contentfilter.Options{
		Weights: contentfilter.Weights{
			Query:    cfg.Filter.QueryWeight,
			Item:     cfg.Filter.ItemWeight,
			MaxItems: cfg.Filter.MaxItems,
		},
		ZoneConfidence: cfg.Filter.ZoneConfidence,
		Telemetry:      tp,
	})

	batch := processor.NewBatchProcessor(analyzer, 0, log)

	var completer semantic.Completer
	if cfg.Semantic.Enabled && cfg.Semantic.APIKey != "" {
		completer = semantic.NewClient(semantic.Config{
			APIKey:    cfg.Semantic.APIKey,
			Model:     cfg.Semantic.Model,
			MaxTokens: cfg.Semantic.MaxTokens,
			Timeout:   cfg.Semantic.Timeout,
			RPS:       cfg.Semantic.RPS,
			Burst:     cfg.Semantic.Burst,
		}, log)
		log.Info("semantic escalation enabled", logger.String("model", cfg.Semantic.Model))
	} else {
		log.Info("semantic escalation disabled")
	}

	biliClient := bili.NewClient(bili.Config{
		BaseURL:   cfg.Bili.BaseURL,
		UserAgent: cfg.Bili.UserAgent,
		Cookie:    cfg.Bili.Cookie,
		Timeout:   cfg.Bili.Timeout,
	}, log)

	handler := api.NewHandler(analyzer, batch, completer, prefs, biliClient, tp, log)
	srv := api.NewServer(handler, api.ServerConfig{
		Port:         cfg.Service.Port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Debug:        cfg.Service.Debug,
	}, tp, log)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("shutdown signal received", logger.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		log.Info("server stopped gracefully")
	}
	return nil
}

// newSegmenter prefers the dictionary-backed segmenter and falls back to the
// rune-class splitter when the dictionary cannot be loaded.
func newSegmenter(log logger.Logger) contentfilter.Segmenter {
	seg, err := contentfilter.NewGseSegmenter()
	if err != nil {
		log.Warn("dictionary segmenter unavailable, using simple segmenter", logger.Error(err))
		return contentfilter.SimpleSegmenter{}
	}
	return seg
}
