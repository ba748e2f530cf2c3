// Package main provides the lightweight entry point for the diagnosis
// server. This version requires no external databases - feedback is stored
// in SQLite under a local data directory.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/raredx-server/internal/api"
	"github.com/raredx-server/internal/catalog"
	"github.com/raredx-server/internal/config"
	"github.com/raredx-server/internal/domain"
	"github.com/raredx-server/internal/feedback"
	"github.com/raredx-server/internal/service"
	"github.com/raredx-server/internal/setup"
	"github.com/raredx-server/pkg/similarity"
)

func main() {
	cfg := config.LoadLiteConfig()

	// Check for setup subcommand
	if len(os.Args) > 1 && os.Args[1] == "setup" {
		cli := setup.NewCLI(cfg)
		if err := cli.Run(os.Args[2:]); err != nil {
			log.Fatalf("Setup failed: %v", err)
		}
		return
	}

	logger := newLogger(cfg)

	if err := cfg.EnsureDataDir(); err != nil {
		logger.WithError(err).Fatal("Failed to prepare data directory")
	}

	cat := catalog.New()

	store, err := feedback.NewSQLiteStore(cfg.FeedbackDBPath())
	if err != nil {
		logger.WithError(err).Fatal("Failed to open feedback database")
	}
	defer store.Close()

	matcher := service.NewSymptomMatcher(cat)
	ruleBased := service.NewRuleBasedStrategy(logger, matcher)

	var strategy domain.ScoringStrategy = ruleBased
	if cfg.SimilarityEnabled {
		client := similarity.NewEmbeddingClient(similarity.EmbeddingConfig{
			BaseURL: cfg.EmbedBaseURL,
			APIKey:  cfg.ModelAPIKey,
		})
		provider, err := similarity.NewResilientProvider(logger, client, nil, cfg.CacheMaxItems)
		if err != nil {
			logger.WithError(err).Warn("Failed to build similarity provider, using rule-based scoring")
		} else {
			strategy = service.NewSimilarityStrategy(logger, matcher, provider, ruleBased)
		}
	}

	ranker := service.NewDifferentialRanker(logger, cat, strategy)
	recommender := service.NewRecommendationEngine(logger, cat)
	extractor := service.NewKeywordEntityExtractor(cat)
	diagnosis := service.NewDiagnosisService(logger, cat, ranker, recommender, extractor)

	server := api.NewServer(liteManager{cfg: cfg}, logger, diagnosis, cat, store, nil)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	logger.WithFields(logrus.Fields{
		"data_dir":      cfg.DataDir,
		"port":          cfg.HTTPPort,
		"model_version": strategy.Version(),
	}).Info("Starting diagnosis server (lite)")

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

func newLogger(cfg *config.LiteConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

// liteManager adapts LiteConfig to the configuration interface the HTTP
// server expects
type liteManager struct {
	cfg *config.LiteConfig
}

func (m liteManager) GetConfig() *domain.Config {
	return &domain.Config{
		Server:  *m.GetServerConfig(),
		Logging: domain.LoggingConfig{Level: m.cfg.LogLevel, Format: m.cfg.LogFormat},
	}
}

func (m liteManager) GetServerConfig() *domain.ServerConfig {
	return &domain.ServerConfig{
		Host:         "0.0.0.0",
		Port:         m.cfg.HTTPPort,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

func (m liteManager) GetDatabaseConfig() *domain.DatabaseConfig {
	return &domain.DatabaseConfig{}
}

func (m liteManager) Validate() error { return nil }
