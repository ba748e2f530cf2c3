package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/raredx-server/internal/api"
	"github.com/raredx-server/internal/catalog"
	"github.com/raredx-server/internal/config"
	"github.com/raredx-server/internal/database"
	"github.com/raredx-server/internal/domain"
	"github.com/raredx-server/internal/feedback"
	"github.com/raredx-server/internal/repository"
	"github.com/raredx-server/internal/service"
	"github.com/raredx-server/pkg/similarity"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging)

	cat := catalog.New()
	logger.WithFields(logrus.Fields{"diseases": cat.Len()}).Info("Disease catalog loaded")

	strategy, extractor := buildScoring(cfg, logger, cat)

	store, err := buildFeedbackStore(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize feedback store")
	}
	if store != nil {
		defer store.Close()
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	caseLog := buildCaseLog(ctx, cfg, logger)

	ranker := service.NewDifferentialRanker(logger, cat, strategy)
	recommender := service.NewRecommendationEngine(logger, cat)
	diagnosis := service.NewDiagnosisService(logger, cat, ranker, recommender, extractor)

	server := api.NewServer(configManager, logger, diagnosis, cat, store, caseLog)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	logger.WithFields(logrus.Fields{
		"host":          cfg.Server.Host,
		"port":          cfg.Server.Port,
		"model_version": strategy.Version(),
	}).Info("Starting diagnosis server")

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

// buildScoring selects the scoring strategy and entity extractor. The
// similarity stack is optional; any failure while assembling it degrades to
// rule-based scoring and keyword extraction.
func buildScoring(cfg *domain.Config, logger *logrus.Logger, cat *catalog.Catalog) (domain.ScoringStrategy, domain.EntityExtractor) {
	matcher := service.NewSymptomMatcher(cat)
	ruleBased := service.NewRuleBasedStrategy(logger, matcher)
	keywordExtractor := service.NewKeywordEntityExtractor(cat)

	if !cfg.Similarity.Enabled {
		logger.Info("Similarity provider disabled, using rule-based scoring")
		return ruleBased, keywordExtractor
	}

	client := similarity.NewEmbeddingClient(similarity.EmbeddingConfig{
		BaseURL:   cfg.Similarity.EmbedBaseURL,
		APIKey:    cfg.Similarity.APIKey,
		Timeout:   cfg.Similarity.Timeout,
		RateLimit: cfg.Similarity.RateLimit,
	})

	var cache *similarity.EmbeddingCache
	if cfg.Cache.RedisEnabled {
		redisCache, err := similarity.NewEmbeddingCache(cfg.Cache)
		if err != nil {
			logger.WithError(err).Warn("Redis cache unavailable, continuing without it")
		} else {
			cache = redisCache
		}
	}

	provider, err := similarity.NewResilientProvider(logger, client, cache, cfg.Cache.MaxItems)
	if err != nil {
		logger.WithError(err).Warn("Failed to build similarity provider, using rule-based scoring")
		return ruleBased, keywordExtractor
	}

	var extractor domain.EntityExtractor = keywordExtractor
	if cfg.Similarity.NERBaseURL != "" {
		extractor = similarity.NewNERClient(similarity.NERConfig{
			BaseURL: cfg.Similarity.NERBaseURL,
			APIKey:  cfg.Similarity.APIKey,
			Timeout: cfg.Similarity.Timeout,
		})
	}

	logger.WithFields(logrus.Fields{
		"embed_base_url": cfg.Similarity.EmbedBaseURL,
		"redis_enabled":  cfg.Cache.RedisEnabled,
	}).Info("Similarity scoring enabled")

	return service.NewSimilarityStrategy(logger, matcher, provider, ruleBased), extractor
}

// buildCaseLog opens the diagnosis case log. It shares the postgres
// instance with the feedback store, so it only runs when the postgres
// driver is selected; any failure degrades to serving without case audit.
func buildCaseLog(ctx context.Context, cfg *domain.Config, logger *logrus.Logger) *repository.CaseRepository {
	if cfg.Feedback.Driver != "postgres" {
		return nil
	}

	db, err := database.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Warn("Case log unavailable, continuing without case audit")
		return nil
	}

	return repository.NewCaseRepository(db.Pool, logger)
}

// buildFeedbackStore opens the configured feedback store. Postgres runs
// pending migrations first; sqlite creates its schema on open.
func buildFeedbackStore(cfg *domain.Config, logger *logrus.Logger) (feedback.Store, error) {
	switch cfg.Feedback.Driver {
	case "sqlite":
		store, err := feedback.NewSQLiteStore(cfg.Feedback.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.WithFields(logrus.Fields{"path": cfg.Feedback.SQLitePath}).Info("SQLite feedback store ready")
		return store, nil

	case "postgres":
		databaseURL := database.ConnectionURL(cfg.Database)

		migrator, err := database.NewMigrator(databaseURL, "migrations", logger)
		if err != nil {
			return nil, err
		}
		if err := migrator.Up(); err != nil {
			return nil, err
		}
		if err := migrator.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close migrator")
		}

		store, err := feedback.NewPostgresStoreFromURL(databaseURL)
		if err != nil {
			return nil, err
		}
		logger.WithFields(logrus.Fields{
			"host":     cfg.Database.Host,
			"database": cfg.Database.Database,
		}).Info("Postgres feedback store ready")
		return store, nil

	case "none":
		logger.Warn("Feedback store disabled")
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown feedback driver %q", cfg.Feedback.Driver)
	}
}
