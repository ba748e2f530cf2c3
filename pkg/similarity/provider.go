package similarity

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// defaultLRUSize bounds the in-process embedding cache when no size is
// configured
const defaultLRUSize = 1024

// ResilientProvider implements domain.SimilarityProvider on top of the
// embedding service. Lookup order per text: in-process LRU, Redis (when
// configured), then the embedding service behind a circuit breaker. The
// breaker trips on a sustained failure ratio so a dead service fails fast
// instead of burning the request timeout on every diagnosis.
type ResilientProvider struct {
	logger  *logrus.Logger
	client  *EmbeddingClient
	cache   *EmbeddingCache
	local   *lru.Cache[string, []float64]
	breaker *gobreaker.CircuitBreaker
}

// NewResilientProvider creates the provider. cache may be nil when Redis
// is disabled; the LRU alone still absorbs repeated disease narratives.
func NewResilientProvider(logger *logrus.Logger, client *EmbeddingClient, cache *EmbeddingCache, lruSize int) (*ResilientProvider, error) {
	if lruSize <= 0 {
		lruSize = defaultLRUSize
	}

	local, err := lru.New[string, []float64](lruSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "EmbeddingService",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &ResilientProvider{
		logger:  logger,
		client:  client,
		cache:   cache,
		local:   local,
		breaker: breaker,
	}, nil
}

// Similarity returns the cosine similarity of the two texts' embeddings
func (p *ResilientProvider) Similarity(ctx context.Context, textA, textB string) (float64, error) {
	vecA, err := p.embedding(ctx, textA)
	if err != nil {
		return 0, err
	}
	vecB, err := p.embedding(ctx, textB)
	if err != nil {
		return 0, err
	}
	return Cosine(vecA, vecB), nil
}

func (p *ResilientProvider) embedding(ctx context.Context, text string) ([]float64, error) {
	if vector, ok := p.local.Get(text); ok {
		return vector, nil
	}

	if p.cache != nil {
		vector, hit, err := p.cache.Get(ctx, text)
		if err != nil {
			p.logger.WithFields(logrus.Fields{
				"error": err.Error(),
			}).Warn("Embedding cache read failed")
		} else if hit {
			p.local.Add(text, vector)
			return vector, nil
		}
	}

	result, err := p.breaker.Execute(func() (interface{}, error) {
		vectors, err := p.client.Embed(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		return vectors[0], nil
	})
	if err != nil {
		return nil, fmt.Errorf("embedding fetch failed: %w", err)
	}

	vector := result.([]float64)
	p.local.Add(text, vector)

	if p.cache != nil {
		if err := p.cache.Set(ctx, text, vector); err != nil {
			p.logger.WithFields(logrus.Fields{
				"error": err.Error(),
			}).Warn("Embedding cache write failed")
		}
	}

	return vector, nil
}
