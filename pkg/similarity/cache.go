package similarity

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/raredx-server/internal/domain"
)

// EmbeddingCache caches embedding vectors in Redis keyed by a hash of the
// source text. Embeddings are deterministic per model, so entries only
// need to expire to bound memory, not for correctness.
type EmbeddingCache struct {
	redis      *redis.Client
	defaultTTL time.Duration
}

// NewEmbeddingCache creates a Redis-backed embedding cache
func NewEmbeddingCache(config domain.CacheConfig) (*EmbeddingCache, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = config.PoolSize
	opts.PoolTimeout = config.PoolTimeout
	opts.MaxRetries = config.MaxRetries

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := config.DefaultTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	return &EmbeddingCache{
		redis:      client,
		defaultTTL: ttl,
	}, nil
}

type cachedEmbedding struct {
	Vector   []float64 `json:"vector"`
	CachedAt time.Time `json:"cached_at"`
}

// Get retrieves a cached embedding. The second return value reports a hit.
func (c *EmbeddingCache) Get(ctx context.Context, text string) ([]float64, bool, error) {
	key := embeddingKey(text)

	val, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get embedding cache: %w", err)
	}

	var cached cachedEmbedding
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		// Corrupted entry, drop it
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	return cached.Vector, true, nil
}

// Set stores an embedding with the default TTL
func (c *EmbeddingCache) Set(ctx context.Context, text string, vector []float64) error {
	key := embeddingKey(text)

	data, err := json.Marshal(cachedEmbedding{
		Vector:   vector,
		CachedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal embedding cache entry: %w", err)
	}

	return c.redis.Set(ctx, key, data, c.defaultTTL).Err()
}

// Ping checks the Redis connection
func (c *EmbeddingCache) Ping(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *EmbeddingCache) Close() error {
	return c.redis.Close()
}

func embeddingKey(text string) string {
	hash := sha256.Sum256([]byte(text))
	return fmt.Sprintf("embedding:text:%x", hash[:8])
}
