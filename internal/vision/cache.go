package vision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Rhyred/smart-triage-system/internal/domain"
)

// CacheConfig represents detection cache configuration. A zero RedisURL
// disables the distributed tier; the in-memory tier is always on.
type CacheConfig struct {
	Size     int           `json:"size"`
	TTL      time.Duration `json:"ttl"`
	RedisURL string        `json:"redis_url"`
}

// cachedDetection is the serialized cache entry.
type cachedDetection struct {
	Result   *domain.DetectionResult `json:"result"`
	CachedAt time.Time               `json:"cached_at"`
}

// CachedDetector memoizes detector results keyed by the SHA-256 of the image
// bytes: an in-memory LRU tier for hot frames, plus an optional Redis tier
// shared across restarts. Monitoring devices resend near-identical frames,
// so repeated inference on the same bytes is pure waste.
type CachedDetector struct {
	inner  domain.Detector
	memory *lru.Cache[string, cachedDetection]
	redis  *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewCachedDetector creates a caching detector wrapper. Redis connectivity
// problems are logged and the distributed tier skipped; the cache never
// turns a working detector into a failing one.
func NewCachedDetector(inner domain.Detector, config CacheConfig, logger *logrus.Logger) (*CachedDetector, error) {
	size := config.Size
	if size <= 0 {
		size = 128
	}
	ttl := config.TTL
	if ttl == 0 {
		ttl = 30 * time.Second
	}

	memory, err := lru.New[string, cachedDetection](size)
	if err != nil {
		return nil, err
	}

	d := &CachedDetector{
		inner:  inner,
		memory: memory,
		ttl:    ttl,
		logger: logger,
	}

	if config.RedisURL != "" {
		opts, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, err
		}
		client := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			if logger != nil {
				logger.WithError(err).Warn("Redis unreachable, detection cache running in-memory only")
			}
			client.Close()
		} else {
			d.redis = client
		}
	}

	return d, nil
}

// Detect returns a cached result when the identical frame was analyzed
// within the TTL, otherwise runs the wrapped detector and caches its result.
func (d *CachedDetector) Detect(ctx context.Context, image []byte) (*domain.DetectionResult, error) {
	key := imageKey(image)

	if entry, ok := d.memory.Get(key); ok && time.Since(entry.CachedAt) < d.ttl {
		return entry.Result, nil
	}

	if d.redis != nil {
		if raw, err := d.redis.Get(ctx, key).Result(); err == nil {
			var entry cachedDetection
			if json.Unmarshal([]byte(raw), &entry) == nil && entry.Result != nil {
				d.memory.Add(key, entry)
				return entry.Result, nil
			}
		}
	}

	result, err := d.inner.Detect(ctx, image)
	if err != nil {
		return nil, err
	}

	entry := cachedDetection{Result: result, CachedAt: time.Now()}
	d.memory.Add(key, entry)

	if d.redis != nil {
		if raw, err := json.Marshal(entry); err == nil {
			if err := d.redis.Set(ctx, key, raw, d.ttl).Err(); err != nil && d.logger != nil {
				d.logger.WithError(err).Debug("Failed to write detection cache to Redis")
			}
		}
	}

	return result, nil
}

// Close releases the Redis connection if one is held.
func (d *CachedDetector) Close() error {
	if d.redis != nil {
		return d.redis.Close()
	}
	return nil
}

// imageKey derives the cache key from the image bytes.
func imageKey(image []byte) string {
	sum := sha256.Sum256(image)
	return "triage:detection:" + hex.EncodeToString(sum[:])
}
