// Package cache stores prediction payloads in Redis for repeated seeded requests.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yourusername/sharpeye/internal/config"
	"github.com/yourusername/sharpeye/internal/metrics"
	"github.com/yourusername/sharpeye/internal/models"
)

// DefaultTTL applies when redis.ttl_seconds is unset
const DefaultTTL = 15 * time.Minute

const keyPrefix = "sharpeye:predict"

// NewClient creates a Redis client from configuration
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// ResponseCache reads and writes prediction responses
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResponseCache creates a cache writing entries with ttl
func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResponseCache{client: client, ttl: ttl}
}

// Key returns the cache key for req against a snapshot version. Only seeded
// requests are cacheable; unseeded ones must draw fresh samples.
func Key(req models.PredictionRequest, snapshotVersion uint64) (string, bool) {
	if req.Seed == nil {
		return "", false
	}

	parts := []string{
		keyPrefix,
		"v" + strconv.FormatUint(snapshotVersion, 10),
		strconv.FormatInt(req.PlayerID, 10),
		strings.ToUpper(req.OpponentID),
		string(req.Location),
		req.GameDate,
		optionalFloat(req.PropLine),
		optionalInt(req.OverOdds),
		optionalInt(req.UnderOdds),
		strconv.FormatInt(*req.Seed, 10),
	}
	return strings.Join(parts, ":"), true
}

// Get returns the cached response for key, if any
func (c *ResponseCache) Get(ctx context.Context, key string) (*models.PredictionResponse, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheLookup(false)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached prediction: %w", err)
	}

	var resp models.PredictionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		metrics.RecordCacheLookup(false)
		return nil, false, fmt.Errorf("decoding cached prediction: %w", err)
	}

	metrics.RecordCacheLookup(true)
	return &resp, true, nil
}

// Set stores resp under key
func (c *ResponseCache) Set(ctx context.Context, key string, resp *models.PredictionResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshaling prediction: %w", err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Ping checks the Redis connection
func (c *ResponseCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client
func (c *ResponseCache) Close() error {
	return c.client.Close()
}

func optionalFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
