package estimator

import (
	"context"
	"math"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/sharpeye/internal/models"
)

type cachedOutput struct {
	value float64
	mae   float64
}

// CachedModel keeps model outputs in memory keyed by the feature vector.
// Errors are never cached.
type CachedModel struct {
	next  Model
	cache *cache.Cache
	ttl   time.Duration

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCachedModel wraps next with a TTL cache
func NewCachedModel(next Model, ttl time.Duration) *CachedModel {
	return &CachedModel{
		next:  next,
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Predict implements Model
func (c *CachedModel) Predict(ctx context.Context, features models.FeatureVector) (float64, float64, error) {
	value, mae, _, err := c.predictCached(ctx, features)
	return value, mae, err
}

func (c *CachedModel) predictCached(ctx context.Context, features models.FeatureVector) (float64, float64, bool, error) {
	key := VectorKey(features)
	if item, found := c.cache.Get(key); found {
		if out, ok := item.(cachedOutput); ok {
			c.hits.Add(1)
			c.updateMetrics()
			return out.value, out.mae, true, nil
		}
	}

	c.misses.Add(1)
	c.updateMetrics()

	value, mae, err := c.next.Predict(ctx, features)
	if err != nil {
		return 0, 0, false, err
	}
	c.cache.Set(key, cachedOutput{value: value, mae: mae}, c.ttl)
	return value, mae, false, nil
}

// Close closes the wrapped model
func (c *CachedModel) Close() error {
	if closer, ok := c.next.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// Stats returns cache statistics
func (c *CachedModel) Stats() (hits, misses uint64, ratio float64) {
	hits = c.hits.Load()
	misses = c.misses.Load()
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of cached outputs
func (c *CachedModel) ItemCount() int {
	return c.cache.ItemCount()
}

func (c *CachedModel) updateMetrics() {
	_, _, ratio := c.Stats()
	ModelCacheHitRatio.Set(ratio)
}

// VectorKey is a stable hash of a feature vector, independent of map order
func VectorKey(features models.FeatureVector) string {
	names := make([]string, 0, len(features))
	for name := range features {
		names = append(names, name)
	}
	sort.Strings(names)

	d := xxhash.New()
	var buf [8]byte
	for _, name := range names {
		_, _ = d.WriteString(name)
		_, _ = d.Write([]byte{0})
		bits := math.Float64bits(features[name])
		for i := range buf {
			buf[i] = byte(bits >> (8 * i))
		}
		_, _ = d.Write(buf[:])
	}
	return strconv.FormatUint(d.Sum64(), 16)
}
