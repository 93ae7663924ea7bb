package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sharpeye/internal/models"
)

func ptr[T any](v T) *T { return &v }

func seededRequest() models.PredictionRequest {
	return models.PredictionRequest{
		PlayerID:   203999,
		OpponentID: "bos",
		Location:   models.LocationHome,
		GameDate:   "2025-01-15",
		PropLine:   ptr(26.5),
		OverOdds:   ptr(-110),
		Seed:       ptr(int64(42)),
	}
}

func TestKey(t *testing.T) {
	key, ok := Key(seededRequest(), 7)
	require.True(t, ok)
	assert.Equal(t, "sharpeye:predict:v7:203999:BOS:HOME:2025-01-15:26.5:-110:-:42", key)

	other, _ := Key(seededRequest(), 8)
	assert.NotEqual(t, key, other, "a new snapshot must not reuse old entries")

	req := seededRequest()
	req.Seed = nil
	_, ok = Key(req, 7)
	assert.False(t, ok)

	req = seededRequest()
	req.PropLine = nil
	noLine, ok := Key(req, 7)
	require.True(t, ok)
	assert.NotEqual(t, key, noLine)
}

func TestNewResponseCacheDefaultsTTL(t *testing.T) {
	c := NewResponseCache(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), 0)
	defer c.Close()
	assert.Equal(t, DefaultTTL, c.ttl)
}

// TestResponseCacheRoundTrip needs a live Redis at SHARPEYE_TEST_REDIS_ADDR
func TestResponseCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("SHARPEYE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SHARPEYE_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	c := NewResponseCache(redis.NewClient(&redis.Options{Addr: addr}), time.Minute)
	defer c.Close()
	require.NoError(t, c.Ping(ctx))

	key, _ := Key(seededRequest(), uint64(time.Now().UnixNano()))

	_, hit, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, hit)

	resp := &models.PredictionResponse{
		PlayerName:      "Test Guard",
		PredictedPoints: 28.4,
		MonteCarlo: &models.MonteCarloAnalysis{
			ProbabilityOver:  0.6391,
			ProbabilityUnder: 0.3609,
			Percentiles:      map[int]float64{5: 19.1, 95: 37.6},
			Recommendation:   models.RecommendationOver,
		},
	}
	require.NoError(t, c.Set(ctx, key, resp))

	got, hit, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, resp, got)
}
