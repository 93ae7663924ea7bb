package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sharpeye/internal/features"
	"github.com/yourusername/sharpeye/internal/models"
)

func nan() float64 { return math.NaN() }

func boardRequest() models.BoardRequest {
	return models.BoardRequest{
		GameDate: "2025-01-15",
		Seed:     ptr(int64(7)),
		Props: []models.PropQuote{
			{PlayerID: 1, OpponentID: "BOS", Location: models.LocationHome, PropLine: 26.5, OverOdds: ptr(-110), UnderOdds: ptr(-110)},
			{PlayerID: 2, OpponentID: "BOS", Location: models.LocationAway, PropLine: 24.5, OverOdds: ptr(-110), UnderOdds: ptr(-110)},
			{PlayerID: 3, OpponentID: "NYK", Location: models.LocationHome, PropLine: 10.5},
		},
	}
}

func TestBoardRanksByEdge(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.player(1, "Over Guy", 28.4, 4.5)
	h.player(2, "Under Guy", 18.0, 4.5)
	h.features.On("Build", mock.Anything, mock.MatchedBy(func(q features.FeatureQuery) bool { return q.PlayerID == 3 })).
		Return(nil, fmt.Errorf("%w: player 3 has 2 games", models.ErrDataUnavailable))

	resp, err := h.engine.Board(context.Background(), boardRequest())
	require.NoError(t, err)

	require.Len(t, resp.Entries, 2)
	first, second := resp.Entries[0], resp.Entries[1]

	assert.Equal(t, int64(2), first.PlayerID)
	assert.Equal(t, models.RecommendationUnder, first.Direction)
	assert.Equal(t, models.RecommendationUnder, first.Recommendation)
	assert.True(t, first.Recommended)
	assert.Greater(t, first.Probability, 0.85)
	assert.Equal(t, "Los Angeles Lakers", first.Team)
	assert.Equal(t, "Boston Celtics", first.Opponent)
	require.NotNil(t, first.FairProbability)
	assert.InDelta(t, 0.5, *first.FairProbability, 1e-9)

	assert.Equal(t, int64(1), second.PlayerID)
	assert.Equal(t, models.RecommendationOver, second.Direction)
	assert.Greater(t, first.Edge, second.Edge)
	assert.Greater(t, second.Edge, 0.0)

	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, int64(3), resp.Skipped[0].PlayerID)
	assert.Contains(t, resp.Skipped[0].Reason, "insufficient historical data")
}

func TestBoardLimitAndDeterminism(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.player(1, "Over Guy", 28.4, 4.5)
	h.player(2, "Under Guy", 18.0, 4.5)
	h.player(3, "Bench Guy", 9.0, 3.0)

	req := boardRequest()
	first, err := h.engine.Board(context.Background(), req)
	require.NoError(t, err)
	second, err := h.engine.Board(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.Len(t, first.Entries, 3)
	require.NotNil(t, first.Skipped)
	assert.Empty(t, first.Skipped)
	body, err := json.Marshal(first)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"skipped":[]`)
	for _, e := range first.Entries {
		if e.PlayerID == 3 {
			assert.Nil(t, e.FairProbability)
		} else {
			assert.NotNil(t, e.FairProbability)
		}
	}

	req.Limit = 1
	limited, err := h.engine.Board(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, limited.Entries, 1)
	assert.Equal(t, first.Entries[0], limited.Entries[0])
}

func TestBoardAbortsWhenStoreNotReady(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.features.On("Build", mock.Anything, mock.Anything).Return(nil, models.ErrFeatureStoreNotReady)

	_, err := h.engine.Board(context.Background(), boardRequest())
	assert.ErrorIs(t, err, models.ErrFeatureStoreNotReady)
}

func TestBoardAbortsWhenModelUnavailable(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.features.On("Build", mock.Anything, mock.Anything).Return(testFeatureSet(1, "Test Guard"), nil)
	h.estimator.On("Estimate", mock.Anything, mock.Anything).
		Return(models.PointEstimate{}, fmt.Errorf("%w: connection refused", models.ErrModelUnavailable))

	resp, err := h.engine.Board(context.Background(), boardRequest())
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, models.ErrModelUnavailable)
}

func TestBoardRecommendedOnlyWhenPolicyAgreesWithDirection(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.player(1, "Test Guard", 28.4, 4.5)

	req := models.BoardRequest{
		GameDate: "2025-01-15",
		Seed:     ptr(int64(7)),
		Props: []models.PropQuote{
			{PlayerID: 1, OpponentID: "BOS", Location: models.LocationHome, PropLine: 26.5, OverOdds: ptr(-300), UnderOdds: ptr(240)},
		},
	}
	resp, err := h.engine.Board(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)

	entry := resp.Entries[0]
	assert.Equal(t, models.RecommendationOver, entry.Direction)
	assert.Less(t, entry.Edge, 0.0)
	assert.NotEqual(t, entry.Direction, entry.Recommendation)
	assert.False(t, entry.Recommended)
}

func TestBoardValidation(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	req := boardRequest()
	req.Props[1].OverOdds = ptr(99)
	_, err := h.engine.Board(context.Background(), req)
	require.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, err.Error(), "props[1].over_odds")

	req = boardRequest()
	req.Props = nil
	_, err = h.engine.Board(context.Background(), req)
	assert.ErrorIs(t, err, models.ErrValidation)

	cfg := DefaultConfig()
	cfg.BoardMaxProps = 2
	h = newHarness(t, cfg)
	_, err = h.engine.Board(context.Background(), boardRequest())
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestRankEntries(t *testing.T) {
	entries := []models.BoardEntry{
		{PlayerID: 3, Edge: 1.5, PropLine: 20.5},
		{PlayerID: 1, Edge: 7.25},
		{PlayerID: 2, Edge: 1.5, PropLine: 12.5},
		{PlayerID: 2, Edge: 1.5, PropLine: 10.5},
	}
	RankEntries(entries)

	assert.Equal(t, int64(1), entries[0].PlayerID)
	assert.Equal(t, 10.5, entries[1].PropLine)
	assert.Equal(t, 12.5, entries[2].PropLine)
	assert.Equal(t, int64(3), entries[3].PlayerID)
}

func TestDistribution(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.player(1, "Test Guard", 28.4, 4.5)

	dist, err := h.engine.Distribution(context.Background(), request(ptr(26.5), nil, nil))
	require.NoError(t, err)

	assert.Equal(t, "Test Guard", dist.PlayerName)
	assert.Equal(t, 26.5, dist.PropLine)
	require.Len(t, dist.Bins, 50)

	total := 0
	for i, b := range dist.Bins {
		total += b.Count
		assert.LessOrEqual(t, b.Lower, b.Upper)
		if i > 0 {
			assert.InDelta(t, dist.Bins[i-1].Upper, b.Lower, 0.011)
		}
	}
	assert.Equal(t, 10000, total)
	assert.InDelta(t, 33.7, dist.LinePercentile, 3)
	assert.Len(t, dist.Percentiles, len(models.PercentileRanks))
}

func TestDistributionRequiresLine(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	_, err := h.engine.Distribution(context.Background(), request(nil, nil, nil))
	assert.ErrorIs(t, err, models.ErrValidation)
	h.features.AssertNotCalled(t, "Build", mock.Anything, mock.Anything)
}
