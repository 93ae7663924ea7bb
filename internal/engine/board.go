package engine

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/sharpeye/internal/analysis"
	"github.com/yourusername/sharpeye/internal/metrics"
	"github.com/yourusername/sharpeye/internal/models"
	"github.com/yourusername/sharpeye/internal/oddsmath"
)

// Board analyses every prop in req and ranks them by the edge of the
// favoured side, best first. Props that cannot be analysed are listed as
// skipped; failures that would affect every prop abort the board.
func (e *Engine) Board(ctx context.Context, req models.BoardRequest) (*models.BoardResponse, error) {
	start := time.Now()
	requestID := RequestID(ctx)

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	resp, err := e.board(ctx, requestID, req)
	if err != nil {
		metrics.RecordPredictionError(models.ErrorKind(err))
		e.log.LogFailure(requestID, 0, err)
		return nil, err
	}

	e.log.LogBoard(requestID, len(resp.Entries), len(resp.Skipped), time.Since(start))
	return resp, nil
}

func (e *Engine) board(ctx context.Context, requestID string, req models.BoardRequest) (*models.BoardResponse, error) {
	if err := e.validateBoard(req); err != nil {
		return nil, err
	}
	gameDate, err := time.Parse(models.GameDateLayout, req.GameDate)
	if err != nil {
		return nil, models.NewValidationError("game_date", err.Error())
	}

	var (
		mu      sync.Mutex
		entries = make([]models.BoardEntry, 0, len(req.Props))
		skipped = make([]models.BoardSkip, 0)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.BoardConcurrency)

	for i, prop := range req.Props {
		i, prop := i, prop
		g.Go(func() error {
			entry, err := e.boardEntry(gctx, prop, gameDate, propSeed(req.Seed, i))
			if err != nil {
				if isRequestFatal(err) {
					return err
				}
				e.log.LogFailure(requestID, prop.PlayerID, err)
				mu.Lock()
				skipped = append(skipped, models.BoardSkip{PlayerID: prop.PlayerID, Reason: err.Error()})
				mu.Unlock()
				return nil
			}
			mu.Lock()
			entries = append(entries, entry)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	RankEntries(entries)
	if req.Limit > 0 && len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].PlayerID < skipped[j].PlayerID })

	return &models.BoardResponse{
		GameDate: req.GameDate,
		Entries:  entries,
		Skipped:  skipped,
	}, nil
}

func (e *Engine) boardEntry(ctx context.Context, prop models.PropQuote, gameDate time.Time, seed *int64) (models.BoardEntry, error) {
	set, est, err := e.estimate(ctx, prop.PlayerID, prop.OpponentID, prop.Location, gameDate)
	if err != nil {
		return models.BoardEntry{}, err
	}
	if !spreadInputsFinite(est, set) {
		return models.BoardEntry{}, errors.New("non-finite spread inputs")
	}

	line := models.MarketLine{PropLine: prop.PropLine, OverOdds: prop.OverOdds, UnderOdds: prop.UnderOdds}
	_, mc, err := e.simulate(ctx, set, est, line, seed)
	if err != nil {
		return models.BoardEntry{}, err
	}

	direction, probability, edge, err := favouredSide(mc, line)
	if err != nil {
		return models.BoardEntry{}, err
	}

	entry := models.BoardEntry{
		PlayerID:        prop.PlayerID,
		PlayerName:      set.Player.PlayerName,
		Team:            models.TeamName(set.Player.TeamAbbr),
		Opponent:        models.TeamName(set.OpponentAbbr),
		PropLine:        prop.PropLine,
		PredictedPoints: analysis.Round(est.PredictedPoints, 1),
		Direction:       direction,
		Probability:     analysis.Round(probability, 4),
		Edge:            analysis.Round(edge, 2),
		ConfidenceScore: analysis.Round(mc.ConfidenceScore, 1),
		Recommendation:  mc.Recommendation,
		Recommended:     mc.Recommendation == direction,
	}

	if line.HasBothSides() {
		if fairOver, fairUnder, err := oddsmath.FairPair(*line.OverOdds, *line.UnderOdds); err == nil {
			fair := fairOver
			if direction == models.RecommendationUnder {
				fair = fairUnder
			}
			fair = analysis.Round(fair, 4)
			entry.FairProbability = &fair
		}
	}
	return entry, nil
}

// favouredSide picks the side the simulation prefers and its edge against
// that side's implied probability. Ties favour UNDER, matching the at-line rule.
func favouredSide(mc *models.MonteCarloAnalysis, line models.MarketLine) (models.Recommendation, float64, float64, error) {
	if mc.ProbabilityOver > mc.ProbabilityUnder {
		return models.RecommendationOver, mc.ProbabilityOver, mc.Edge, nil
	}

	implied := analysis.NeutralBaseline
	if line.UnderOdds != nil {
		p, err := oddsmath.ImpliedProbability(*line.UnderOdds)
		if err != nil {
			return "", 0, 0, models.NewValidationError("under_odds", err.Error())
		}
		implied = p
	}
	return models.RecommendationUnder, mc.ProbabilityUnder, (mc.ProbabilityUnder - implied) * 100, nil
}

// RankEntries orders entries by edge, best first, then by player id and line
func RankEntries(entries []models.BoardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Edge != entries[j].Edge {
			return entries[i].Edge > entries[j].Edge
		}
		if entries[i].PlayerID != entries[j].PlayerID {
			return entries[i].PlayerID < entries[j].PlayerID
		}
		return entries[i].PropLine < entries[j].PropLine
	})
}

// propSeed derives a per-prop seed so a seeded board is reproducible
func propSeed(base *int64, index int) *int64 {
	if base == nil {
		return nil
	}
	s := *base + int64(index)
	return &s
}
