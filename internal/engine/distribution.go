package engine

import (
	"context"
	"fmt"

	"github.com/yourusername/sharpeye/internal/analysis"
	"github.com/yourusername/sharpeye/internal/metrics"
	"github.com/yourusername/sharpeye/internal/models"
)

// Distribution returns histogram data for the simulated outcomes of one prop
// together with where the line falls in them. A prop line is required.
func (e *Engine) Distribution(ctx context.Context, req models.PredictionRequest) (*models.Distribution, error) {
	requestID := RequestID(ctx)

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	out, err := e.distribution(ctx, req)
	if err != nil {
		metrics.RecordPredictionError(models.ErrorKind(err))
		e.log.LogFailure(requestID, req.PlayerID, err)
		return nil, err
	}
	return out, nil
}

func (e *Engine) distribution(ctx context.Context, req models.PredictionRequest) (*models.Distribution, error) {
	if err := e.validateRequest(req); err != nil {
		return nil, err
	}
	line, ok := req.MarketLine()
	if !ok {
		return nil, models.NewValidationError("prop_line", "is required")
	}
	gameDate, err := req.Date()
	if err != nil {
		return nil, models.NewValidationError("game_date", err.Error())
	}

	set, est, err := e.estimate(ctx, req.PlayerID, req.OpponentID, req.Location, gameDate)
	if err != nil {
		return nil, err
	}
	if !spreadInputsFinite(est, set) {
		return nil, fmt.Errorf("%w: non-finite spread inputs", models.ErrModelUnavailable)
	}

	samples, mc, err := e.simulate(ctx, set, est, line, req.Seed)
	if err != nil {
		return nil, err
	}

	bins := analysis.Histogram(samples.Values, e.cfg.HistogramBins)
	for i := range bins {
		bins[i].Lower = analysis.Round(bins[i].Lower, 2)
		bins[i].Upper = analysis.Round(bins[i].Upper, 2)
	}

	return &models.Distribution{
		PlayerID:        req.PlayerID,
		PlayerName:      set.Player.PlayerName,
		PredictedPoints: analysis.Round(est.PredictedPoints, 1),
		PropLine:        line.PropLine,
		LinePercentile:  analysis.Round(analysis.PercentileOf(samples.Values, line.PropLine), 2),
		Bins:            bins,
		Percentiles:     roundAnalysis(mc).Percentiles,
	}, nil
}
