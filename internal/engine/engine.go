// Package engine runs the prediction pipeline: features, point estimate,
// interval, simulation, analysis and recommendation.
package engine

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sharpeye/internal/analysis"
	"github.com/yourusername/sharpeye/internal/features"
	"github.com/yourusername/sharpeye/internal/logger"
	"github.com/yourusername/sharpeye/internal/metrics"
	"github.com/yourusername/sharpeye/internal/models"
	"github.com/yourusername/sharpeye/internal/oddsmath"
	"github.com/yourusername/sharpeye/internal/policy"
	"github.com/yourusername/sharpeye/internal/simulation"
)

// FeatureBuilder assembles the feature set for one game
type FeatureBuilder interface {
	Build(ctx context.Context, q features.FeatureQuery) (*models.FeatureSet, error)
}

// PointEstimator produces the point estimate for a feature set
type PointEstimator interface {
	Estimate(ctx context.Context, set *models.FeatureSet) (models.PointEstimate, error)
}

// Config holds per-request limits
type Config struct {
	SampleCount      int
	HistogramBins    int
	RequestTimeout   time.Duration
	BoardConcurrency int
	BoardMaxProps    int
}

// DefaultConfig returns production defaults
func DefaultConfig() Config {
	return Config{
		SampleCount:      simulation.DefaultSampleCount,
		HistogramBins:    analysis.DefaultHistogramBins,
		RequestTimeout:   5 * time.Second,
		BoardConcurrency: 8,
		BoardMaxProps:    200,
	}
}

// Deps are the collaborators the engine drives
type Deps struct {
	Features  FeatureBuilder
	Estimator PointEstimator
	Sampler   *simulation.Sampler
	Analyzer  *analysis.Analyzer
	Policy    *policy.Policy
	Logger    *logger.PredictionLogger
}

// Engine is stateless per request; every collaborator is safe for
// concurrent use.
type Engine struct {
	features  FeatureBuilder
	estimator PointEstimator
	sampler   *simulation.Sampler
	analyzer  *analysis.Analyzer
	policy    *policy.Policy
	log       *logger.PredictionLogger
	validate  *validator.Validate
	cfg       Config
}

// New creates an engine
func New(deps Deps, cfg Config) *Engine {
	if cfg.SampleCount == 0 {
		cfg.SampleCount = simulation.DefaultSampleCount
	}
	if cfg.HistogramBins <= 0 {
		cfg.HistogramBins = analysis.DefaultHistogramBins
	}
	if cfg.BoardConcurrency <= 0 {
		cfg.BoardConcurrency = 1
	}
	if deps.Logger == nil {
		base := logrus.New()
		base.SetOutput(io.Discard)
		deps.Logger = logger.NewPredictionLogger(base)
	}
	return &Engine{
		features:  deps.Features,
		estimator: deps.Estimator,
		sampler:   deps.Sampler,
		analyzer:  deps.Analyzer,
		policy:    deps.Policy,
		log:       deps.Logger,
		validate:  NewRequestValidator(),
		cfg:       cfg,
	}
}

// Predict runs the full pipeline for one request. A missing prop line or
// unusable spread inputs yield a degraded response with MonteCarlo nil.
func (e *Engine) Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResponse, error) {
	start := time.Now()
	requestID := RequestID(ctx)

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	e.log.LogRequest(requestID, req)

	resp, err := e.predict(ctx, requestID, req)
	if err != nil {
		metrics.RecordPredictionError(models.ErrorKind(err))
		e.log.LogFailure(requestID, req.PlayerID, err)
		return nil, err
	}

	duration := time.Since(start)
	if resp.Degraded() {
		metrics.RecordDegraded()
		metrics.RecordPrediction("DEGRADED", duration)
	} else {
		metrics.RecordPrediction(string(resp.MonteCarlo.Recommendation), duration)
		metrics.RecordConfidence(resp.MonteCarlo.ConfidenceScore)
	}
	e.log.LogResult(requestID, resp, duration)
	return resp, nil
}

func (e *Engine) predict(ctx context.Context, requestID string, req models.PredictionRequest) (*models.PredictionResponse, error) {
	if err := e.validateRequest(req); err != nil {
		return nil, err
	}
	gameDate, err := req.Date()
	if err != nil {
		return nil, models.NewValidationError("game_date", err.Error())
	}

	set, est, err := e.estimate(ctx, req.PlayerID, req.OpponentID, req.Location, gameDate)
	if err != nil {
		return nil, err
	}
	resp := buildResponse(set, est)

	line, ok := req.MarketLine()
	if !ok {
		e.log.LogDegraded(requestID, req.PlayerID, "no prop line supplied")
		return resp, nil
	}
	if !spreadInputsFinite(est, set) {
		e.log.LogDegraded(requestID, req.PlayerID, "non-finite spread inputs")
		return resp, nil
	}

	_, mc, err := e.simulate(ctx, set, est, line, req.Seed)
	if err != nil {
		return nil, err
	}

	if line.HasBothSides() {
		if fairOver, _, err := oddsmath.FairPair(*line.OverOdds, *line.UnderOdds); err == nil {
			e.log.LogFairProbability(requestID, fairOver, mc.ProbabilityOver)
		}
	}

	resp.MonteCarlo = roundAnalysis(mc)
	return resp, nil
}

// estimate builds features and asks the estimator for a point estimate
func (e *Engine) estimate(ctx context.Context, playerID int64, opponent string, loc models.Location, gameDate time.Time) (*models.FeatureSet, models.PointEstimate, error) {
	set, err := e.features.Build(ctx, features.FeatureQuery{
		PlayerID:     playerID,
		OpponentAbbr: strings.ToUpper(opponent),
		Location:     loc,
		GameDate:     gameDate,
	})
	if err != nil {
		return nil, models.PointEstimate{}, err
	}

	est, err := e.estimator.Estimate(ctx, set)
	if err != nil {
		return nil, models.PointEstimate{}, err
	}
	return set, est, nil
}

// simulate draws the sample set and derives the analysis and recommendation.
// Values are unrounded.
func (e *Engine) simulate(ctx context.Context, set *models.FeatureSet, est models.PointEstimate, line models.MarketLine, seed *int64) (simulation.SampleSet, *models.MonteCarloAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return simulation.SampleSet{}, nil, err
	}

	start := time.Now()
	samples, err := e.sampler.Simulate(est, set.Snapshot.ConsistencyStd, e.cfg.SampleCount, seed)
	if err != nil {
		return simulation.SampleSet{}, nil, err
	}
	metrics.RecordSimulation(time.Since(start))

	mc, err := e.analyzer.Analyze(samples.Values, line, est.PredictedPoints, est.ModelMAE)
	if err != nil {
		return simulation.SampleSet{}, nil, err
	}
	mc.Recommendation = e.policy.Recommend(mc.Edge, mc.ConfidenceScore)
	return samples, mc, nil
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.RequestTimeout > 0 {
		return context.WithTimeout(ctx, e.cfg.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

func spreadInputsFinite(est models.PointEstimate, set *models.FeatureSet) bool {
	for _, v := range []float64{est.PredictedPoints, est.ModelMAE, set.Snapshot.ConsistencyStd} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// isRequestFatal reports errors that should abort a whole board rather than
// skip one prop
func isRequestFatal(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, models.ErrFeatureStoreNotReady) ||
		errors.Is(err, models.ErrModelUnavailable) ||
		errors.Is(err, models.ErrSimulationPrecondition)
}
