package logger

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/sharpeye/internal/models"
)

// PredictionLogger logs the lifecycle of prediction requests
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "prediction"),
	}
}

// LogRequest logs an incoming prediction request.
func (pl *PredictionLogger) LogRequest(requestID string, req models.PredictionRequest) {
	fields := logrus.Fields{
		"request_id":  requestID,
		"player_id":   req.PlayerID,
		"opponent_id": req.OpponentID,
		"location":    req.Location,
		"game_date":   req.GameDate,
		"seeded":      req.Seed != nil,
	}
	if req.PropLine != nil {
		fields["prop_line"] = *req.PropLine
	}
	pl.WithFields(fields).Debug("Prediction requested")
}

// LogResult logs a completed prediction.
func (pl *PredictionLogger) LogResult(requestID string, resp *models.PredictionResponse, duration time.Duration) {
	fields := logrus.Fields{
		"request_id":       requestID,
		"player_name":      resp.PlayerName,
		"predicted_points": resp.PredictedPoints,
		"duration_ms":      duration.Milliseconds(),
	}
	if resp.MonteCarlo != nil {
		fields["probability_over"] = resp.MonteCarlo.ProbabilityOver
		fields["edge"] = resp.MonteCarlo.Edge
		fields["confidence_score"] = resp.MonteCarlo.ConfidenceScore
		fields["recommendation"] = resp.MonteCarlo.Recommendation
	}
	pl.WithFields(fields).Info("Prediction completed")
}

// LogDegraded logs a prediction returned without simulation detail.
func (pl *PredictionLogger) LogDegraded(requestID string, playerID int64, reason string) {
	pl.WithFields(logrus.Fields{
		"request_id": requestID,
		"player_id":  playerID,
		"reason":     reason,
	}).Warn("Prediction degraded, Monte Carlo skipped")
}

// LogFairProbability logs the no-vig market view next to the model's.
func (pl *PredictionLogger) LogFairProbability(requestID string, fairOver, modelOver float64) {
	pl.WithFields(logrus.Fields{
		"request_id":       requestID,
		"fair_over":        fairOver,
		"probability_over": modelOver,
	}).Debug("No-vig market probability")
}

// LogBoard logs a completed props board.
func (pl *PredictionLogger) LogBoard(requestID string, entries, skipped int, duration time.Duration) {
	pl.WithFields(logrus.Fields{
		"request_id":  requestID,
		"entries":     entries,
		"skipped":     skipped,
		"duration_ms": duration.Milliseconds(),
	}).Info("Props board completed")
}

// LogFailure logs a failed prediction. Precondition failures are errors;
// everything the caller can fix is a warning.
func (pl *PredictionLogger) LogFailure(requestID string, playerID int64, err error) {
	entry := pl.WithFields(logrus.Fields{
		"request_id": requestID,
		"player_id":  playerID,
		"kind":       models.ErrorKind(err),
		"retryable":  models.IsRetryable(err),
	}).WithError(err)

	switch models.ErrorKind(err) {
	case "validation", "data_unavailable":
		entry.Warn("Prediction rejected")
	default:
		entry.Error("Prediction failed")
	}
}
