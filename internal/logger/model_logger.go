package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// ModelLogger provides dedicated logging for model calls and feature snapshots.
type ModelLogger struct {
	*logrus.Entry
}

// NewModelLogger creates a new model logger.
func NewModelLogger(baseLogger *logrus.Logger) *ModelLogger {
	return &ModelLogger{
		Entry: baseLogger.WithField("component", "model"),
	}
}

// LogModelCall logs a point estimator call.
func (ml *ModelLogger) LogModelCall(backend string, featuresCount int, cacheHit bool, latency time.Duration) {
	ml.WithFields(logrus.Fields{
		"backend":        backend,
		"features_count": featuresCount,
		"cache_hit":      cacheHit,
		"latency_ms":     float64(latency.Microseconds()) / 1000,
	}).Debug("Model call completed")
}

// LogModelError logs a failed point estimator call.
func (ml *ModelLogger) LogModelError(backend string, err error) {
	ml.WithFields(logrus.Fields{
		"backend": backend,
	}).WithError(err).Error("Model call failed")
}

// LogSnapshotRefresh logs a feature snapshot swap.
func (ml *ModelLogger) LogSnapshotRefresh(version uint64, players, teamLogs int, duration time.Duration) {
	ml.WithFields(logrus.Fields{
		"snapshot_version": version,
		"players":          players,
		"team_logs":        teamLogs,
		"duration_ms":      duration.Milliseconds(),
	}).Info("Feature snapshot refreshed")
}

// LogSnapshotRefreshError logs a failed refresh; the previous snapshot stays live.
func (ml *ModelLogger) LogSnapshotRefreshError(version uint64, err error) {
	ml.WithFields(logrus.Fields{
		"snapshot_version": version,
	}).WithError(err).Error("Feature snapshot refresh failed, keeping previous snapshot")
}
