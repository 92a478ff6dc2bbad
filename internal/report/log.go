// Package report surfaces finished cycles to humans and, optionally, to a
// Pub/Sub topic for downstream consumers. Reporting is fire-and-forget:
// failures are logged and never affect the run.
package report

import (
	"context"

	"go.uber.org/zap"

	"github.com/roadwatch/camsnap/internal/poller"
)

// LogReporter writes a human-readable cycle summary after every cycle.
type LogReporter struct {
	logger *zap.Logger
}

// NewLogReporter wraps a logger.
func NewLogReporter(logger *zap.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// Report logs one cycle.
func (r *LogReporter) Report(_ context.Context, cr poller.CycleReport) {
	if cr.Skipped {
		r.logger.Info("cycle skipped: outside active window",
			zap.String("run_id", cr.RunID),
			zap.Int("cycle", cr.Cycle),
			zap.Time("started_at", cr.StartedAt),
		)
		return
	}
	fields := []zap.Field{
		zap.String("run_id", cr.RunID),
		zap.Int("cycle", cr.Cycle),
		zap.Time("started_at", cr.StartedAt),
		zap.Int("attempted", cr.Attempted),
		zap.Int("succeeded", cr.Succeeded),
		zap.Int("failed", cr.Failed),
	}
	if len(cr.FailedCameras) > 0 {
		fields = append(fields, zap.Strings("failed_cameras", cr.FailedCameras))
	}
	r.logger.Info("cycle complete", fields...)
}
