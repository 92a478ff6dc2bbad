package poller

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roadwatch/camsnap/internal/telemetry"
)

// SchedulerConfig carries the knobs the loop itself needs.
type SchedulerConfig struct {
	Interval    time.Duration
	Duration    time.Duration
	Concurrency int
}

// Scheduler drives the fetch/persist pipeline over every registered camera
// on a fixed cadence until the run deadline passes or the context is
// canceled. A single goroutine owns the loop; the fetch phase fans out over
// a bounded pool and joins before the next wake time is computed.
type Scheduler struct {
	cfg       SchedulerConfig
	cameras   []Camera
	window    Window
	fetcher   Fetcher
	sink      Sink
	clock     Clock
	reporters []Reporter
	logger    *zap.Logger
	runID     string
}

// NewScheduler wires a scheduler. Concurrency below one is clamped to
// serial execution.
func NewScheduler(
	cfg SchedulerConfig,
	cameras []Camera,
	window Window,
	fetcher Fetcher,
	sink Sink,
	clock Clock,
	reporters []Reporter,
	logger *zap.Logger,
) *Scheduler {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Scheduler{
		cfg:       cfg,
		cameras:   cameras,
		window:    window,
		fetcher:   fetcher,
		sink:      sink,
		clock:     clock,
		reporters: reporters,
		logger:    logger,
		runID:     uuid.NewString(),
	}
}

// RunID identifies this run in logs and cycle reports.
func (s *Scheduler) RunID() string {
	return s.runID
}

// Run executes the polling loop to completion and returns the run summary.
// Per-camera and per-cycle failures are contained here and never surface as
// an error; cancellation ends the run gracefully at the next suspension
// point with Canceled set on the summary.
func (s *Scheduler) Run(ctx context.Context) RunSummary {
	start := s.clock.Now()
	deadline := start.Add(s.cfg.Duration)
	summary := RunSummary{RunID: s.runID, StartedAt: start}

	s.logger.Info("run started",
		zap.String("run_id", s.runID),
		zap.Int("cameras", len(s.cameras)),
		zap.Duration("interval", s.cfg.Interval),
		zap.Time("deadline", deadline),
	)

	for cycle := 0; ; cycle++ {
		cycleStart := s.clock.Now()
		if !cycleStart.Before(deadline) {
			break
		}
		if ctx.Err() != nil {
			summary.Canceled = true
			break
		}

		report := CycleReport{RunID: s.runID, Cycle: cycle, StartedAt: cycleStart}
		if s.window.Contains(cycleStart) {
			s.runCycle(ctx, &report)
			summary.Attempts += report.Attempted
			summary.Successes += report.Succeeded
			summary.Failures += report.Failed
		} else {
			// Skipped cycles still advance the cadence grid: the
			// window gate must not make the loop "catch up" on
			// missed work once the window reopens.
			report.Skipped = true
			summary.SkippedCycles++
		}
		summary.Cycles++
		telemetry.ObserveCycle(report.Skipped)
		for _, r := range s.reporters {
			r.Report(ctx, report)
		}

		wake := cycleStart.Add(s.cfg.Interval)
		if wake.After(deadline) {
			wake = deadline
		}
		if err := s.clock.Sleep(ctx, wake.Sub(s.clock.Now())); err != nil {
			summary.Canceled = true
			break
		}
	}

	summary.EndedAt = s.clock.Now()
	s.logger.Info("run finished",
		zap.String("run_id", s.runID),
		zap.Int("cycles", summary.Cycles),
		zap.Int("skipped_cycles", summary.SkippedCycles),
		zap.Int("attempts", summary.Attempts),
		zap.Int("successes", summary.Successes),
		zap.Int("failures", summary.Failures),
		zap.Bool("canceled", summary.Canceled),
	)
	return summary
}

// runCycle attempts every camera exactly once, fanning out over the worker
// pool and joining before it returns. One camera's failure never prevents
// the others from being attempted.
func (s *Scheduler) runCycle(ctx context.Context, report *CycleReport) {
	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Concurrency)

	for _, cam := range s.cameras {
		g.Go(func() error {
			attempt := s.fetcher.Fetch(ctx, cam)
			result := s.sink.Store(ctx, attempt)

			ok := attempt.Succeeded() && result.Stored
			telemetry.ObserveAttempt(ok)
			if !attempt.Succeeded() {
				s.logger.Warn("fetch failed",
					zap.String("run_id", s.runID),
					zap.String("camera_id", cam.ID),
					zap.String("reason", attempt.FailReason),
				)
			} else if !result.Stored {
				s.logger.Error("local persist failed",
					zap.String("run_id", s.runID),
					zap.String("camera_id", cam.ID),
					zap.Error(result.Err),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			report.Attempted++
			if ok {
				report.Succeeded++
			} else {
				report.Failed++
				report.FailedCameras = append(report.FailedCameras, cam.ID)
			}
			return nil
		})
	}
	// Workers always return nil; Wait is purely a join point.
	_ = g.Wait()
	sort.Strings(report.FailedCameras)
}
