package indexer

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// defaultIntervalMs is the delay between scheduled passes when the
// configured interval is zero or negative.
const defaultIntervalMs = 3_600_000

// Scheduler runs Pipeline.Run immediately on Start, then on a fixed
// interval, in the ticker/stop-channel idiom the ambient HTTP server already
// uses for its rate-limiter eviction loop. isRunning is the pipeline's sole
// concurrency control: a tick that arrives mid-pass is skipped, not queued,
// since the design assumes a single indexer process.
type Scheduler struct {
	pipeline   *Pipeline
	intervalMs int
	isRunning  atomic.Bool
	stopCh     chan struct{}
	log        *slog.Logger
}

// NewScheduler constructs a Scheduler. intervalMs <= 0 resolves to
// defaultIntervalMs.
func NewScheduler(pipeline *Pipeline, intervalMs int, log *slog.Logger) *Scheduler {
	if intervalMs <= 0 {
		intervalMs = defaultIntervalMs
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		pipeline:   pipeline,
		intervalMs: intervalMs,
		log:        log,
	}
}

// Start runs one pass immediately in a background goroutine, then schedules
// further passes every intervalMs until Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.stopCh = make(chan struct{})
	go s.loop(ctx)
}

// Stop cancels the pending timer. Any in-flight pass completes or is
// cancelled cooperatively via ctx.
func (s *Scheduler) Stop() {
	if s.stopCh != nil {
		close(s.stopCh)
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	s.runTick(ctx)

	ticker := time.NewTicker(time.Duration(s.intervalMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runTick(ctx)
		}
	}
}

// runTick runs one pass if none is already in progress, reporting
// "already running" via a debug log line when skipped.
func (s *Scheduler) runTick(ctx context.Context) {
	if !s.isRunning.CompareAndSwap(false, true) {
		s.log.Debug("indexer: tick skipped, pass already running")
		return
	}
	defer s.isRunning.Store(false)

	if _, err := s.pipeline.Run(ctx, RunOptions{}); err != nil {
		s.log.Error("indexer: scheduled pass failed", slog.String("error", err.Error()))
	}
}

// RunNow triggers a manual pass with the given overrides, bypassing the
// ticker but still respecting the singleton guarantee: a pass already in
// progress causes RunNow to return ok=false without running.
func (s *Scheduler) RunNow(ctx context.Context, opts RunOptions) (Result, bool) {
	if !s.isRunning.CompareAndSwap(false, true) {
		return Result{}, false
	}
	defer s.isRunning.Store(false)

	result, err := s.pipeline.Run(ctx, opts)
	if err != nil {
		s.log.Error("indexer: manual pass failed", slog.String("error", err.Error()))
	}
	return result, true
}
