package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"briefbox/backend/internal/logger"
	"briefbox/backend/internal/service"
)

// Scheduler triggers a full pipeline pass on a fixed interval.
type Scheduler struct {
	orchestrator service.RunOrchestrator
	interval     time.Duration
	stopCh       chan struct{}
	wg           sync.WaitGroup
	cancelFunc   context.CancelFunc // cancels the current pass
	mu           sync.Mutex         // protects cancelFunc
}

func New(orchestrator service.RunOrchestrator, interval time.Duration) *Scheduler {
	return &Scheduler{
		orchestrator: orchestrator,
		interval:     interval,
		stopCh:       make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	logger.Info("scheduler started", "module", "scheduler", "action", "run", "resource", "pipeline", "result", "ok", "interval_ms", s.interval.Milliseconds())
}

func (s *Scheduler) Stop() {
	// Cancel any ongoing pass first
	s.mu.Lock()
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	logger.Info("scheduler stopped", "module", "scheduler", "action", "run", "resource", "pipeline", "result", "ok")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.pass()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.pass()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scheduler) pass() {
	// Use the same timeout as the trigger interval
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)

	s.mu.Lock()
	s.cancelFunc = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.cancelFunc = nil
		s.mu.Unlock()
	}()

	logger.Info("pipeline pass started", "module", "scheduler", "action", "run", "resource", "pipeline", "result", "ok")
	if err := s.orchestrator.Run(ctx); err != nil {
		if errors.Is(err, service.ErrRunInProgress) {
			logger.Warn("pipeline pass skipped, previous still running", "module", "scheduler", "action", "run", "resource", "pipeline", "result", "skipped")
			return
		}
		if ctx.Err() != nil {
			logger.Warn("pipeline pass cancelled", "module", "scheduler", "action", "run", "resource", "pipeline", "result", "cancelled")
			return
		}
		logger.Error("pipeline pass finished with failures", "module", "scheduler", "action", "run", "resource", "pipeline", "result", "failed", "error", err)
		return
	}
	logger.Info("pipeline pass completed", "module", "scheduler", "action", "run", "resource", "pipeline", "result", "ok")
}
