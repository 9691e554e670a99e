package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"briefbox/backend/internal/logger"
)

var ErrRunInProgress = errors.New("pipeline run already in progress")

// RunOrchestrator sequences one full pipeline pass: poll, clean, schedule,
// send. Every stage always runs; failures are aggregated, never fatal to the
// pass.
type RunOrchestrator interface {
	Run(ctx context.Context) error
	IsRunning() bool
}

type runOrchestrator struct {
	poller    PollerService
	cleaner   CleanerService
	scheduler DigestSchedulerService
	sender    DigestSenderService

	mu      sync.Mutex
	running bool
}

func NewRunOrchestrator(
	poller PollerService,
	cleaner CleanerService,
	scheduler DigestSchedulerService,
	sender DigestSenderService,
) RunOrchestrator {
	return &runOrchestrator{
		poller:    poller,
		cleaner:   cleaner,
		scheduler: scheduler,
		sender:    sender,
	}
}

func (o *runOrchestrator) IsRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

func (o *runOrchestrator) Run(ctx context.Context) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return ErrRunInProgress
	}
	o.running = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
	}()

	var errs []error
	if err := o.poller.PollDue(ctx); err != nil {
		errs = append(errs, fmt.Errorf("poll: %w", err))
	}
	if err := o.cleaner.CleanDue(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clean: %w", err))
	}
	if err := o.scheduler.ScheduleAll(ctx); err != nil {
		errs = append(errs, fmt.Errorf("schedule: %w", err))
	}
	if err := o.sender.SendDue(ctx); err != nil {
		errs = append(errs, fmt.Errorf("send: %w", err))
	}

	if len(errs) > 0 {
		logger.Warn("pipeline pass finished with failures", "module", "orchestrator", "action", "run", "resource", "pipeline", "result", "partial", "failed_stages", len(errs))
	}
	return errors.Join(errs...)
}
