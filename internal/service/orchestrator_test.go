package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"briefbox/backend/internal/service"

	"github.com/stretchr/testify/require"
)

type stubStage struct {
	mu    sync.Mutex
	calls int
	err   error
	block chan struct{}
}

func (s *stubStage) run(context.Context) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.err
}

func (s *stubStage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubPoller struct{ *stubStage }

func (s stubPoller) PollDue(ctx context.Context) error { return s.run(ctx) }

type stubCleaner struct{ *stubStage }

func (s stubCleaner) CleanDue(ctx context.Context) error { return s.run(ctx) }

type stubScheduler struct{ *stubStage }

func (s stubScheduler) ScheduleAll(ctx context.Context) error { return s.run(ctx) }

type stubSender struct{ *stubStage }

func (s stubSender) SendDue(ctx context.Context) error { return s.run(ctx) }

func TestOrchestrator_EveryStageRunsDespiteFailures(t *testing.T) {
	poll := &stubStage{err: errors.New("poll broke")}
	clean := &stubStage{}
	schedule := &stubStage{err: errors.New("schedule broke")}
	send := &stubStage{}

	o := service.NewRunOrchestrator(stubPoller{poll}, stubCleaner{clean}, stubScheduler{schedule}, stubSender{send})
	err := o.Run(context.Background())

	require.Error(t, err)
	require.Contains(t, err.Error(), "poll broke")
	require.Contains(t, err.Error(), "schedule broke")
	for _, stage := range []*stubStage{poll, clean, schedule, send} {
		require.Equal(t, 1, stage.count())
	}
}

func TestOrchestrator_AllStagesCleanReturnsNil(t *testing.T) {
	poll, clean, schedule, send := &stubStage{}, &stubStage{}, &stubStage{}, &stubStage{}

	o := service.NewRunOrchestrator(stubPoller{poll}, stubCleaner{clean}, stubScheduler{schedule}, stubSender{send})
	require.NoError(t, o.Run(context.Background()))
	require.False(t, o.IsRunning())
}

func TestOrchestrator_OverlappingRunIsRejected(t *testing.T) {
	release := make(chan struct{})
	poll := &stubStage{block: release}
	clean, schedule, send := &stubStage{}, &stubStage{}, &stubStage{}

	o := service.NewRunOrchestrator(stubPoller{poll}, stubCleaner{clean}, stubScheduler{schedule}, stubSender{send})

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		done <- o.Run(context.Background())
	}()
	<-started
	require.Eventually(t, o.IsRunning, time.Second, time.Millisecond)

	require.ErrorIs(t, o.Run(context.Background()), service.ErrRunInProgress)

	close(release)
	require.NoError(t, <-done)
	require.False(t, o.IsRunning())
}
