package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"briefbox/backend/internal/channel"
	"briefbox/backend/internal/logger"
	"briefbox/backend/internal/model"
	"briefbox/backend/internal/repository"
)

// PollerService fetches due channels, filters genuinely new items, and
// persists them.
type PollerService interface {
	PollDue(ctx context.Context) error
}

type pollerService struct {
	channels    repository.ChannelRepository
	updates     repository.UpdateRepository
	registry    *channel.Registry
	interval    time.Duration
	concurrency int
}

func NewPollerService(
	channels repository.ChannelRepository,
	updates repository.UpdateRepository,
	registry *channel.Registry,
	interval time.Duration,
	concurrency int,
) PollerService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &pollerService{
		channels:    channels,
		updates:     updates,
		registry:    registry,
		interval:    interval,
		concurrency: concurrency,
	}
}

// PollDue polls every channel whose last_fetched is unset or older than the
// fetch interval. Channels are independent: a failure on one is logged and
// leaves its last_fetched untouched (so it is retried next run) without
// aborting the batch.
func (s *pollerService) PollDue(ctx context.Context) error {
	now := time.Now().UTC()
	due, err := s.channels.ListDueForFetch(ctx, now, s.interval)
	if err != nil {
		return fmt.Errorf("list due channels: %w", err)
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, ch := range due {
		g.Go(func() error {
			if err := s.pollChannel(gctx, ch); err != nil {
				logger.Error("channel poll failed", "module", "poller", "action", "fetch", "resource", "channel", "result", "failed", "channel_id", ch.ID, "ext_id", ch.ExtID, "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("channel %d (%s): %w", ch.ID, ch.ExtID, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

func (s *pollerService) pollChannel(ctx context.Context, ch model.Channel) error {
	adapter, ok := s.registry.Get(ch.Type)
	if !ok {
		return fmt.Errorf("no adapter for channel type %q", ch.Type)
	}

	fetched, err := adapter.FetchUpdates(ctx, ch.ExtID)
	if err != nil {
		errMsg := err.Error()
		_ = s.channels.UpdateErrorMessage(ctx, ch.ID, &errMsg)
		return fmt.Errorf("fetch updates: %w", err)
	}
	if ch.ErrorMessage != nil {
		_ = s.channels.UpdateErrorMessage(ctx, ch.ID, nil)
	}

	lastKnown, err := s.updates.FindNewest(ctx, ch.ID)
	if err != nil {
		return fmt.Errorf("find newest update: %w", err)
	}

	now := time.Now().UTC()
	fresh := SelectNew(fetched, lastKnown, now)

	inserted := 0
	for _, item := range fresh {
		update := model.Update{
			ChannelID: ch.ID,
			Title:     item.Title,
			URL:       item.URL,
			Published: item.Published.UTC(),
			Inserted:  now,
		}
		if ch.Type == model.ChannelTwitter && item.ExtID != "" {
			extID := item.ExtID
			update.ExtID = &extID
		}
		if _, err := s.updates.Insert(ctx, update); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				// already present, the uniqueness constraint is the dedup of
				// last resort
				continue
			}
			return fmt.Errorf("insert update: %w", err)
		}
		inserted++
	}

	if err := s.channels.UpdateLastFetched(ctx, ch.ID, now); err != nil {
		return fmt.Errorf("update last_fetched: %w", err)
	}

	if inserted > 0 {
		logger.Info("channel polled", "module", "poller", "action", "fetch", "resource", "channel", "result", "ok", "channel_id", ch.ID, "ext_id", ch.ExtID, "new_updates", inserted)
	}
	return nil
}
