package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"briefbox/backend/internal/logger"
	"briefbox/backend/internal/model"
	"briefbox/backend/internal/repository"
)

// DigestSchedulerService inserts a due digest for every subscription that has
// none pending.
type DigestSchedulerService interface {
	ScheduleAll(ctx context.Context) error
}

type digestSchedulerService struct {
	subscriptions repository.SubscriptionRepository
	digests       repository.DigestRepository
}

func NewDigestSchedulerService(
	subscriptions repository.SubscriptionRepository,
	digests repository.DigestRepository,
) DigestSchedulerService {
	return &digestSchedulerService{
		subscriptions: subscriptions,
		digests:       digests,
	}
}

// ScheduleAll computes a due date for every subscription without a pending
// digest and inserts one. The due date is evaluated on the subscriber's wall
// clock and stored in UTC. A duplicate insert means another pass got there
// first and counts as success.
func (s *digestSchedulerService) ScheduleAll(ctx context.Context) error {
	subs, err := s.subscriptions.ListWithoutPendingDigest(ctx)
	if err != nil {
		return fmt.Errorf("list subscriptions without pending digest: %w", err)
	}

	now := time.Now().UTC()
	var errs []error
	for _, sub := range subs {
		due := s.dueFor(sub, now)
		_, err := s.digests.Insert(ctx, model.Digest{
			SubscriptionID: sub.ID,
			Due:            due,
		})
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			logger.Error("digest scheduling failed", "module", "digest", "action", "schedule", "resource", "subscription", "result", "failed", "subscription_id", sub.ID, "error", err)
			errs = append(errs, fmt.Errorf("subscription %d: %w", sub.ID, err))
			continue
		}
		logger.Debug("digest scheduled", "module", "digest", "action", "schedule", "resource", "subscription", "result", "ok", "subscription_id", sub.ID, "due", due.Format(time.RFC3339))
	}

	return errors.Join(errs...)
}

func (s *digestSchedulerService) dueFor(sub model.Subscription, now time.Time) time.Time {
	loc, err := time.LoadLocation(sub.Timezone)
	if err != nil {
		logger.Warn("unknown subscriber timezone, falling back to UTC", "module", "digest", "action", "schedule", "resource", "subscription", "result", "fallback", "subscription_id", sub.ID, "timezone", sub.Timezone)
		loc = time.UTC
	}
	return NextDue(now.In(loc), sub.Frequency, sub.Day, sub.TimeOfDay).UTC()
}
