package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"briefbox/backend/internal/config"
	"briefbox/backend/internal/email"
	"briefbox/backend/internal/logger"
	"briefbox/backend/internal/model"
	"briefbox/backend/internal/repository"
)

// subjectBudget is the soft length cap for digest subjects.
const subjectBudget = 50

// DigestSenderService assembles and dispatches every due, unsent digest.
type DigestSenderService interface {
	SendDue(ctx context.Context) error
}

type digestSenderService struct {
	digests       repository.DigestRepository
	subscriptions repository.SubscriptionRepository
	channels      repository.ChannelRepository
	lists         repository.ListRepository
	updates       repository.UpdateRepository
	sender        email.Sender
	environment   string
}

func NewDigestSenderService(
	digests repository.DigestRepository,
	subscriptions repository.SubscriptionRepository,
	channels repository.ChannelRepository,
	lists repository.ListRepository,
	updates repository.UpdateRepository,
	sender email.Sender,
	environment string,
) DigestSenderService {
	return &digestSenderService{
		digests:       digests,
		subscriptions: subscriptions,
		channels:      channels,
		lists:         lists,
		updates:       updates,
		sender:        sender,
		environment:   environment,
	}
}

// SendDue dispatches every digest with due <= now and no sent stamp. A send
// failure leaves sent null so the digest is retried on the next pass; it is
// never fatal to the run.
func (s *digestSenderService) SendDue(ctx context.Context) error {
	now := time.Now().UTC()
	due, err := s.digests.ListDue(ctx, now)
	if err != nil {
		return fmt.Errorf("list due digests: %w", err)
	}

	var errs []error
	for _, digest := range due {
		if err := s.sendDigest(ctx, digest, now); err != nil {
			logger.Error("digest send failed", "module", "digest", "action", "send", "resource", "digest", "result", "failed", "digest_id", digest.ID, "error", err)
			errs = append(errs, fmt.Errorf("digest %d: %w", digest.ID, err))
		}
	}

	return errors.Join(errs...)
}

func (s *digestSenderService) sendDigest(ctx context.Context, digest model.Digest, now time.Time) error {
	sub, err := s.subscriptions.GetByID(ctx, digest.SubscriptionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// subscription is gone, nothing to deliver to
			logger.Warn("digest subscription missing", "module", "digest", "action", "send", "resource", "digest", "result", "skipped", "digest_id", digest.ID)
			return nil
		}
		return fmt.Errorf("load subscription: %w", err)
	}

	// Lower time bound: the previous sent digest, if any.
	var since *time.Time
	previous, err := s.digests.FindPreviousSent(ctx, sub.ID)
	if err != nil {
		return fmt.Errorf("find previous sent digest: %w", err)
	}
	if previous != nil {
		since = previous.Sent
	}

	titles, groups, err := s.collect(ctx, sub, since)
	if err != nil {
		return err
	}

	if len(groups) == 0 {
		// Nothing new since the last digest. Marking it sent without
		// dispatching keeps the cycle moving: the scheduler computes a fresh
		// due date on its next pass.
		if err := s.digests.MarkSent(ctx, digest.ID, now); err != nil {
			return fmt.Errorf("mark empty digest sent: %w", err)
		}
		logger.Debug("empty digest skipped", "module", "digest", "action", "send", "resource", "digest", "result", "skipped", "digest_id", digest.ID)
		return nil
	}

	subject := SubjectPrefix(s.environment) + BuildSubject(titles)
	if err := s.sender.SendDigest(ctx, sub.Email, subject, groups); err != nil {
		// sent stays null; the next scheduling pass retries this digest
		return fmt.Errorf("dispatch: %w", err)
	}

	if err := s.digests.MarkSent(ctx, digest.ID, now); err != nil {
		return fmt.Errorf("mark digest sent: %w", err)
	}
	logger.Info("digest sent", "module", "digest", "action", "send", "resource", "digest", "result", "ok", "digest_id", digest.ID, "subscription_id", sub.ID, "groups", len(groups))
	return nil
}

// collect gathers the digest content and its subject source titles. A channel
// target yields one group per channel; a list target fans out over its member
// channels with everything grouped under the list's own heading, while the
// subject draws on the member channel titles.
func (s *digestSenderService) collect(ctx context.Context, sub model.Subscription, since *time.Time) ([]string, []email.Group, error) {
	switch {
	case sub.ChannelID != nil:
		ch, err := s.channels.GetByID(ctx, *sub.ChannelID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				logger.Warn("subscription channel missing", "module", "digest", "action", "send", "resource", "channel", "result", "skipped", "subscription_id", sub.ID, "channel_id", *sub.ChannelID)
				return nil, nil, nil
			}
			return nil, nil, fmt.Errorf("load channel: %w", err)
		}
		items, err := s.itemsSince(ctx, ch.ID, since)
		if err != nil {
			return nil, nil, err
		}
		if len(items) == 0 {
			return nil, nil, nil
		}
		return []string{ch.Title}, []email.Group{{Title: ch.Title, Items: items}}, nil

	case sub.ListID != nil:
		list, err := s.lists.GetByID(ctx, *sub.ListID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				logger.Warn("subscription list missing", "module", "digest", "action", "send", "resource", "list", "result", "skipped", "subscription_id", sub.ID, "list_id", *sub.ListID)
				return nil, nil, nil
			}
			return nil, nil, fmt.Errorf("load list: %w", err)
		}
		members, err := s.lists.ListChannels(ctx, list.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("load list channels: %w", err)
		}

		var titles []string
		var items []email.Item
		for _, ch := range members {
			chItems, err := s.itemsSince(ctx, ch.ID, since)
			if err != nil {
				return nil, nil, err
			}
			if len(chItems) == 0 {
				continue
			}
			titles = append(titles, ch.Title)
			items = append(items, chItems...)
		}
		if len(items) == 0 {
			return nil, nil, nil
		}
		return titles, []email.Group{{Title: list.Name, Items: items}}, nil
	}

	return nil, nil, fmt.Errorf("%w: subscription %d has no target", ErrInvalid, sub.ID)
}

func (s *digestSenderService) itemsSince(ctx context.Context, channelID int64, since *time.Time) ([]email.Item, error) {
	updates, err := s.updates.ListSince(ctx, channelID, since)
	if err != nil {
		return nil, fmt.Errorf("list updates: %w", err)
	}
	items := make([]email.Item, 0, len(updates))
	for _, u := range updates {
		items = append(items, email.Item{Title: u.Title, URL: u.URL})
	}
	return items, nil
}

// BuildSubject concatenates source titles into a digest subject under the
// soft 50-character budget: titles are appended while they fit, and " and
// more" marks a truncation. The first title is always included unabridged; a
// single-item subject is never truncated.
func BuildSubject(titles []string) string {
	if len(titles) == 0 {
		return "Digests"
	}

	subject := "Digests from " + titles[0]
	truncated := false
	for _, title := range titles[1:] {
		candidate := subject + ", " + title
		if len(candidate) > subjectBudget {
			truncated = true
			break
		}
		subject = candidate
	}
	if truncated {
		subject += " and more"
	}
	return subject
}

// SubjectPrefix marks non-production mail so test digests are recognizable.
func SubjectPrefix(environment string) string {
	switch environment {
	case config.EnvProduction:
		return ""
	case config.EnvStaging:
		return "[Stg] "
	default:
		return "[Dev] "
	}
}
