package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"briefbox/backend/internal/channel"
	"briefbox/backend/internal/logger"
	"briefbox/backend/internal/model"
	"briefbox/backend/internal/repository"
)

// CleanerService prunes old update history and reconciles externally deleted
// items.
type CleanerService interface {
	CleanDue(ctx context.Context) error
}

type cleanerService struct {
	channels repository.ChannelRepository
	updates  repository.UpdateRepository
	registry *channel.Registry

	interval  time.Duration
	retention time.Duration

	// localBatch caps channels per local ext-id query, providerBatch caps ids
	// per provider round-trip. Both bound I/O volume, not throughput.
	localBatch    int
	providerBatch int
}

func NewCleanerService(
	channels repository.ChannelRepository,
	updates repository.UpdateRepository,
	registry *channel.Registry,
	interval time.Duration,
	retention time.Duration,
	localBatch int,
	providerBatch int,
) CleanerService {
	if localBatch < 1 {
		localBatch = 30
	}
	if providerBatch < 1 {
		providerBatch = 100
	}
	return &cleanerService{
		channels:      channels,
		updates:       updates,
		registry:      registry,
		interval:      interval,
		retention:     retention,
		localBatch:    localBatch,
		providerBatch: providerBatch,
	}
}

// CleanDue processes every channel whose last_cleaned is unset or older than
// the clean interval: prune updates past the retention window, then stamp
// last_cleaned. Twitter channels additionally go through deletion
// reconciliation; a failing provider batch is logged and never blocks the
// stamping of unrelated channels.
func (s *cleanerService) CleanDue(ctx context.Context) error {
	now := time.Now().UTC()
	due, err := s.channels.ListDueForClean(ctx, now, s.interval)
	if err != nil {
		return fmt.Errorf("list channels due for clean: %w", err)
	}

	var errs []error
	var twitterDue []model.Channel

	for _, ch := range due {
		if ch.Type == model.ChannelTwitter {
			twitterDue = append(twitterDue, ch)
		}
		deleted, err := s.updates.DeleteOlderThan(ctx, ch.ID, now.Add(-s.retention))
		if err != nil {
			logger.Error("retention prune failed", "module", "cleaner", "action", "prune", "resource", "channel", "result", "failed", "channel_id", ch.ID, "error", err)
			errs = append(errs, fmt.Errorf("channel %d: prune: %w", ch.ID, err))
			continue
		}
		// stamped regardless of whether anything was pruned
		if err := s.channels.UpdateLastCleaned(ctx, ch.ID, now); err != nil {
			errs = append(errs, fmt.Errorf("channel %d: update last_cleaned: %w", ch.ID, err))
			continue
		}
		if deleted > 0 {
			logger.Info("updates pruned", "module", "cleaner", "action", "prune", "resource", "channel", "result", "ok", "channel_id", ch.ID, "deleted", deleted)
		}
	}

	if err := s.reconcileDeleted(ctx, twitterDue); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// reconcileDeleted removes updates whose source items the provider no longer
// serves. Channels are gathered from the local store in localBatch groups,
// then their external ids fan out to the provider in providerBatch chunks.
func (s *cleanerService) reconcileDeleted(ctx context.Context, channels []model.Channel) error {
	if len(channels) == 0 {
		return nil
	}
	checker, ok := s.registry.DeletionChecker(model.ChannelTwitter)
	if !ok {
		return nil
	}

	var errs []error
	for start := 0; start < len(channels); start += s.localBatch {
		end := min(start+s.localBatch, len(channels))

		channelIDs := make([]int64, 0, end-start)
		for _, ch := range channels[start:end] {
			channelIDs = append(channelIDs, ch.ID)
		}

		extIDs, err := s.updates.FindExtIDs(ctx, channelIDs)
		if err != nil {
			errs = append(errs, fmt.Errorf("find ext ids: %w", err))
			continue
		}
		if len(extIDs) == 0 {
			continue
		}

		byExtID := make(map[string][]int64, len(extIDs))
		ids := make([]string, 0, len(extIDs))
		for updateID, extID := range extIDs {
			if len(byExtID[extID]) == 0 {
				ids = append(ids, extID)
			}
			byExtID[extID] = append(byExtID[extID], updateID)
		}

		for chunkStart := 0; chunkStart < len(ids); chunkStart += s.providerBatch {
			chunkEnd := min(chunkStart+s.providerBatch, len(ids))
			chunk := ids[chunkStart:chunkEnd]

			deleted, err := checker.FindDeleted(ctx, chunk)
			if err != nil {
				logger.Error("deletion lookup failed", "module", "cleaner", "action", "reconcile", "resource", "update", "result", "failed", "ids", len(chunk), "error", err)
				errs = append(errs, fmt.Errorf("find deleted: %w", err))
				continue
			}
			if len(deleted) == 0 {
				continue
			}

			var updateIDs []int64
			for _, extID := range deleted {
				updateIDs = append(updateIDs, byExtID[extID]...)
			}
			removed, err := s.updates.DeleteByIDs(ctx, updateIDs)
			if err != nil {
				errs = append(errs, fmt.Errorf("delete reconciled updates: %w", err))
				continue
			}
			logger.Info("deleted updates reconciled", "module", "cleaner", "action", "reconcile", "resource", "update", "result", "ok", "removed", removed)
		}
	}

	return errors.Join(errs...)
}
