package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"briefbox/backend/internal/channel"
	"briefbox/backend/internal/logger"
	"briefbox/backend/internal/model"
	"briefbox/backend/internal/repository"
)

type SubscribeParams struct {
	Email     string
	UserID    *int64
	ChannelID *int64
	ListID    *int64
	Frequency model.Frequency
	Day       *time.Weekday
	TimeOfDay model.TimeOfDay
	Timezone  string
}

type SubscriptionService interface {
	AddChannel(ctx context.Context, channelType model.ChannelType, raw string) (model.Channel, error)
	CreateList(ctx context.Context, name, creator string) (model.List, error)
	AddToList(ctx context.Context, listID, channelID int64) error
	Subscribe(ctx context.Context, params SubscribeParams) (model.Subscription, error)
	Activate(ctx context.Context, token string) error
}

type subscriptionService struct {
	channels      repository.ChannelRepository
	lists         repository.ListRepository
	subscriptions repository.SubscriptionRepository
	registry      *channel.Registry
}

func NewSubscriptionService(
	channels repository.ChannelRepository,
	lists repository.ListRepository,
	subscriptions repository.SubscriptionRepository,
	registry *channel.Registry,
) SubscriptionService {
	return &subscriptionService{
		channels:      channels,
		lists:         lists,
		subscriptions: subscriptions,
		registry:      registry,
	}
}

// AddChannel validates raw input, confirms the source exists against the live
// provider, and creates the channel on first success. Re-adding an existing
// channel returns it unchanged.
func (s *subscriptionService) AddChannel(ctx context.Context, channelType model.ChannelType, raw string) (model.Channel, error) {
	adapter, ok := s.registry.Get(channelType)
	if !ok {
		return model.Channel{}, fmt.Errorf("%w: unknown channel type %q", ErrInvalid, channelType)
	}

	canonical, err := adapter.ValidateName(raw)
	if err != nil {
		return model.Channel{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if existing, err := s.channels.FindByTypeExtID(ctx, channelType, canonical); err != nil {
		return model.Channel{}, fmt.Errorf("check channel: %w", err)
	} else if existing != nil {
		return *existing, nil
	}

	infos, err := adapter.Search(ctx, canonical)
	if err != nil {
		var searchErr *channel.SearchError
		if errors.As(err, &searchErr) {
			switch searchErr.Kind {
			case channel.SearchInvalidInput:
				return model.Channel{}, fmt.Errorf("%w: %v", ErrInvalid, err)
			case channel.SearchNotFound:
				return model.Channel{}, fmt.Errorf("%w: %v", ErrNotFound, err)
			}
		}
		return model.Channel{}, fmt.Errorf("search channel: %w", err)
	}
	if len(infos) == 0 {
		return model.Channel{}, fmt.Errorf("%w: provider returned no match for %q", ErrNotFound, canonical)
	}

	info := infos[0]
	created, err := s.channels.Create(ctx, model.Channel{
		Type:  info.Type,
		ExtID: info.ExtID,
		Title: info.Title,
		Link:  info.Link,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			existing, findErr := s.channels.FindByTypeExtID(ctx, channelType, info.ExtID)
			if findErr == nil && existing != nil {
				return *existing, nil
			}
		}
		return model.Channel{}, fmt.Errorf("create channel: %w", err)
	}

	logger.Info("channel added", "module", "subscription", "action", "add", "resource", "channel", "result", "ok", "channel_id", created.ID, "type", string(created.Type), "ext_id", created.ExtID)
	return created, nil
}

func (s *subscriptionService) CreateList(ctx context.Context, name, creator string) (model.List, error) {
	if name == "" {
		return model.List{}, fmt.Errorf("%w: list name required", ErrInvalid)
	}
	return s.lists.Create(ctx, model.List{Name: name, Creator: creator})
}

func (s *subscriptionService) AddToList(ctx context.Context, listID, channelID int64) error {
	if _, err := s.lists.GetByID(ctx, listID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("check list: %w", err)
	}
	if _, err := s.channels.GetByID(ctx, channelID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("check channel: %w", err)
	}
	if err := s.lists.AddChannel(ctx, listID, channelID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// already a member
			return nil
		}
		return err
	}
	return nil
}

// Subscribe creates a subscription targeting exactly one of a channel or a
// list. Anonymous subscribers (no user) start inactive with an activation
// token; the activation email itself is the mailer's concern.
func (s *subscriptionService) Subscribe(ctx context.Context, params SubscribeParams) (model.Subscription, error) {
	if params.Email == "" {
		return model.Subscription{}, fmt.Errorf("%w: email required", ErrInvalid)
	}
	if (params.ChannelID == nil) == (params.ListID == nil) {
		return model.Subscription{}, fmt.Errorf("%w: exactly one of channel or list must be targeted", ErrInvalid)
	}
	if params.Frequency != model.FrequencyDaily && params.Frequency != model.FrequencyWeekly {
		return model.Subscription{}, fmt.Errorf("%w: unknown frequency %q", ErrInvalid, params.Frequency)
	}
	if params.Frequency == model.FrequencyWeekly && params.Day == nil {
		return model.Subscription{}, fmt.Errorf("%w: weekly subscriptions need a day", ErrInvalid)
	}
	if _, err := time.LoadLocation(params.Timezone); err != nil {
		return model.Subscription{}, fmt.Errorf("%w: unknown timezone %q", ErrInvalid, params.Timezone)
	}

	if params.ChannelID != nil {
		if _, err := s.channels.GetByID(ctx, *params.ChannelID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.Subscription{}, ErrNotFound
			}
			return model.Subscription{}, fmt.Errorf("check channel: %w", err)
		}
	}
	if params.ListID != nil {
		if _, err := s.lists.GetByID(ctx, *params.ListID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.Subscription{}, ErrNotFound
			}
			return model.Subscription{}, fmt.Errorf("check list: %w", err)
		}
	}

	sub := model.Subscription{
		Email:     params.Email,
		UserID:    params.UserID,
		ChannelID: params.ChannelID,
		ListID:    params.ListID,
		Frequency: params.Frequency,
		Day:       params.Day,
		TimeOfDay: params.TimeOfDay,
		Timezone:  params.Timezone,
		Active:    params.UserID != nil,
	}
	if params.UserID == nil {
		token := uuid.NewString()
		sub.ActivationToken = &token
	}

	return s.subscriptions.Create(ctx, sub)
}

func (s *subscriptionService) Activate(ctx context.Context, token string) error {
	sub, err := s.subscriptions.FindByActivationToken(ctx, token)
	if err != nil {
		return fmt.Errorf("find subscription: %w", err)
	}
	if sub == nil {
		return ErrNotFound
	}
	return s.subscriptions.Activate(ctx, sub.ID)
}
