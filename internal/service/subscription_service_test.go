package service_test

import (
	"context"
	"testing"
	"time"

	"briefbox/backend/internal/channel"
	channelmock "briefbox/backend/internal/channel/mock"
	"briefbox/backend/internal/model"
	"briefbox/backend/internal/repository"
	"briefbox/backend/internal/repository/testutil"
	"briefbox/backend/internal/service"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type subscriptionFixture struct {
	channels      repository.ChannelRepository
	lists         repository.ListRepository
	subscriptions repository.SubscriptionRepository
	adapter       *channelmock.MockAdapter
	service       service.SubscriptionService
}

func newSubscriptionFixture(t *testing.T, ctrl *gomock.Controller) *subscriptionFixture {
	t.Helper()

	conn := testutil.NewTestDB(t)
	f := &subscriptionFixture{
		channels:      repository.NewChannelRepository(conn),
		lists:         repository.NewListRepository(conn),
		subscriptions: repository.NewSubscriptionRepository(conn),
		adapter:       channelmock.NewMockAdapter(ctrl),
	}
	f.adapter.EXPECT().Type().Return(model.ChannelRSS).AnyTimes()
	f.service = service.NewSubscriptionService(f.channels, f.lists, f.subscriptions, channel.NewRegistry(f.adapter))
	return f
}

func TestAddChannel_CreatesAfterProviderConfirmation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSubscriptionFixture(t, ctrl)
	ctx := context.Background()

	f.adapter.EXPECT().ValidateName("https://example.com/feed").Return("https://example.com/feed", nil)
	f.adapter.EXPECT().Search(gomock.Any(), "https://example.com/feed").Return([]channel.Info{{
		Type:  model.ChannelRSS,
		ExtID: "https://example.com/feed",
		Title: "Example Feed",
		Link:  "https://example.com",
	}}, nil)

	created, err := f.service.AddChannel(ctx, model.ChannelRSS, "https://example.com/feed")
	require.NoError(t, err)
	require.Equal(t, "Example Feed", created.Title)
	require.NotZero(t, created.ID)

	stored, err := f.channels.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/feed", stored.ExtID)
}

func TestAddChannel_ReaddingReturnsExistingWithoutProviderCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSubscriptionFixture(t, ctrl)
	ctx := context.Background()

	f.adapter.EXPECT().ValidateName(gomock.Any()).Return("https://example.com/feed", nil).Times(2)
	f.adapter.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]channel.Info{{
		Type:  model.ChannelRSS,
		ExtID: "https://example.com/feed",
		Title: "Example Feed",
	}}, nil).Times(1)

	first, err := f.service.AddChannel(ctx, model.ChannelRSS, "https://example.com/feed")
	require.NoError(t, err)
	second, err := f.service.AddChannel(ctx, model.ChannelRSS, "https://example.com/feed")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestAddChannel_InvalidNameIsErrInvalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSubscriptionFixture(t, ctrl)

	f.adapter.EXPECT().ValidateName("not a url").Return("", channel.ErrInvalidName)

	_, err := f.service.AddChannel(context.Background(), model.ChannelRSS, "not a url")
	require.ErrorIs(t, err, service.ErrInvalid)
}

func TestAddChannel_ProviderNotFoundIsErrNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSubscriptionFixture(t, ctrl)

	f.adapter.EXPECT().ValidateName(gomock.Any()).Return("https://example.com/feed", nil)
	f.adapter.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return(nil, &channel.SearchError{Kind: channel.SearchNotFound})

	_, err := f.service.AddChannel(context.Background(), model.ChannelRSS, "https://example.com/feed")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestAddChannel_UnknownTypeIsErrInvalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSubscriptionFixture(t, ctrl)

	_, err := f.service.AddChannel(context.Background(), model.ChannelType("carrier_pigeon"), "coop/loft")
	require.ErrorIs(t, err, service.ErrInvalid)
}

func TestAddToList_DuplicateMembershipIsANoOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSubscriptionFixture(t, ctrl)
	ctx := context.Background()

	list, err := f.service.CreateList(ctx, "Systems Languages", "tester")
	require.NoError(t, err)
	created, err := f.channels.Create(ctx, model.Channel{Type: model.ChannelRSS, ExtID: "https://example.com/feed", Title: "Example"})
	require.NoError(t, err)

	require.NoError(t, f.service.AddToList(ctx, list.ID, created.ID))
	require.NoError(t, f.service.AddToList(ctx, list.ID, created.ID))

	members, err := f.lists.ListChannels(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
}

func TestAddToList_MissingListIsErrNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSubscriptionFixture(t, ctrl)

	err := f.service.AddToList(context.Background(), 424242, 1)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestSubscribe_RequiresExactlyOneTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSubscriptionFixture(t, ctrl)
	ctx := context.Background()

	base := service.SubscribeParams{
		Email:     "reader@example.com",
		Frequency: model.FrequencyDaily,
		TimeOfDay: model.TimeOfDay{Hour: 9},
		Timezone:  "UTC",
	}

	_, err := f.service.Subscribe(ctx, base)
	require.ErrorIs(t, err, service.ErrInvalid)

	both := base
	both.ChannelID = int64Ptr(1)
	both.ListID = int64Ptr(2)
	_, err = f.service.Subscribe(ctx, both)
	require.ErrorIs(t, err, service.ErrInvalid)
}

func TestSubscribe_WeeklyNeedsADay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSubscriptionFixture(t, ctrl)

	_, err := f.service.Subscribe(context.Background(), service.SubscribeParams{
		Email:     "reader@example.com",
		ChannelID: int64Ptr(1),
		Frequency: model.FrequencyWeekly,
		TimeOfDay: model.TimeOfDay{Hour: 9},
		Timezone:  "UTC",
	})
	require.ErrorIs(t, err, service.ErrInvalid)
}

func TestSubscribe_RejectsUnknownTimezone(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSubscriptionFixture(t, ctrl)

	_, err := f.service.Subscribe(context.Background(), service.SubscribeParams{
		Email:     "reader@example.com",
		ChannelID: int64Ptr(1),
		Frequency: model.FrequencyDaily,
		TimeOfDay: model.TimeOfDay{Hour: 9},
		Timezone:  "Atlantis/Capital",
	})
	require.ErrorIs(t, err, service.ErrInvalid)
}

func TestSubscribe_MissingTargetIsErrNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSubscriptionFixture(t, ctrl)

	_, err := f.service.Subscribe(context.Background(), service.SubscribeParams{
		Email:     "reader@example.com",
		ChannelID: int64Ptr(424242),
		Frequency: model.FrequencyDaily,
		TimeOfDay: model.TimeOfDay{Hour: 9},
		Timezone:  "UTC",
	})
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestSubscribe_AnonymousStartsInactiveWithToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSubscriptionFixture(t, ctrl)
	ctx := context.Background()

	created, err := f.channels.Create(ctx, model.Channel{Type: model.ChannelRSS, ExtID: "https://example.com/feed", Title: "Example"})
	require.NoError(t, err)

	sub, err := f.service.Subscribe(ctx, service.SubscribeParams{
		Email:     "reader@example.com",
		ChannelID: &created.ID,
		Frequency: model.FrequencyDaily,
		TimeOfDay: model.TimeOfDay{Hour: 9},
		Timezone:  "Europe/Berlin",
	})
	require.NoError(t, err)
	require.False(t, sub.Active)
	require.NotNil(t, sub.ActivationToken)
	require.NotEmpty(t, *sub.ActivationToken)
}

func TestSubscribe_UserOwnedStartsActive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSubscriptionFixture(t, ctrl)
	ctx := context.Background()

	created, err := f.channels.Create(ctx, model.Channel{Type: model.ChannelRSS, ExtID: "https://example.com/feed", Title: "Example"})
	require.NoError(t, err)

	monday := time.Monday
	sub, err := f.service.Subscribe(ctx, service.SubscribeParams{
		Email:     "reader@example.com",
		UserID:    int64Ptr(7),
		ChannelID: &created.ID,
		Frequency: model.FrequencyWeekly,
		Day:       &monday,
		TimeOfDay: model.TimeOfDay{Hour: 8, Minute: 30},
		Timezone:  "UTC",
	})
	require.NoError(t, err)
	require.True(t, sub.Active)
	require.Nil(t, sub.ActivationToken)
}

func TestActivate_FlipsSubscriptionActive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSubscriptionFixture(t, ctrl)
	ctx := context.Background()

	created, err := f.channels.Create(ctx, model.Channel{Type: model.ChannelRSS, ExtID: "https://example.com/feed", Title: "Example"})
	require.NoError(t, err)
	sub, err := f.service.Subscribe(ctx, service.SubscribeParams{
		Email:     "reader@example.com",
		ChannelID: &created.ID,
		Frequency: model.FrequencyDaily,
		TimeOfDay: model.TimeOfDay{Hour: 9},
		Timezone:  "UTC",
	})
	require.NoError(t, err)
	require.False(t, sub.Active)

	require.NoError(t, f.service.Activate(ctx, *sub.ActivationToken))

	activated, err := f.subscriptions.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	require.True(t, activated.Active)
}

func TestActivate_UnknownTokenIsErrNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSubscriptionFixture(t, ctrl)

	err := f.service.Activate(context.Background(), "no-such-token")
	require.ErrorIs(t, err, service.ErrNotFound)
}
