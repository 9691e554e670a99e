package repository_test

import (
	"context"
	"testing"

	"briefbox/backend/internal/model"
	"briefbox/backend/internal/repository"
	"briefbox/backend/internal/repository/testutil"

	"github.com/stretchr/testify/require"
)

func TestListRepository_CreateAndMembership(t *testing.T) {
	conn := testutil.NewTestDB(t)
	repo := repository.NewListRepository(conn)
	ctx := context.Background()

	list, err := repo.Create(ctx, model.List{Name: "Systems Languages", Creator: "tester"})
	require.NoError(t, err)
	require.NotZero(t, list.ID)

	got, err := repo.GetByID(ctx, list.ID)
	require.NoError(t, err)
	require.Equal(t, "Systems Languages", got.Name)
	require.Equal(t, "tester", got.Creator)

	goID := testutil.SeedChannel(t, conn, model.Channel{ExtID: "https://go.example.com/feed", Title: "Go Weekly"})
	rustID := testutil.SeedChannel(t, conn, model.Channel{ExtID: "https://rust.example.com/feed", Title: "Rust Updates"})

	require.NoError(t, repo.AddChannel(ctx, list.ID, goID))
	require.NoError(t, repo.AddChannel(ctx, list.ID, rustID))

	members, err := repo.ListChannels(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
}

func TestListRepository_AddChannelTwiceIsDuplicate(t *testing.T) {
	conn := testutil.NewTestDB(t)
	repo := repository.NewListRepository(conn)
	ctx := context.Background()

	list, err := repo.Create(ctx, model.List{Name: "Reading", Creator: "tester"})
	require.NoError(t, err)
	channelID := testutil.SeedChannel(t, conn, model.Channel{ExtID: "https://example.com/feed", Title: "Example"})

	require.NoError(t, repo.AddChannel(ctx, list.ID, channelID))
	require.ErrorIs(t, repo.AddChannel(ctx, list.ID, channelID), repository.ErrDuplicate)
}

func TestListRepository_ListChannelsEmptyList(t *testing.T) {
	conn := testutil.NewTestDB(t)
	repo := repository.NewListRepository(conn)
	ctx := context.Background()

	list, err := repo.Create(ctx, model.List{Name: "Empty", Creator: "tester"})
	require.NoError(t, err)

	members, err := repo.ListChannels(ctx, list.ID)
	require.NoError(t, err)
	require.Empty(t, members)
}
