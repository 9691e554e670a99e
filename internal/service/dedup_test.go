package service_test

import (
	"testing"
	"time"

	"briefbox/backend/internal/channel"
	"briefbox/backend/internal/model"
	"briefbox/backend/internal/service"

	"github.com/stretchr/testify/require"
)

func TestSelectNew_FirstFetch_KeepsRecentWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	fetched := []channel.RawUpdate{
		{URL: "https://example.com/now", Published: now},
		{URL: "https://example.com/old", Published: now.Add(-9 * 24 * time.Hour)},
	}

	selected := service.SelectNew(fetched, nil, now)
	require.Len(t, selected, 1)
	require.Equal(t, "https://example.com/now", selected[0].URL)
}

func TestSelectNew_FirstFetch_WindowBoundaryInclusive(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	fetched := []channel.RawUpdate{
		{URL: "https://example.com/edge", Published: now.Add(-7 * 24 * time.Hour)},
		{URL: "https://example.com/past-edge", Published: now.Add(-7*24*time.Hour - time.Second)},
	}

	selected := service.SelectNew(fetched, nil, now)
	require.Len(t, selected, 1)
	require.Equal(t, "https://example.com/edge", selected[0].URL)
}

func TestSelectNew_FirstFetch_KeepsFutureDates(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// provider clock skew: future publish dates are tolerated
	fetched := []channel.RawUpdate{
		{URL: "https://example.com/future", Published: now.Add(2 * time.Hour)},
	}

	selected := service.SelectNew(fetched, nil, now)
	require.Len(t, selected, 1)
}

func TestSelectNew_AgainstLastKnown_StrictlyAfterInserted(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	inserted := now.Add(-time.Hour)
	lastKnown := &model.Update{
		Published: now.Add(-3 * time.Hour), // back-dated by the provider
		Inserted:  inserted,
	}

	fetched := []channel.RawUpdate{
		{URL: "https://example.com/equal", Published: inserted},
		{URL: "https://example.com/after", Published: inserted.Add(time.Second)},
		{URL: "https://example.com/before", Published: inserted.Add(-time.Second)},
	}

	selected := service.SelectNew(fetched, lastKnown, now)
	require.Len(t, selected, 1)
	// equality is excluded: only strictly-after survives
	require.Equal(t, "https://example.com/after", selected[0].URL)
}

func TestSelectNew_ComparesAgainstInsertedNotPublished(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	lastKnown := &model.Update{
		Published: now.Add(-24 * time.Hour),
		Inserted:  now.Add(-time.Hour),
	}

	// published after the last known item's publish date but before its
	// ingestion: already seen
	fetched := []channel.RawUpdate{
		{URL: "https://example.com/backdated", Published: now.Add(-2 * time.Hour)},
	}

	selected := service.SelectNew(fetched, lastKnown, now)
	require.Empty(t, selected)
}

func TestSelectNew_EmptyFetch(t *testing.T) {
	now := time.Now().UTC()
	require.Empty(t, service.SelectNew(nil, nil, now))
	require.Empty(t, service.SelectNew(nil, &model.Update{Inserted: now}, now))
}
