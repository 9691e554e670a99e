package testutil

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"briefbox/backend/internal/db"
	"briefbox/backend/internal/model"
	"briefbox/backend/internal/snowflake"

	"github.com/stretchr/testify/require"
)

var snowflakeOnce sync.Once

// NewTestDB opens a fresh in-memory database with the full schema applied.
// The connection is closed on test cleanup.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	snowflakeOnce.Do(func() {
		require.NoError(t, snowflake.Init(1))
	})

	conn, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(ON)")
	require.NoError(t, err)
	// In-memory sqlite is per-connection; a second pooled connection would see
	// an empty database.
	conn.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(conn))
	t.Cleanup(func() { conn.Close() })
	return conn
}

func SeedChannel(t *testing.T, conn *sql.DB, channel model.Channel) int64 {
	t.Helper()

	id := snowflake.NextID()
	if channel.Type == "" {
		channel.Type = model.ChannelRSS
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := conn.ExecContext(
		context.Background(),
		`INSERT INTO channels (id, type, ext_id, title, link, last_fetched, last_cleaned, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		string(channel.Type),
		channel.ExtID,
		channel.Title,
		channel.Link,
		timePtrText(channel.LastFetched),
		timePtrText(channel.LastCleaned),
		now,
		now,
	)
	require.NoError(t, err)
	return id
}

func SeedUpdate(t *testing.T, conn *sql.DB, update model.Update) int64 {
	t.Helper()

	id := snowflake.NextID()
	if update.Inserted.IsZero() {
		update.Inserted = time.Now().UTC()
	}
	if update.Published.IsZero() {
		update.Published = update.Inserted
	}
	dedupKey := update.URL
	if update.ExtID != nil && *update.ExtID != "" {
		dedupKey = *update.ExtID
	}
	var extID interface{}
	if update.ExtID != nil {
		extID = *update.ExtID
	}
	_, err := conn.ExecContext(
		context.Background(),
		`INSERT INTO updates (id, channel_id, ext_id, title, url, dedup_key, published, inserted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		update.ChannelID,
		extID,
		update.Title,
		update.URL,
		dedupKey,
		update.Published.UTC().Format(time.RFC3339),
		update.Inserted.UTC().Format(time.RFC3339),
	)
	require.NoError(t, err)
	return id
}

func SeedList(t *testing.T, conn *sql.DB, name string, channelIDs ...int64) int64 {
	t.Helper()

	id := snowflake.NextID()
	_, err := conn.ExecContext(
		context.Background(),
		`INSERT INTO lists (id, name, creator, created_at) VALUES (?, ?, ?, ?)`,
		id,
		name,
		"tester",
		time.Now().UTC().Format(time.RFC3339),
	)
	require.NoError(t, err)
	for _, channelID := range channelIDs {
		_, err := conn.ExecContext(
			context.Background(),
			`INSERT INTO list_channels (list_id, channel_id) VALUES (?, ?)`,
			id,
			channelID,
		)
		require.NoError(t, err)
	}
	return id
}

func SeedSubscription(t *testing.T, conn *sql.DB, sub model.Subscription) int64 {
	t.Helper()

	id := snowflake.NextID()
	if sub.Frequency == "" {
		sub.Frequency = model.FrequencyDaily
	}
	if sub.Timezone == "" {
		sub.Timezone = "UTC"
	}
	var day interface{}
	if sub.Day != nil {
		day = weekdayText(*sub.Day)
	}
	var channelID, listID interface{}
	if sub.ChannelID != nil {
		channelID = *sub.ChannelID
	}
	if sub.ListID != nil {
		listID = *sub.ListID
	}
	active := 1
	_, err := conn.ExecContext(
		context.Background(),
		`INSERT INTO subscriptions (id, email, active, channel_id, list_id, frequency, day, time_of_day, timezone, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		sub.Email,
		active,
		channelID,
		listID,
		string(sub.Frequency),
		day,
		sub.TimeOfDay.String(),
		sub.Timezone,
		time.Now().UTC().Format(time.RFC3339),
	)
	require.NoError(t, err)
	return id
}

func SeedDigest(t *testing.T, conn *sql.DB, digest model.Digest) int64 {
	t.Helper()

	id := snowflake.NextID()
	_, err := conn.ExecContext(
		context.Background(),
		`INSERT INTO digests (id, subscription_id, due, sent) VALUES (?, ?, ?, ?)`,
		id,
		digest.SubscriptionID,
		digest.Due.UTC().Format(time.RFC3339),
		timePtrText(digest.Sent),
	)
	require.NoError(t, err)
	return id
}

func timePtrText(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func weekdayText(d time.Weekday) string {
	names := []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
	return names[int(d)]
}
