package db

import (
	"database/sql"
	"fmt"
)

// Base schema - uses Snowflake IDs (no AUTOINCREMENT)
const baseSchema = `
CREATE TABLE IF NOT EXISTS channels (
  id INTEGER PRIMARY KEY,
  type TEXT NOT NULL,
  ext_id TEXT NOT NULL,
  title TEXT NOT NULL,
  link TEXT NOT NULL DEFAULT '',
  last_fetched TEXT,
  last_cleaned TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  UNIQUE (type, ext_id)
);

CREATE TABLE IF NOT EXISTS updates (
  id INTEGER PRIMARY KEY,
  channel_id INTEGER NOT NULL,
  ext_id TEXT,
  title TEXT NOT NULL,
  url TEXT NOT NULL,
  dedup_key TEXT NOT NULL,
  published TEXT NOT NULL,
  inserted TEXT NOT NULL,
  FOREIGN KEY (channel_id) REFERENCES channels(id) ON DELETE CASCADE
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_updates_channel_dedup ON updates(channel_id, dedup_key);
CREATE INDEX IF NOT EXISTS idx_updates_channel_inserted ON updates(channel_id, inserted);

CREATE TABLE IF NOT EXISTS lists (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  creator TEXT NOT NULL,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS list_channels (
  list_id INTEGER NOT NULL,
  channel_id INTEGER NOT NULL,
  PRIMARY KEY (list_id, channel_id),
  FOREIGN KEY (list_id) REFERENCES lists(id) ON DELETE CASCADE,
  FOREIGN KEY (channel_id) REFERENCES channels(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS subscriptions (
  id INTEGER PRIMARY KEY,
  email TEXT NOT NULL,
  user_id INTEGER,
  activation_token TEXT,
  active INTEGER NOT NULL DEFAULT 0,
  channel_id INTEGER,
  list_id INTEGER,
  frequency TEXT NOT NULL,
  day TEXT,
  time_of_day TEXT NOT NULL,
  timezone TEXT NOT NULL,
  created_at TEXT NOT NULL,
  CHECK ((channel_id IS NULL) <> (list_id IS NULL)),
  CHECK (frequency <> 'weekly' OR day IS NOT NULL)
);

CREATE INDEX IF NOT EXISTS idx_subscriptions_channel_id ON subscriptions(channel_id);
CREATE INDEX IF NOT EXISTS idx_subscriptions_list_id ON subscriptions(list_id);

CREATE TABLE IF NOT EXISTS digests (
  id INTEGER PRIMARY KEY,
  subscription_id INTEGER NOT NULL,
  due TEXT NOT NULL,
  sent TEXT,
  FOREIGN KEY (subscription_id) REFERENCES subscriptions(id) ON DELETE CASCADE
);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(baseSchema); err != nil {
		return fmt.Errorf("migrate base schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func runMigrations(db *sql.DB) error {
	// Migration 1: at most one unsent digest per subscription. The partial
	// unique index turns a concurrent scheduling race into a constraint
	// violation, which the scheduler treats as "already pending".
	if _, err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_digests_pending ON digests(subscription_id) WHERE sent IS NULL`); err != nil {
		return fmt.Errorf("create idx_digests_pending: %w", err)
	}

	// Migration 2: index for the due-digest scan
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_digests_due ON digests(due, sent)`); err != nil {
		return fmt.Errorf("create idx_digests_due: %w", err)
	}

	// Migration 3: add error_message column to channels for tracking fetch errors
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info('channels') WHERE name = 'error_message'
	`).Scan(&count)
	if err != nil {
		return fmt.Errorf("check error_message column: %w", err)
	}

	if count == 0 {
		if _, err := db.Exec(`ALTER TABLE channels ADD COLUMN error_message TEXT`); err != nil {
			return fmt.Errorf("add error_message column: %w", err)
		}
	}

	return nil
}
