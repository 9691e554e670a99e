package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"briefbox/backend/internal/model"
	"briefbox/backend/internal/snowflake"
)

type ChannelRepository interface {
	Create(ctx context.Context, channel model.Channel) (model.Channel, error)
	GetByID(ctx context.Context, id int64) (model.Channel, error)
	FindByTypeExtID(ctx context.Context, channelType model.ChannelType, extID string) (*model.Channel, error)
	ListDueForFetch(ctx context.Context, now time.Time, interval time.Duration) ([]model.Channel, error)
	ListDueForClean(ctx context.Context, now time.Time, interval time.Duration) ([]model.Channel, error)
	UpdateLastFetched(ctx context.Context, id int64, when time.Time) error
	UpdateLastCleaned(ctx context.Context, id int64, when time.Time) error
	UpdateErrorMessage(ctx context.Context, id int64, errorMessage *string) error
}

type channelRepository struct {
	db dbtx
}

func NewChannelRepository(db dbtx) ChannelRepository {
	return &channelRepository{db: db}
}

const channelColumns = `id, type, ext_id, title, link, last_fetched, last_cleaned, error_message, created_at, updated_at`

func (r *channelRepository) Create(ctx context.Context, channel model.Channel) (model.Channel, error) {
	channel.ID = snowflake.NextID()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO channels (id, type, ext_id, title, link, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		channel.ID,
		string(channel.Type),
		channel.ExtID,
		channel.Title,
		channel.Link,
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Channel{}, ErrDuplicate
		}
		return model.Channel{}, fmt.Errorf("create channel: %w", err)
	}
	channel.CreatedAt = now
	channel.UpdatedAt = now
	return channel, nil
}

func (r *channelRepository) GetByID(ctx context.Context, id int64) (model.Channel, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+channelColumns+` FROM channels WHERE id = ?`, id)
	return scanChannel(row)
}

func (r *channelRepository) FindByTypeExtID(ctx context.Context, channelType model.ChannelType, extID string) (*model.Channel, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+channelColumns+` FROM channels WHERE type = ? AND ext_id = ?`, string(channelType), extID)
	channel, err := scanChannel(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find channel: %w", err)
	}
	return &channel, nil
}

func (r *channelRepository) ListDueForFetch(ctx context.Context, now time.Time, interval time.Duration) ([]model.Channel, error) {
	cutoff := formatTime(now.Add(-interval))
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+channelColumns+` FROM channels WHERE last_fetched IS NULL OR last_fetched < ? ORDER BY id`,
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("list channels due for fetch: %w", err)
	}
	return collectChannels(rows)
}

func (r *channelRepository) ListDueForClean(ctx context.Context, now time.Time, interval time.Duration) ([]model.Channel, error) {
	cutoff := formatTime(now.Add(-interval))
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+channelColumns+` FROM channels WHERE last_cleaned IS NULL OR last_cleaned < ? ORDER BY id`,
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("list channels due for clean: %w", err)
	}
	return collectChannels(rows)
}

func (r *channelRepository) UpdateLastFetched(ctx context.Context, id int64, when time.Time) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE channels SET last_fetched = ?, updated_at = ? WHERE id = ?`,
		formatTime(when),
		formatTime(time.Now()),
		id,
	)
	return err
}

func (r *channelRepository) UpdateLastCleaned(ctx context.Context, id int64, when time.Time) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE channels SET last_cleaned = ?, updated_at = ? WHERE id = ?`,
		formatTime(when),
		formatTime(time.Now()),
		id,
	)
	return err
}

func (r *channelRepository) UpdateErrorMessage(ctx context.Context, id int64, errorMessage *string) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE channels SET error_message = ?, updated_at = ? WHERE id = ?`,
		nullableString(errorMessage),
		formatTime(time.Now()),
		id,
	)
	return err
}

func collectChannels(rows *sql.Rows) ([]model.Channel, error) {
	defer rows.Close()

	var channels []model.Channel
	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, channel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channels: %w", err)
	}

	return channels, nil
}

func scanChannel(scanner interface {
	Scan(dest ...interface{}) error
}) (model.Channel, error) {
	var channel model.Channel
	var channelType string
	var lastFetched sql.NullString
	var lastCleaned sql.NullString
	var errorMessage sql.NullString
	var createdAt string
	var updatedAt string
	if err := scanner.Scan(
		&channel.ID,
		&channelType,
		&channel.ExtID,
		&channel.Title,
		&channel.Link,
		&lastFetched,
		&lastCleaned,
		&errorMessage,
		&createdAt,
		&updatedAt,
	); err != nil {
		return model.Channel{}, err
	}
	channel.Type = model.ChannelType(channelType)
	if lastFetched.Valid {
		channel.LastFetched = parseTimePtr(lastFetched.String)
	}
	if lastCleaned.Valid {
		channel.LastCleaned = parseTimePtr(lastCleaned.String)
	}
	if errorMessage.Valid {
		channel.ErrorMessage = &errorMessage.String
	}
	var err error
	channel.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.Channel{}, fmt.Errorf("parse channel created_at: %w", err)
	}
	channel.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return model.Channel{}, fmt.Errorf("parse channel updated_at: %w", err)
	}
	return channel, nil
}
