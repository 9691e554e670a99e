package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"briefbox/backend/internal/model"
	"briefbox/backend/internal/snowflake"
)

type UpdateRepository interface {
	Insert(ctx context.Context, update model.Update) (model.Update, error)
	FindNewest(ctx context.Context, channelID int64) (*model.Update, error)
	ListSince(ctx context.Context, channelID int64, since *time.Time) ([]model.Update, error)
	DeleteOlderThan(ctx context.Context, channelID int64, cutoff time.Time) (int64, error)
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
	FindExtIDs(ctx context.Context, channelIDs []int64) (map[int64]string, error)
}

type updateRepository struct {
	db dbtx
}

func NewUpdateRepository(db dbtx) UpdateRepository {
	return &updateRepository{db: db}
}

const updateColumns = `id, channel_id, ext_id, title, url, published, inserted`

// Insert stores an update. The (channel_id, dedup_key) uniqueness constraint
// makes re-inserting an already seen item return ErrDuplicate.
func (r *updateRepository) Insert(ctx context.Context, update model.Update) (model.Update, error) {
	update.ID = snowflake.NextID()
	if update.Inserted.IsZero() {
		update.Inserted = time.Now().UTC()
	}

	dedupKey := update.URL
	if update.ExtID != nil && *update.ExtID != "" {
		dedupKey = *update.ExtID
	}

	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO updates (id, channel_id, ext_id, title, url, dedup_key, published, inserted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		update.ID,
		update.ChannelID,
		nullableString(update.ExtID),
		update.Title,
		update.URL,
		dedupKey,
		formatTime(update.Published),
		formatTime(update.Inserted),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Update{}, ErrDuplicate
		}
		return model.Update{}, fmt.Errorf("insert update: %w", err)
	}
	return update, nil
}

func (r *updateRepository) FindNewest(ctx context.Context, channelID int64) (*model.Update, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+updateColumns+` FROM updates WHERE channel_id = ? ORDER BY inserted DESC, id DESC LIMIT 1`,
		channelID,
	)
	update, err := scanUpdate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find newest update: %w", err)
	}
	return &update, nil
}

func (r *updateRepository) ListSince(ctx context.Context, channelID int64, since *time.Time) ([]model.Update, error) {
	query := `SELECT ` + updateColumns + ` FROM updates WHERE channel_id = ? ORDER BY inserted ASC, id ASC`
	args := []interface{}{channelID}
	if since != nil {
		query = `SELECT ` + updateColumns + ` FROM updates WHERE channel_id = ? AND inserted > ? ORDER BY inserted ASC, id ASC`
		args = append(args, formatTime(*since))
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list updates: %w", err)
	}
	defer rows.Close()

	var updates []model.Update
	for rows.Next() {
		update, err := scanUpdate(rows)
		if err != nil {
			return nil, err
		}
		updates = append(updates, update)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate updates: %w", err)
	}

	return updates, nil
}

func (r *updateRepository) DeleteOlderThan(ctx context.Context, channelID int64, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM updates WHERE channel_id = ? AND inserted < ?`,
		channelID,
		formatTime(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("delete old updates: %w", err)
	}
	return result.RowsAffected()
}

func (r *updateRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM updates WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("delete updates batch: %w", err)
	}
	return result.RowsAffected()
}

// FindExtIDs returns update id -> external id for all updates of the given
// channels that carry an external id. Callers batch channelIDs to bound the
// query size.
func (r *updateRepository) FindExtIDs(ctx context.Context, channelIDs []int64) (map[int64]string, error) {
	if len(channelIDs) == 0 {
		return map[int64]string{}, nil
	}
	placeholders := strings.Repeat("?,", len(channelIDs)-1) + "?"
	args := make([]interface{}, len(channelIDs))
	for i, id := range channelIDs {
		args[i] = id
	}
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, ext_id FROM updates WHERE channel_id IN (`+placeholders+`) AND ext_id IS NOT NULL`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("find update ext ids: %w", err)
	}
	defer rows.Close()

	extIDs := make(map[int64]string)
	for rows.Next() {
		var id int64
		var extID string
		if err := rows.Scan(&id, &extID); err != nil {
			return nil, err
		}
		extIDs[id] = extID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate update ext ids: %w", err)
	}

	return extIDs, nil
}

func scanUpdate(scanner interface {
	Scan(dest ...interface{}) error
}) (model.Update, error) {
	var update model.Update
	var extID sql.NullString
	var published string
	var inserted string
	if err := scanner.Scan(
		&update.ID,
		&update.ChannelID,
		&extID,
		&update.Title,
		&update.URL,
		&published,
		&inserted,
	); err != nil {
		return model.Update{}, err
	}
	if extID.Valid {
		update.ExtID = &extID.String
	}
	var err error
	update.Published, err = parseTime(published)
	if err != nil {
		return model.Update{}, fmt.Errorf("parse update published: %w", err)
	}
	update.Inserted, err = parseTime(inserted)
	if err != nil {
		return model.Update{}, fmt.Errorf("parse update inserted: %w", err)
	}
	return update, nil
}
