package repository

import (
	"context"
	"fmt"
	"time"

	"briefbox/backend/internal/model"
	"briefbox/backend/internal/snowflake"
)

type ListRepository interface {
	Create(ctx context.Context, list model.List) (model.List, error)
	GetByID(ctx context.Context, id int64) (model.List, error)
	AddChannel(ctx context.Context, listID, channelID int64) error
	ListChannels(ctx context.Context, listID int64) ([]model.Channel, error)
}

type listRepository struct {
	db dbtx
}

func NewListRepository(db dbtx) ListRepository {
	return &listRepository{db: db}
}

func (r *listRepository) Create(ctx context.Context, list model.List) (model.List, error) {
	list.ID = snowflake.NextID()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO lists (id, name, creator, created_at) VALUES (?, ?, ?, ?)`,
		list.ID,
		list.Name,
		list.Creator,
		formatTime(now),
	)
	if err != nil {
		return model.List{}, fmt.Errorf("create list: %w", err)
	}
	list.CreatedAt = now
	return list, nil
}

func (r *listRepository) GetByID(ctx context.Context, id int64) (model.List, error) {
	var list model.List
	var createdAt string
	err := r.db.QueryRowContext(ctx, `SELECT id, name, creator, created_at FROM lists WHERE id = ?`, id).
		Scan(&list.ID, &list.Name, &list.Creator, &createdAt)
	if err != nil {
		return model.List{}, err
	}
	list.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.List{}, fmt.Errorf("parse list created_at: %w", err)
	}
	return list, nil
}

func (r *listRepository) AddChannel(ctx context.Context, listID, channelID int64) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO list_channels (list_id, channel_id) VALUES (?, ?)`,
		listID,
		channelID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("add channel to list: %w", err)
	}
	return nil
}

func (r *listRepository) ListChannels(ctx context.Context, listID int64) ([]model.Channel, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT c.id, c.type, c.ext_id, c.title, c.link, c.last_fetched, c.last_cleaned, c.error_message, c.created_at, c.updated_at
		 FROM channels c
		 INNER JOIN list_channels lc ON lc.channel_id = c.id
		 WHERE lc.list_id = ?
		 ORDER BY c.title`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list channels of list: %w", err)
	}
	return collectChannels(rows)
}
