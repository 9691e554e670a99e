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

type DigestRepository interface {
	Insert(ctx context.Context, digest model.Digest) (model.Digest, error)
	ListDue(ctx context.Context, now time.Time) ([]model.Digest, error)
	FindPreviousSent(ctx context.Context, subscriptionID int64) (*model.Digest, error)
	MarkSent(ctx context.Context, id int64, when time.Time) error
}

type digestRepository struct {
	db dbtx
}

func NewDigestRepository(db dbtx) DigestRepository {
	return &digestRepository{db: db}
}

// Insert stores an unsent digest. The partial unique index on unsent digests
// turns a concurrent insert for the same subscription into ErrDuplicate.
func (r *digestRepository) Insert(ctx context.Context, digest model.Digest) (model.Digest, error) {
	digest.ID = snowflake.NextID()
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO digests (id, subscription_id, due, sent) VALUES (?, ?, ?, ?)`,
		digest.ID,
		digest.SubscriptionID,
		formatTime(digest.Due),
		nullableTime(digest.Sent),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Digest{}, ErrDuplicate
		}
		return model.Digest{}, fmt.Errorf("insert digest: %w", err)
	}
	return digest, nil
}

func (r *digestRepository) ListDue(ctx context.Context, now time.Time) ([]model.Digest, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, subscription_id, due, sent FROM digests WHERE sent IS NULL AND due <= ? ORDER BY due`,
		formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("list due digests: %w", err)
	}
	defer rows.Close()

	var digests []model.Digest
	for rows.Next() {
		digest, err := scanDigest(rows)
		if err != nil {
			return nil, err
		}
		digests = append(digests, digest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate digests: %w", err)
	}

	return digests, nil
}

func (r *digestRepository) FindPreviousSent(ctx context.Context, subscriptionID int64) (*model.Digest, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, subscription_id, due, sent FROM digests
		 WHERE subscription_id = ? AND sent IS NOT NULL
		 ORDER BY sent DESC LIMIT 1`,
		subscriptionID,
	)
	digest, err := scanDigest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find previous sent digest: %w", err)
	}
	return &digest, nil
}

func (r *digestRepository) MarkSent(ctx context.Context, id int64, when time.Time) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE digests SET sent = ? WHERE id = ?`,
		formatTime(when),
		id,
	)
	return err
}

func scanDigest(scanner interface {
	Scan(dest ...interface{}) error
}) (model.Digest, error) {
	var digest model.Digest
	var due string
	var sent sql.NullString
	if err := scanner.Scan(&digest.ID, &digest.SubscriptionID, &due, &sent); err != nil {
		return model.Digest{}, err
	}
	var err error
	digest.Due, err = parseTime(due)
	if err != nil {
		return model.Digest{}, fmt.Errorf("parse digest due: %w", err)
	}
	if sent.Valid {
		digest.Sent = parseTimePtr(sent.String)
	}
	return digest, nil
}
