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

type SubscriptionRepository interface {
	Create(ctx context.Context, sub model.Subscription) (model.Subscription, error)
	GetByID(ctx context.Context, id int64) (model.Subscription, error)
	FindByActivationToken(ctx context.Context, token string) (*model.Subscription, error)
	Activate(ctx context.Context, id int64) error
	ListWithoutPendingDigest(ctx context.Context) ([]model.Subscription, error)
}

type subscriptionRepository struct {
	db dbtx
}

func NewSubscriptionRepository(db dbtx) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

const subscriptionColumns = `id, email, user_id, activation_token, active, channel_id, list_id, frequency, day, time_of_day, timezone, created_at`

func (r *subscriptionRepository) Create(ctx context.Context, sub model.Subscription) (model.Subscription, error) {
	sub.ID = snowflake.NextID()
	now := time.Now().UTC()

	var day interface{}
	if sub.Day != nil {
		day = weekdayName(*sub.Day)
	}
	active := 0
	if sub.Active {
		active = 1
	}

	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO subscriptions (id, email, user_id, activation_token, active, channel_id, list_id, frequency, day, time_of_day, timezone, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID,
		sub.Email,
		nullableInt64(sub.UserID),
		nullableString(sub.ActivationToken),
		active,
		nullableInt64(sub.ChannelID),
		nullableInt64(sub.ListID),
		string(sub.Frequency),
		day,
		sub.TimeOfDay.String(),
		sub.Timezone,
		formatTime(now),
	)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("create subscription: %w", err)
	}
	sub.CreatedAt = now
	return sub, nil
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id int64) (model.Subscription, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = ?`, id)
	return scanSubscription(row)
}

func (r *subscriptionRepository) FindByActivationToken(ctx context.Context, token string) (*model.Subscription, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE activation_token = ?`, token)
	sub, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find subscription by token: %w", err)
	}
	return &sub, nil
}

func (r *subscriptionRepository) Activate(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE subscriptions SET active = 1, activation_token = NULL WHERE id = ?`,
		id,
	)
	return err
}

// ListWithoutPendingDigest returns active subscriptions with no unsent digest.
func (r *subscriptionRepository) ListWithoutPendingDigest(ctx context.Context) ([]model.Subscription, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions s
		 WHERE s.active = 1
		   AND NOT EXISTS (SELECT 1 FROM digests d WHERE d.subscription_id = s.id AND d.sent IS NULL)
		 ORDER BY s.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions without pending digest: %w", err)
	}
	defer rows.Close()

	var subs []model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}

	return subs, nil
}

func weekdayName(d time.Weekday) string {
	switch d {
	case time.Sunday:
		return "sunday"
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	default:
		return "saturday"
	}
}

func scanSubscription(scanner interface {
	Scan(dest ...interface{}) error
}) (model.Subscription, error) {
	var sub model.Subscription
	var userID sql.NullInt64
	var activationToken sql.NullString
	var active int
	var channelID sql.NullInt64
	var listID sql.NullInt64
	var frequency string
	var day sql.NullString
	var timeOfDay string
	var createdAt string
	if err := scanner.Scan(
		&sub.ID,
		&sub.Email,
		&userID,
		&activationToken,
		&active,
		&channelID,
		&listID,
		&frequency,
		&day,
		&timeOfDay,
		&sub.Timezone,
		&createdAt,
	); err != nil {
		return model.Subscription{}, err
	}
	if userID.Valid {
		sub.UserID = &userID.Int64
	}
	if activationToken.Valid {
		sub.ActivationToken = &activationToken.String
	}
	sub.Active = active == 1
	if channelID.Valid {
		sub.ChannelID = &channelID.Int64
	}
	if listID.Valid {
		sub.ListID = &listID.Int64
	}
	sub.Frequency = model.Frequency(frequency)
	if day.Valid {
		parsed, err := model.ParseWeekday(day.String)
		if err != nil {
			return model.Subscription{}, fmt.Errorf("parse subscription day: %w", err)
		}
		sub.Day = &parsed
	}
	var err error
	sub.TimeOfDay, err = model.ParseTimeOfDay(timeOfDay)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("parse subscription time of day: %w", err)
	}
	sub.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("parse subscription created_at: %w", err)
	}
	return sub, nil
}
