package model

import "time"

// Digest is a scheduled per-subscription bundle of new updates. Rows are
// append-only history; Sent stays nil until dispatch succeeds.
type Digest struct {
	ID             int64
	SubscriptionID int64
	Due            time.Time
	Sent           *time.Time
}
