package model

import "time"

// List is a user-curated named group of channels, subscribable as one unit.
type List struct {
	ID        int64
	Name      string
	Creator   string
	CreatedAt time.Time
}
