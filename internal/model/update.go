package model

import "time"

// Update is a single ingested item. Published is the provider-declared time
// and not trustworthy for ordering; Inserted is authoritative.
type Update struct {
	ID        int64
	ChannelID int64
	ExtID     *string // only Twitter-sourced updates carry one
	Title     string
	URL       string
	Published time.Time
	Inserted  time.Time
}
