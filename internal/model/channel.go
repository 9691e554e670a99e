package model

import "time"

type ChannelType string

const (
	ChannelRSS           ChannelType = "rss"
	ChannelGithubRelease ChannelType = "github_release"
	ChannelTwitter       ChannelType = "twitter"
)

// Channel is a pollable external update source. ExtID is the canonical
// provider-side identifier: a sanitized feed URL, an "owner/repo" slug, or a
// Twitter screen name.
type Channel struct {
	ID           int64
	Type         ChannelType
	ExtID        string
	Title        string
	Link         string
	LastFetched  *time.Time
	LastCleaned  *time.Time
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
