package model

import (
	"fmt"
	"strings"
	"time"
)

type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// TimeOfDay is a wall-clock delivery time. Seconds are not modeled; due-date
// comparison works at minute granularity.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var tod TimeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d", &tod.Hour, &tod.Minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	if tod.Hour < 0 || tod.Hour > 23 || tod.Minute < 0 || tod.Minute > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", s)
	}
	return tod, nil
}

// ParseWeekday parses a lowercase English weekday name.
func ParseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(s) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

// Subscription ties a recipient to exactly one target: a channel or a list.
// Day is set iff Frequency is weekly. Anonymous subscriptions (no UserID)
// start inactive and carry an activation token.
type Subscription struct {
	ID              int64
	Email           string
	UserID          *int64
	ActivationToken *string
	Active          bool
	ChannelID       *int64
	ListID          *int64
	Frequency       Frequency
	Day             *time.Weekday
	TimeOfDay       TimeOfDay
	Timezone        string
	CreatedAt       time.Time
}
