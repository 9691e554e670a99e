package service_test

import (
	"testing"
	"time"

	"briefbox/backend/internal/model"
	"briefbox/backend/internal/service"

	"github.com/stretchr/testify/require"
)

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func TestNextDue_Daily_TimeStillAhead(t *testing.T) {
	// Monday 2026-03-09 08:00, digest at 09:00
	now := at(2026, 3, 9, 8, 0)
	due := service.NextDue(now, model.FrequencyDaily, nil, model.TimeOfDay{Hour: 9})
	require.Equal(t, at(2026, 3, 9, 9, 0), due)
}

func TestNextDue_Daily_TimePassed_RollsToTomorrow(t *testing.T) {
	now := at(2026, 3, 9, 9, 15)
	due := service.NextDue(now, model.FrequencyDaily, nil, model.TimeOfDay{Hour: 9})
	require.Equal(t, at(2026, 3, 10, 9, 0), due)
}

func TestNextDue_Daily_SecondsIgnored(t *testing.T) {
	// 09:00:30 counts as already past 09:00
	now := time.Date(2026, 3, 9, 9, 0, 30, 0, time.UTC)
	due := service.NextDue(now, model.FrequencyDaily, nil, model.TimeOfDay{Hour: 9})
	require.Equal(t, at(2026, 3, 10, 9, 0), due)
}

func TestNextDue_Weekly_TargetDayAhead(t *testing.T) {
	// Monday 09:00, target Tuesday 10:00
	now := at(2026, 3, 9, 9, 0)
	require.Equal(t, time.Monday, now.Weekday())

	day := time.Tuesday
	due := service.NextDue(now, model.FrequencyWeekly, &day, model.TimeOfDay{Hour: 10})
	require.Equal(t, at(2026, 3, 10, 10, 0), due)
}

func TestNextDue_Weekly_DayComparisonDominatesTime(t *testing.T) {
	// Monday 11:00 with target Tuesday 10:00: the time already passed today,
	// but the day differs, so due is still tomorrow
	now := at(2026, 3, 9, 11, 0)
	day := time.Tuesday
	due := service.NextDue(now, model.FrequencyWeekly, &day, model.TimeOfDay{Hour: 10})
	require.Equal(t, at(2026, 3, 10, 10, 0), due)
}

func TestNextDue_Weekly_SameDayTimeAhead(t *testing.T) {
	// Tuesday 08:00, target Tuesday 10:00
	now := at(2026, 3, 10, 8, 0)
	require.Equal(t, time.Tuesday, now.Weekday())

	day := time.Tuesday
	due := service.NextDue(now, model.FrequencyWeekly, &day, model.TimeOfDay{Hour: 10})
	require.Equal(t, at(2026, 3, 10, 10, 0), due)
}

func TestNextDue_Weekly_SameDayTimePassed_NextWeekNeverToday(t *testing.T) {
	// Tuesday 11:00, target Tuesday 10:00: a zero-day offset in the
	// already-passed branch must become seven
	now := at(2026, 3, 10, 11, 0)
	day := time.Tuesday
	due := service.NextDue(now, model.FrequencyWeekly, &day, model.TimeOfDay{Hour: 10})
	require.Equal(t, at(2026, 3, 17, 10, 0), due)
}

func TestNextDue_Weekly_TargetDayBehind_WrapsForward(t *testing.T) {
	// Thursday, target Wednesday: next Wednesday, never in the past
	now := at(2026, 3, 12, 9, 0)
	require.Equal(t, time.Thursday, now.Weekday())

	day := time.Wednesday
	due := service.NextDue(now, model.FrequencyWeekly, &day, model.TimeOfDay{Hour: 10})
	require.Equal(t, at(2026, 3, 18, 10, 0), due)
	require.True(t, due.After(now))
}

func TestNextDue_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2026, 3, 9, 8, 0, 0, 0, loc)
	due := service.NextDue(now, model.FrequencyDaily, nil, model.TimeOfDay{Hour: 9})
	require.Equal(t, loc, due.Location())
	require.Equal(t, 9, due.Hour())
}
