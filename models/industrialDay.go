package models

import "time"

// The plant day rolls over at 06:00 local wall-clock, not midnight: a night
// shift ending at 05:30 still belongs to the previous production date. All
// shift-based aggregation and the operator HUD use these two functions; nothing
// else may bucket timestamps.

const industrialDayStartHour = 6

// IndustrialDayBucket maps a timestamp to its production date. Events before
// 06:00 belong to the previous calendar date; month and year are derived from
// the shifted date, not the raw timestamp.
func IndustrialDayBucket(t time.Time) (date time.Time, month time.Month, year int) {
	date = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	if t.Hour() < industrialDayStartHour {
		date = date.AddDate(0, 0, -1)
	}
	return date, date.Month(), date.Year()
}

// IndustrialDayWindow returns the half-open [start, end) window of the
// production day containing now: today-at-06:00 (or yesterday's if now is
// before 06:00) plus 24 hours.
func IndustrialDayWindow(now time.Time) (start, end time.Time) {
	date, _, _ := IndustrialDayBucket(now)
	start = time.Date(date.Year(), date.Month(), date.Day(), industrialDayStartHour, 0, 0, 0, now.Location())
	return start, start.Add(24 * time.Hour)
}
