package models

import (
	"testing"
	"time"
)

func TestIndustrialDayBucket_BeforeCutoffBelongsToPreviousDay(t *testing.T) {
	// 05:30 on June 2 is still June 1 production
	ts := time.Date(2024, time.June, 2, 5, 30, 0, 0, time.Local)
	date, month, year := IndustrialDayBucket(ts)

	if date.Day() != 1 || month != time.June || year != 2024 {
		t.Fatalf("expected 2024-06-01, got %04d-%02d-%02d", year, month, date.Day())
	}
}

func TestIndustrialDayBucket_AfterCutoffBelongsToSameDay(t *testing.T) {
	ts := time.Date(2024, time.June, 2, 6, 1, 0, 0, time.Local)
	date, month, year := IndustrialDayBucket(ts)

	if date.Day() != 2 || month != time.June || year != 2024 {
		t.Fatalf("expected 2024-06-02, got %04d-%02d-%02d", year, month, date.Day())
	}
}

func TestIndustrialDayBucket_MonthAndYearFollowShiftedDate(t *testing.T) {
	// 01:00 on Jan 1 belongs to Dec 31 of the previous year
	ts := time.Date(2024, time.January, 1, 1, 0, 0, 0, time.Local)
	date, month, year := IndustrialDayBucket(ts)

	if date.Day() != 31 || month != time.December || year != 2023 {
		t.Fatalf("expected 2023-12-31, got %04d-%02d-%02d", year, month, date.Day())
	}
}

func TestIndustrialDayBucket_ExactCutoff(t *testing.T) {
	// 06:00:00 sharp belongs to the current date
	ts := time.Date(2024, time.June, 2, 6, 0, 0, 0, time.Local)
	date, _, _ := IndustrialDayBucket(ts)

	if date.Day() != 2 {
		t.Fatalf("expected day 2 at exact cutoff, got %d", date.Day())
	}
}

func TestIndustrialDayBucket_Idempotent(t *testing.T) {
	ts := time.Date(2024, time.June, 2, 5, 30, 0, 0, time.Local)
	first, _, _ := IndustrialDayBucket(ts)
	second, _, _ := IndustrialDayBucket(ts)

	if !first.Equal(second) {
		t.Fatalf("bucketing is not stable: %v vs %v", first, second)
	}
	// bucketing the bucket start itself must not shift again
	rebucketed, _, _ := IndustrialDayBucket(first.Add(12 * time.Hour))
	if !rebucketed.Equal(first) {
		t.Fatalf("midday rebucket moved: %v vs %v", rebucketed, first)
	}
}

func TestIndustrialDayWindow(t *testing.T) {
	// at 04:00 the window started yesterday 06:00
	now := time.Date(2024, time.June, 2, 4, 0, 0, 0, time.Local)
	start, end := IndustrialDayWindow(now)

	wantStart := time.Date(2024, time.June, 1, 6, 0, 0, 0, time.Local)
	if !start.Equal(wantStart) {
		t.Fatalf("expected window start %v, got %v", wantStart, start)
	}
	if !end.Equal(wantStart.Add(24 * time.Hour)) {
		t.Fatalf("expected 24h window, got end %v", end)
	}
	if !now.After(start) || !now.Before(end) {
		t.Fatalf("now %v not inside window [%v, %v)", now, start, end)
	}

	// at 09:00 the window started today 06:00
	now = time.Date(2024, time.June, 2, 9, 0, 0, 0, time.Local)
	start, _ = IndustrialDayWindow(now)
	wantStart = time.Date(2024, time.June, 2, 6, 0, 0, 0, time.Local)
	if !start.Equal(wantStart) {
		t.Fatalf("expected window start %v, got %v", wantStart, start)
	}
}
