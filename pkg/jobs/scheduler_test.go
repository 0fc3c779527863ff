package jobs

import (
	"testing"
	"time"
)

func TestExpiryNoticeWindow(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	from, to := expiryNoticeWindow(now)

	if !to.Equal(now.AddDate(0, 0, 30)) {
		t.Fatalf("window should end 30 days out, got %v", to)
	}
	if got := to.Sub(from); got != 24*time.Hour {
		t.Fatalf("window should be one day wide so a daily run notifies once, got %v", got)
	}
}

func TestExpiryNoticeWindow_ConsecutiveRunsDoNotOverlap(t *testing.T) {
	day1 := time.Date(2026, 8, 31, 3, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	_, day1To := expiryNoticeWindow(day1)
	day2From, _ := expiryNoticeWindow(day2)

	if day2From.Before(day1To) {
		t.Fatalf("day 2 window starts at %v, inside day 1 window ending %v", day2From, day1To)
	}
}
