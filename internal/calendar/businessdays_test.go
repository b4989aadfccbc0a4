package calendar_test

import (
	"testing"
	"time"

	"sgva/placement-service/internal/calendar"
)

// Anchors: 2026-03-02 is a Monday, 2026-03-06 a Friday, 2026-03-07/08 the
// weekend, 2026-03-09 the following Monday.
var (
	monday     = time.Date(2026, time.March, 2, 10, 30, 0, 0, time.UTC)
	friday     = time.Date(2026, time.March, 6, 10, 30, 0, 0, time.UTC)
	saturday   = time.Date(2026, time.March, 7, 10, 30, 0, 0, time.UTC)
	sunday     = time.Date(2026, time.March, 8, 10, 30, 0, 0, time.UTC)
	nextMonday = time.Date(2026, time.March, 9, 10, 30, 0, 0, time.UTC)
)

// ── AddBusinessDays ────────────────────────────────────────────────────────

func TestAddBusinessDays_ZeroReturnsStart(t *testing.T) {
	for _, start := range []time.Time{monday, friday, saturday} {
		if got := calendar.AddBusinessDays(start, 0); !got.Equal(start) {
			t.Errorf("AddBusinessDays(%v, 0) = %v, want start unchanged", start, got)
		}
	}
}

func TestAddBusinessDays_FridayPlusOneIsMonday(t *testing.T) {
	if got := calendar.AddBusinessDays(friday, 1); !got.Equal(nextMonday) {
		t.Errorf("AddBusinessDays(friday, 1) = %v, want %v", got, nextMonday)
	}
}

func TestAddBusinessDays_SkipsOneWeekend(t *testing.T) {
	// Monday + 5 business days crosses one weekend and lands the next Monday.
	if got := calendar.AddBusinessDays(monday, 5); !got.Equal(nextMonday) {
		t.Errorf("AddBusinessDays(monday, 5) = %v, want %v", got, nextMonday)
	}
}

func TestAddBusinessDays_PreservesTimeOfDay(t *testing.T) {
	got := calendar.AddBusinessDays(monday, 7)
	if got.Hour() != monday.Hour() || got.Minute() != monday.Minute() {
		t.Errorf("AddBusinessDays changed time of day: got %v", got)
	}
}

func TestAddBusinessDays_NeverLandsOnWeekend(t *testing.T) {
	for n := 1; n <= 30; n++ {
		got := calendar.AddBusinessDays(monday, n)
		if !calendar.IsBusinessDay(got) {
			t.Errorf("AddBusinessDays(monday, %d) landed on %s", n, got.Weekday())
		}
	}
}

// ── SubBusinessDays ────────────────────────────────────────────────────────

func TestSubBusinessDays_MondayMinusOneIsFriday(t *testing.T) {
	if got := calendar.SubBusinessDays(nextMonday, 1); !got.Equal(friday) {
		t.Errorf("SubBusinessDays(monday, 1) = %v, want %v", got, friday)
	}
}

func TestSubBusinessDays_ZeroReturnsEnd(t *testing.T) {
	if got := calendar.SubBusinessDays(sunday, 0); !got.Equal(sunday) {
		t.Errorf("SubBusinessDays(sunday, 0) = %v, want end unchanged", got)
	}
}

func TestSubBusinessDays_InvertsAdd(t *testing.T) {
	for n := 0; n <= 20; n++ {
		fwd := calendar.AddBusinessDays(monday, n)
		back := calendar.SubBusinessDays(fwd, n)
		if !back.Equal(monday) {
			t.Errorf("SubBusinessDays(AddBusinessDays(monday, %d), %d) = %v, want %v", n, n, back, monday)
		}
	}
}

// ── BusinessDaysBetween ────────────────────────────────────────────────────

func TestBusinessDaysBetween_RoundTrip(t *testing.T) {
	// For all n ≥ 0 starting from a business day,
	// BusinessDaysBetween(d, AddBusinessDays(d, n)) == n.
	for n := 0; n <= 30; n++ {
		end := calendar.AddBusinessDays(monday, n)
		if got := calendar.BusinessDaysBetween(monday, end); got != n {
			t.Errorf("BusinessDaysBetween(monday, +%d business days) = %d, want %d", n, got, n)
		}
	}
}

func TestBusinessDaysBetween_SameDayIsZero(t *testing.T) {
	if got := calendar.BusinessDaysBetween(monday, monday); got != 0 {
		t.Errorf("BusinessDaysBetween(d, d) = %d, want 0", got)
	}
}

func TestBusinessDaysBetween_WeekendSpanIsZero(t *testing.T) {
	if got := calendar.BusinessDaysBetween(saturday, sunday); got != 0 {
		t.Errorf("BusinessDaysBetween(saturday, sunday) = %d, want 0", got)
	}
}

func TestBusinessDaysBetween_NegativeWhenReversed(t *testing.T) {
	if got := calendar.BusinessDaysBetween(nextMonday, monday); got != -5 {
		t.Errorf("BusinessDaysBetween(nextMonday, monday) = %d, want -5", got)
	}
}

func TestBusinessDaysBetween_FullWeekIsFive(t *testing.T) {
	if got := calendar.BusinessDaysBetween(monday, nextMonday); got != 5 {
		t.Errorf("BusinessDaysBetween(monday, nextMonday) = %d, want 5", got)
	}
}

// ── IsBusinessDay ──────────────────────────────────────────────────────────

func TestIsBusinessDay(t *testing.T) {
	cases := []struct {
		day  time.Time
		want bool
	}{
		{monday, true},
		{friday, true},
		{saturday, false},
		{sunday, false},
	}
	for _, c := range cases {
		if got := calendar.IsBusinessDay(c.day); got != c.want {
			t.Errorf("IsBusinessDay(%s) = %v, want %v", c.day.Weekday(), got, c.want)
		}
	}
}
