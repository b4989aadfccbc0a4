// Package calendar provides business-day arithmetic (Monday–Friday).
//
// Deadlines and cooldowns in the placement workflow are measured in business
// days, skipping Saturday and Sunday. All functions are pure: they walk the
// calendar day by day and only advance the date portion of a timestamp, never
// the time of day.
package calendar

// Weekday numbering follows time.Weekday: Sunday=0 … Saturday=6.
// A day counts as a business day when it falls on Monday through Friday.

import "time"

// IsBusinessDay reports whether t falls on a Monday–Friday.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// AddBusinessDays returns the timestamp n business days after start.
// n must be >= 0; n == 0 returns start unchanged.
func AddBusinessDays(start time.Time, n int) time.Time {
	t := start
	for counted := 0; counted < n; {
		t = t.AddDate(0, 0, 1)
		if IsBusinessDay(t) {
			counted++
		}
	}
	return t
}

// SubBusinessDays returns the timestamp n business days before end.
// n must be >= 0; n == 0 returns end unchanged.
func SubBusinessDays(end time.Time, n int) time.Time {
	t := end
	for counted := 0; counted < n; {
		t = t.AddDate(0, 0, -1)
		if IsBusinessDay(t) {
			counted++
		}
	}
	return t
}

// BusinessDaysBetween counts the business days from a to b, comparing
// calendar dates only. The count is negative when b is before a.
func BusinessDaysBetween(a, b time.Time) int {
	if dateAfter(a, b) {
		return -BusinessDaysBetween(b, a)
	}
	count := 0
	t := a
	for dateBefore(t, b) {
		t = t.AddDate(0, 0, 1)
		if IsBusinessDay(t) {
			count++
		}
	}
	return count
}

func dateBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}

func dateAfter(a, b time.Time) bool {
	return dateBefore(b, a)
}
