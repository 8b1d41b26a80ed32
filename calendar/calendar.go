package calendar

import (
	"strings"
	"time"
)

// CalendarID identifies a holiday calendar. Joint calendars are written as
// member IDs separated by "+", e.g. "GBP+USD".
type CalendarID string

const (
	TARGET CalendarID = "TARGET"
	USD    CalendarID = "USD" // United States settlement
	GBP    CalendarID = "GBP" // United Kingdom exchange
)

// Joint returns a calendar whose holidays are the union of the members' holidays.
func Joint(ids ...CalendarID) CalendarID {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, string(id))
	}
	return CalendarID(strings.Join(parts, "+"))
}

// Members splits a joint calendar into its components.
func (c CalendarID) Members() []CalendarID {
	raw := strings.Split(string(c), "+")
	out := make([]CalendarID, 0, len(raw))
	for _, r := range raw {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, CalendarID(r))
		}
	}
	return out
}

// Known reports whether every member of the calendar is supported.
func (c CalendarID) Known() bool {
	members := c.Members()
	if len(members) == 0 {
		return false
	}
	for _, m := range members {
		switch m {
		case TARGET, USD, GBP:
		default:
			return false
		}
	}
	return true
}

func isHoliday(cal CalendarID, t time.Time) bool {
	for _, m := range cal.Members() {
		if memberHoliday(m, t) {
			return true
		}
	}
	return false
}

// memberHoliday covers the fixed-date and Easter-based holidays only.
func memberHoliday(cal CalendarID, t time.Time) bool {
	d, m := t.Day(), t.Month()
	switch cal {
	case TARGET:
		if (m == time.January && d == 1) || (m == time.May && d == 1) ||
			(m == time.December && (d == 25 || d == 26)) {
			return true
		}
		easter := easterSunday(t.Year())
		return sameDay(t, easter.AddDate(0, 0, -2)) || sameDay(t, easter.AddDate(0, 0, 1))
	case USD:
		return (m == time.January && d == 1) || (m == time.July && d == 4) ||
			(m == time.December && d == 25)
	case GBP:
		if (m == time.January && d == 1) || (m == time.December && (d == 25 || d == 26)) {
			return true
		}
		easter := easterSunday(t.Year())
		return sameDay(t, easter.AddDate(0, 0, -2)) || sameDay(t, easter.AddDate(0, 0, 1))
	default:
		return false
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// easterSunday uses the anonymous Gregorian algorithm.
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// IsBusinessDay checks weekends and holiday sets.
func IsBusinessDay(cal CalendarID, t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !isHoliday(cal, t)
}

// Adjust applies Modified Following.
func Adjust(cal CalendarID, t time.Time) time.Time {
	origMonth := t.Month()
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	if t.Month() != origMonth {
		t = t.AddDate(0, 0, -1)
		for !IsBusinessDay(cal, t) {
			t = t.AddDate(0, 0, -1)
		}
	}
	return t
}

// AdjustFollowing applies a simple Following convention (no month preservation).
func AdjustFollowing(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// AdjustPreceding rolls back to the previous business day.
func AdjustPreceding(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

// AddBusinessDays advances n business days (n can be negative).
func AddBusinessDays(cal CalendarID, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(cal, t) {
			n -= step
		}
	}
	return t
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsMonthEnd reports whether t is the last calendar day of its month.
func IsMonthEnd(t time.Time) bool {
	return t.Day() == daysInMonth(t.Year(), t.Month())
}

// LastBusinessDayOfMonth returns the last business day of the month containing t.
func LastBusinessDayOfMonth(cal CalendarID, t time.Time) time.Time {
	nextMonth := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	return AddBusinessDays(cal, nextMonth, -1)
}

// IsEndOfMonth checks if t is the last business day of its month.
func IsEndOfMonth(cal CalendarID, t time.Time) bool {
	return t.Equal(LastBusinessDayOfMonth(cal, t))
}
