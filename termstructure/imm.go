package termstructure

import "time"

// IsIMMDate reports whether d is the third Wednesday of March, June, September or December.
func IsIMMDate(d time.Time) bool {
	if d.Weekday() != time.Wednesday || d.Day() < 15 || d.Day() > 21 {
		return false
	}
	switch d.Month() {
	case time.March, time.June, time.September, time.December:
		return true
	default:
		return false
	}
}

// NextIMMDate returns the first main-cycle IMM date strictly after d.
func NextIMMDate(d time.Time) time.Time {
	y, m := d.Year(), d.Month()
	// Move to the quarterly month on or after m.
	offset := (3 - int(m)%3) % 3
	q := time.Date(y, m+time.Month(offset), 1, 0, 0, 0, 0, time.UTC)
	for {
		imm := thirdWednesday(q.Year(), q.Month())
		if imm.After(d) {
			return imm
		}
		q = q.AddDate(0, 3, 0)
	}
}

func thirdWednesday(year int, month time.Month) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	shift := (int(time.Wednesday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, shift+14)
}
