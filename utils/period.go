package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeUnit is the unit of a Period.
type TimeUnit string

const (
	UnitDays   TimeUnit = "D"
	UnitWeeks  TimeUnit = "W"
	UnitMonths TimeUnit = "M"
	UnitYears  TimeUnit = "Y"
)

// ErrInvalidPeriod is returned for malformed tenors.
var ErrInvalidPeriod = errors.New("invalid period")

// Period is a tenor such as 3M or 10Y.
type Period struct {
	Length int
	Unit   TimeUnit
}

// NewPeriod validates the unit and rejects negative lengths.
func NewPeriod(length int, unit TimeUnit) (Period, error) {
	switch unit {
	case UnitDays, UnitWeeks, UnitMonths, UnitYears:
	default:
		return Period{}, fmt.Errorf("%w: unknown unit %q", ErrInvalidPeriod, unit)
	}
	if length < 0 {
		return Period{}, fmt.Errorf("%w: negative length %d", ErrInvalidPeriod, length)
	}
	return Period{Length: length, Unit: unit}, nil
}

// Years, Months and Weeks are shorthands for hard-coded tenors.
func Years(n int) Period  { return Period{Length: n, Unit: UnitYears} }
func Months(n int) Period { return Period{Length: n, Unit: UnitMonths} }
func Weeks(n int) Period  { return Period{Length: n, Unit: UnitWeeks} }

// ParsePeriod converts tenor strings like "1W", "3M", "10Y".
func ParsePeriod(tenor string) (Period, error) {
	tenor = strings.TrimSpace(strings.ToUpper(tenor))
	if len(tenor) < 2 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, tenor)
	}
	unit := TimeUnit(tenor[len(tenor)-1:])
	n, err := strconv.Atoi(tenor[:len(tenor)-1])
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, tenor)
	}
	return NewPeriod(n, unit)
}

func (p Period) String() string {
	return strconv.Itoa(p.Length) + string(p.Unit)
}

// IsZero reports a zero-length period.
func (p Period) IsZero() bool {
	return p.Length == 0
}

// Valid reports a known unit and positive length.
func (p Period) Valid() bool {
	_, err := NewPeriod(p.Length, p.Unit)
	return err == nil && p.Length > 0
}

// InMonths returns the period in months for month and year units.
func (p Period) InMonths() (int, bool) {
	switch p.Unit {
	case UnitMonths:
		return p.Length, true
	case UnitYears:
		return 12 * p.Length, true
	default:
		return 0, false
	}
}

// YearsApprox converts the period to a year fraction the way tenor grids are keyed.
func (p Period) YearsApprox() float64 {
	switch p.Unit {
	case UnitDays:
		return float64(p.Length) / 365.0
	case UnitWeeks:
		return float64(p.Length) * 7.0 / 365.0
	case UnitMonths:
		return float64(p.Length) / 12.0
	default:
		return float64(p.Length)
	}
}

// AddTo advances t by the period without business-day adjustment.
// Month and year steps clamp to month end like EDATE.
func (p Period) AddTo(t time.Time) time.Time {
	switch p.Unit {
	case UnitDays:
		return t.AddDate(0, 0, p.Length)
	case UnitWeeks:
		return t.AddDate(0, 0, 7*p.Length)
	case UnitMonths:
		return AddMonth(t, p.Length)
	default:
		return AddMonth(t, 12*p.Length)
	}
}

// Times scales the period length.
func (p Period) Times(n int) Period {
	return Period{Length: p.Length * n, Unit: p.Unit}
}
