package market

import (
	"time"

	"github.com/meenmo/shortrate/calendar"
	"github.com/meenmo/shortrate/utils"
)

// Frequency enumerates payment/reset frequencies in months.
type Frequency int

const (
	FreqAnnual    Frequency = 12
	FreqSemi      Frequency = 6
	FreqQuarterly Frequency = 3
	FreqMonthly   Frequency = 1
	FreqDaily     Frequency = 0
)

// Period returns the coupon period of the frequency.
func (f Frequency) Period() utils.Period {
	if f == FreqDaily {
		return utils.Period{Length: 1, Unit: utils.UnitDays}
	}
	return utils.Months(int(f))
}

// PerYear returns the number of periods per year.
func (f Frequency) PerYear() int {
	if f <= 0 {
		return 365
	}
	return 12 / int(f)
}

// BusinessDayAdjustment roll convention.
type BusinessDayAdjustment string

const (
	Following         BusinessDayAdjustment = "FOLLOWING"
	ModifiedFollowing BusinessDayAdjustment = "MODIFIED_FOLLOWING"
	Preceding         BusinessDayAdjustment = "PRECEDING"
	Unadjusted        BusinessDayAdjustment = "UNADJUSTED"
)

// Apply moves t to a business day of cal.
func (b BusinessDayAdjustment) Apply(cal calendar.CalendarID, t time.Time) time.Time {
	switch b {
	case Following:
		return calendar.AdjustFollowing(cal, t)
	case ModifiedFollowing:
		return calendar.Adjust(cal, t)
	case Preceding:
		return calendar.AdjustPreceding(cal, t)
	default:
		return t
	}
}

// DayCount enum.
type DayCount string

const (
	Act360   DayCount = "ACT/360"
	Act365F  DayCount = "ACT/365F"
	Dc30360  DayCount = "30/360"
	Dc30E360 DayCount = "30E/360"
)

// YearFraction accrues between two dates under the convention.
func (d DayCount) YearFraction(start, end time.Time) float64 {
	return utils.YearFraction(start, end, string(d))
}

// Valid reports whether the convention is supported.
func (d DayCount) Valid() bool {
	return utils.KnownDayCount(string(d))
}

// Currency is an ISO 4217 code.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
)

// Advance moves t by p on cal. Day periods count business days; longer periods
// roll calendar dates, keep month ends when endOfMonth is set and t is the last
// business day of its month, then apply bdc.
func Advance(cal calendar.CalendarID, t time.Time, p utils.Period, bdc BusinessDayAdjustment, endOfMonth bool) time.Time {
	if p.Length == 0 {
		return bdc.Apply(cal, t)
	}
	switch p.Unit {
	case utils.UnitDays:
		return calendar.AddBusinessDays(cal, t, p.Length)
	case utils.UnitWeeks:
		return bdc.Apply(cal, p.AddTo(t))
	default:
		d := p.AddTo(t)
		if endOfMonth && calendar.IsEndOfMonth(cal, t) {
			return calendar.LastBusinessDayOfMonth(cal, d)
		}
		return bdc.Apply(cal, d)
	}
}
