package calibration

import (
	"time"

	"github.com/meenmo/shortrate/calendar"
	"github.com/meenmo/shortrate/market"
	"github.com/meenmo/shortrate/utils"
)

// schedule rolls forward from start in steps of tenor. Dates are adjusted with
// bdc; the last one is end, which may leave a short final stub.
func schedule(start, end time.Time, tenor utils.Period, cal calendar.CalendarID, bdc market.BusinessDayAdjustment, eom bool) []time.Time {
	dates := []time.Time{start}
	for k := 1; ; k++ {
		d := market.Advance(cal, start, tenor.Times(k), bdc, eom)
		if !d.Before(end) {
			break
		}
		dates = append(dates, d)
	}
	return append(dates, end)
}

type leg struct {
	dates    []time.Time
	accruals []float64
	times    []float64
}

func newLeg(dates []time.Time, dc market.DayCount, timeOf func(time.Time) float64) leg {
	l := leg{dates: dates}
	for i := 1; i < len(dates); i++ {
		l.accruals = append(l.accruals, dc.YearFraction(dates[i-1], dates[i]))
		l.times = append(l.times, timeOf(dates[i]))
	}
	return l
}

// floatingLegValue is sum_i τ_i F_i P(T_i) with forwards projected off the index.
func floatingLegValue(index *market.Index, l leg, discount func(time.Time) float64) float64 {
	value := 0.0
	for i := 1; i < len(l.dates); i++ {
		fwd := index.ForwardBetween(l.dates[i-1], l.dates[i])
		value += l.accruals[i-1] * fwd * discount(l.dates[i])
	}
	return value
}

// fixedLegAnnuity is sum_i τ_i P(T_i).
func fixedLegAnnuity(l leg, discount func(time.Time) float64) float64 {
	value := 0.0
	for i := 1; i < len(l.dates); i++ {
		value += l.accruals[i-1] * discount(l.dates[i])
	}
	return value
}
