package termstructure

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/shortrate/calendar"
	"github.com/meenmo/shortrate/market"
	"github.com/meenmo/shortrate/utils"
)

// RateHelper is a market instrument the bootstrap reprices exactly.
type RateHelper interface {
	// Quote is the market quote in the instrument's own units.
	Quote() float64
	// ImpliedQuote reprices the instrument on c.
	ImpliedQuote(c YieldCurve) float64
	// Pillar is the latest date whose discount factor the instrument depends on.
	Pillar() time.Time
	fmt.Stringer
}

// DepositHelper is a money-market deposit quoted as a simple rate.
type DepositHelper struct {
	rate     float64
	tenor    utils.Period
	start    time.Time
	end      time.Time
	dayCount market.DayCount
}

// NewDepositHelper starts the deposit fixingDays business days after evalDate.
func NewDepositHelper(rate float64, tenor utils.Period, fixingDays int, cal calendar.CalendarID,
	bdc market.BusinessDayAdjustment, endOfMonth bool, dc market.DayCount, evalDate time.Time) (*DepositHelper, error) {
	if !tenor.Valid() {
		return nil, fmt.Errorf("deposit: %w: %s", utils.ErrInvalidPeriod, tenor)
	}
	if evalDate.IsZero() {
		return nil, fmt.Errorf("deposit %s: evaluation date is required", tenor)
	}
	start := calendar.AddBusinessDays(cal, evalDate, fixingDays)
	end := market.Advance(cal, start, tenor, bdc, endOfMonth)
	return &DepositHelper{rate: rate, tenor: tenor, start: start, end: end, dayCount: dc}, nil
}

func (h *DepositHelper) Quote() float64    { return h.rate }
func (h *DepositHelper) Pillar() time.Time { return h.end }
func (h *DepositHelper) Start() time.Time  { return h.start }

func (h *DepositHelper) ImpliedQuote(c YieldCurve) float64 {
	tau := h.dayCount.YearFraction(h.start, h.end)
	return (c.DF(h.start)/c.DF(h.end) - 1.0) / tau
}

func (h *DepositHelper) String() string {
	return fmt.Sprintf("deposit %s %s", h.tenor, h.end.Format("2006-01-02"))
}

// FuturesHelper is a rate future quoted as 100 minus the rate. No convexity adjustment.
type FuturesHelper struct {
	price    float64
	start    time.Time
	end      time.Time
	dayCount market.DayCount
}

// NewFuturesHelper builds a future on an IMM start date lasting months.
func NewFuturesHelper(price float64, immDate time.Time, months int, cal calendar.CalendarID,
	bdc market.BusinessDayAdjustment, endOfMonth bool, dc market.DayCount) (*FuturesHelper, error) {
	if !IsIMMDate(immDate) {
		return nil, fmt.Errorf("futures: %s is not an IMM date", immDate.Format("2006-01-02"))
	}
	if months <= 0 {
		return nil, fmt.Errorf("futures: %w: %dM", utils.ErrInvalidPeriod, months)
	}
	if price <= 0 || price > 200 {
		return nil, fmt.Errorf("futures: implausible price %v", price)
	}
	end := market.Advance(cal, immDate, utils.Months(months), bdc, endOfMonth)
	return &FuturesHelper{price: price, start: immDate, end: end, dayCount: dc}, nil
}

func (h *FuturesHelper) Quote() float64    { return h.price }
func (h *FuturesHelper) Pillar() time.Time { return h.end }
func (h *FuturesHelper) Start() time.Time  { return h.start }

func (h *FuturesHelper) ImpliedQuote(c YieldCurve) float64 {
	tau := h.dayCount.YearFraction(h.start, h.end)
	fwd := (c.DF(h.start)/c.DF(h.end) - 1.0) / tau
	return 100.0 * (1.0 - fwd)
}

func (h *FuturesHelper) String() string {
	return fmt.Sprintf("future %s %s", h.start.Format("2006-01-02"), h.end.Format("2006-01-02"))
}

// SwapHelper is a fixed-vs-index par swap. The floating leg is projected on the
// curve being built, so its value telescopes to DF(start) - DF(end).
type SwapHelper struct {
	rate       float64
	tenor      utils.Period
	start      time.Time
	floatEnd   time.Time
	fixedDates []time.Time
	fixedDC    market.DayCount
}

// NewSwapHelper starts the swap index.FixingDays() business days after evalDate on cal.
func NewSwapHelper(rate float64, tenor utils.Period, cal calendar.CalendarID, fixedFreq market.Frequency,
	fixedBDC market.BusinessDayAdjustment, fixedDC market.DayCount, index *market.IndexDescriptor, evalDate time.Time) (*SwapHelper, error) {
	if index == nil {
		return nil, fmt.Errorf("swap %s: nil floating index", tenor)
	}
	months, ok := tenor.InMonths()
	if !ok || months <= 0 {
		return nil, fmt.Errorf("swap: %w: %s", utils.ErrInvalidPeriod, tenor)
	}
	step := int(fixedFreq)
	if step <= 0 || months%step != 0 {
		return nil, fmt.Errorf("swap %s: fixed frequency %dM does not divide tenor", tenor, step)
	}
	start := calendar.AddBusinessDays(cal, evalDate, index.FixingDays())

	fixedDates := make([]time.Time, 0, months/step+1)
	fixedDates = append(fixedDates, fixedBDC.Apply(cal, start))
	for m := step; m <= months; m += step {
		fixedDates = append(fixedDates, fixedBDC.Apply(cal, utils.AddMonth(start, m)))
	}
	floatEnd := market.Advance(index.ValueCalendar(), start, tenor, index.BusinessDayConvention(), index.EndOfMonth())

	return &SwapHelper{
		rate:       rate,
		tenor:      tenor,
		start:      start,
		floatEnd:   floatEnd,
		fixedDates: fixedDates,
		fixedDC:    fixedDC,
	}, nil
}

func (h *SwapHelper) Quote() float64 { return h.rate }

func (h *SwapHelper) Pillar() time.Time {
	last := h.fixedDates[len(h.fixedDates)-1]
	if h.floatEnd.After(last) {
		return h.floatEnd
	}
	return last
}

func (h *SwapHelper) ImpliedQuote(c YieldCurve) float64 {
	annuity := 0.0
	for i := 1; i < len(h.fixedDates); i++ {
		tau := h.fixedDC.YearFraction(h.fixedDates[i-1], h.fixedDates[i])
		annuity += tau * c.DF(h.fixedDates[i])
	}
	if annuity == 0 {
		return math.NaN()
	}
	return (c.DF(h.start) - c.DF(h.floatEnd)) / annuity
}

func (h *SwapHelper) String() string {
	return fmt.Sprintf("swap %s %s", h.tenor, h.Pillar().Format("2006-01-02"))
}
