package calibration

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/shortrate/market"
	"github.com/meenmo/shortrate/pricing"
	"github.com/meenmo/shortrate/termstructure"
	"github.com/meenmo/shortrate/utils"
)

// CapHelper is an at-the-money cap quoted by a flat Black volatility. The
// strike is the fair rate of the matching swap; the first caplet, fixed on
// the start date, is left out.
type CapHelper struct {
	length     utils.Period
	volatility float64
	index      *market.Index
	curve      termstructure.YieldCurve
	errorType  ErrorType

	start       time.Time
	end         time.Time
	capFloor    pricing.CapFloor
	marketValue float64
	engine      pricing.CapFloorEngine
}

// NewCapHelper builds the cap and its Black market value.
func NewCapHelper(length utils.Period, volatility float64, index *market.Index,
	curve termstructure.YieldCurve, opts ...HelperOption) (*CapHelper, error) {
	if !length.Valid() {
		return nil, fmt.Errorf("cap helper: %w: %s", utils.ErrInvalidPeriod, length)
	}
	if !(volatility > 0) || math.IsInf(volatility, 0) {
		return nil, fmt.Errorf("cap helper %s: %w: %v", length, ErrInvalidQuote, volatility)
	}
	if index == nil {
		return nil, fmt.Errorf("cap helper %s: nil index", length)
	}
	if curve == nil {
		return nil, fmt.Errorf("cap helper %s: %w", length, termstructure.ErrNilCurve)
	}
	o := defaultHelperOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, fmt.Errorf("cap helper %s: %w", length, err)
	}

	h := &CapHelper{
		length:     length,
		volatility: volatility,
		index:      index,
		curve:      curve,
		errorType:  o.errorType,
	}
	cal := index.FixingCalendar()
	bdc := index.BusinessDayConvention()
	h.start = index.ValueDate(bdc.Apply(cal, curve.ReferenceDate()))
	h.end = market.Advance(cal, h.start, length, bdc, index.EndOfMonth())

	timeOf := func(d time.Time) float64 { return termstructure.TimeFromReference(curve, d) }
	floating := newLeg(schedule(h.start, h.end, index.Tenor(), cal, bdc, index.EndOfMonth()), o.floatingLegDC, timeOf)
	if len(floating.times) < 2 {
		return nil, fmt.Errorf("cap helper %s: length shorter than two index periods", length)
	}
	fixedBDC := bdc
	if o.hasFixedLegBDC {
		fixedBDC = o.fixedLegBDC
	}
	fixed := newLeg(schedule(h.start, h.end, o.fixedLegTenor, cal, fixedBDC, false), o.fixedLegDC, timeOf)

	strike := floatingLegValue(index, floating, curve.DF) / fixedLegAnnuity(fixed, curve.DF)
	if o.hasStrike {
		strike = o.strike
	}

	h.capFloor = pricing.CapFloor{Type: pricing.Cap, Nominal: o.nominal, Strike: strike}
	for i := 1; i < len(floating.times); i++ {
		h.capFloor.StartTimes = append(h.capFloor.StartTimes, floating.times[i-1])
		h.capFloor.EndTimes = append(h.capFloor.EndTimes, floating.times[i])
		h.capFloor.Accruals = append(h.capFloor.Accruals, floating.accruals[i])
	}
	mv, err := pricing.BlackCapFloorPrice(&h.capFloor, curve, volatility)
	if err != nil {
		return nil, fmt.Errorf("cap helper %s: %w", length, err)
	}
	h.marketValue = mv
	return h, nil
}

// Accepts reports whether e is a CapFloorEngine.
func (h *CapHelper) Accepts(e pricing.Engine) bool {
	_, ok := e.(pricing.CapFloorEngine)
	return ok
}

// SetPricingEngine accepts any CapFloorEngine and overwrites the previous one.
func (h *CapHelper) SetPricingEngine(e pricing.Engine) error {
	ce, ok := e.(pricing.CapFloorEngine)
	if !ok {
		return fmt.Errorf("%s: %w: %T", h, ErrUnsupportedEngine, e)
	}
	h.engine = ce
	return nil
}

func (h *CapHelper) MarketValue() float64 { return h.marketValue }
func (h *CapHelper) Volatility() float64  { return h.volatility }
func (h *CapHelper) Strike() float64      { return h.capFloor.Strike }
func (h *CapHelper) Caplets() int         { return len(h.capFloor.StartTimes) }

func (h *CapHelper) ModelValue() (float64, error) {
	if h.engine == nil {
		return 0, fmt.Errorf("%s: %w", h, ErrNoEngine)
	}
	return h.engine.PriceCapFloor(&h.capFloor)
}

func (h *CapHelper) ImpliedVolatility(price float64) (float64, error) {
	return pricing.BlackCapFloorVolatility(&h.capFloor, h.curve, price)
}

func (h *CapHelper) CalibrationError() (float64, error) {
	return calibrationError(h, h.errorType)
}

func (h *CapHelper) String() string {
	return fmt.Sprintf("cap %s", h.length)
}
