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

// SwaptionHelper is an at-the-money European swaption quoted by Black volatility.
// Exercise is expiry after the curve reference date on the index fixing calendar;
// the swap starts on the index value date and runs for tenor.
type SwaptionHelper struct {
	expiry     utils.Period
	tenor      utils.Period
	volatility float64
	index      *market.Index
	curve      termstructure.YieldCurve
	errorType  ErrorType

	exercise    time.Time
	start       time.Time
	end         time.Time
	swaption    pricing.Swaption
	marketValue float64
	engine      pricing.SwaptionEngine
}

// NewSwaptionHelper builds the swaption and its Black market value.
func NewSwaptionHelper(expiry, tenor utils.Period, volatility float64, index *market.Index,
	curve termstructure.YieldCurve, opts ...HelperOption) (*SwaptionHelper, error) {
	if !expiry.Valid() || !tenor.Valid() {
		return nil, fmt.Errorf("swaption helper: %w: %s x %s", utils.ErrInvalidPeriod, expiry, tenor)
	}
	if !(volatility > 0) || math.IsInf(volatility, 0) {
		return nil, fmt.Errorf("swaption helper %sx%s: %w: %v", expiry, tenor, ErrInvalidQuote, volatility)
	}
	if index == nil {
		return nil, fmt.Errorf("swaption helper %sx%s: nil index", expiry, tenor)
	}
	if curve == nil {
		return nil, fmt.Errorf("swaption helper %sx%s: %w", expiry, tenor, termstructure.ErrNilCurve)
	}
	o := defaultHelperOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, fmt.Errorf("swaption helper %sx%s: %w", expiry, tenor, err)
	}

	h := &SwaptionHelper{
		expiry:     expiry,
		tenor:      tenor,
		volatility: volatility,
		index:      index,
		curve:      curve,
		errorType:  o.errorType,
	}

	cal := index.FixingCalendar()
	bdc := index.BusinessDayConvention()
	h.exercise = market.Advance(cal, curve.ReferenceDate(), expiry, bdc, false)
	h.start = index.ValueDate(h.exercise)
	h.end = market.Advance(cal, h.start, tenor, bdc, index.EndOfMonth())

	fixedBDC := bdc
	if o.hasFixedLegBDC {
		fixedBDC = o.fixedLegBDC
	}
	timeOf := func(d time.Time) float64 { return termstructure.TimeFromReference(curve, d) }
	fixed := newLeg(schedule(h.start, h.end, o.fixedLegTenor, cal, fixedBDC, false), o.fixedLegDC, timeOf)
	floating := newLeg(schedule(h.start, h.end, index.Tenor(), cal, bdc, index.EndOfMonth()), o.floatingLegDC, timeOf)

	annuity := fixedLegAnnuity(fixed, curve.DF)
	if !(annuity > 0) {
		return nil, fmt.Errorf("swaption helper %sx%s: non-positive annuity", expiry, tenor)
	}
	forward := floatingLegValue(index, floating, curve.DF) / annuity
	strike := forward
	if o.hasStrike {
		strike = o.strike
	}
	typ := pricing.Payer
	if strike <= forward {
		typ = pricing.Receiver
	}

	h.swaption = pricing.Swaption{
		Type:          typ,
		Nominal:       o.nominal,
		Strike:        strike,
		ExerciseTime:  timeOf(h.exercise),
		StartTime:     timeOf(h.start),
		FixedPayTimes: fixed.times,
		FixedAccruals: fixed.accruals,
	}
	mv, err := pricing.BlackSwaptionPrice(&h.swaption, curve, volatility)
	if err != nil {
		return nil, fmt.Errorf("swaption helper %sx%s: %w", expiry, tenor, err)
	}
	h.marketValue = mv
	return h, nil
}

// Accepts reports whether e is a SwaptionEngine.
func (h *SwaptionHelper) Accepts(e pricing.Engine) bool {
	_, ok := e.(pricing.SwaptionEngine)
	return ok
}

// SetPricingEngine accepts any SwaptionEngine and overwrites the previous one.
func (h *SwaptionHelper) SetPricingEngine(e pricing.Engine) error {
	se, ok := e.(pricing.SwaptionEngine)
	if !ok {
		return fmt.Errorf("%s: %w: %T", h, ErrUnsupportedEngine, e)
	}
	h.engine = se
	return nil
}

func (h *SwaptionHelper) MarketValue() float64    { return h.marketValue }
func (h *SwaptionHelper) Volatility() float64     { return h.volatility }
func (h *SwaptionHelper) Expiry() utils.Period    { return h.expiry }
func (h *SwaptionHelper) Tenor() utils.Period     { return h.tenor }
func (h *SwaptionHelper) ExerciseDate() time.Time { return h.exercise }
func (h *SwaptionHelper) StartDate() time.Time    { return h.start }
func (h *SwaptionHelper) EndDate() time.Time      { return h.end }

// Swaption returns a copy of the underlying instrument.
func (h *SwaptionHelper) Swaption() pricing.Swaption {
	s := h.swaption
	s.FixedPayTimes = append([]float64(nil), h.swaption.FixedPayTimes...)
	s.FixedAccruals = append([]float64(nil), h.swaption.FixedAccruals...)
	return s
}

func (h *SwaptionHelper) ModelValue() (float64, error) {
	if h.engine == nil {
		return 0, fmt.Errorf("%s: %w", h, ErrNoEngine)
	}
	return h.engine.PriceSwaption(&h.swaption)
}

func (h *SwaptionHelper) ImpliedVolatility(price float64) (float64, error) {
	return pricing.BlackSwaptionVolatility(&h.swaption, h.curve, price)
}

func (h *SwaptionHelper) CalibrationError() (float64, error) {
	return calibrationError(h, h.errorType)
}

func (h *SwaptionHelper) String() string {
	return fmt.Sprintf("swaption %sx%s", h.expiry, h.tenor)
}
