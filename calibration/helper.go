// Package calibration fits short-rate model parameters to quoted option volatilities.
package calibration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/meenmo/shortrate/market"
	"github.com/meenmo/shortrate/pricing"
	"github.com/meenmo/shortrate/utils"
)

var (
	// ErrUnsupportedEngine is returned when a helper cannot be priced by an engine.
	ErrUnsupportedEngine = errors.New("engine cannot price helper")
	// ErrNoEngine is returned when a model value is requested before SetPricingEngine.
	ErrNoEngine = errors.New("no pricing engine set")
	// ErrInvalidQuote is returned for non-positive or non-finite volatilities.
	ErrInvalidQuote = errors.New("invalid volatility quote")
)

// ErrorType selects the residual a helper reports to the optimizer.
type ErrorType int

const (
	// RelativePriceError is (market - model) / market.
	RelativePriceError ErrorType = iota
	// PriceError is market - model.
	PriceError
	// ImpliedVolError is the Black volatility implied by the model price minus the quote.
	ImpliedVolError
)

func (e ErrorType) String() string {
	switch e {
	case PriceError:
		return "PriceError"
	case ImpliedVolError:
		return "ImpliedVolError"
	default:
		return "RelativePriceError"
	}
}

// ParseErrorType accepts "relative-price", "price" and "implied-vol".
func ParseErrorType(s string) (ErrorType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "relative-price":
		return RelativePriceError, nil
	case "price":
		return PriceError, nil
	case "implied-vol":
		return ImpliedVolError, nil
	default:
		return 0, fmt.Errorf("unknown calibration error type %q", s)
	}
}

// Helper is one calibration instrument. Each variant decides which engines it accepts.
type Helper interface {
	// Accepts reports whether SetPricingEngine would take e, without attaching it.
	Accepts(e pricing.Engine) bool
	SetPricingEngine(e pricing.Engine) error
	// MarketValue is the Black price of the quoted volatility.
	MarketValue() float64
	ModelValue() (float64, error)
	// ImpliedVolatility is the Black volatility reproducing price.
	ImpliedVolatility(price float64) (float64, error)
	CalibrationError() (float64, error)
	Volatility() float64
	fmt.Stringer
}

type helperOptions struct {
	errorType      ErrorType
	nominal        float64
	strike         float64
	hasStrike      bool
	fixedLegTenor  utils.Period
	fixedLegDC     market.DayCount
	fixedLegBDC    market.BusinessDayAdjustment
	hasFixedLegBDC bool
	floatingLegDC  market.DayCount
}

// HelperOption customises a helper.
type HelperOption func(*helperOptions)

func defaultHelperOptions() helperOptions {
	return helperOptions{
		errorType:     RelativePriceError,
		nominal:       1.0,
		fixedLegTenor: utils.Years(1),
		fixedLegDC:    market.Act360,
		floatingLegDC: market.Act360,
	}
}

// WithErrorType sets the residual definition.
func WithErrorType(t ErrorType) HelperOption {
	return func(o *helperOptions) { o.errorType = t }
}

// WithNominal scales the instrument.
func WithNominal(n float64) HelperOption {
	return func(o *helperOptions) { o.nominal = n }
}

// WithStrike replaces the at-the-money strike.
func WithStrike(k float64) HelperOption {
	return func(o *helperOptions) {
		o.strike = k
		o.hasStrike = true
	}
}

// WithFixedLeg sets the fixed leg frequency and day count.
func WithFixedLeg(tenor utils.Period, dc market.DayCount) HelperOption {
	return func(o *helperOptions) {
		o.fixedLegTenor = tenor
		o.fixedLegDC = dc
	}
}

// WithFixedLegConvention overrides the index business-day convention on the fixed leg.
func WithFixedLegConvention(bdc market.BusinessDayAdjustment) HelperOption {
	return func(o *helperOptions) {
		o.fixedLegBDC = bdc
		o.hasFixedLegBDC = true
	}
}

// WithFloatingLegDayCount sets the accrual day count of the floating leg.
func WithFloatingLegDayCount(dc market.DayCount) HelperOption {
	return func(o *helperOptions) { o.floatingLegDC = dc }
}

func (o helperOptions) validate() error {
	if !(o.nominal > 0) {
		return fmt.Errorf("nominal must be positive, got %v", o.nominal)
	}
	if !o.fixedLegTenor.Valid() {
		return fmt.Errorf("fixed leg: %w: %s", utils.ErrInvalidPeriod, o.fixedLegTenor)
	}
	if !o.fixedLegDC.Valid() || !o.floatingLegDC.Valid() {
		return fmt.Errorf("unsupported leg day count %q/%q", o.fixedLegDC, o.floatingLegDC)
	}
	switch o.errorType {
	case RelativePriceError, PriceError, ImpliedVolError:
	default:
		return fmt.Errorf("unknown error type %d", o.errorType)
	}
	return nil
}

// calibrationError maps market, model and implied vol onto the chosen residual.
func calibrationError(h Helper, t ErrorType) (float64, error) {
	modelValue, err := h.ModelValue()
	if err != nil {
		return 0, err
	}
	switch t {
	case PriceError:
		return h.MarketValue() - modelValue, nil
	case ImpliedVolError:
		vol, err := h.ImpliedVolatility(modelValue)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", h, err)
		}
		return vol - h.Volatility(), nil
	default:
		mv := h.MarketValue()
		if mv == 0 {
			return 0, fmt.Errorf("%s: zero market value", h)
		}
		return (mv - modelValue) / mv, nil
	}
}
