// Package model holds calibratable short-rate models.
package model

import (
	"errors"

	"github.com/meenmo/shortrate/black"
	"github.com/meenmo/shortrate/optimization"
	"github.com/meenmo/shortrate/termstructure"
)

var (
	// ErrParamCount is returned when a parameter vector has the wrong length.
	ErrParamCount = errors.New("wrong parameter count")
	// ErrInvalidParameter is returned for parameters outside the model's domain.
	ErrInvalidParameter = errors.New("invalid model parameter")
)

// ShortRateModel exposes an ordered parameter vector that calibration mutates in place.
type ShortRateModel interface {
	Params() []float64
	SetParams(params []float64) error
	ParamCount() int
	Constraint() optimization.Constraint
	TermStructure() termstructure.YieldCurve
}

// AffineModel prices zero-coupon bonds and options on them in closed form.
// Times are curve times of the model's term structure.
type AffineModel interface {
	ShortRateModel
	DiscountBond(now, maturity, rate float64) float64
	DiscountBondOption(typ black.OptionType, strike, maturity, bondMaturity float64) float64
	ForwardDiscountBondOption(typ black.OptionType, strike, maturity, bondStart, bondMaturity float64) float64
}
