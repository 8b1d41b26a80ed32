package model

import (
	"fmt"
	"math"

	"github.com/meenmo/shortrate/black"
	"github.com/meenmo/shortrate/optimization"
	"github.com/meenmo/shortrate/termstructure"
)

// HullWhite is the one-factor Hull-White model dr = (θ(t) - a r) dt + σ dW
// fitted to an initial term structure. Params are [a, σ].
type HullWhite struct {
	curve  termstructure.YieldCurve
	params []float64
}

const (
	DefaultReversion = 0.1
	DefaultSigma     = 0.01
)

// NewHullWhite builds the model on a shared curve.
func NewHullWhite(curve termstructure.YieldCurve, a, sigma float64) (*HullWhite, error) {
	if curve == nil {
		return nil, fmt.Errorf("hull-white: %w", termstructure.ErrNilCurve)
	}
	if !(a > 0) || !(sigma > 0) || math.IsInf(a, 0) || math.IsInf(sigma, 0) {
		return nil, fmt.Errorf("hull-white: %w: a=%v sigma=%v", ErrInvalidParameter, a, sigma)
	}
	return &HullWhite{curve: curve, params: []float64{a, sigma}}, nil
}

// NewDefaultHullWhite uses a = 0.1 and σ = 0.01.
func NewDefaultHullWhite(curve termstructure.YieldCurve) (*HullWhite, error) {
	return NewHullWhite(curve, DefaultReversion, DefaultSigma)
}

func (m *HullWhite) Reversion() float64                      { return m.params[0] }
func (m *HullWhite) Sigma() float64                          { return m.params[1] }
func (m *HullWhite) ParamCount() int                         { return len(m.params) }
func (m *HullWhite) TermStructure() termstructure.YieldCurve { return m.curve }

// Params returns a copy of [a, σ].
func (m *HullWhite) Params() []float64 {
	out := make([]float64, len(m.params))
	copy(out, m.params)
	return out
}

// SetParams overwrites [a, σ] in place. The domain is checked by Constraint, not here.
func (m *HullWhite) SetParams(params []float64) error {
	if len(params) != len(m.params) {
		return fmt.Errorf("hull-white: %w: got %d, want %d", ErrParamCount, len(params), len(m.params))
	}
	copy(m.params, params)
	return nil
}

// Constraint keeps both a and σ strictly positive.
func (m *HullWhite) Constraint() optimization.Constraint {
	return optimization.PositiveConstraint{}
}

// BondB is B(t,T) = (1 - e^{-a(T-t)}) / a.
func (m *HullWhite) BondB(t, T float64) float64 {
	a := m.Reversion()
	if a < math.Sqrt(machineEpsilon) {
		return T - t
	}
	return -math.Expm1(-a*(T-t)) / a
}

// BondA is A(t,T) so that P(t,T) = A(t,T) e^{-B(t,T) r(t)}.
func (m *HullWhite) BondA(t, T float64) float64 {
	discount1 := m.curve.Discount(t)
	discount2 := m.curve.Discount(T)
	forward := termstructure.InstantaneousForward(m.curve, t)
	temp := m.Sigma() * m.BondB(t, T)
	value := m.BondB(t, T)*forward - 0.25*temp*temp*m.BondB(0.0, 2.0*t)
	return math.Exp(value) * discount2 / discount1
}

// DiscountBond is P(now, maturity) given the short rate at now.
func (m *HullWhite) DiscountBond(now, maturity, rate float64) float64 {
	return m.BondA(now, maturity) * math.Exp(-m.BondB(now, maturity)*rate)
}

// DiscountBondOption prices a European option expiring at maturity on a
// zero-coupon bond maturing at bondMaturity.
func (m *HullWhite) DiscountBondOption(typ black.OptionType, strike, maturity, bondMaturity float64) float64 {
	return m.ForwardDiscountBondOption(typ, strike, maturity, maturity, bondMaturity)
}

// ForwardDiscountBondOption prices an option expiring at maturity with payoff
// max(w (P(maturity,bondMaturity) - strike P(maturity,bondStart)), 0).
// With bondStart == maturity it is DiscountBondOption.
func (m *HullWhite) ForwardDiscountBondOption(typ black.OptionType, strike, maturity, bondStart, bondMaturity float64) float64 {
	a := m.Reversion()
	b := m.BondB(maturity, bondMaturity) - m.BondB(maturity, bondStart)
	var v float64
	if a < math.Sqrt(machineEpsilon) {
		v = m.Sigma() * b * math.Sqrt(maturity)
	} else {
		v = m.Sigma() * b * math.Sqrt(-math.Expm1(-2.0*a*maturity)/(2.0*a))
	}
	f := m.curve.Discount(bondMaturity)
	k := m.curve.Discount(bondStart) * strike
	return black.Formula(typ, k, f, v, 1.0)
}

const machineEpsilon = 2.220446049250313e-16
