package pricing

import (
	"fmt"
	"math"

	"github.com/meenmo/shortrate/black"
	"github.com/meenmo/shortrate/model"
)

// JamshidianSwaptionEngine prices European swaptions by splitting the
// underlying coupon bond into options on zero-coupon bonds.
type JamshidianSwaptionEngine struct {
	model model.AffineModel
}

// NewJamshidianSwaptionEngine prices with m, which must not be nil.
func NewJamshidianSwaptionEngine(m model.AffineModel) (*JamshidianSwaptionEngine, error) {
	if m == nil {
		return nil, fmt.Errorf("jamshidian: %w", ErrNilModel)
	}
	return &JamshidianSwaptionEngine{model: m}, nil
}

func (e *JamshidianSwaptionEngine) Model() model.ShortRateModel { return e.model }

// PriceSwaption returns the option value at the curve reference date.
func (e *JamshidianSwaptionEngine) PriceSwaption(s *Swaption) (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	amounts := s.FixedAmounts()
	rStar, err := e.criticalRate(s, amounts)
	if err != nil {
		return 0, err
	}

	// A payer swaption is a put on the coupon bond.
	typ := black.Put
	if s.Type == Receiver {
		typ = black.Call
	}
	startBond := e.model.DiscountBond(s.ExerciseTime, s.StartTime, rStar)
	value := 0.0
	for i, t := range s.FixedPayTimes {
		strike := e.model.DiscountBond(s.ExerciseTime, t, rStar) / startBond
		value += amounts[i] * e.model.ForwardDiscountBondOption(typ, strike, s.ExerciseTime, s.StartTime, t)
	}
	return value, nil
}

// criticalRate solves sum_i c_i P(T,T_i,r) = N P(T,S,r) for r. The ratio form
// g(r) below is strictly decreasing, so a bracket always exists.
func (e *JamshidianSwaptionEngine) criticalRate(s *Swaption, amounts []float64) (float64, error) {
	g := func(r float64) float64 {
		start := e.model.DiscountBond(s.ExerciseTime, s.StartTime, r)
		sum := 0.0
		for i, t := range s.FixedPayTimes {
			sum += amounts[i] * e.model.DiscountBond(s.ExerciseTime, t, r) / start
		}
		return sum - s.Nominal
	}

	lo, hi := -0.05, 0.05
	glo, ghi := g(lo), g(hi)
	for k := 0; glo < 0 && k < 60; k++ {
		lo = 2*lo - 0.05
		glo = g(lo)
	}
	for k := 0; ghi > 0 && k < 60; k++ {
		hi = 2*hi + 0.05
		ghi = g(hi)
	}
	if !(glo >= 0 && ghi <= 0) {
		return 0, fmt.Errorf("jamshidian: %w in [%v, %v]", ErrNoCriticalRate, lo, hi)
	}

	const (
		accuracy = 1e-12
		bump     = 1e-7
	)
	r := 0.5 * (lo + hi)
	for iter := 0; iter < 200; iter++ {
		f := g(r)
		if math.Abs(f) < accuracy*s.Nominal {
			return r, nil
		}
		if f > 0 {
			lo = r
		} else {
			hi = r
		}
		slope := (g(r+bump) - f) / bump
		next := r - f/slope
		if slope >= 0 || next <= lo || next >= hi || math.IsNaN(next) {
			next = 0.5 * (lo + hi)
		}
		if math.Abs(next-r) < accuracy {
			return next, nil
		}
		r = next
	}
	return r, nil
}
