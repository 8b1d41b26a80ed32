package pricing

import (
	"fmt"
	"math"

	"github.com/meenmo/shortrate/black"
	"github.com/meenmo/shortrate/termstructure"
)

// Annuity is sum_i τ_i P(0,T_i) over the fixed leg, times the nominal.
func Annuity(s *Swaption, curve termstructure.YieldCurve) float64 {
	sum := 0.0
	for i, t := range s.FixedPayTimes {
		sum += s.FixedAccruals[i] * curve.Discount(t)
	}
	return s.Nominal * sum
}

// ForwardSwapRate is the fixed rate that makes the underlying swap worth zero
// with a par floating leg.
func ForwardSwapRate(s *Swaption, curve termstructure.YieldCurve) float64 {
	return s.Nominal * (curve.Discount(s.StartTime) - curve.Discount(s.Maturity())) / Annuity(s, curve)
}

func swaptionOptionType(t SwapType) black.OptionType {
	if t == Receiver {
		return black.Put
	}
	return black.Call
}

// BlackSwaptionPrice values the swaption with Black's formula on the forward swap rate.
func BlackSwaptionPrice(s *Swaption, curve termstructure.YieldCurve, vol float64) (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if curve == nil {
		return 0, fmt.Errorf("black swaption: %w", termstructure.ErrNilCurve)
	}
	stdDev := vol * math.Sqrt(s.ExerciseTime)
	return black.Formula(swaptionOptionType(s.Type), s.Strike, ForwardSwapRate(s, curve), stdDev, Annuity(s, curve)), nil
}

// BlackSwaptionVolatility inverts BlackSwaptionPrice.
func BlackSwaptionVolatility(s *Swaption, curve termstructure.YieldCurve, price float64) (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	stdDev, err := black.ImpliedStdDev(swaptionOptionType(s.Type), s.Strike, ForwardSwapRate(s, curve), price, Annuity(s, curve))
	if err != nil {
		return 0, fmt.Errorf("black swaption: %w", err)
	}
	return stdDev / math.Sqrt(s.ExerciseTime), nil
}

// ForwardRates returns the simply compounded forward of every cap period.
func ForwardRates(c *CapFloor, curve termstructure.YieldCurve) []float64 {
	out := make([]float64, len(c.StartTimes))
	for i := range c.StartTimes {
		out[i] = (curve.Discount(c.StartTimes[i])/curve.Discount(c.EndTimes[i]) - 1.0) / c.Accruals[i]
	}
	return out
}

// BlackCapFloorPrice values every caplet with Black's formula at one flat volatility.
func BlackCapFloorPrice(c *CapFloor, curve termstructure.YieldCurve, vol float64) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if curve == nil {
		return 0, fmt.Errorf("black cap/floor: %w", termstructure.ErrNilCurve)
	}
	typ := black.Call
	if c.Type == Floor {
		typ = black.Put
	}
	value := 0.0
	for i, fwd := range ForwardRates(c, curve) {
		df := c.Nominal * c.Accruals[i] * curve.Discount(c.EndTimes[i])
		value += black.Formula(typ, c.Strike, fwd, vol*math.Sqrt(c.StartTimes[i]), df)
	}
	return value, nil
}

// BlackCapFloorVega is d(BlackCapFloorPrice)/d(vol).
func BlackCapFloorVega(c *CapFloor, curve termstructure.YieldCurve, vol float64) float64 {
	vega := 0.0
	for i, fwd := range ForwardRates(c, curve) {
		df := c.Nominal * c.Accruals[i] * curve.Discount(c.EndTimes[i])
		sqrtT := math.Sqrt(c.StartTimes[i])
		vega += sqrtT * black.StdDevDerivative(c.Strike, fwd, vol*sqrtT, df)
	}
	return vega
}

// BlackCapFloorVolatility finds the flat volatility that reprices the cap by
// safeguarded Newton on [0, 5].
func BlackCapFloorVolatility(c *CapFloor, curve termstructure.YieldCurve, price float64) (float64, error) {
	lo, hi := 0.0, 5.0
	flo, err := BlackCapFloorPrice(c, curve, lo)
	if err != nil {
		return 0, err
	}
	fhi, _ := BlackCapFloorPrice(c, curve, hi)
	if math.IsNaN(price) || price < flo || price > fhi {
		return 0, fmt.Errorf("black cap/floor: %w", black.ErrNoImpliedVol)
	}
	vol := 0.2
	for iter := 0; iter < 100; iter++ {
		p, _ := BlackCapFloorPrice(c, curve, vol)
		f := p - price
		if math.Abs(f) < 1e-14*math.Max(1, price) {
			return vol, nil
		}
		if f > 0 {
			hi = vol
		} else {
			lo = vol
		}
		vega := BlackCapFloorVega(c, curve, vol)
		next := vol - f/vega
		if vega <= 0 || next <= lo || next >= hi {
			next = 0.5 * (lo + hi)
		}
		if math.Abs(next-vol) < 1e-15 {
			return next, nil
		}
		vol = next
	}
	return vol, nil
}
