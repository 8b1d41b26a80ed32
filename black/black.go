// Package black implements the Black (1976) formula on forwards.
package black

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// OptionType is the sign of the payoff: +1 call, -1 put.
type OptionType int

const (
	Call OptionType = 1
	Put  OptionType = -1
)

func (o OptionType) String() string {
	if o == Put {
		return "Put"
	}
	return "Call"
}

// ErrNoImpliedVol is returned when a price is outside the arbitrage bounds.
var ErrNoImpliedVol = errors.New("price outside Black bounds")

// Formula returns discount * Black(type, strike, forward, stdDev), with stdDev = vol*sqrt(T).
func Formula(typ OptionType, strike, forward, stdDev, discount float64) float64 {
	w := float64(typ)
	if stdDev <= 0 || strike <= 0 || forward <= 0 {
		return discount * math.Max(w*(forward-strike), 0)
	}
	d1 := math.Log(forward/strike)/stdDev + 0.5*stdDev
	d2 := d1 - stdDev
	return discount * w * (forward*distuv.UnitNormal.CDF(w*d1) - strike*distuv.UnitNormal.CDF(w*d2))
}

// StdDevDerivative is d(Formula)/d(stdDev), identical for calls and puts.
func StdDevDerivative(strike, forward, stdDev, discount float64) float64 {
	if stdDev <= 0 || strike <= 0 || forward <= 0 {
		return 0
	}
	d1 := math.Log(forward/strike)/stdDev + 0.5*stdDev
	return discount * forward * distuv.UnitNormal.Prob(d1)
}

// ImpliedStdDev inverts Formula for stdDev by safeguarded Newton on [0, 10].
func ImpliedStdDev(typ OptionType, strike, forward, price, discount float64) (float64, error) {
	w := float64(typ)
	intrinsic := discount * math.Max(w*(forward-strike), 0)
	upper := discount * forward
	if typ == Put {
		upper = discount * strike
	}
	if math.IsNaN(price) || price < intrinsic-1e-15 || price >= upper {
		return 0, ErrNoImpliedVol
	}
	// Within rounding of intrinsic there is no time value left to invert.
	if price <= intrinsic*(1+1e-12) {
		return 0, nil
	}

	lo, hi := 0.0, 10.0
	x := 0.2
	for iter := 0; iter < 100; iter++ {
		f := Formula(typ, strike, forward, x, discount) - price
		if f == 0 {
			return x, nil
		}
		if f > 0 {
			hi = x
		} else {
			lo = x
		}
		vega := StdDevDerivative(strike, forward, x, discount)
		next := x - f/vega
		if vega <= 0 || next <= lo || next >= hi {
			next = 0.5 * (lo + hi)
		}
		// The step is the price error in stdDev units, so low-vega inputs
		// keep iterating until stdDev itself has settled.
		if math.Abs(next-x) < 1e-14 {
			return next, nil
		}
		x = next
	}
	return x, nil
}
