// Package termstructure provides yield curves on an explicit reference date.
package termstructure

import (
	"errors"
	"math"
	"time"

	"github.com/meenmo/shortrate/market"
)

var (
	// ErrNilCurve is returned when a required curve argument is nil.
	ErrNilCurve = errors.New("nil curve")
)

// YieldCurve provides discount factors on a time axis measured from ReferenceDate
// in the curve's day count.
type YieldCurve interface {
	ReferenceDate() time.Time
	DayCount() market.DayCount
	Discount(t float64) float64
	DF(d time.Time) float64
}

// Compounding selects how a rate is turned into a growth factor.
type Compounding int

const (
	Simple Compounding = iota
	Compounded
	Continuous
)

func (c Compounding) String() string {
	switch c {
	case Simple:
		return "Simple"
	case Compounded:
		return "Compounded"
	default:
		return "Continuous"
	}
}

// TimeFromReference converts a date into curve time.
func TimeFromReference(c YieldCurve, d time.Time) float64 {
	return c.DayCount().YearFraction(c.ReferenceDate(), d)
}

// CompoundFactor is the growth of one unit at rate over t years.
func CompoundFactor(rate, t float64, comp Compounding, freq market.Frequency) float64 {
	switch comp {
	case Simple:
		return 1.0 + rate*t
	case Compounded:
		f := float64(freq.PerYear())
		return math.Pow(1.0+rate/f, f*t)
	default:
		return math.Exp(rate * t)
	}
}

// ImpliedRate inverts CompoundFactor.
func ImpliedRate(compound, t float64, comp Compounding, freq market.Frequency) float64 {
	if t <= 0 {
		return 0
	}
	switch comp {
	case Simple:
		return (compound - 1.0) / t
	case Compounded:
		f := float64(freq.PerYear())
		return f * (math.Pow(compound, 1.0/(f*t)) - 1.0)
	default:
		return math.Log(compound) / t
	}
}

// ZeroRate returns the rate from the reference date to d quoted with dc/comp/freq.
func ZeroRate(c YieldCurve, d time.Time, dc market.DayCount, comp Compounding, freq market.Frequency) float64 {
	t := dc.YearFraction(c.ReferenceDate(), d)
	if t <= 0 {
		// Instantaneous short rate at the reference date.
		return InstantaneousForward(c, 0)
	}
	return ImpliedRate(1.0/c.DF(d), t, comp, freq)
}

// ForwardRate returns the rate between d1 and d2 quoted with dc/comp/freq.
func ForwardRate(c YieldCurve, d1, d2 time.Time, dc market.DayCount, comp Compounding, freq market.Frequency) float64 {
	t := dc.YearFraction(d1, d2)
	if t <= 0 {
		return InstantaneousForward(c, TimeFromReference(c, d1))
	}
	return ImpliedRate(c.DF(d1)/c.DF(d2), t, comp, freq)
}

const forwardBump = 1e-4

// InstantaneousForward returns f(0,t) by differencing log discount factors.
func InstantaneousForward(c YieldCurve, t float64) float64 {
	lo := t - forwardBump
	if lo < 0 {
		lo = 0
	}
	hi := lo + 2*forwardBump
	return -(math.Log(c.Discount(hi)) - math.Log(c.Discount(lo))) / (hi - lo)
}

// discountAt is the date form shared by the curve implementations.
func discountAt(c YieldCurve, d time.Time) float64 {
	return c.Discount(TimeFromReference(c, d))
}
