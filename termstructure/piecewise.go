package termstructure

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/meenmo/shortrate/market"
)

var (
	// ErrNoHelpers is returned when a bootstrap is asked to fit nothing.
	ErrNoHelpers = errors.New("no rate helpers")
	// ErrBootstrapFailed is returned when a pillar cannot be solved.
	ErrBootstrapFailed = errors.New("bootstrap failed")
)

// BootstrapOptions controls the per-pillar Newton solve.
type BootstrapOptions struct {
	// Tolerance is the quote tolerance for Newton-Raphson convergence.
	Tolerance float64
	// MaxIterations bounds the Newton iterations per pillar.
	MaxIterations int
	// DampingFactor clamps each step to DampingFactor * current guess.
	DampingFactor float64
	// MinDiscountFactor floors discount factors.
	MinDiscountFactor float64
	// DerivativeThreshold stops the iteration when the slope vanishes.
	DerivativeThreshold float64
}

// DefaultBootstrapOptions matches the defaults used across the curve code.
var DefaultBootstrapOptions = BootstrapOptions{
	Tolerance:           1e-12,
	MaxIterations:       100,
	DampingFactor:       0.5,
	MinDiscountFactor:   1e-9,
	DerivativeThreshold: 1e-15,
}

// PiecewiseLogDiscount is a discount curve with log-linear interpolation between
// bootstrapped pillars and flat-forward extrapolation past the ends.
type PiecewiseLogDiscount struct {
	reference time.Time
	dayCount  market.DayCount
	dates     []time.Time
	times     []float64
	dfs       []float64
}

// Bootstrap fits one pillar per helper, in pillar order, so that every helper
// reprices its own quote.
func Bootstrap(reference time.Time, helpers []RateHelper, dc market.DayCount, opts BootstrapOptions) (*PiecewiseLogDiscount, error) {
	if len(helpers) == 0 {
		return nil, ErrNoHelpers
	}
	if !dc.Valid() {
		return nil, fmt.Errorf("bootstrap: unsupported day count %q", dc)
	}

	sorted := make([]RateHelper, len(helpers))
	copy(sorted, helpers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Pillar().Before(sorted[j].Pillar())
	})

	c := &PiecewiseLogDiscount{
		reference: reference,
		dayCount:  dc,
		dates:     []time.Time{reference},
		times:     []float64{0},
		dfs:       []float64{1.0},
	}

	for _, h := range sorted {
		pillar := h.Pillar()
		last := c.dates[len(c.dates)-1]
		if !pillar.After(last) {
			return nil, fmt.Errorf("%w: %s pillar %s not after %s", ErrBootstrapFailed, h, pillar.Format("2006-01-02"), last.Format("2006-01-02"))
		}
		t := dc.YearFraction(reference, pillar)

		// Initial guess: flat forward from the previous pillar at the previous zero rate, or 2%.
		prevT, prevDF := c.times[len(c.times)-1], c.dfs[len(c.dfs)-1]
		rate := 0.02
		if prevT > 0 {
			rate = -math.Log(prevDF) / prevT
		}
		guess := prevDF * math.Exp(-rate*(t-prevT))

		c.dates = append(c.dates, pillar)
		c.times = append(c.times, t)
		c.dfs = append(c.dfs, guess)

		df, err := c.solvePillar(h, opts)
		if err != nil {
			return nil, err
		}
		c.dfs[len(c.dfs)-1] = df
	}
	return c, nil
}

// solvePillar runs Newton-Raphson on the last node with a finite-difference slope.
func (c *PiecewiseLogDiscount) solvePillar(h RateHelper, opts BootstrapOptions) (float64, error) {
	last := len(c.dfs) - 1
	target := h.Quote()

	residual := func(x float64) float64 {
		c.dfs[last] = x
		return h.ImpliedQuote(c) - target
	}

	guess := c.dfs[last]
	for iter := 0; iter < opts.MaxIterations; iter++ {
		f := residual(guess)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: %s: non-finite residual", ErrBootstrapFailed, h)
		}
		if math.Abs(f) < opts.Tolerance {
			return guess, nil
		}

		bump := 1e-7 * guess
		fPrime := (residual(guess+bump) - f) / bump
		if math.Abs(fPrime) < opts.DerivativeThreshold {
			break
		}

		delta := f / fPrime
		// Damping
		if math.Abs(delta) > opts.DampingFactor*guess {
			delta = opts.DampingFactor * guess * (delta / math.Abs(delta))
		}
		guess -= delta
		if guess <= opts.MinDiscountFactor {
			guess = opts.MinDiscountFactor
		}
		if math.Abs(delta) < 1e-15 {
			return guess, nil
		}
	}

	f := residual(guess)
	if math.Abs(f) < math.Sqrt(opts.Tolerance) {
		return guess, nil
	}
	return 0, fmt.Errorf("%w: %s: residual %.3e after %d iterations", ErrBootstrapFailed, h, f, opts.MaxIterations)
}

func (c *PiecewiseLogDiscount) ReferenceDate() time.Time  { return c.reference }
func (c *PiecewiseLogDiscount) DayCount() market.DayCount { return c.dayCount }

// Discount returns the interpolated discount factor at curve time t.
func (c *PiecewiseLogDiscount) Discount(t float64) float64 {
	if t <= 0 {
		return 1.0
	}
	return logLinear(c.times, c.dfs, t)
}

// DF returns the discount factor at date d.
func (c *PiecewiseLogDiscount) DF(d time.Time) float64 {
	return discountAt(c, d)
}

// PillarDates returns the node dates, reference date first.
func (c *PiecewiseLogDiscount) PillarDates() []time.Time {
	out := make([]time.Time, len(c.dates))
	copy(out, c.dates)
	return out
}

// PillarDFs returns all bootstrapped discount factors keyed by date.
// For diagnostic purposes only.
func (c *PiecewiseLogDiscount) PillarDFs() map[time.Time]float64 {
	result := make(map[time.Time]float64, len(c.dates))
	for i, d := range c.dates {
		result[d] = c.dfs[i]
	}
	return result
}
