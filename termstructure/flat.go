package termstructure

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/shortrate/market"
)

// FlatForward is a curve with a single rate for every maturity.
type FlatForward struct {
	reference   time.Time
	rate        float64
	dayCount    market.DayCount
	compounding Compounding
	frequency   market.Frequency
}

// NewFlatForward builds a flat curve quoted continuously unless comp says otherwise.
func NewFlatForward(reference time.Time, rate float64, dc market.DayCount, comp Compounding, freq market.Frequency) (*FlatForward, error) {
	if reference.IsZero() {
		return nil, fmt.Errorf("flat forward: reference date is required")
	}
	if !dc.Valid() {
		return nil, fmt.Errorf("flat forward: unsupported day count %q", dc)
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil, fmt.Errorf("flat forward: invalid rate %v", rate)
	}
	return &FlatForward{
		reference:   reference,
		rate:        rate,
		dayCount:    dc,
		compounding: comp,
		frequency:   freq,
	}, nil
}

func (f *FlatForward) ReferenceDate() time.Time  { return f.reference }
func (f *FlatForward) DayCount() market.DayCount { return f.dayCount }

// Rate returns the quoted flat rate.
func (f *FlatForward) Rate() float64 { return f.rate }

// Discount returns the discount factor at curve time t.
func (f *FlatForward) Discount(t float64) float64 {
	return 1.0 / CompoundFactor(f.rate, t, f.compounding, f.frequency)
}

// DF returns the discount factor at date d.
func (f *FlatForward) DF(d time.Time) float64 {
	return discountAt(f, d)
}
