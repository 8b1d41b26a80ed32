package pricing

import (
	"fmt"
	"math"
)

// SwapType is the fixed-leg direction of the underlying swap.
type SwapType int

const (
	Payer SwapType = iota
	Receiver
)

func (t SwapType) String() string {
	if t == Receiver {
		return "Receiver"
	}
	return "Payer"
}

// Swaption is a European option to enter a fixed-for-floating swap. Times are
// curve times. The floating leg is valued at par: nominal at StartTime
// against nominal at the last fixed payment.
type Swaption struct {
	Type          SwapType
	Nominal       float64
	Strike        float64
	ExerciseTime  float64
	StartTime     float64
	FixedPayTimes []float64
	FixedAccruals []float64
}

// Validate checks the schedule.
func (s *Swaption) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil swaption", ErrInvalidInstrument)
	}
	if !(s.Nominal > 0) {
		return fmt.Errorf("%w: nominal %v", ErrInvalidInstrument, s.Nominal)
	}
	if !(s.ExerciseTime > 0) || s.StartTime < s.ExerciseTime {
		return fmt.Errorf("%w: exercise %v start %v", ErrInvalidInstrument, s.ExerciseTime, s.StartTime)
	}
	if len(s.FixedPayTimes) == 0 || len(s.FixedPayTimes) != len(s.FixedAccruals) {
		return fmt.Errorf("%w: %d payment times, %d accruals", ErrInvalidInstrument, len(s.FixedPayTimes), len(s.FixedAccruals))
	}
	prev := s.StartTime
	for i, t := range s.FixedPayTimes {
		if t <= prev || !(s.FixedAccruals[i] > 0) {
			return fmt.Errorf("%w: fixed period %d", ErrInvalidInstrument, i)
		}
		prev = t
	}
	if math.IsNaN(s.Strike) {
		return fmt.Errorf("%w: strike", ErrInvalidInstrument)
	}
	return nil
}

// FixedAmounts are the fixed coupons per unit strike, with the nominal added
// to the last one.
func (s *Swaption) FixedAmounts() []float64 {
	amounts := make([]float64, len(s.FixedPayTimes))
	for i, tau := range s.FixedAccruals {
		amounts[i] = s.Nominal * s.Strike * tau
	}
	amounts[len(amounts)-1] += s.Nominal
	return amounts
}

// Maturity is the last fixed payment time.
func (s *Swaption) Maturity() float64 {
	return s.FixedPayTimes[len(s.FixedPayTimes)-1]
}

// CapFloorType selects the payoff of every period.
type CapFloorType int

const (
	Cap CapFloorType = iota
	Floor
)

func (t CapFloorType) String() string {
	if t == Floor {
		return "Floor"
	}
	return "Cap"
}

// CapFloor is a strip of caplets or floorlets on a forward rate. Each period
// fixes at its start time and pays at its end time.
type CapFloor struct {
	Type       CapFloorType
	Nominal    float64
	Strike     float64
	StartTimes []float64
	EndTimes   []float64
	Accruals   []float64
}

// Validate checks the schedule.
func (c *CapFloor) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil cap", ErrInvalidInstrument)
	}
	if !(c.Nominal > 0) || !(c.Strike > 0) {
		return fmt.Errorf("%w: nominal %v strike %v", ErrInvalidInstrument, c.Nominal, c.Strike)
	}
	n := len(c.StartTimes)
	if n == 0 || len(c.EndTimes) != n || len(c.Accruals) != n {
		return fmt.Errorf("%w: inconsistent cap schedule", ErrInvalidInstrument)
	}
	for i := range c.StartTimes {
		if !(c.StartTimes[i] > 0) || c.EndTimes[i] <= c.StartTimes[i] || !(c.Accruals[i] > 0) {
			return fmt.Errorf("%w: cap period %d", ErrInvalidInstrument, i)
		}
	}
	return nil
}
