package optimization

import "math"

// Constraint restricts the admissible parameter vectors.
type Constraint interface {
	Test(params []float64) bool
}

// NoConstraint accepts any finite vector.
type NoConstraint struct{}

func (NoConstraint) Test(params []float64) bool {
	for _, p := range params {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return false
		}
	}
	return true
}

// PositiveConstraint requires every parameter to be strictly positive.
type PositiveConstraint struct{}

func (PositiveConstraint) Test(params []float64) bool {
	for _, p := range params {
		if !(p > 0) || math.IsInf(p, 0) {
			return false
		}
	}
	return true
}

// BoundaryConstraint requires Low <= p <= High for every parameter.
type BoundaryConstraint struct {
	Low, High float64
}

func (b BoundaryConstraint) Test(params []float64) bool {
	for _, p := range params {
		if !(p >= b.Low && p <= b.High) {
			return false
		}
	}
	return true
}

// CompositeConstraint requires every part to hold.
type CompositeConstraint []Constraint

func (c CompositeConstraint) Test(params []float64) bool {
	for _, part := range c {
		if !part.Test(params) {
			return false
		}
	}
	return true
}

// projectedConstraint tests the full vector rebuilt from the free parameters.
type projectedConstraint struct {
	inner      Constraint
	projection *Projection
}

func (p projectedConstraint) Test(free []float64) bool {
	return p.inner.Test(p.projection.Include(free))
}
