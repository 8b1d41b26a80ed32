package optimization

import (
	"errors"
	"fmt"
)

// ErrFixMaskLength is returned when a fix mask does not match the parameter count.
var ErrFixMaskLength = errors.New("fix mask length does not match parameter count")

// Projection maps a full parameter vector onto its free components and back.
type Projection struct {
	fixed []bool
	full  []float64
}

// NewProjection freezes the parameters flagged in fixed at their current values.
// An empty mask frees every parameter.
func NewProjection(params []float64, fixed []bool) (*Projection, error) {
	mask := make([]bool, len(params))
	if len(fixed) != 0 {
		if len(fixed) != len(params) {
			return nil, fmt.Errorf("%w: got %d flags for %d parameters", ErrFixMaskLength, len(fixed), len(params))
		}
		copy(mask, fixed)
	}
	full := make([]float64, len(params))
	copy(full, params)
	return &Projection{fixed: mask, full: full}, nil
}

// FreeCount returns the number of parameters left to the optimizer.
func (p *Projection) FreeCount() int {
	n := 0
	for _, f := range p.fixed {
		if !f {
			n++
		}
	}
	return n
}

// Project extracts the free components of a full vector.
func (p *Projection) Project(full []float64) []float64 {
	out := make([]float64, 0, p.FreeCount())
	for i, f := range p.fixed {
		if !f {
			out = append(out, full[i])
		}
	}
	return out
}

// Include rebuilds a full vector from free components and the frozen values.
func (p *Projection) Include(free []float64) []float64 {
	out := make([]float64, len(p.full))
	j := 0
	for i, f := range p.fixed {
		if f {
			out[i] = p.full[i]
			continue
		}
		out[i] = free[j]
		j++
	}
	return out
}

// Constraint lifts a constraint on full vectors to one on free vectors.
func (p *Projection) Constraint(c Constraint) Constraint {
	if c == nil {
		c = NoConstraint{}
	}
	return projectedConstraint{inner: c, projection: p}
}
