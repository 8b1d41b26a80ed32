package optimization

import (
	"errors"

	"gonum.org/v1/gonum/floats"
)

// ErrNoFreeParameters is returned when every parameter is fixed.
var ErrNoFreeParameters = errors.New("no free parameters")

// ResidualFunc evaluates the residual vector at x.
type ResidualFunc func(x []float64) ([]float64, error)

// Problem is a least-squares problem: minimise the sum of squared residuals
// subject to a constraint.
type Problem struct {
	residuals  ResidualFunc
	constraint Constraint
	initial    []float64

	evaluations int
}

// NewProblem copies the starting point.
func NewProblem(residuals ResidualFunc, constraint Constraint, initial []float64) *Problem {
	if constraint == nil {
		constraint = NoConstraint{}
	}
	x := make([]float64, len(initial))
	copy(x, initial)
	return &Problem{residuals: residuals, constraint: constraint, initial: x}
}

// Initial returns a copy of the starting point.
func (p *Problem) Initial() []float64 {
	x := make([]float64, len(p.initial))
	copy(x, p.initial)
	return x
}

// Feasible tests the constraint.
func (p *Problem) Feasible(x []float64) bool {
	return p.constraint.Test(x)
}

// Residuals evaluates the residual vector.
func (p *Problem) Residuals(x []float64) ([]float64, error) {
	p.evaluations++
	return p.residuals(x)
}

// Cost returns the sum of squared residuals.
func (p *Problem) Cost(x []float64) (float64, error) {
	r, err := p.Residuals(x)
	if err != nil {
		return 0, err
	}
	return floats.Dot(r, r), nil
}

// Evaluations returns the number of residual evaluations so far.
func (p *Problem) Evaluations() int {
	return p.evaluations
}

// Result is the outcome of a minimization. X holds the best point found.
type Result struct {
	Type         EndCriteriaType
	X            []float64
	Iterations   int
	ResidualNorm float64
}

// Method minimizes a Problem under EndCriteria.
type Method interface {
	Minimize(p *Problem, ec EndCriteria) (Result, error)
}
