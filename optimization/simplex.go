package optimization

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// Simplex minimizes the sum of squares with gonum's Nelder-Mead. Infeasible or
// failing points are given a penalty cost.
type Simplex struct {
	// Lambda is the initial simplex size; zero picks a tenth of the smallest
	// non-zero starting coordinate.
	Lambda float64
}

// Minimize maps gonum termination statuses onto EndCriteriaType.
func (s Simplex) Minimize(p *Problem, ec EndCriteria) (Result, error) {
	if err := ec.Validate(); err != nil {
		return Result{}, err
	}
	x0 := p.Initial()
	if len(x0) == 0 {
		return Result{}, ErrNoFreeParameters
	}
	if !p.Feasible(x0) {
		return Result{}, fmt.Errorf("simplex: initial point %v violates the constraint", x0)
	}
	cost0, err := p.Cost(x0)
	if err != nil {
		return Result{}, fmt.Errorf("simplex: initial residuals: %w", err)
	}
	if ec.CheckConverged(math.Sqrt(cost0)) {
		return Result{Type: Converged, X: x0, ResidualNorm: math.Sqrt(cost0)}, nil
	}
	penalty := 1e6 * (1 + cost0)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if !p.Feasible(x) {
				return penalty
			}
			c, err := p.Cost(x)
			if err != nil || math.IsNaN(c) || math.IsInf(c, 0) {
				return penalty
			}
			return c
		},
	}
	settings := &optimize.Settings{
		MajorIterations: ec.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   ec.FunctionEpsilon * ec.FunctionEpsilon,
			Relative:   ec.FunctionEpsilon,
			Iterations: ec.MaxStationaryStateIterations,
		},
	}
	method := &optimize.NelderMead{SimplexSize: s.simplexSize(x0)}

	res, err := optimize.Minimize(problem, x0, settings, method)
	if res == nil {
		if err == nil {
			err = errors.New("no result")
		}
		return Result{}, fmt.Errorf("simplex: %w", err)
	}

	x := res.X
	cost := res.F
	if !p.Feasible(x) || cost >= penalty {
		x, cost = x0, cost0
	}
	out := Result{
		Type:         simplexEndCriteria(res.Status, math.Sqrt(cost), ec),
		X:            x,
		Iterations:   res.Stats.MajorIterations,
		ResidualNorm: math.Sqrt(cost),
	}
	return out, nil
}

func (s Simplex) simplexSize(x0 []float64) float64 {
	if s.Lambda > 0 {
		return s.Lambda
	}
	size := math.Inf(1)
	for _, v := range x0 {
		if a := math.Abs(v); a > 0 && a < size {
			size = a
		}
	}
	if math.IsInf(size, 1) {
		return 0.05
	}
	return 0.1 * size
}

func simplexEndCriteria(status optimize.Status, residualNorm float64, ec EndCriteria) EndCriteriaType {
	if ec.CheckConverged(residualNorm) {
		return Converged
	}
	switch status {
	case optimize.Success, optimize.FunctionThreshold:
		return Converged
	case optimize.FunctionConvergence:
		return StationaryFunctionValue
	case optimize.GradientThreshold:
		return StationaryGradient
	case optimize.IterationLimit, optimize.FunctionEvaluationLimit, optimize.RuntimeLimit:
		return MaxIterations
	default:
		return StationaryPoint
	}
}
