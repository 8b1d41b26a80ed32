// Package optimization provides least-squares minimizers with explicit end criteria.
package optimization

import (
	"fmt"
	"math"
)

// EndCriteriaType is the reason a minimization stopped.
type EndCriteriaType int

const (
	None EndCriteriaType = iota
	Converged
	MaxIterations
	StationaryPoint
	StationaryFunctionValue
	StationaryGradient
)

func (t EndCriteriaType) String() string {
	switch t {
	case Converged:
		return "Converged"
	case MaxIterations:
		return "MaxIterations"
	case StationaryPoint:
		return "StationaryPoint"
	case StationaryFunctionValue:
		return "StationaryFunctionValue"
	case StationaryGradient:
		return "StationaryGradient"
	default:
		return "None"
	}
}

// Terminal reports whether t is one of the absorbing end states.
func (t EndCriteriaType) Terminal() bool {
	return t != None
}

// EndCriteria controls optimizer termination.
type EndCriteria struct {
	MaxIterations                int
	MaxStationaryStateIterations int
	RootEpsilon                  float64
	FunctionEpsilon              float64
	GradientNormEpsilon          float64
}

// NewEndCriteria validates and builds an EndCriteria.
func NewEndCriteria(maxIterations, maxStationaryStateIterations int, rootEpsilon, functionEpsilon, gradientNormEpsilon float64) (EndCriteria, error) {
	ec := EndCriteria{
		MaxIterations:                maxIterations,
		MaxStationaryStateIterations: maxStationaryStateIterations,
		RootEpsilon:                  rootEpsilon,
		FunctionEpsilon:              functionEpsilon,
		GradientNormEpsilon:          gradientNormEpsilon,
	}
	return ec, ec.Validate()
}

// Validate checks the iteration limits and tolerances.
func (ec EndCriteria) Validate() error {
	if ec.MaxIterations <= 0 {
		return fmt.Errorf("end criteria: max iterations must be positive, got %d", ec.MaxIterations)
	}
	if ec.MaxStationaryStateIterations <= 1 {
		return fmt.Errorf("end criteria: max stationary state iterations must be > 1, got %d", ec.MaxStationaryStateIterations)
	}
	if ec.MaxStationaryStateIterations > ec.MaxIterations {
		return fmt.Errorf("end criteria: max stationary state iterations (%d) exceed max iterations (%d)",
			ec.MaxStationaryStateIterations, ec.MaxIterations)
	}
	for _, v := range []float64{ec.RootEpsilon, ec.FunctionEpsilon, ec.GradientNormEpsilon} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("end criteria: tolerances must be non-negative")
		}
	}
	return nil
}

// CheckMaxIterations reports whether iteration is past the limit, so that
// exactly MaxIterations iterations run.
func (ec EndCriteria) CheckMaxIterations(iteration int) bool {
	return iteration > ec.MaxIterations
}

// CheckStationaryPoint reports a step shorter than RootEpsilon relative to the point size.
func (ec EndCriteria) CheckStationaryPoint(stepNorm, pointNorm float64) bool {
	return stepNorm <= ec.RootEpsilon*(pointNorm+ec.RootEpsilon)
}

// CheckStationaryFunctionValue counts consecutive iterations whose relative
// improvement is below FunctionEpsilon and fires once the count passes
// MaxStationaryStateIterations.
func (ec EndCriteria) CheckStationaryFunctionValue(before, after float64, stationary *int) bool {
	if math.Abs(before-after) > ec.FunctionEpsilon*math.Max(math.Abs(before), ec.FunctionEpsilon) {
		*stationary = 0
		return false
	}
	*stationary++
	return *stationary > ec.MaxStationaryStateIterations
}

// CheckZeroGradientNorm reports a gradient below GradientNormEpsilon.
func (ec EndCriteria) CheckZeroGradientNorm(gradientNorm float64) bool {
	return gradientNorm <= ec.GradientNormEpsilon
}

// CheckConverged reports a residual norm at or below FunctionEpsilon.
func (ec EndCriteria) CheckConverged(residualNorm float64) bool {
	return residualNorm <= ec.FunctionEpsilon
}
