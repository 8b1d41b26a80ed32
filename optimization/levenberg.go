package optimization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LevenbergMarquardt is a damped Gauss-Newton least-squares solver with a
// forward-difference Jacobian and Marquardt diagonal scaling.
type LevenbergMarquardt struct {
	// Epsfcn sets the relative finite-difference step to sqrt(Epsfcn).
	Epsfcn float64
	// InitialDamping scales the first damping term by the largest diagonal of JᵀJ.
	InitialDamping float64
}

// NewLevenbergMarquardt uses Epsfcn 1e-8 and InitialDamping 1e-3.
func NewLevenbergMarquardt() LevenbergMarquardt {
	return LevenbergMarquardt{Epsfcn: 1e-8, InitialDamping: 1e-3}
}

const maxDamping = 1e16

// Minimize runs until one of the end criteria fires. Failed residual
// evaluations and infeasible trial points are treated as rejected steps.
func (lm LevenbergMarquardt) Minimize(p *Problem, ec EndCriteria) (Result, error) {
	if err := ec.Validate(); err != nil {
		return Result{}, err
	}
	x := p.Initial()
	n := len(x)
	if n == 0 {
		return Result{}, ErrNoFreeParameters
	}
	if !p.Feasible(x) {
		return Result{}, fmt.Errorf("levenberg-marquardt: initial point %v violates the constraint", x)
	}
	r, err := p.Residuals(x)
	if err != nil {
		return Result{}, fmt.Errorf("levenberg-marquardt: initial residuals: %w", err)
	}
	m := len(r)
	if m == 0 {
		return Result{}, fmt.Errorf("levenberg-marquardt: empty residual vector")
	}

	cost := 0.5 * floats.Dot(r, r)
	result := func(t EndCriteriaType, iter int) Result {
		return Result{Type: t, X: x, Iterations: iter, ResidualNorm: math.Sqrt(2 * cost)}
	}
	if ec.CheckConverged(math.Sqrt(2 * cost)) {
		return result(Converged, 0), nil
	}

	epsfcn := lm.Epsfcn
	if epsfcn <= 0 {
		epsfcn = 1e-8
	}
	lambda := -1.0
	nu := 2.0
	stationary := 0

	for iter := 1; ; iter++ {
		if ec.CheckMaxIterations(iter) {
			return result(MaxIterations, iter-1), nil
		}

		jac, err := lm.jacobian(p, x, r, math.Sqrt(epsfcn))
		if err != nil {
			return result(StationaryPoint, iter-1), nil
		}

		var jtj mat.Dense
		jtj.Mul(jac.T(), jac)
		var grad mat.VecDense
		grad.MulVec(jac.T(), mat.NewVecDense(m, r))

		if ec.CheckZeroGradientNorm(mat.Norm(&grad, math.Inf(1))) {
			return result(StationaryGradient, iter-1), nil
		}

		diag := make([]float64, n)
		for i := range diag {
			diag[i] = jtj.At(i, i)
			if diag[i] <= 0 {
				diag[i] = 1.0
			}
		}
		if lambda < 0 {
			initial := lm.InitialDamping
			if initial <= 0 {
				initial = 1e-3
			}
			lambda = initial
		}

		accepted := false
		for !accepted {
			if lambda > maxDamping {
				return result(StationaryPoint, iter), nil
			}

			damped := mat.DenseCopyOf(&jtj)
			for i := 0; i < n; i++ {
				damped.Set(i, i, jtj.At(i, i)+lambda*diag[i])
			}
			var step mat.VecDense
			if err := step.SolveVec(damped, &grad); err != nil {
				lambda *= nu
				nu *= 2
				continue
			}
			// Solve gave (JᵀJ + λD) s = Jᵀr; the descent step is -s.
			dx := make([]float64, n)
			for i := range dx {
				dx[i] = -step.AtVec(i)
			}
			xNew := make([]float64, n)
			floats.AddTo(xNew, x, dx)
			// A step below RootEpsilon is only taken when it converges; the
			// current point is otherwise reported as stationary, unmoved.
			negligible := ec.CheckStationaryPoint(floats.Norm(dx, 2), floats.Norm(x, 2))

			if !p.Feasible(xNew) {
				if negligible {
					return result(StationaryPoint, iter-1), nil
				}
				lambda *= nu
				nu *= 2
				continue
			}
			rNew, err := p.Residuals(xNew)
			if err != nil || !allFinite(rNew) {
				if negligible {
					return result(StationaryPoint, iter-1), nil
				}
				lambda *= nu
				nu *= 2
				continue
			}
			costNew := 0.5 * floats.Dot(rNew, rNew)
			if negligible {
				if ec.CheckConverged(math.Sqrt(2 * costNew)) {
					x, r, cost = xNew, rNew, costNew
					return result(Converged, iter), nil
				}
				return result(StationaryPoint, iter-1), nil
			}

			// Predicted reduction of the local linear model: ½ sᵀ(λDs + Jᵀr).
			predicted := 0.0
			for i := 0; i < n; i++ {
				predicted += step.AtVec(i) * (lambda*diag[i]*step.AtVec(i) + grad.AtVec(i))
			}
			predicted *= 0.5
			actual := cost - costNew

			if actual <= 0 || predicted <= 0 {
				lambda *= nu
				nu *= 2
				continue
			}
			rho := actual / predicted
			lambda *= math.Max(1.0/3.0, 1-math.Pow(2*rho-1, 3))
			nu = 2
			accepted = true

			before := cost
			x, r, cost = xNew, rNew, costNew

			if ec.CheckConverged(math.Sqrt(2 * cost)) {
				return result(Converged, iter), nil
			}
			if ec.CheckStationaryFunctionValue(before, cost, &stationary) {
				return result(StationaryFunctionValue, iter), nil
			}
		}
	}
}

// jacobian builds the m x n forward-difference Jacobian, stepping backwards
// when the forward point is infeasible.
func (lm LevenbergMarquardt) jacobian(p *Problem, x, r []float64, relStep float64) (*mat.Dense, error) {
	m, n := len(r), len(x)
	jac := mat.NewDense(m, n, nil)
	bumped := make([]float64, n)
	for j := 0; j < n; j++ {
		h := relStep * math.Abs(x[j])
		if h == 0 {
			h = relStep
		}
		copy(bumped, x)
		bumped[j] = x[j] + h
		if !p.Feasible(bumped) {
			h = -h
			bumped[j] = x[j] + h
		}
		rb, err := p.Residuals(bumped)
		if err != nil {
			return nil, err
		}
		for i := 0; i < m; i++ {
			jac.Set(i, j, (rb[i]-r[i])/h)
		}
	}
	return jac, nil
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
