package optimization_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/shortrate/optimization"
)

func lineResiduals(x []float64) ([]float64, error) {
	ts := []float64{0, 1, 2, 3, 4}
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = x[0] + x[1]*t - (1 + 2*t)
	}
	return out, nil
}

func rosenbrock(x []float64) ([]float64, error) {
	return []float64{10 * (x[1] - x[0]*x[0]), 1 - x[0]}, nil
}

// noisyLine has no exact fit, so the minimum leaves a residual.
func noisyLine(x []float64) ([]float64, error) {
	ys := []float64{1.1, 2.9, 5.2, 6.8, 9.1}
	out := make([]float64, len(ys))
	for i, y := range ys {
		out[i] = x[0] + x[1]*float64(i) - y
	}
	return out, nil
}

func endCriteria(t *testing.T) optimization.EndCriteria {
	t.Helper()
	ec, err := optimization.NewEndCriteria(1000, 100, 1e-8, 1e-10, 1e-12)
	require.NoError(t, err)
	return ec
}

func TestEndCriteriaValidation(t *testing.T) {
	t.Parallel()

	_, err := optimization.NewEndCriteria(10000, 100, 1e-6, 1e-8, 1e-8)
	require.NoError(t, err)

	_, err = optimization.NewEndCriteria(0, 100, 1e-6, 1e-8, 1e-8)
	assert.Error(t, err)
	_, err = optimization.NewEndCriteria(100, 1, 1e-6, 1e-8, 1e-8)
	assert.Error(t, err)
	_, err = optimization.NewEndCriteria(10, 11, 1e-6, 1e-8, 1e-8)
	assert.Error(t, err)
	_, err = optimization.NewEndCriteria(100, 10, -1, 1e-8, 1e-8)
	assert.Error(t, err)
}

func TestEndCriteriaChecks(t *testing.T) {
	t.Parallel()

	ec := optimization.EndCriteria{MaxIterations: 5, MaxStationaryStateIterations: 2, RootEpsilon: 1e-6, FunctionEpsilon: 1e-8, GradientNormEpsilon: 1e-8}
	assert.False(t, ec.CheckMaxIterations(5))
	assert.True(t, ec.CheckMaxIterations(6))
	assert.True(t, ec.CheckConverged(1e-9))
	assert.False(t, ec.CheckConverged(1e-7))
	assert.True(t, ec.CheckZeroGradientNorm(0))
	assert.True(t, ec.CheckStationaryPoint(1e-9, 1))
	assert.False(t, ec.CheckStationaryPoint(1e-3, 1))

	count := 0
	assert.False(t, ec.CheckStationaryFunctionValue(1, 1, &count))
	assert.False(t, ec.CheckStationaryFunctionValue(1, 1, &count))
	assert.True(t, ec.CheckStationaryFunctionValue(1, 1, &count))
	assert.False(t, ec.CheckStationaryFunctionValue(1, 0.5, &count))
	assert.Zero(t, count)

	assert.Equal(t, "StationaryGradient", optimization.StationaryGradient.String())
	assert.False(t, optimization.None.Terminal())
	assert.True(t, optimization.MaxIterations.Terminal())
}

func TestProjection(t *testing.T) {
	t.Parallel()

	p, err := optimization.NewProjection([]float64{1, 2, 3}, []bool{true, false, true})
	require.NoError(t, err)
	assert.Equal(t, 1, p.FreeCount())
	assert.Equal(t, []float64{2}, p.Project([]float64{1, 2, 3}))
	assert.Equal(t, []float64{1, 5, 3}, p.Include([]float64{5}))

	all, err := optimization.NewProjection([]float64{1, 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, all.FreeCount())

	_, err = optimization.NewProjection([]float64{1, 2}, []bool{true})
	assert.ErrorIs(t, err, optimization.ErrFixMaskLength)

	// The lifted constraint sees the frozen values too.
	c := p.Constraint(optimization.PositiveConstraint{})
	assert.True(t, c.Test([]float64{0.5}))
	assert.False(t, c.Test([]float64{-0.5}))
	neg, err := optimization.NewProjection([]float64{-1, 2}, []bool{true, false})
	require.NoError(t, err)
	assert.False(t, neg.Constraint(optimization.PositiveConstraint{}).Test([]float64{1}))
}

func TestConstraints(t *testing.T) {
	t.Parallel()

	assert.True(t, optimization.NoConstraint{}.Test([]float64{-1, 0, 1}))
	assert.False(t, optimization.PositiveConstraint{}.Test([]float64{1, 0}))
	b := optimization.BoundaryConstraint{Low: 0, High: 1}
	assert.True(t, b.Test([]float64{0, 1}))
	assert.False(t, b.Test([]float64{1.5}))
	composite := optimization.CompositeConstraint{optimization.PositiveConstraint{}, b}
	assert.False(t, composite.Test([]float64{0}))
	assert.True(t, composite.Test([]float64{0.5}))
}

func TestLevenbergMarquardtLinear(t *testing.T) {
	t.Parallel()

	p := optimization.NewProblem(lineResiduals, nil, []float64{0, 0})
	res, err := optimization.NewLevenbergMarquardt().Minimize(p, endCriteria(t))
	require.NoError(t, err)
	assert.Equal(t, optimization.Converged, res.Type)
	assert.InDelta(t, 1.0, res.X[0], 1e-8)
	assert.InDelta(t, 2.0, res.X[1], 1e-8)
	assert.Greater(t, p.Evaluations(), 0)
}

func TestLevenbergMarquardtRosenbrock(t *testing.T) {
	t.Parallel()

	p := optimization.NewProblem(rosenbrock, nil, []float64{-1.2, 1})
	res, err := optimization.NewLevenbergMarquardt().Minimize(p, endCriteria(t))
	require.NoError(t, err)
	assert.True(t, res.Type.Terminal())
	assert.InDelta(t, 1.0, res.X[0], 1e-6)
	assert.InDelta(t, 1.0, res.X[1], 1e-6)
}

func TestLevenbergMarquardtStartsConverged(t *testing.T) {
	t.Parallel()

	p := optimization.NewProblem(lineResiduals, nil, []float64{1, 2})
	res, err := optimization.NewLevenbergMarquardt().Minimize(p, endCriteria(t))
	require.NoError(t, err)
	assert.Equal(t, optimization.Converged, res.Type)
	assert.Zero(t, res.Iterations)
	assert.Equal(t, []float64{1, 2}, res.X)
}

func TestLevenbergMarquardtRestartDoesNotMove(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		fn    optimization.ResidualFunc
		start []float64
	}{
		{"residual left", noisyLine, []float64{0, 0}},
		{"exact fit", rosenbrock, []float64{-1.2, 1}},
	}
	for _, tc := range cases {
		first, err := optimization.NewLevenbergMarquardt().Minimize(optimization.NewProblem(tc.fn, nil, tc.start), endCriteria(t))
		require.NoError(t, err)
		require.True(t, first.Type.Terminal(), tc.name)

		again, err := optimization.NewLevenbergMarquardt().Minimize(optimization.NewProblem(tc.fn, nil, first.X), endCriteria(t))
		require.NoError(t, err)
		assert.True(t, again.Type.Terminal(), tc.name)
		assert.InDeltaSlice(t, first.X, again.X, 1e-10, tc.name)
		assert.InDelta(t, first.ResidualNorm, again.ResidualNorm, 1e-12, tc.name)
	}
}

func TestLevenbergMarquardtMaxIterations(t *testing.T) {
	t.Parallel()

	ec, err := optimization.NewEndCriteria(2, 2, 1e-12, 1e-14, 1e-14)
	require.NoError(t, err)
	p := optimization.NewProblem(rosenbrock, nil, []float64{-1.2, 1})
	res, err := optimization.NewLevenbergMarquardt().Minimize(p, ec)
	require.NoError(t, err)
	assert.Equal(t, optimization.MaxIterations, res.Type)
	assert.Equal(t, 2, res.Iterations)
}

func TestLevenbergMarquardtRespectsConstraint(t *testing.T) {
	t.Parallel()

	// Unconstrained minimum at -1; the constraint keeps x positive.
	residuals := func(x []float64) ([]float64, error) { return []float64{x[0] + 1}, nil }
	p := optimization.NewProblem(residuals, optimization.PositiveConstraint{}, []float64{1})
	res, err := optimization.NewLevenbergMarquardt().Minimize(p, endCriteria(t))
	require.NoError(t, err)
	assert.True(t, res.Type.Terminal())
	assert.Greater(t, res.X[0], 0.0)
	assert.Less(t, res.X[0], 1.0)
}

func TestMinimizeErrors(t *testing.T) {
	t.Parallel()

	ec := endCriteria(t)
	_, err := optimization.NewLevenbergMarquardt().Minimize(optimization.NewProblem(lineResiduals, nil, nil), ec)
	assert.ErrorIs(t, err, optimization.ErrNoFreeParameters)

	_, err = optimization.NewLevenbergMarquardt().Minimize(
		optimization.NewProblem(lineResiduals, optimization.PositiveConstraint{}, []float64{-1, 1}), ec)
	assert.Error(t, err)

	boom := errors.New("boom")
	failing := func([]float64) ([]float64, error) { return nil, boom }
	_, err = optimization.NewLevenbergMarquardt().Minimize(optimization.NewProblem(failing, nil, []float64{1}), ec)
	assert.ErrorIs(t, err, boom)

	_, err = optimization.Simplex{}.Minimize(optimization.NewProblem(failing, nil, []float64{1}), ec)
	assert.ErrorIs(t, err, boom)
}

func TestSimplexLinear(t *testing.T) {
	t.Parallel()

	p := optimization.NewProblem(lineResiduals, nil, []float64{0.5, 0.5})
	res, err := optimization.Simplex{}.Minimize(p, endCriteria(t))
	require.NoError(t, err)
	assert.True(t, res.Type.Terminal())
	assert.InDelta(t, 1.0, res.X[0], 1e-3)
	assert.InDelta(t, 2.0, res.X[1], 1e-3)
}
