package calibration

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/meenmo/shortrate/model"
	"github.com/meenmo/shortrate/optimization"
	"github.com/meenmo/shortrate/pricing"
	"github.com/meenmo/shortrate/termstructure"
)

var (
	// ErrEngineModelMismatch is returned when the engine prices a different model.
	ErrEngineModelMismatch = errors.New("engine is not built on the calibrated model")
	// ErrCurveMismatch is returned when the curve is not the model's term structure.
	ErrCurveMismatch = errors.New("curve is not the model's term structure")
	// ErrNoHelpers is returned when Calibrate runs on an empty basket.
	ErrNoHelpers = errors.New("no calibration helpers")
	// ErrFixMaskLength mirrors optimization.ErrFixMaskLength for callers of this package.
	ErrFixMaskLength = optimization.ErrFixMaskLength
)

// Outcome reports a calibration run. Non-convergence is reported here, not as an error.
type Outcome struct {
	RunID        string
	EndCriteria  optimization.EndCriteriaType
	Iterations   int
	ResidualNorm float64
	Params       []float64
}

// ModelCalibrator fits a model to its helpers.
type ModelCalibrator struct {
	endCriteria optimization.EndCriteria
	method      optimization.Method
	logger      *slog.Logger
	helpers     []Helper
}

// Option configures a ModelCalibrator.
type Option func(*ModelCalibrator)

// WithMethod replaces the default Levenberg-Marquardt minimizer.
func WithMethod(m optimization.Method) Option {
	return func(c *ModelCalibrator) {
		if m != nil {
			c.method = m
		}
	}
}

// WithLogger sets the run logger. Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *ModelCalibrator) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewModelCalibrator validates ec and defaults to Levenberg-Marquardt with no logging.
func NewModelCalibrator(ec optimization.EndCriteria, opts ...Option) (*ModelCalibrator, error) {
	if err := ec.Validate(); err != nil {
		return nil, fmt.Errorf("model calibrator: %w", err)
	}
	c := &ModelCalibrator{
		endCriteria: ec,
		method:      optimization.NewLevenbergMarquardt(),
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AddCalibrationHelper appends h to the basket.
func (c *ModelCalibrator) AddCalibrationHelper(h Helper) {
	c.helpers = append(c.helpers, h)
}

// Helpers returns the basket in insertion order.
func (c *ModelCalibrator) Helpers() []Helper {
	out := make([]Helper, len(c.helpers))
	copy(out, c.helpers)
	return out
}

// Calibrate fits m so that engine prices match the helpers' market values.
// fix flags parameters held at their current value; an empty mask frees all.
// On return m holds the fitted parameters, even when the run did not converge.
func (c *ModelCalibrator) Calibrate(m model.ShortRateModel, engine pricing.Engine, curve termstructure.YieldCurve, fix []bool) (Outcome, error) {
	switch {
	case m == nil:
		return Outcome{}, fmt.Errorf("calibrate: %w", pricing.ErrNilModel)
	case engine == nil:
		return Outcome{}, errors.New("calibrate: nil engine")
	case curve == nil:
		return Outcome{}, fmt.Errorf("calibrate: %w", termstructure.ErrNilCurve)
	case engine.Model() != m:
		return Outcome{}, ErrEngineModelMismatch
	case curve != m.TermStructure():
		return Outcome{}, ErrCurveMismatch
	case len(c.helpers) == 0:
		return Outcome{}, ErrNoHelpers
	}

	projection, err := optimization.NewProjection(m.Params(), fix)
	if err != nil {
		return Outcome{}, fmt.Errorf("calibrate: %w", err)
	}
	if projection.FreeCount() == 0 {
		return Outcome{}, fmt.Errorf("calibrate: %w", optimization.ErrNoFreeParameters)
	}
	// Every helper must take the engine before any of them is given it.
	for _, h := range c.helpers {
		if !h.Accepts(engine) {
			return Outcome{}, fmt.Errorf("calibrate: %s: %w: %T", h, ErrUnsupportedEngine, engine)
		}
	}
	for _, h := range c.helpers {
		if err := h.SetPricingEngine(engine); err != nil {
			return Outcome{}, fmt.Errorf("calibrate: %w", err)
		}
	}

	runID := uuid.NewString()
	log := c.logger.With("run_id", runID)
	log.Debug("calibration started", "helpers", len(c.helpers), "params", m.Params(), "fixed", fix)

	residuals := func(free []float64) ([]float64, error) {
		if err := m.SetParams(projection.Include(free)); err != nil {
			return nil, err
		}
		out := make([]float64, len(c.helpers))
		for i, h := range c.helpers {
			e, err := h.CalibrationError()
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return out, nil
	}
	problem := optimization.NewProblem(residuals, projection.Constraint(m.Constraint()), projection.Project(m.Params()))

	res, err := c.method.Minimize(problem, c.endCriteria)
	if err != nil {
		// The model may hold a trial point; put the starting values back.
		_ = m.SetParams(projection.Include(problem.Initial()))
		return Outcome{}, fmt.Errorf("calibrate: %w", err)
	}
	if err := m.SetParams(projection.Include(res.X)); err != nil {
		return Outcome{}, fmt.Errorf("calibrate: %w", err)
	}

	out := Outcome{
		RunID:        runID,
		EndCriteria:  res.Type,
		Iterations:   res.Iterations,
		ResidualNorm: res.ResidualNorm,
		Params:       m.Params(),
	}
	log.Info("calibration finished",
		"end_criteria", out.EndCriteria.String(),
		"iterations", out.Iterations,
		"residual_norm", out.ResidualNorm,
		"evaluations", problem.Evaluations(),
		"params", out.Params)
	return out, nil
}
