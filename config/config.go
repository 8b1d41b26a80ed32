// Package config holds solver, calibration and logging settings.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/meenmo/shortrate/optimization"
	"github.com/meenmo/shortrate/termstructure"
)

// EnvPrefix prefixes every environment override, e.g. SHORTRATE_CALIBRATION_METHOD.
const EnvPrefix = "SHORTRATE"

// Config holds the numerical settings of the bootstrap and the calibrator.
type Config struct {
	Bootstrap   BootstrapConfig   `yaml:"bootstrap" envconfig:"BOOTSTRAP"`
	Calibration CalibrationConfig `yaml:"calibration" envconfig:"CALIBRATION"`
	Logging     LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
}

// BootstrapConfig controls the per-pillar Newton solve.
type BootstrapConfig struct {
	// ConvergenceTolerance is the quote tolerance for Newton-Raphson convergence.
	ConvergenceTolerance float64 `yaml:"convergence_tolerance" envconfig:"CONVERGENCE_TOLERANCE" validate:"gt=0"`

	// MaxIterations is the maximum iterations per pillar.
	MaxIterations int `yaml:"max_iterations" envconfig:"MAX_ITERATIONS" validate:"gt=0"`

	// DampingFactor limits Newton step size to prevent overshooting.
	// Delta is clamped to DampingFactor * currentGuess.
	DampingFactor float64 `yaml:"damping_factor" envconfig:"DAMPING_FACTOR" validate:"gt=0,lte=1"`

	// MinDiscountFactor is the floor for discount factors.
	MinDiscountFactor float64 `yaml:"min_discount_factor" envconfig:"MIN_DISCOUNT_FACTOR" validate:"gt=0,lt=1"`

	// DerivativeThreshold is the minimum derivative magnitude.
	// Below this, Newton iteration stops to avoid division by near-zero.
	DerivativeThreshold float64 `yaml:"derivative_threshold" envconfig:"DERIVATIVE_THRESHOLD" validate:"gte=0"`
}

// CalibrationConfig holds the optimizer and its end criteria.
type CalibrationConfig struct {
	// Method is "levenberg-marquardt" or "simplex".
	Method string `yaml:"method" envconfig:"METHOD" validate:"oneof=levenberg-marquardt simplex"`

	// ErrorType is "relative-price", "price" or "implied-vol".
	ErrorType string `yaml:"error_type" envconfig:"ERROR_TYPE" validate:"oneof=relative-price price implied-vol"`

	MaxIterations                int     `yaml:"max_iterations" envconfig:"MAX_ITERATIONS" validate:"gt=0"`
	MaxStationaryStateIterations int     `yaml:"max_stationary_state_iterations" envconfig:"MAX_STATIONARY_STATE_ITERATIONS" validate:"gt=1,ltefield=MaxIterations"`
	RootEpsilon                  float64 `yaml:"root_epsilon" envconfig:"ROOT_EPSILON" validate:"gte=0"`
	FunctionEpsilon              float64 `yaml:"function_epsilon" envconfig:"FUNCTION_EPSILON" validate:"gte=0"`
	GradientNormEpsilon          float64 `yaml:"gradient_norm_epsilon" envconfig:"GRADIENT_NORM_EPSILON" validate:"gte=0"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
}

// DefaultConfig provides the values the command-line tools run with.
var DefaultConfig = Config{
	Bootstrap: BootstrapConfig{
		ConvergenceTolerance: 1e-12,
		MaxIterations:        100,
		DampingFactor:        0.5,
		MinDiscountFactor:    1e-9,
		DerivativeThreshold:  1e-15,
	},
	Calibration: CalibrationConfig{
		Method:                       MethodLevenbergMarquardt,
		ErrorType:                    "relative-price",
		MaxIterations:                10000,
		MaxStationaryStateIterations: 100,
		RootEpsilon:                  1e-6,
		FunctionEpsilon:              1e-8,
		GradientNormEpsilon:          1e-8,
	},
	Logging: LoggingConfig{
		Level:  "info",
		Format: "text",
	},
}

const (
	MethodLevenbergMarquardt = "levenberg-marquardt"
	MethodSimplex            = "simplex"
)

// Load starts from DefaultConfig, overlays the YAML file at path (if path is
// non-empty), then environment variables, and validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig

	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks every field against its validate tag.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// BootstrapOptions converts the bootstrap section.
func (c *Config) BootstrapOptions() termstructure.BootstrapOptions {
	return termstructure.BootstrapOptions{
		Tolerance:           c.Bootstrap.ConvergenceTolerance,
		MaxIterations:       c.Bootstrap.MaxIterations,
		DampingFactor:       c.Bootstrap.DampingFactor,
		MinDiscountFactor:   c.Bootstrap.MinDiscountFactor,
		DerivativeThreshold: c.Bootstrap.DerivativeThreshold,
	}
}

// EndCriteria converts the calibration section.
func (c *Config) EndCriteria() (optimization.EndCriteria, error) {
	cc := c.Calibration
	return optimization.NewEndCriteria(cc.MaxIterations, cc.MaxStationaryStateIterations,
		cc.RootEpsilon, cc.FunctionEpsilon, cc.GradientNormEpsilon)
}

// Method builds the configured minimizer.
func (c *Config) Method() (optimization.Method, error) {
	switch c.Calibration.Method {
	case MethodLevenbergMarquardt:
		return optimization.NewLevenbergMarquardt(), nil
	case MethodSimplex:
		return optimization.Simplex{}, nil
	default:
		return nil, fmt.Errorf("unknown calibration method %q", c.Calibration.Method)
	}
}
