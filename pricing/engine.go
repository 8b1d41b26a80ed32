// Package pricing prices swaptions and caps under an affine short-rate model
// and under Black's model for market quotes.
package pricing

import (
	"errors"

	"github.com/meenmo/shortrate/model"
)

var (
	// ErrNilModel is returned when an engine is built without a model.
	ErrNilModel = errors.New("nil model")
	// ErrInvalidInstrument is returned for malformed schedules or nominals.
	ErrInvalidInstrument = errors.New("invalid instrument")
	// ErrNoCriticalRate is returned when the Jamshidian root cannot be bracketed.
	ErrNoCriticalRate = errors.New("critical short rate not found")
)

// Engine is anything that prices instruments under a short-rate model.
type Engine interface {
	Model() model.ShortRateModel
}

// SwaptionEngine prices European swaptions.
type SwaptionEngine interface {
	Engine
	PriceSwaption(s *Swaption) (float64, error)
}

// CapFloorEngine prices caps and floors.
type CapFloorEngine interface {
	Engine
	PriceCapFloor(c *CapFloor) (float64, error)
}
