package pricing

import (
	"fmt"

	"github.com/meenmo/shortrate/black"
	"github.com/meenmo/shortrate/model"
)

// AnalyticCapFloorEngine prices each caplet as a put on a zero-coupon bond.
type AnalyticCapFloorEngine struct {
	model model.AffineModel
}

// NewAnalyticCapFloorEngine prices with m, which must not be nil.
func NewAnalyticCapFloorEngine(m model.AffineModel) (*AnalyticCapFloorEngine, error) {
	if m == nil {
		return nil, fmt.Errorf("analytic cap/floor: %w", ErrNilModel)
	}
	return &AnalyticCapFloorEngine{model: m}, nil
}

func (e *AnalyticCapFloorEngine) Model() model.ShortRateModel { return e.model }

// PriceCapFloor sums N (1 + Kτ) ZBP(t_s, t_e, 1/(1+Kτ)) over the periods; floors use calls.
func (e *AnalyticCapFloorEngine) PriceCapFloor(c *CapFloor) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	typ := black.Put
	if c.Type == Floor {
		typ = black.Call
	}
	value := 0.0
	for i := range c.StartTimes {
		growth := 1.0 + c.Strike*c.Accruals[i]
		value += c.Nominal * growth * e.model.DiscountBondOption(typ, 1.0/growth, c.StartTimes[i], c.EndTimes[i])
	}
	return value, nil
}
