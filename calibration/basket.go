package calibration

import (
	"fmt"

	"github.com/meenmo/shortrate/market"
	"github.com/meenmo/shortrate/termstructure"
	"github.com/meenmo/shortrate/utils"
)

// VolatilityQuote is one Black volatility for an expiry x tenor swaption.
type VolatilityQuote struct {
	Expiry     utils.Period
	Tenor      utils.Period
	Volatility float64
}

// SwaptionVolatilities are the at-the-money quotes of the diagonal basket,
// shortest expiry first.
func SwaptionVolatilities() []float64 {
	return []float64{0.1148, 0.1108, 0.1070, 0.1021, 0.1000}
}

// DiagonalQuotes lays vols on the co-terminal diagonal: quote i has expiry
// i+1 years and tenor N-i years, so every swap ends N+1 years out.
func DiagonalQuotes(vols []float64) []VolatilityQuote {
	n := len(vols)
	out := make([]VolatilityQuote, n)
	for i, v := range vols {
		out[i] = VolatilityQuote{
			Expiry:     utils.Years(i + 1),
			Tenor:      utils.Years(n - i),
			Volatility: v,
		}
	}
	return out
}

// NewDiagonalSwaptionBasket builds one SwaptionHelper per diagonal quote, all
// sharing index and curve.
func NewDiagonalSwaptionBasket(vols []float64, index *market.Index, curve termstructure.YieldCurve, opts ...HelperOption) ([]*SwaptionHelper, error) {
	quotes := DiagonalQuotes(vols)
	helpers := make([]*SwaptionHelper, 0, len(quotes))
	for _, q := range quotes {
		h, err := NewSwaptionHelper(q.Expiry, q.Tenor, q.Volatility, index, curve, opts...)
		if err != nil {
			return nil, fmt.Errorf("diagonal basket: %w", err)
		}
		helpers = append(helpers, h)
	}
	return helpers, nil
}
