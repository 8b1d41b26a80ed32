package pricing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/shortrate/market"
	"github.com/meenmo/shortrate/model"
	"github.com/meenmo/shortrate/pricing"
	"github.com/meenmo/shortrate/termstructure"
)

func setup(t *testing.T) (*termstructure.FlatForward, *model.HullWhite) {
	t.Helper()
	curve, err := termstructure.NewFlatForward(time.Date(2002, time.February, 19, 0, 0, 0, 0, time.UTC),
		0.04875825, market.Act365F, termstructure.Continuous, market.FreqAnnual)
	require.NoError(t, err)
	hw, err := model.NewHullWhite(curve, 0.05, 0.01)
	require.NoError(t, err)
	return curve, hw
}

func swaption(typ pricing.SwapType, strike, exercise, start float64) *pricing.Swaption {
	return &pricing.Swaption{
		Type:          typ,
		Nominal:       1,
		Strike:        strike,
		ExerciseTime:  exercise,
		StartTime:     start,
		FixedPayTimes: []float64{start + 1, start + 2, start + 3, start + 4},
		FixedAccruals: []float64{1.01, 1.0, 1.02, 1.01},
	}
}

// forwardSwapValue is the payer swap value N P(S) - sum a_i P(T_i).
func forwardSwapValue(s *pricing.Swaption, curve termstructure.YieldCurve) float64 {
	v := s.Nominal * curve.Discount(s.StartTime)
	for i, a := range s.FixedAmounts() {
		v -= a * curve.Discount(s.FixedPayTimes[i])
	}
	return v
}

func TestJamshidianPayerReceiverParity(t *testing.T) {
	t.Parallel()

	curve, hw := setup(t)
	engine, err := pricing.NewJamshidianSwaptionEngine(hw)
	require.NoError(t, err)
	assert.Equal(t, model.ShortRateModel(hw), engine.Model())

	for _, start := range []float64{2, 2.01} {
		for _, strike := range []float64{0.03, 0.05, 0.07} {
			payer := swaption(pricing.Payer, strike, 2, start)
			receiver := swaption(pricing.Receiver, strike, 2, start)
			p, err := engine.PriceSwaption(payer)
			require.NoError(t, err)
			r, err := engine.PriceSwaption(receiver)
			require.NoError(t, err)
			assert.Greater(t, p, 0.0)
			assert.Greater(t, r, 0.0)
			assert.InDelta(t, forwardSwapValue(payer, curve), p-r, 1e-10, "start=%v strike=%v", start, strike)
		}
	}
}

func TestJamshidianAtTheMoney(t *testing.T) {
	t.Parallel()

	curve, hw := setup(t)
	engine, err := pricing.NewJamshidianSwaptionEngine(hw)
	require.NoError(t, err)

	atm := pricing.ForwardSwapRate(swaption(pricing.Payer, 0, 2, 2), curve)
	p, err := engine.PriceSwaption(swaption(pricing.Payer, atm, 2, 2))
	require.NoError(t, err)
	r, err := engine.PriceSwaption(swaption(pricing.Receiver, atm, 2, 2))
	require.NoError(t, err)
	assert.InDelta(t, p, r, 1e-10)
}

func TestJamshidianVanishingVolatility(t *testing.T) {
	t.Parallel()

	curve, _ := setup(t)
	hw, err := model.NewHullWhite(curve, 0.05, 1e-8)
	require.NoError(t, err)
	engine, err := pricing.NewJamshidianSwaptionEngine(hw)
	require.NoError(t, err)

	itm := swaption(pricing.Payer, 0.03, 2, 2)
	p, err := engine.PriceSwaption(itm)
	require.NoError(t, err)
	assert.InDelta(t, forwardSwapValue(itm, curve), p, 1e-8)

	otm := swaption(pricing.Payer, 0.08, 2, 2)
	p, err = engine.PriceSwaption(otm)
	require.NoError(t, err)
	assert.InDelta(t, 0, p, 1e-8)
}

func TestSwaptionValidation(t *testing.T) {
	t.Parallel()

	_, hw := setup(t)
	engine, err := pricing.NewJamshidianSwaptionEngine(hw)
	require.NoError(t, err)

	bad := []*pricing.Swaption{
		nil,
		{Nominal: 0, ExerciseTime: 1, StartTime: 1, FixedPayTimes: []float64{2}, FixedAccruals: []float64{1}},
		{Nominal: 1, ExerciseTime: 1, StartTime: 0.5, FixedPayTimes: []float64{2}, FixedAccruals: []float64{1}},
		{Nominal: 1, ExerciseTime: 1, StartTime: 1, FixedPayTimes: []float64{2, 3}, FixedAccruals: []float64{1}},
		{Nominal: 1, ExerciseTime: 1, StartTime: 1, FixedPayTimes: []float64{3, 2}, FixedAccruals: []float64{1, 1}},
	}
	for i, s := range bad {
		_, err := engine.PriceSwaption(s)
		assert.ErrorIs(t, err, pricing.ErrInvalidInstrument, "case %d", i)
	}

	_, err = pricing.NewJamshidianSwaptionEngine(nil)
	assert.ErrorIs(t, err, pricing.ErrNilModel)
}

func capFloor(typ pricing.CapFloorType, strike float64) *pricing.CapFloor {
	c := &pricing.CapFloor{Type: typ, Nominal: 1, Strike: strike}
	for i := 1; i < 8; i++ {
		s := 0.25 * float64(i)
		c.StartTimes = append(c.StartTimes, s)
		c.EndTimes = append(c.EndTimes, s+0.25)
		c.Accruals = append(c.Accruals, 0.2528)
	}
	return c
}

func TestAnalyticCapFloorParity(t *testing.T) {
	t.Parallel()

	curve, hw := setup(t)
	engine, err := pricing.NewAnalyticCapFloorEngine(hw)
	require.NoError(t, err)

	c := capFloor(pricing.Cap, 0.05)
	f := capFloor(pricing.Floor, 0.05)
	capValue, err := engine.PriceCapFloor(c)
	require.NoError(t, err)
	floorValue, err := engine.PriceCapFloor(f)
	require.NoError(t, err)

	want := 0.0
	for i := range c.StartTimes {
		want += curve.Discount(c.StartTimes[i]) - (1+c.Strike*c.Accruals[i])*curve.Discount(c.EndTimes[i])
	}
	assert.InDelta(t, want, capValue-floorValue, 1e-13)
	assert.Greater(t, capValue, 0.0)

	_, err = engine.PriceCapFloor(&pricing.CapFloor{Nominal: 1, Strike: 0.05})
	assert.ErrorIs(t, err, pricing.ErrInvalidInstrument)
}

func TestBlackSwaptionRoundTrip(t *testing.T) {
	t.Parallel()

	curve, _ := setup(t)
	s := swaption(pricing.Receiver, 0.05, 2, 2)
	price, err := pricing.BlackSwaptionPrice(s, curve, 0.1148)
	require.NoError(t, err)
	vol, err := pricing.BlackSwaptionVolatility(s, curve, price)
	require.NoError(t, err)
	assert.InDelta(t, 0.1148, vol, 1e-9)

	atm := pricing.ForwardSwapRate(s, curve)
	payer := swaption(pricing.Payer, atm, 2, 2)
	receiver := swaption(pricing.Receiver, atm, 2, 2)
	pp, err := pricing.BlackSwaptionPrice(payer, curve, 0.11)
	require.NoError(t, err)
	rp, err := pricing.BlackSwaptionPrice(receiver, curve, 0.11)
	require.NoError(t, err)
	assert.InDelta(t, pp, rp, 1e-14)
}

func TestBlackCapFloorRoundTrip(t *testing.T) {
	t.Parallel()

	curve, _ := setup(t)
	c := capFloor(pricing.Cap, 0.05)
	price, err := pricing.BlackCapFloorPrice(c, curve, 0.2)
	require.NoError(t, err)
	vol, err := pricing.BlackCapFloorVolatility(c, curve, price)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, vol, 1e-8)

	h := 1e-6
	up, _ := pricing.BlackCapFloorPrice(c, curve, 0.2+h)
	down, _ := pricing.BlackCapFloorPrice(c, curve, 0.2-h)
	assert.InDelta(t, (up-down)/(2*h), pricing.BlackCapFloorVega(c, curve, 0.2), 1e-7)
}
