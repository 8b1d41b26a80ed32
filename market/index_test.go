package market_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/shortrate/calendar"
	"github.com/meenmo/shortrate/market"
	"github.com/meenmo/shortrate/utils"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPresetConventions(t *testing.T) {
	t.Parallel()

	libor3m, err := market.USDLibor(utils.Months(3))
	require.NoError(t, err)

	cases := []struct {
		index      *market.IndexDescriptor
		name       string
		fixingDays int
		fixingCal  calendar.CalendarID
		bdc        market.BusinessDayAdjustment
		eom        bool
		overnight  bool
	}{
		{market.FedFunds(), "FedFunds ACT/360", 0, calendar.USD, market.Following, false, true},
		{market.USDLiborON(), "USDLibor ON ACT/360", 0, calendar.GBP, market.Following, false, true},
		{libor3m, "USDLibor3M ACT/360", 2, calendar.GBP, market.ModifiedFollowing, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.NotNil(t, tc.index)
			assert.Equal(t, tc.name, tc.index.Name())
			assert.Equal(t, tc.fixingDays, tc.index.FixingDays())
			assert.GreaterOrEqual(t, tc.index.FixingDays(), 0)
			assert.Equal(t, tc.fixingCal, tc.index.FixingCalendar())
			assert.Equal(t, tc.bdc, tc.index.BusinessDayConvention())
			assert.Equal(t, tc.eom, tc.index.EndOfMonth())
			assert.Equal(t, market.Act360, tc.index.DayCount())
			assert.Equal(t, market.USD, tc.index.Currency())
			assert.Equal(t, tc.overnight, tc.index.IsOvernight())
			assert.True(t, tc.index.Tenor().Valid())
		})
	}
}

func TestUSDLiborRejectsInvalidTenor(t *testing.T) {
	t.Parallel()

	_, err := market.USDLibor(utils.Months(0))
	require.ErrorIs(t, err, utils.ErrInvalidPeriod)

	_, err = market.USDLibor(utils.Period{Length: 3, Unit: utils.TimeUnit("Q")})
	require.ErrorIs(t, err, utils.ErrInvalidPeriod)

	weekly, err := market.USDLibor(utils.Weeks(1))
	require.NoError(t, err)
	assert.Equal(t, market.Following, weekly.BusinessDayConvention())
	assert.False(t, weekly.EndOfMonth())
}

func TestNewIndexDescriptorValidation(t *testing.T) {
	t.Parallel()

	_, err := market.NewIndexDescriptor(market.USDLIBOR, utils.Months(3), -1,
		calendar.GBP, calendar.GBP, market.ModifiedFollowing, true, market.Act360, market.USD)
	assert.Error(t, err)

	_, err = market.NewIndexDescriptor(market.USDLIBOR, utils.Months(3), 2,
		calendar.CalendarID("JPY"), calendar.GBP, market.ModifiedFollowing, true, market.Act360, market.USD)
	assert.Error(t, err)

	_, err = market.NewIndexDescriptor(market.USDLIBOR, utils.Months(3), 2,
		calendar.GBP, calendar.GBP, market.ModifiedFollowing, true, market.DayCount("ACT/ACT"), market.USD)
	assert.Error(t, err)
}

func TestIndexDates(t *testing.T) {
	t.Parallel()

	libor3m, err := market.USDLibor(utils.Months(3))
	require.NoError(t, err)

	fixing := date(2015, time.February, 16)
	value := libor3m.ValueDate(fixing)
	assert.Equal(t, date(2015, time.February, 18), value)
	assert.Equal(t, fixing, libor3m.FixingDate(value))
	assert.Equal(t, date(2015, time.May, 18), libor3m.MaturityDate(value))

	// End-of-month rule: 30 Jan 2015 is the last business day of January.
	assert.Equal(t, date(2015, time.April, 30), libor3m.MaturityDate(date(2015, time.January, 30)))
}

func TestAdvance(t *testing.T) {
	t.Parallel()

	cal := calendar.Joint(calendar.GBP, calendar.USD)
	start := date(2015, time.February, 18)
	assert.Equal(t, date(2015, time.February, 20), market.Advance(cal, start, utils.Period{Length: 2, Unit: utils.UnitDays}, market.Following, false))
	assert.Equal(t, date(2015, time.February, 25), market.Advance(cal, start, utils.Weeks(1), market.ModifiedFollowing, true))
	// 18 Apr 2015 is a Saturday.
	assert.Equal(t, date(2015, time.April, 20), market.Advance(cal, start, utils.Months(2), market.ModifiedFollowing, true))
	assert.Equal(t, date(2015, time.April, 17), market.Advance(cal, start, utils.Months(2), market.Preceding, false))
	assert.Equal(t, date(2015, time.April, 18), market.Advance(cal, start, utils.Months(2), market.Unadjusted, false))
}

type flatDF struct{ rate float64 }

func (f flatDF) DF(t time.Time) float64 {
	years := t.Sub(date(2015, time.February, 18)).Hours() / 24 / 365
	return 1 / (1 + f.rate*years)
}

func TestBoundIndexForecast(t *testing.T) {
	t.Parallel()

	libor3m, err := market.USDLibor(utils.Months(3))
	require.NoError(t, err)

	_, err = market.Bind(libor3m, nil)
	require.ErrorIs(t, err, market.ErrNilCurve)

	idx, err := market.Bind(libor3m, flatDF{rate: 0.02})
	require.NoError(t, err)
	assert.Equal(t, libor3m.Name(), idx.Name())

	start, end := date(2015, time.February, 18), date(2015, time.May, 18)
	fwd := idx.ForwardBetween(start, end)
	tau := 89.0 / 360.0
	want := (idx.Curve().DF(start)/idx.Curve().DF(end) - 1) / tau
	assert.InDelta(t, want, fwd, 1e-15)
	assert.InDelta(t, fwd, idx.ForecastFixing(date(2015, time.February, 16)), 1e-15)
	assert.Zero(t, idx.ForwardBetween(end, start))
}
