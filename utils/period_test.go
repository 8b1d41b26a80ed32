package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/shortrate/utils"
)

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	p, err := utils.ParsePeriod(" 3m ")
	require.NoError(t, err)
	assert.Equal(t, utils.Months(3), p)
	assert.Equal(t, "3M", p.String())

	for _, bad := range []string{"", "M", "3X", "-1Y", "1.5Y"} {
		_, err := utils.ParsePeriod(bad)
		assert.ErrorIs(t, err, utils.ErrInvalidPeriod, bad)
	}
}

func TestNewPeriodValidation(t *testing.T) {
	t.Parallel()

	_, err := utils.NewPeriod(1, utils.TimeUnit("Q"))
	require.ErrorIs(t, err, utils.ErrInvalidPeriod)

	_, err = utils.NewPeriod(-2, utils.UnitMonths)
	require.ErrorIs(t, err, utils.ErrInvalidPeriod)

	zero, err := utils.NewPeriod(0, utils.UnitDays)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
	assert.False(t, zero.Valid())
	assert.True(t, utils.Years(2).Valid())
}

func TestPeriodArithmetic(t *testing.T) {
	t.Parallel()

	m, ok := utils.Years(2).InMonths()
	require.True(t, ok)
	assert.Equal(t, 24, m)
	_, ok = utils.Weeks(1).InMonths()
	assert.False(t, ok)

	assert.Equal(t, utils.Months(9), utils.Months(3).Times(3))
	assert.InDelta(t, 0.25, utils.Months(3).YearsApprox(), 1e-15)

	jan31 := time.Date(2015, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2015, time.February, 28, 0, 0, 0, 0, time.UTC), utils.Months(1).AddTo(jan31))
	assert.Equal(t, time.Date(2015, time.February, 14, 0, 0, 0, 0, time.UTC), utils.Weeks(2).AddTo(jan31))
	leap := time.Date(2016, time.February, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2017, time.February, 28, 0, 0, 0, 0, time.UTC), utils.Years(1).AddTo(leap))
}

func TestDateRejectsNormalisation(t *testing.T) {
	t.Parallel()

	_, err := utils.Date(2015, time.February, 30)
	require.Error(t, err)
	d, err := utils.Date(2016, time.February, 29)
	require.NoError(t, err)
	assert.Equal(t, 29, d.Day())
	assert.Panics(t, func() { utils.MustDate(2015, time.February, 29) })
}

func TestYearFraction(t *testing.T) {
	t.Parallel()

	start := time.Date(2015, time.February, 18, 0, 0, 0, 0, time.UTC)
	end := time.Date(2016, time.February, 18, 0, 0, 0, 0, time.UTC)
	assert.InDelta(t, 365.0/360.0, utils.YearFraction(start, end, "ACT/360"), 1e-15)
	assert.InDelta(t, 1.0, utils.YearFraction(start, end, "ACT/365F"), 1e-15)
	assert.InDelta(t, 1.0, utils.YearFraction(start, end, "30/360"), 1e-15)

	// 30/360 caps the end day only when the start day was capped.
	s := time.Date(2015, time.January, 30, 0, 0, 0, 0, time.UTC)
	e := time.Date(2015, time.March, 31, 0, 0, 0, 0, time.UTC)
	assert.InDelta(t, 60.0/360.0, utils.YearFraction(s, e, "30/360"), 1e-15)
	assert.InDelta(t, 60.0/360.0, utils.YearFraction(s, e, "30E/360"), 1e-15)
	assert.True(t, utils.KnownDayCount("30E/360"))
	assert.False(t, utils.KnownDayCount("ACT/ACT"))
}

func TestRoundTo(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.04641, utils.RoundTo(0.046414, 5), 1e-15)
	assert.InDelta(t, -1.235, utils.RoundTo(-1.234567, 3), 1e-15)
}
