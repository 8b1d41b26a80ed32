package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/shortrate/calendar"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsBusinessDay(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cal  calendar.CalendarID
		day  time.Time
		want bool
	}{
		{"saturday", calendar.USD, date(2015, time.February, 21), false},
		{"plain wednesday", calendar.USD, date(2015, time.February, 18), true},
		{"us independence day", calendar.USD, date(2016, time.July, 4), false},
		{"independence day not in gbp", calendar.GBP, date(2016, time.July, 4), true},
		{"target good friday", calendar.TARGET, date(2015, time.April, 3), false},
		{"gbp easter monday", calendar.GBP, date(2015, time.April, 6), false},
		{"gbp boxing day", calendar.GBP, date(2014, time.December, 26), false},
		{"target labour day", calendar.TARGET, date(2015, time.May, 1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, calendar.IsBusinessDay(tc.cal, tc.day))
		})
	}
}

func TestJointCalendarUnionsHolidays(t *testing.T) {
	t.Parallel()

	joint := calendar.Joint(calendar.GBP, calendar.USD)
	require.Equal(t, []calendar.CalendarID{calendar.GBP, calendar.USD}, joint.Members())
	assert.True(t, joint.Known())
	assert.False(t, calendar.CalendarID("XXX").Known())
	assert.False(t, calendar.CalendarID("").Known())

	assert.False(t, calendar.IsBusinessDay(joint, date(2016, time.July, 4)))
	assert.False(t, calendar.IsBusinessDay(joint, date(2015, time.April, 6)))
	assert.True(t, calendar.IsBusinessDay(joint, date(2015, time.February, 18)))
}

func TestAdjustments(t *testing.T) {
	t.Parallel()

	// Saturday 31 Jan 2015 rolls back under Modified Following.
	sat := date(2015, time.January, 31)
	assert.Equal(t, date(2015, time.January, 30), calendar.Adjust(calendar.USD, sat))
	assert.Equal(t, date(2015, time.February, 2), calendar.AdjustFollowing(calendar.USD, sat))
	assert.Equal(t, date(2015, time.January, 30), calendar.AdjustPreceding(calendar.USD, sat))

	wed := date(2015, time.February, 18)
	assert.Equal(t, wed, calendar.Adjust(calendar.USD, wed))
}

func TestAddBusinessDays(t *testing.T) {
	t.Parallel()

	settle := date(2015, time.February, 18)
	assert.Equal(t, date(2015, time.February, 16), calendar.AddBusinessDays(calendar.USD, settle, -2))
	assert.Equal(t, date(2015, time.February, 20), calendar.AddBusinessDays(calendar.USD, settle, 2))
	// Friday plus one skips the weekend.
	assert.Equal(t, date(2015, time.February, 23), calendar.AddBusinessDays(calendar.USD, date(2015, time.February, 20), 1))
	// Good Friday and Easter Monday on GBP.
	assert.Equal(t, date(2015, time.April, 7), calendar.AddBusinessDays(calendar.GBP, date(2015, time.April, 2), 1))
}

func TestMonthEnd(t *testing.T) {
	t.Parallel()

	assert.True(t, calendar.IsMonthEnd(date(2016, time.February, 29)))
	assert.False(t, calendar.IsMonthEnd(date(2015, time.February, 27)))
	// 31 Jan 2015 is a Saturday.
	assert.Equal(t, date(2015, time.January, 30), calendar.LastBusinessDayOfMonth(calendar.USD, date(2015, time.January, 10)))
	assert.True(t, calendar.IsEndOfMonth(calendar.USD, date(2015, time.January, 30)))
}
