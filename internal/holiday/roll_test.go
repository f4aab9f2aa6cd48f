package holiday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateRoll(t *testing.T) {
	saturday := Date(2020, time.July, 4)
	sunday := Date(2021, time.July, 4)
	friday := Date(2021, time.December, 24)

	tests := []struct {
		name string
		roll DateRoll
		in   time.Time
		want time.Time
	}{
		{"none saturday", NoRoll, saturday, saturday},
		{"backward saturday", RollBackward, saturday, Date(2020, time.July, 3)},
		{"backward sunday", RollBackward, sunday, Date(2021, time.July, 2)},
		{"forward saturday", RollForward, saturday, Date(2020, time.July, 6)},
		{"forward sunday", RollForward, sunday, Date(2021, time.July, 5)},
		{"nearest saturday", RollNearest, saturday, Date(2020, time.July, 3)},
		{"nearest sunday", RollNearest, sunday, Date(2021, time.July, 5)},
		{"backward weekday", RollBackward, friday, friday},
		{"forward weekday", RollForward, friday, friday},
		{"nearest weekday", RollNearest, friday, friday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.roll.Apply(tt.in, StandardWeekend)
			assert.Equal(t, tt.want, got)
			// idempotent
			assert.Equal(t, got, tt.roll.Apply(got, StandardWeekend))
		})
	}
}

func TestDateRoll_CustomWeekend(t *testing.T) {
	weekend := NewWeekdaySet(time.Friday, time.Saturday)
	friday := Date(2021, time.December, 17)

	assert.Equal(t, Date(2021, time.December, 16), RollBackward.Apply(friday, weekend))
	assert.Equal(t, Date(2021, time.December, 19), RollForward.Apply(friday, weekend))
	assert.Equal(t, Date(2021, time.December, 16), RollNearest.Apply(friday, weekend))
	assert.Equal(t, Date(2021, time.December, 19), RollNearest.Apply(friday.AddDate(0, 0, 1), weekend))
}

func TestDateRoll_Degenerate(t *testing.T) {
	all := NewWeekdaySet(time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday)
	d := Date(2021, time.July, 4)

	assert.Equal(t, d, RollBackward.Apply(d, all))
	assert.Equal(t, d, RollForward.Apply(d, all))
	assert.Equal(t, d, RollNearest.Apply(d, all))
	assert.Equal(t, d, RollForward.Apply(d, WeekdaySet{}))
}

func TestRollFunc(t *testing.T) {
	nextDay := RollFunc("next-day", func(d time.Time, _ WeekdaySet) time.Time {
		return d.AddDate(0, 0, 1)
	})
	assert.Equal(t, "next-day", nextDay.Name())
	assert.Equal(t, Date(2021, time.July, 5), nextDay.Apply(Date(2021, time.July, 4), StandardWeekend))
}

func TestRollByName(t *testing.T) {
	tests := []struct {
		in   string
		want DateRoll
	}{
		{"", NoRoll},
		{"none", NoRoll},
		{"Backward", RollBackward},
		{" forward ", RollForward},
		{"nearest", RollNearest},
	}
	for _, tt := range tests {
		got, err := RollByName(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.want.Name(), got.Name())
	}

	_, err := RollByName("sideways")
	assert.Error(t, err)
}
