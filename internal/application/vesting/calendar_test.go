package vesting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sumShares(tranches []Tranche) int64 {
	var total int64
	for _, tr := range tranches {
		total += tr.Shares
	}
	return total
}

func TestTranches_FourYearMonthlyWithOneYearCliff(t *testing.T) {
	start := date(2024, time.January, 1)
	tranches := Tranches(48, 12, Monthly, 10000, start)

	require.NotEmpty(t, tranches)

	// Cliff tranche: 12/48 of the grant, one year in.
	assert.Equal(t, date(2025, time.January, 1), tranches[0].Date)
	assert.Equal(t, int64(2500), tranches[0].Shares)

	// 36 monthly tranches follow.
	assert.Len(t, tranches, 37)
	assert.Equal(t, date(2025, time.February, 1), tranches[1].Date)
	assert.Equal(t, int64(208), tranches[1].Shares)

	// Last tranche absorbs the rounding remainder.
	last := tranches[len(tranches)-1]
	assert.Equal(t, date(2028, time.January, 1), last.Date)
	assert.Equal(t, int64(10000-2500-208*35), last.Shares)

	assert.Equal(t, int64(10000), sumShares(tranches))
}

func TestTranches_NoCliff(t *testing.T) {
	start := date(2024, time.March, 15)
	tranches := Tranches(24, 0, Monthly, 2400, start)

	require.Len(t, tranches, 24)
	// First tranche is exactly one period after start, none at start itself.
	assert.Equal(t, date(2024, time.April, 15), tranches[0].Date)
	assert.Equal(t, int64(100), tranches[0].Shares)
	assert.Equal(t, int64(2400), sumShares(tranches))
}

func TestTranches_Quarterly(t *testing.T) {
	start := date(2024, time.January, 1)
	tranches := Tranches(48, 12, Quarterly, 10000, start)

	// Cliff plus 12 quarters.
	require.Len(t, tranches, 13)
	assert.Equal(t, date(2025, time.January, 1), tranches[0].Date)
	assert.Equal(t, int64(2500), tranches[0].Shares)
	assert.Equal(t, date(2025, time.April, 1), tranches[1].Date)
	assert.Equal(t, int64(625), tranches[1].Shares)
	assert.Equal(t, int64(10000), sumShares(tranches))
}

func TestTranches_Annually(t *testing.T) {
	start := date(2024, time.January, 1)
	tranches := Tranches(48, 0, Annually, 1000, start)

	require.Len(t, tranches, 4)
	for i, tr := range tranches {
		assert.Equal(t, date(2025+i, time.January, 1), tr.Date)
	}
	assert.Equal(t, int64(1000), sumShares(tranches))
}

func TestTranches_CliffAtOrBeyondDuration(t *testing.T) {
	start := date(2024, time.January, 1)

	tranches := Tranches(12, 12, Monthly, 500, start)
	require.Len(t, tranches, 1)
	assert.Equal(t, date(2025, time.January, 1), tranches[0].Date)
	assert.Equal(t, int64(500), tranches[0].Shares)

	tranches = Tranches(12, 24, Monthly, 500, start)
	require.Len(t, tranches, 1)
	assert.Equal(t, date(2026, time.January, 1), tranches[0].Date)
	assert.Equal(t, int64(500), tranches[0].Shares)
}

func TestTranches_ScheduleShorterThanOnePeriod(t *testing.T) {
	// Two-month schedule with quarterly vesting leaves zero whole periods;
	// everything vests at the schedule end.
	start := date(2024, time.January, 1)
	tranches := Tranches(2, 0, Quarterly, 100, start)

	require.Len(t, tranches, 1)
	assert.Equal(t, date(2024, time.March, 1), tranches[0].Date)
	assert.Equal(t, int64(100), tranches[0].Shares)
}

func TestTranches_CliffLeavesPartialPeriod(t *testing.T) {
	// 12-month schedule, 11-month cliff, quarterly: no whole quarter fits
	// after the cliff, so the post-cliff remainder vests at month 12.
	start := date(2024, time.January, 1)
	tranches := Tranches(12, 11, Quarterly, 1200, start)

	require.Len(t, tranches, 2)
	assert.Equal(t, date(2024, time.December, 1), tranches[0].Date)
	assert.Equal(t, int64(1100), tranches[0].Shares)
	assert.Equal(t, date(2025, time.January, 1), tranches[1].Date)
	assert.Equal(t, int64(100), tranches[1].Shares)
}

func TestTranches_UnknownFrequencyDefaultsToMonthly(t *testing.T) {
	start := date(2024, time.January, 1)
	tranches := Tranches(12, 0, Frequency("weekly"), 120, start)

	require.Len(t, tranches, 12)
	assert.Equal(t, int64(120), sumShares(tranches))
}

func TestTranches_TinyQuantity(t *testing.T) {
	start := date(2024, time.January, 1)
	tranches := Tranches(48, 12, Monthly, 1, start)

	// Too small to vest anything at the cliff or per period; the single
	// share lands in the final tranche.
	require.Len(t, tranches, 1)
	assert.Equal(t, date(2028, time.January, 1), tranches[0].Date)
	assert.Equal(t, int64(1), tranches[0].Shares)
}

func TestTranches_InvalidInputs(t *testing.T) {
	start := date(2024, time.January, 1)
	assert.Nil(t, Tranches(0, 0, Monthly, 100, start))
	assert.Nil(t, Tranches(48, 12, Monthly, 0, start))
	assert.Nil(t, Tranches(48, 12, Monthly, -5, start))
}

func TestTranches_SumAndOrderingProperties(t *testing.T) {
	start := date(2023, time.June, 30)
	cases := []struct {
		total, cliff int
		freq         Frequency
		quantity     int64
	}{
		{48, 12, Monthly, 10000},
		{48, 12, Monthly, 9999},
		{36, 6, Quarterly, 1234},
		{24, 0, Annually, 777},
		{12, 3, Monthly, 1},
		{60, 12, Quarterly, 100003},
		{7, 5, Quarterly, 50},
	}
	for _, tc := range cases {
		tranches := Tranches(tc.total, tc.cliff, tc.freq, tc.quantity, start)
		assert.Equal(t, tc.quantity, sumShares(tranches),
			"sum mismatch for %+v", tc)
		prev := start
		for _, tr := range tranches {
			assert.False(t, tr.Date.Before(prev), "dates must not decrease for %+v", tc)
			assert.Greater(t, tr.Shares, int64(0))
			prev = tr.Date
		}
	}
}
