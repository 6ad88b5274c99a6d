package datex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDay_TruncatesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	in := time.Date(2024, 1, 15, 23, 10, 0, 0, loc) // 17:40 UTC same day
	assert.Equal(t, Date(2024, 1, 15), Day(in))
}

func TestFirstOfMonth(t *testing.T) {
	assert.Equal(t, Date(2024, 1, 1), FirstOfMonth(Date(2024, 1, 15)))
	assert.Equal(t, Date(2024, 2, 1), FirstOfMonth(Date(2024, 2, 29)))
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		in   time.Time
		n    int
		want time.Time
	}{
		{Date(2024, 1, 1), 1, Date(2024, 2, 1)},
		{Date(2024, 12, 1), 1, Date(2025, 1, 1)},
		{Date(2024, 1, 31), 1, Date(2024, 2, 29)},
		{Date(2023, 1, 31), 1, Date(2023, 2, 28)},
		{Date(2024, 3, 31), -1, Date(2024, 2, 29)},
		{Date(2024, 1, 15), 12, Date(2025, 1, 15)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AddMonths(tt.in, tt.n), "AddMonths(%s, %d)", Format(tt.in), tt.n)
	}
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 19, DaysBetween(Date(2024, 1, 1), Date(2024, 1, 20)))
	assert.Equal(t, 0, DaysBetween(Date(2024, 1, 1), Date(2024, 1, 1).Add(23*time.Hour)))
	assert.Equal(t, -1, DaysBetween(Date(2024, 1, 2), Date(2024, 1, 1)))
	assert.Equal(t, 29, DaysBetween(Date(2024, 2, 1), Date(2024, 3, 1)))
}

func TestParseFormat(t *testing.T) {
	d, err := Parse("2024-01-20")
	require.NoError(t, err)
	assert.Equal(t, Date(2024, 1, 20), d)
	assert.Equal(t, "2024-01-20", Format(d))

	_, err = Parse("20/01/2024")
	assert.Error(t, err)
}
