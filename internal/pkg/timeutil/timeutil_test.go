package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDateRoundTrip(t *testing.T) {
	parsed, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	require.Equal(t, "2024-02-29", FormatDate(parsed))
	require.Equal(t, 12, parsed.Hour())
	require.Equal(t, time.UTC, parsed.Location())

	_, err = ParseDate("29/02/2024")
	require.Error(t, err)
	_, err = ParseDate("2024-2-29")
	require.Error(t, err)
}

func TestNoon(t *testing.T) {
	late := time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC)
	require.Equal(t, "2024-06-15", FormatDate(Noon(late)))
	require.True(t, SameDay(late, Noon(late)))
}

func TestDaysBetween(t *testing.T) {
	day := func(value string) time.Time {
		parsed, err := ParseDate(value)
		require.NoError(t, err)
		return parsed
	}

	require.Equal(t, 0, DaysBetween(day("2024-06-15"), day("2024-06-15")))
	require.Equal(t, 1, DaysBetween(day("2024-06-15"), day("2024-06-16")))
	require.Equal(t, 14, DaysBetween(day("2024-06-01"), day("2024-06-15")))
	require.Equal(t, -1, DaysBetween(day("2024-06-16"), day("2024-06-15")))
	// Partial days round up.
	require.Equal(t, 1, DaysBetween(day("2024-06-15"), day("2024-06-15").Add(2*time.Hour)))
}
