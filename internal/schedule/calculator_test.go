package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appErr "github.com/wastewise/binreminder/internal/pkg/errors"
	"github.com/wastewise/binreminder/internal/pkg/timeutil"
)

type fakeHolidayLookup struct {
	holidays map[string]bool
	err      error
}

func (f *fakeHolidayLookup) IsHoliday(_ context.Context, date time.Time, _ string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.holidays[timeutil.FormatDate(date)], nil
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := timeutil.ParseDate(value)
	require.NoError(t, err)
	return parsed
}

func TestNextCollectionDate(t *testing.T) {
	tests := []struct {
		name     string
		last     string
		interval int
		holidays map[string]bool
		want     string
	}{
		{
			name:     "no holidays",
			last:     "2024-01-01",
			interval: 14,
			want:     "2024-01-15",
		},
		{
			name:     "single holiday pushes one day",
			last:     "2024-01-01",
			interval: 14,
			holidays: map[string]bool{"2024-01-15": true},
			want:     "2024-01-16",
		},
		{
			name:     "consecutive holidays push until clear",
			last:     "2024-12-11",
			interval: 14,
			holidays: map[string]bool{"2024-12-25": true, "2024-12-26": true},
			want:     "2024-12-27",
		},
		{
			name:     "weekly interval",
			last:     "2024-03-04",
			interval: 7,
			want:     "2024-03-11",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := &fakeHolidayLookup{holidays: tt.holidays}
			got, err := NextCollectionDate(context.Background(), lookup, mustDate(t, tt.last), tt.interval, "GB-ENG")
			require.NoError(t, err)
			require.Equal(t, tt.want, timeutil.FormatDate(got))
		})
	}
}

func TestNextCollectionDateLookupError(t *testing.T) {
	lookup := &fakeHolidayLookup{err: appErr.ErrHolidayData}
	_, err := NextCollectionDate(context.Background(), lookup, mustDate(t, "2024-01-01"), 7, "GB-ENG")
	require.ErrorIs(t, err, appErr.ErrHolidayData)
}

// A calendar where every single day is a recurring holiday can never
// yield a collection date; the advance must bail out instead of
// spinning forever.
func TestNextCollectionDateCorruptCalendar(t *testing.T) {
	all := make(map[string]bool)
	day := mustDate(t, "2024-01-01")
	for i := 0; i < 800; i++ {
		all[timeutil.FormatDate(day)] = true
		day = day.AddDate(0, 0, 1)
	}
	lookup := &fakeHolidayLookup{holidays: all}
	_, err := NextCollectionDate(context.Background(), lookup, mustDate(t, "2024-01-01"), 7, "GB-ENG")
	require.ErrorIs(t, err, appErr.ErrHolidayData)
}

func TestValidateNewSchedule(t *testing.T) {
	now := mustDate(t, "2024-06-15")
	tests := []struct {
		name     string
		last     string
		interval int
		wantErr  bool
	}{
		{name: "today is fine", last: "2024-06-15", interval: 7},
		{name: "recent past is fine", last: "2024-06-01", interval: 14},
		{name: "exactly thirty days back", last: "2024-05-16", interval: 30},
		{name: "future rejected", last: "2024-06-16", interval: 7, wantErr: true},
		{name: "too far back rejected", last: "2024-05-01", interval: 60, wantErr: true},
		{name: "zero interval rejected", last: "2024-06-15", interval: 0, wantErr: true},
		{name: "negative interval rejected", last: "2024-06-15", interval: -3, wantErr: true},
		{name: "naive next already past rejected", last: "2024-06-01", interval: 7, wantErr: true},
		{name: "naive next lands today", last: "2024-06-08", interval: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNewSchedule(mustDate(t, tt.last), tt.interval, now)
			if tt.wantErr {
				require.ErrorIs(t, err, appErr.ErrInvalid)
				return
			}
			require.NoError(t, err)
		})
	}
}

// Validation is day-granular: late in the evening, a last collection
// dated today still passes.
func TestValidateNewScheduleIgnoresTimeOfDay(t *testing.T) {
	now := time.Date(2024, 6, 15, 23, 40, 0, 0, time.UTC)
	require.NoError(t, ValidateNewSchedule(mustDate(t, "2024-06-15"), 7, now))
}

func TestValidateScheduleUpdate(t *testing.T) {
	now := mustDate(t, "2024-06-15")
	tests := []struct {
		name        string
		newLast     string
		interval    int
		currentNext string
		wantErr     bool
	}{
		{name: "reaches promised next", newLast: "2024-06-13", interval: 7, currentNext: "2024-06-20"},
		{name: "interval longer than gap", newLast: "2024-06-13", interval: 14, currentNext: "2024-06-20"},
		{name: "last not before promised next", newLast: "2024-06-14", interval: 7, currentNext: "2024-06-14", wantErr: true},
		{name: "interval too short to reach next", newLast: "2024-06-14", interval: 3, currentNext: "2024-06-20", wantErr: true},
		{name: "base validation still applies", newLast: "2024-06-16", interval: 7, currentNext: "2024-06-20", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScheduleUpdate(mustDate(t, tt.newLast), tt.interval, mustDate(t, tt.currentNext), now)
			if tt.wantErr {
				require.ErrorIs(t, err, appErr.ErrInvalid)
				return
			}
			require.NoError(t, err)
		})
	}
}
