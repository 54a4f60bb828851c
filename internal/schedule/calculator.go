package schedule

import (
	"context"
	"time"

	appErr "github.com/wastewise/binreminder/internal/pkg/errors"
	"github.com/wastewise/binreminder/internal/pkg/timeutil"
)

// HolidayLookup answers whether a date is a collection-free holiday in
// a jurisdiction. Entries without a year recur annually.
type HolidayLookup interface {
	IsHoliday(ctx context.Context, date time.Time, countryCode string) (bool, error)
}

// maxHolidayAdjustments caps the day-by-day advance past holidays. A
// calendar can never contain a full year of consecutive holidays, so
// hitting the cap means the recurring-holiday data is corrupt.
const maxHolidayAdjustments = 366

// maxBackdateDays is how far in the past a last collection date may lie.
const maxBackdateDays = 30

// NextCollectionDate adds intervalDays to lastCollection and then
// advances one day at a time while the result lands on a holiday.
func NextCollectionDate(ctx context.Context, lookup HolidayLookup, lastCollection time.Time, intervalDays int, countryCode string) (time.Time, error) {
	date := timeutil.Noon(lastCollection).AddDate(0, 0, intervalDays)
	for i := 0; i < maxHolidayAdjustments; i++ {
		holiday, err := lookup.IsHoliday(ctx, date, countryCode)
		if err != nil {
			return time.Time{}, err
		}
		if !holiday {
			return date, nil
		}
		date = date.AddDate(0, 0, 1)
	}
	return time.Time{}, appErr.ErrHolidayData
}

// ValidateNewSchedule checks a proposed (lastCollection, interval) pair
// against the clock. Day granularity: a last collection of today is
// acceptable regardless of the hour.
func ValidateNewSchedule(lastCollection time.Time, intervalDays int, now time.Time) error {
	if intervalDays <= 0 {
		return appErr.ErrInvalid
	}
	today := timeutil.Noon(now)
	last := timeutil.Noon(lastCollection)
	if last.After(today) {
		return appErr.ErrInvalid
	}
	if last.Before(today.AddDate(0, 0, -maxBackdateDays)) {
		return appErr.ErrInvalid
	}
	// The naive next date must not already be behind us.
	if last.AddDate(0, 0, intervalDays).Before(today) {
		return appErr.ErrInvalid
	}
	return nil
}

// ValidateScheduleUpdate applies the new-schedule checks plus the
// no-regression rules: the new last collection must precede the
// currently promised next collection, and the new interval must be long
// enough to still reach it.
func ValidateScheduleUpdate(newLast time.Time, newInterval int, currentNext time.Time, now time.Time) error {
	if err := ValidateNewSchedule(newLast, newInterval, now); err != nil {
		return err
	}
	last := timeutil.Noon(newLast)
	next := timeutil.Noon(currentNext)
	if !last.Before(next) {
		return appErr.ErrInvalid
	}
	if newInterval < timeutil.DaysBetween(last, next) {
		return appErr.ErrInvalid
	}
	return nil
}
