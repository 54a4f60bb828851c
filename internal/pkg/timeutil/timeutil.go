package timeutil

import "time"

const DateLayout = "2006-01-02"

func NowUnix() int64 {
	return time.Now().Unix()
}

// ParseDate parses a YYYY-MM-DD value into a noon-UTC time. Using noon
// keeps day arithmetic stable across DST transitions when the result is
// formatted back to a date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC), nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Noon normalizes any instant to noon UTC of the same calendar day.
func Noon(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC)
}

func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// DaysBetween returns the number of days from a to b, rounded up.
func DaysBetween(a, b time.Time) int {
	diff := b.Sub(a)
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return days
}
