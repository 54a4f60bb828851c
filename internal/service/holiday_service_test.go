package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wastewise/binreminder/internal/model"
	appErr "github.com/wastewise/binreminder/internal/pkg/errors"
	"github.com/wastewise/binreminder/internal/pkg/timeutil"
)

type fakeHolidayStore struct {
	holidays map[string]*model.Holiday
}

func newFakeHolidayStore() *fakeHolidayStore {
	return &fakeHolidayStore{holidays: make(map[string]*model.Holiday)}
}

func (f *fakeHolidayStore) Create(_ context.Context, holiday *model.Holiday) error {
	for _, existing := range f.holidays {
		if existing.CountryCode == holiday.CountryCode &&
			existing.Day == holiday.Day && existing.Month == holiday.Month &&
			yearValue(existing.Year) == yearValue(holiday.Year) {
			return appErr.ErrConflict
		}
	}
	clone := *holiday
	f.holidays[holiday.ID] = &clone
	return nil
}

func yearValue(year *int) int {
	if year == nil {
		return 0
	}
	return *year
}

func (f *fakeHolidayStore) ExistsOnDate(_ context.Context, countryCode string, day, month, year int) (bool, error) {
	for _, holiday := range f.holidays {
		if holiday.CountryCode != countryCode || holiday.Day != day || holiday.Month != month {
			continue
		}
		if holiday.Year == nil || *holiday.Year == year {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeHolidayStore) GetByID(_ context.Context, id string) (*model.Holiday, error) {
	holiday, ok := f.holidays[id]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	clone := *holiday
	return &clone, nil
}

func (f *fakeHolidayStore) ListByCountry(_ context.Context, countryCode string) ([]*model.Holiday, error) {
	var out []*model.Holiday
	for _, holiday := range f.holidays {
		if holiday.CountryCode == countryCode {
			clone := *holiday
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeHolidayStore) Update(_ context.Context, id string, update map[string]interface{}) error {
	holiday, ok := f.holidays[id]
	if !ok {
		return appErr.ErrNotFound
	}
	for key, value := range update {
		switch key {
		case "name":
			holiday.Name = value.(string)
		case "day":
			holiday.Day = value.(int)
		case "month":
			holiday.Month = value.(int)
		case "year":
			if value == nil {
				holiday.Year = nil
			} else {
				year := value.(int)
				holiday.Year = &year
			}
		case "description":
			holiday.Description = value.(string)
		}
	}
	return nil
}

func (f *fakeHolidayStore) Delete(_ context.Context, id string) error {
	if _, ok := f.holidays[id]; !ok {
		return appErr.ErrNotFound
	}
	delete(f.holidays, id)
	return nil
}

type fakeCountryStore struct {
	countries map[string]*model.Country
}

func newFakeCountryStore() *fakeCountryStore {
	return &fakeCountryStore{countries: make(map[string]*model.Country)}
}

func (f *fakeCountryStore) Create(_ context.Context, country *model.Country) error {
	if _, ok := f.countries[country.Code]; ok {
		return appErr.ErrConflict
	}
	clone := *country
	f.countries[country.Code] = &clone
	return nil
}

func (f *fakeCountryStore) GetByCode(_ context.Context, code string) (*model.Country, error) {
	country, ok := f.countries[code]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	clone := *country
	return &clone, nil
}

func (f *fakeCountryStore) ListActive(_ context.Context) ([]*model.Country, error) {
	var out []*model.Country
	for _, country := range f.countries {
		if country.IsActive {
			clone := *country
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeCountryStore) Update(_ context.Context, code string, update map[string]interface{}) error {
	country, ok := f.countries[code]
	if !ok {
		return appErr.ErrNotFound
	}
	if active, ok := update["is_active"]; ok {
		country.IsActive = active.(bool)
	}
	return nil
}

func newTestHolidayService() (*HolidayService, *fakeHolidayStore, *fakeCountryStore) {
	holidays := newFakeHolidayStore()
	countries := newFakeCountryStore()
	return NewHolidayService(holidays, countries), holidays, countries
}

func TestNormalizeCountryCode(t *testing.T) {
	code, err := NormalizeCountryCode(" gb-eng ")
	require.NoError(t, err)
	require.Equal(t, "GB-ENG", code)

	for _, bad := range []string{"", "FR", "GB", "gb-xyz"} {
		_, err := NormalizeCountryCode(bad)
		require.ErrorIs(t, err, appErr.ErrInvalid, bad)
	}
}

func TestAddHolidayRegistersCountry(t *testing.T) {
	svc, _, countries := newTestHolidayService()

	holiday, err := svc.AddHoliday(context.Background(), "gb-wls", HolidayInput{
		Name: "Christmas Day", Day: 25, Month: 12,
	})
	require.NoError(t, err)
	require.Equal(t, "GB-WLS", holiday.CountryCode)
	require.Nil(t, holiday.Year)

	country, err := countries.GetByCode(context.Background(), "GB-WLS")
	require.NoError(t, err)
	require.Equal(t, "Wales", country.Name)
	require.True(t, country.IsActive)
}

func TestAddHolidayValidation(t *testing.T) {
	svc, _, _ := newTestHolidayService()
	tests := []struct {
		name  string
		input HolidayInput
	}{
		{name: "empty name", input: HolidayInput{Day: 1, Month: 1}},
		{name: "day too small", input: HolidayInput{Name: "x", Day: 0, Month: 1}},
		{name: "day too large", input: HolidayInput{Name: "x", Day: 32, Month: 1}},
		{name: "month out of range", input: HolidayInput{Name: "x", Day: 1, Month: 13}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddHoliday(context.Background(), "GB-ENG", tt.input)
			require.ErrorIs(t, err, appErr.ErrInvalid)
		})
	}
}

func TestIsHolidayRecurrence(t *testing.T) {
	svc, _, _ := newTestHolidayService()
	ctx := context.Background()

	_, err := svc.AddHoliday(ctx, "GB-ENG", HolidayInput{Name: "Christmas Day", Day: 25, Month: 12})
	require.NoError(t, err)
	year := 2024
	_, err = svc.AddHoliday(ctx, "GB-ENG", HolidayInput{Name: "One-off", Day: 3, Month: 6, Year: &year})
	require.NoError(t, err)

	date := func(value string) time.Time {
		parsed, err := timeutil.ParseDate(value)
		require.NoError(t, err)
		return parsed
	}

	// A recurring entry matches every year.
	for _, value := range []string{"2024-12-25", "2025-12-25", "2030-12-25"} {
		hit, err := svc.IsHoliday(ctx, date(value), "GB-ENG")
		require.NoError(t, err)
		require.True(t, hit, value)
	}
	// A dated entry matches its year only.
	hit, err := svc.IsHoliday(ctx, date("2024-06-03"), "GB-ENG")
	require.NoError(t, err)
	require.True(t, hit)
	hit, err = svc.IsHoliday(ctx, date("2025-06-03"), "GB-ENG")
	require.NoError(t, err)
	require.False(t, hit)
	// Jurisdictions are isolated.
	hit, err = svc.IsHoliday(ctx, date("2024-12-25"), "GB-SCT")
	require.NoError(t, err)
	require.False(t, hit)
}

func TestAddHolidaysSkipsDuplicates(t *testing.T) {
	svc, _, _ := newTestHolidayService()
	ctx := context.Background()

	_, err := svc.AddHoliday(ctx, "GB-ENG", HolidayInput{Name: "Christmas Day", Day: 25, Month: 12})
	require.NoError(t, err)

	added, err := svc.AddHolidays(ctx, "GB-ENG", []HolidayInput{
		{Name: "Christmas Day", Day: 25, Month: 12},
		{Name: "Boxing Day", Day: 26, Month: 12},
	})
	require.NoError(t, err)
	require.Len(t, added, 1)
	require.Equal(t, "Boxing Day", added[0].Name)
}

func TestUpdateHolidayScopedToCountry(t *testing.T) {
	svc, _, _ := newTestHolidayService()
	ctx := context.Background()

	holiday, err := svc.AddHoliday(ctx, "GB-ENG", HolidayInput{Name: "Christmas Day", Day: 25, Month: 12})
	require.NoError(t, err)

	updated, err := svc.UpdateHoliday(ctx, "GB-ENG", holiday.ID, HolidayInput{Name: "Xmas", Day: 25, Month: 12})
	require.NoError(t, err)
	require.Equal(t, "Xmas", updated.Name)

	_, err = svc.UpdateHoliday(ctx, "GB-SCT", holiday.ID, HolidayInput{Name: "Xmas", Day: 25, Month: 12})
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestDeleteHolidayScopedToCountry(t *testing.T) {
	svc, holidays, _ := newTestHolidayService()
	ctx := context.Background()

	holiday, err := svc.AddHoliday(ctx, "GB-ENG", HolidayInput{Name: "Christmas Day", Day: 25, Month: 12})
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteHoliday(ctx, "GB-NIR", holiday.ID), appErr.ErrNotFound)
	require.NoError(t, svc.DeleteHoliday(ctx, "GB-ENG", holiday.ID))
	require.Empty(t, holidays.holidays)
}
