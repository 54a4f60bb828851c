package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wastewise/binreminder/internal/model"
	appErr "github.com/wastewise/binreminder/internal/pkg/errors"
)

type holidayStore interface {
	Create(ctx context.Context, holiday *model.Holiday) error
	ExistsOnDate(ctx context.Context, countryCode string, day, month, year int) (bool, error)
	GetByID(ctx context.Context, id string) (*model.Holiday, error)
	ListByCountry(ctx context.Context, countryCode string) ([]*model.Holiday, error)
	Update(ctx context.Context, id string, update map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type countryStore interface {
	Create(ctx context.Context, country *model.Country) error
	GetByCode(ctx context.Context, code string) (*model.Country, error)
	ListActive(ctx context.Context) ([]*model.Country, error)
	Update(ctx context.Context, code string, update map[string]interface{}) error
}

// HolidayService is both the calendar admin surface and the
// schedule.HolidayLookup implementation.
type HolidayService struct {
	holidays  holidayStore
	countries countryStore
	now       func() int64
}

func NewHolidayService(holidays holidayStore, countries countryStore) *HolidayService {
	return &HolidayService{holidays: holidays, countries: countries, now: func() int64 { return time.Now().Unix() }}
}

// IsHoliday implements schedule.HolidayLookup. Entries without a year
// recur annually; dated entries apply to their year only.
func (s *HolidayService) IsHoliday(ctx context.Context, date time.Time, countryCode string) (bool, error) {
	return s.holidays.ExistsOnDate(ctx, countryCode, date.Day(), int(date.Month()), date.Year())
}

// NormalizeCountryCode upper-cases and validates a jurisdiction code.
func NormalizeCountryCode(code string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(code))
	if _, ok := model.UKCountries[upper]; !ok {
		return "", appErr.ErrInvalid
	}
	return upper, nil
}

func (s *HolidayService) AddCountry(ctx context.Context, code, name string) (*model.Country, error) {
	upper, err := NormalizeCountryCode(code)
	if err != nil {
		return nil, err
	}
	if model.UKCountries[upper] != name {
		return nil, appErr.ErrInvalid
	}
	country := &model.Country{Code: upper, Name: name, IsActive: true, Ctime: s.now()}
	if err := s.countries.Create(ctx, country); err != nil {
		return nil, err
	}
	return country, nil
}

// getOrCreateCountry backs holiday creation: adding a holiday for a
// valid country that was never registered registers it on the fly.
func (s *HolidayService) getOrCreateCountry(ctx context.Context, code string) (*model.Country, error) {
	upper, err := NormalizeCountryCode(code)
	if err != nil {
		return nil, err
	}
	country, err := s.countries.GetByCode(ctx, upper)
	if err == nil {
		return country, nil
	}
	if !errors.Is(err, appErr.ErrNotFound) {
		return nil, err
	}
	country = &model.Country{Code: upper, Name: model.UKCountries[upper], IsActive: true, Ctime: s.now()}
	if err := s.countries.Create(ctx, country); err != nil && !errors.Is(err, appErr.ErrConflict) {
		return nil, err
	}
	return country, nil
}

func (s *HolidayService) ListCountries(ctx context.Context) ([]*model.Country, error) {
	return s.countries.ListActive(ctx)
}

func (s *HolidayService) SetCountryActive(ctx context.Context, code string, active bool) error {
	upper, err := NormalizeCountryCode(code)
	if err != nil {
		return err
	}
	return s.countries.Update(ctx, upper, map[string]interface{}{"is_active": active})
}

type HolidayInput struct {
	Name        string `json:"name"`
	Day         int    `json:"day"`
	Month       int    `json:"month"`
	Year        *int   `json:"year,omitempty"`
	Description string `json:"description,omitempty"`
}

func (in *HolidayInput) validate() error {
	if in.Name == "" || in.Day < 1 || in.Day > 31 || in.Month < 1 || in.Month > 12 {
		return appErr.ErrInvalid
	}
	return nil
}

func (s *HolidayService) AddHoliday(ctx context.Context, countryCode string, input HolidayInput) (*model.Holiday, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	country, err := s.getOrCreateCountry(ctx, countryCode)
	if err != nil {
		return nil, err
	}
	holiday := &model.Holiday{
		ID:          newID(),
		CountryCode: country.Code,
		Name:        input.Name,
		Day:         input.Day,
		Month:       input.Month,
		Year:        input.Year,
		Description: input.Description,
		Ctime:       s.now(),
	}
	if err := s.holidays.Create(ctx, holiday); err != nil {
		return nil, err
	}
	return holiday, nil
}

// AddHolidays inserts a batch, skipping duplicates instead of failing
// the whole request.
func (s *HolidayService) AddHolidays(ctx context.Context, countryCode string, inputs []HolidayInput) ([]*model.Holiday, error) {
	var added []*model.Holiday
	for _, input := range inputs {
		holiday, err := s.AddHoliday(ctx, countryCode, input)
		if err != nil {
			if errors.Is(err, appErr.ErrConflict) {
				continue
			}
			return nil, err
		}
		added = append(added, holiday)
	}
	return added, nil
}

func (s *HolidayService) ListHolidays(ctx context.Context, countryCode string) ([]*model.Holiday, error) {
	upper, err := NormalizeCountryCode(countryCode)
	if err != nil {
		return nil, err
	}
	return s.holidays.ListByCountry(ctx, upper)
}

func (s *HolidayService) UpdateHoliday(ctx context.Context, countryCode, holidayID string, input HolidayInput) (*model.Holiday, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	upper, err := NormalizeCountryCode(countryCode)
	if err != nil {
		return nil, err
	}
	holiday, err := s.holidays.GetByID(ctx, holidayID)
	if err != nil {
		return nil, err
	}
	if holiday.CountryCode != upper {
		return nil, appErr.ErrNotFound
	}
	var year interface{}
	if input.Year != nil {
		year = *input.Year
	}
	update := map[string]interface{}{
		"name":        input.Name,
		"day":         input.Day,
		"month":       input.Month,
		"year":        year,
		"description": input.Description,
	}
	if err := s.holidays.Update(ctx, holidayID, update); err != nil {
		return nil, err
	}
	return s.holidays.GetByID(ctx, holidayID)
}

func (s *HolidayService) DeleteHoliday(ctx context.Context, countryCode, holidayID string) error {
	upper, err := NormalizeCountryCode(countryCode)
	if err != nil {
		return err
	}
	holiday, err := s.holidays.GetByID(ctx, holidayID)
	if err != nil {
		return err
	}
	if holiday.CountryCode != upper {
		return appErr.ErrNotFound
	}
	return s.holidays.Delete(ctx, holidayID)
}
