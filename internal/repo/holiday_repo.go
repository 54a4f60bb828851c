package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/wastewise/binreminder/internal/model"
	"github.com/wastewise/binreminder/internal/pkg/dbutil"
	appErr "github.com/wastewise/binreminder/internal/pkg/errors"
)

var holidayColumns = []string{"id", "country_code", "name", "day", "month", "year", "description", "ctime"}

type HolidayRepo struct {
	db *sql.DB
}

func NewHolidayRepo(db *sql.DB) *HolidayRepo {
	return &HolidayRepo{db: db}
}

func scanHoliday(rows *sql.Rows) (*model.Holiday, error) {
	var holiday model.Holiday
	var year sql.NullInt64
	if err := rows.Scan(&holiday.ID, &holiday.CountryCode, &holiday.Name,
		&holiday.Day, &holiday.Month, &year, &holiday.Description, &holiday.Ctime); err != nil {
		return nil, err
	}
	if year.Valid {
		y := int(year.Int64)
		holiday.Year = &y
	}
	return &holiday, nil
}

func (r *HolidayRepo) Create(ctx context.Context, holiday *model.Holiday) error {
	var year interface{}
	if holiday.Year != nil {
		year = *holiday.Year
	}
	data := map[string]interface{}{
		"id":           holiday.ID,
		"country_code": holiday.CountryCode,
		"name":         holiday.Name,
		"day":          holiday.Day,
		"month":        holiday.Month,
		"year":         year,
		"description":  holiday.Description,
		"ctime":        holiday.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("holidays", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

// ExistsOnDate reports whether a holiday covers the given calendar day
// in the given country. Recurring entries (year IS NULL) match every
// year, which gendry's map form cannot express, hence the raw query.
func (r *HolidayRepo) ExistsOnDate(ctx context.Context, countryCode string, day, month, year int) (bool, error) {
	const q = `SELECT COUNT(*) FROM holidays WHERE country_code = $1 AND day = $2 AND month = $3 AND (year IS NULL OR year = $4)`
	var count int
	if err := r.db.QueryRowContext(ctx, q, countryCode, day, month, year).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *HolidayRepo) GetByID(ctx context.Context, id string) (*model.Holiday, error) {
	holidays, err := r.list(ctx, map[string]interface{}{"id": id})
	if err != nil {
		return nil, err
	}
	if len(holidays) == 0 {
		return nil, appErr.ErrNotFound
	}
	return holidays[0], nil
}

func (r *HolidayRepo) ListByCountry(ctx context.Context, countryCode string) ([]*model.Holiday, error) {
	return r.list(ctx, map[string]interface{}{
		"country_code": countryCode,
		"_orderby":     "month asc, day asc",
	})
}

func (r *HolidayRepo) list(ctx context.Context, where map[string]interface{}) ([]*model.Holiday, error) {
	sqlStr, args, err := builder.BuildSelect("holidays", where, holidayColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var holidays []*model.Holiday
	for rows.Next() {
		holiday, err := scanHoliday(rows)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, holiday)
	}
	return holidays, rows.Err()
}

func (r *HolidayRepo) Update(ctx context.Context, id string, update map[string]interface{}) error {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildUpdate("holidays", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *HolidayRepo) Delete(ctx context.Context, id string) error {
	sqlStr, args, err := builder.BuildDelete("holidays", map[string]interface{}{"id": id})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
