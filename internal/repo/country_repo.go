package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/wastewise/binreminder/internal/model"
	"github.com/wastewise/binreminder/internal/pkg/dbutil"
	appErr "github.com/wastewise/binreminder/internal/pkg/errors"
)

type CountryRepo struct {
	db *sql.DB
}

func NewCountryRepo(db *sql.DB) *CountryRepo {
	return &CountryRepo{db: db}
}

func (r *CountryRepo) Create(ctx context.Context, country *model.Country) error {
	data := map[string]interface{}{
		"code":      country.Code,
		"name":      country.Name,
		"is_active": country.IsActive,
		"ctime":     country.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("countries", []map[string]interface{}{data})
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

func (r *CountryRepo) GetByCode(ctx context.Context, code string) (*model.Country, error) {
	where := map[string]interface{}{"code": code}
	sqlStr, args, err := builder.BuildSelect("countries", where, []string{"code", "name", "is_active", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var country model.Country
	if err := rows.Scan(&country.Code, &country.Name, &country.IsActive, &country.Ctime); err != nil {
		return nil, err
	}
	return &country, nil
}

func (r *CountryRepo) ListActive(ctx context.Context) ([]*model.Country, error) {
	where := map[string]interface{}{"is_active": true, "_orderby": "name asc"}
	sqlStr, args, err := builder.BuildSelect("countries", where, []string{"code", "name", "is_active", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var countries []*model.Country
	for rows.Next() {
		var country model.Country
		if err := rows.Scan(&country.Code, &country.Name, &country.IsActive, &country.Ctime); err != nil {
			return nil, err
		}
		countries = append(countries, &country)
	}
	return countries, rows.Err()
}

func (r *CountryRepo) Update(ctx context.Context, code string, update map[string]interface{}) error {
	where := map[string]interface{}{"code": code}
	sqlStr, args, err := builder.BuildUpdate("countries", where, update)
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
