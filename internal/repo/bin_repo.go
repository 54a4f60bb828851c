package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/wastewise/binreminder/internal/model"
	"github.com/wastewise/binreminder/internal/pkg/dbutil"
	appErr "github.com/wastewise/binreminder/internal/pkg/errors"
)

var binColumns = []string{
	"id", "user_id", "category", "body_color", "head_color",
	"last_collection_date", "collection_interval", "next_collection_date",
	"notification_enabled", "notify_days_before", "last_notification_time",
	"ctime", "mtime",
}

type BinRepo struct {
	db *sql.DB
}

func NewBinRepo(db *sql.DB) *BinRepo {
	return &BinRepo{db: db}
}

func scanBin(rows *sql.Rows) (*model.Bin, error) {
	var bin model.Bin
	if err := rows.Scan(&bin.ID, &bin.UserID, &bin.Category, &bin.BodyColor,
		&bin.HeadColor, &bin.LastCollectionDate, &bin.CollectionInterval,
		&bin.NextCollectionDate, &bin.NotificationEnabled, &bin.NotifyDaysBefore,
		&bin.LastNotificationTime, &bin.Ctime, &bin.Mtime); err != nil {
		return nil, err
	}
	return &bin, nil
}

func (r *BinRepo) Create(ctx context.Context, bin *model.Bin) error {
	data := map[string]interface{}{
		"id":                     bin.ID,
		"user_id":                bin.UserID,
		"category":               bin.Category,
		"body_color":             bin.BodyColor,
		"head_color":             bin.HeadColor,
		"last_collection_date":   bin.LastCollectionDate,
		"collection_interval":    bin.CollectionInterval,
		"next_collection_date":   bin.NextCollectionDate,
		"notification_enabled":   bin.NotificationEnabled,
		"notify_days_before":     bin.NotifyDaysBefore,
		"last_notification_time": bin.LastNotificationTime,
		"ctime":                  bin.Ctime,
		"mtime":                  bin.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("bins", []map[string]interface{}{data})
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

func (r *BinRepo) query(ctx context.Context, where map[string]interface{}) ([]*model.Bin, error) {
	sqlStr, args, err := builder.BuildSelect("bins", where, binColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var bins []*model.Bin
	for rows.Next() {
		bin, err := scanBin(rows)
		if err != nil {
			return nil, err
		}
		bins = append(bins, bin)
	}
	return bins, rows.Err()
}

// GetByIDAndUser enforces ownership at the query level: a bin belonging
// to someone else is indistinguishable from a missing one.
func (r *BinRepo) GetByIDAndUser(ctx context.Context, binID, userID string) (*model.Bin, error) {
	bins, err := r.query(ctx, map[string]interface{}{"id": binID, "user_id": userID})
	if err != nil {
		return nil, err
	}
	if len(bins) == 0 {
		return nil, appErr.ErrNotFound
	}
	return bins[0], nil
}

func (r *BinRepo) GetByUserAndCategory(ctx context.Context, userID, category string) (*model.Bin, error) {
	bins, err := r.query(ctx, map[string]interface{}{"user_id": userID, "category": category})
	if err != nil {
		return nil, err
	}
	if len(bins) == 0 {
		return nil, appErr.ErrNotFound
	}
	return bins[0], nil
}

func (r *BinRepo) ListByUser(ctx context.Context, userID string) ([]*model.Bin, error) {
	return r.query(ctx, map[string]interface{}{
		"user_id":  userID,
		"_orderby": "next_collection_date asc",
	})
}

// ListUpcoming returns the user's bins collected within [from, to],
// bounds given as YYYY-MM-DD (the column's lexicographic order matches
// chronological order).
func (r *BinRepo) ListUpcoming(ctx context.Context, userID, from, to string) ([]*model.Bin, error) {
	return r.query(ctx, map[string]interface{}{
		"user_id":                 userID,
		"next_collection_date >=": from,
		"next_collection_date <=": to,
		"_orderby":                "next_collection_date asc",
	})
}

// ListDueForReminder returns every notification-enabled bin whose next
// collection falls on the given date, across all users.
func (r *BinRepo) ListDueForReminder(ctx context.Context, date string) ([]*model.Bin, error) {
	return r.query(ctx, map[string]interface{}{
		"notification_enabled": true,
		"next_collection_date": date,
	})
}

func (r *BinRepo) Update(ctx context.Context, binID string, update map[string]interface{}) error {
	where := map[string]interface{}{"id": binID}
	sqlStr, args, err := builder.BuildUpdate("bins", where, update)
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

func (r *BinRepo) SetLastNotificationTime(ctx context.Context, binID string, ts int64) error {
	return r.Update(ctx, binID, map[string]interface{}{"last_notification_time": ts})
}
