package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/wastewise/binreminder/internal/model"
	"github.com/wastewise/binreminder/internal/pkg/dbutil"
	appErr "github.com/wastewise/binreminder/internal/pkg/errors"
)

var codeColumns = []string{"id", "user_id", "purpose", "code_hash", "used", "attempts", "ctime", "expires_at"}

type VerificationCodeRepo struct {
	db *sql.DB
}

func NewVerificationCodeRepo(db *sql.DB) *VerificationCodeRepo {
	return &VerificationCodeRepo{db: db}
}

func (r *VerificationCodeRepo) Create(ctx context.Context, code *model.VerificationCode) error {
	data := map[string]interface{}{
		"id":         code.ID,
		"user_id":    code.UserID,
		"purpose":    code.Purpose,
		"code_hash":  code.CodeHash,
		"used":       code.Used,
		"attempts":   code.Attempts,
		"ctime":      code.Ctime,
		"expires_at": code.ExpiresAt,
	}
	sqlStr, args, err := builder.BuildInsert("verification_codes", []map[string]interface{}{data})
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

// LatestByUser returns the newest code issued for (user, purpose)
// regardless of its state; the caller derives the state.
func (r *VerificationCodeRepo) LatestByUser(ctx context.Context, userID, purpose string) (*model.VerificationCode, error) {
	where := map[string]interface{}{
		"user_id":  userID,
		"purpose":  purpose,
		"_orderby": "ctime desc",
		"_limit":   []uint{0, 1},
	}
	sqlStr, args, err := builder.BuildSelect("verification_codes", where, codeColumns)
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
	var code model.VerificationCode
	if err := rows.Scan(&code.ID, &code.UserID, &code.Purpose, &code.CodeHash,
		&code.Used, &code.Attempts, &code.Ctime, &code.ExpiresAt); err != nil {
		return nil, err
	}
	return &code, nil
}

// Consume marks a code used, succeeding at most once. Two concurrent
// verifications of the same code race on the used flag here; the loser
// gets ErrNotFound.
func (r *VerificationCodeRepo) Consume(ctx context.Context, id string) error {
	where := map[string]interface{}{"id": id, "used": false}
	update := map[string]interface{}{"used": true}
	sqlStr, args, err := builder.BuildUpdate("verification_codes", where, update)
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

// SupersedeActive retires any still-unused codes for (user, purpose)
// before a fresh one is issued.
func (r *VerificationCodeRepo) SupersedeActive(ctx context.Context, userID, purpose string) error {
	where := map[string]interface{}{"user_id": userID, "purpose": purpose, "used": false}
	update := map[string]interface{}{"used": true}
	sqlStr, args, err := builder.BuildUpdate("verification_codes", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// IncrementAttempts bumps the failure counter in a single statement and
// returns the new value, so concurrent wrong guesses each observe a
// distinct count and exactly one of them crosses the lockout threshold.
func (r *VerificationCodeRepo) IncrementAttempts(ctx context.Context, id string) (int, error) {
	const q = `UPDATE verification_codes SET attempts = attempts + 1 WHERE id = $1 RETURNING attempts`
	var attempts int
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&attempts); err != nil {
		if err == sql.ErrNoRows {
			return 0, appErr.ErrNotFound
		}
		return 0, err
	}
	return attempts, nil
}

// Lock marks an attempt-exhausted code used. Unlike Consume it does not
// care whether the used flag was already set.
func (r *VerificationCodeRepo) Lock(ctx context.Context, id string) error {
	where := map[string]interface{}{"id": id}
	update := map[string]interface{}{"used": true}
	sqlStr, args, err := builder.BuildUpdate("verification_codes", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
