package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrTooMany      = errors.New("too many requests")
	ErrInternal     = errors.New("internal")
	// ErrCodeInvalid covers a wrong, expired or already consumed
	// verification code. The three cases are deliberately
	// indistinguishable to the caller.
	ErrCodeInvalid = errors.New("code invalid or expired")
	ErrCodeLocked  = errors.New("code locked after too many attempts")
	// ErrHolidayData means holiday adjustment did not terminate within a
	// year of days, which only happens with corrupt recurring data.
	ErrHolidayData = errors.New("holiday data corrupt")
	ErrDelivery    = errors.New("delivery failed")
)

// RateLimitError carries the remaining cooldown of a resend request.
// It matches ErrTooMany under errors.Is.
type RateLimitError struct {
	SecondsLeft int64
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry in %ds", e.SecondsLeft)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrTooMany
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
