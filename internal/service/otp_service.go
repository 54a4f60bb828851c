package service

import (
	"context"
	"errors"

	"github.com/wastewise/binreminder/internal/model"
	appErr "github.com/wastewise/binreminder/internal/pkg/errors"
	"github.com/wastewise/binreminder/internal/pkg/password"
	"github.com/wastewise/binreminder/internal/pkg/timeutil"
)

const (
	codeExpireMinutes     = 15
	resendCooldownSeconds = 60
)

type codeStore interface {
	Create(ctx context.Context, code *model.VerificationCode) error
	LatestByUser(ctx context.Context, userID, purpose string) (*model.VerificationCode, error)
	Consume(ctx context.Context, id string) error
	SupersedeActive(ctx context.Context, userID, purpose string) error
	IncrementAttempts(ctx context.Context, id string) (int, error)
	Lock(ctx context.Context, id string) error
}

// OtpService issues and verifies one-time codes for email verification
// and password reset. One active code per (user, purpose) is meaningful
// at a time; older codes are superseded, never deleted.
type OtpService struct {
	codes  codeStore
	sender CodeSender
	now    func() int64
}

func NewOtpService(codes codeStore, sender CodeSender) *OtpService {
	return &OtpService{codes: codes, sender: sender, now: timeutil.NowUnix}
}

// Issue creates a fresh code and dispatches it. It does not rate-limit;
// Resend is the cooldown-aware entry point. A dispatch failure fails
// the whole operation and retires the just-created code so it cannot
// anchor the resend cooldown.
func (s *OtpService) Issue(ctx context.Context, userID, email, purpose string) error {
	code := newCode()
	hash, err := password.Hash(code)
	if err != nil {
		return err
	}
	now := s.now()
	item := &model.VerificationCode{
		ID:        newID(),
		UserID:    userID,
		Purpose:   purpose,
		CodeHash:  hash,
		Used:      false,
		Attempts:  0,
		Ctime:     now,
		ExpiresAt: now + codeExpireMinutes*60,
	}
	if err := s.codes.Create(ctx, item); err != nil {
		return err
	}
	if err := s.sender.Send(email, purpose, code); err != nil {
		_ = s.codes.Lock(ctx, item.ID)
		return err
	}
	return nil
}

// Resend enforces a 60 second cooldown anchored on the active code's
// creation time, then supersedes it and issues a new one.
func (s *OtpService) Resend(ctx context.Context, userID, email, purpose string) error {
	now := s.now()
	latest, err := s.codes.LatestByUser(ctx, userID, purpose)
	if err != nil && !errors.Is(err, appErr.ErrNotFound) {
		return err
	}
	if latest != nil && latest.Status(now) == model.CodeStatusActive {
		elapsed := now - latest.Ctime
		if elapsed < resendCooldownSeconds {
			return &appErr.RateLimitError{SecondsLeft: resendCooldownSeconds - elapsed}
		}
		if err := s.codes.SupersedeActive(ctx, userID, purpose); err != nil {
			return err
		}
	}
	return s.Issue(ctx, userID, email, purpose)
}

// Verify consumes the active code for (user, purpose) when the
// submitted value matches. A mismatch increments the attempt counter
// atomically; the third failure locks the code. Absent, expired,
// consumed and mismatched codes all surface as ErrCodeInvalid so the
// caller cannot probe the code's state.
func (s *OtpService) Verify(ctx context.Context, userID, purpose, submitted string) error {
	latest, err := s.codes.LatestByUser(ctx, userID, purpose)
	if err != nil {
		if errors.Is(err, appErr.ErrNotFound) {
			return appErr.ErrCodeInvalid
		}
		return err
	}
	if latest.Status(s.now()) != model.CodeStatusActive {
		return appErr.ErrCodeInvalid
	}
	if password.Compare(latest.CodeHash, submitted) == nil {
		if err := s.codes.Consume(ctx, latest.ID); err != nil {
			if errors.Is(err, appErr.ErrNotFound) {
				// Lost the race against a concurrent verify.
				return appErr.ErrCodeInvalid
			}
			return err
		}
		return nil
	}
	attempts, err := s.codes.IncrementAttempts(ctx, latest.ID)
	if err != nil {
		return err
	}
	if attempts >= model.CodeMaxAttempts {
		if err := s.codes.Lock(ctx, latest.ID); err != nil {
			return err
		}
		return appErr.ErrCodeLocked
	}
	return appErr.ErrCodeInvalid
}
