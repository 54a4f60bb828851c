package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wastewise/binreminder/internal/model"
	appErr "github.com/wastewise/binreminder/internal/pkg/errors"
	"github.com/wastewise/binreminder/internal/pkg/jwt"
	"github.com/wastewise/binreminder/internal/pkg/password"
	"github.com/wastewise/binreminder/internal/pkg/timeutil"
)

const minPasswordLength = 6

type userStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, userID string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByRefreshToken(ctx context.Context, token string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, userID string, update map[string]interface{}) error
	ClearRefreshToken(ctx context.Context, token string) error
	Delete(ctx context.Context, userID string) error
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService struct {
	users      userStore
	otp        *OtpService
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	adminToken string
}

func NewAuthService(users userStore, otp *OtpService, secret []byte, accessTTL, refreshTTL time.Duration, adminToken string) *AuthService {
	return &AuthService{
		users:      users,
		otp:        otp,
		jwtSecret:  secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		adminToken: adminToken,
	}
}

type RegisterInput struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Country    string `json:"country"`
	AdminToken string `json:"admin_token,omitempty"`
}

// Register creates the account and dispatches an email verification
// code. If the code cannot be delivered the registration is rolled
// back: the caller should retry the whole operation.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, *TokenPair, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || input.FullName == "" {
		return nil, nil, appErr.ErrInvalid
	}
	if len(input.Password) < minPasswordLength {
		return nil, nil, appErr.ErrInvalid
	}
	country, err := NormalizeCountryCode(input.Country)
	if err != nil {
		return nil, nil, err
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, nil, err
	}
	// The first account bootstraps the admin role; afterwards the
	// registration token is required to claim it.
	isAdmin := count == 0
	if !isAdmin && input.AdminToken != "" {
		if s.adminToken == "" || input.AdminToken != s.adminToken {
			return nil, nil, appErr.ErrUnauthorized
		}
		isAdmin = true
	}

	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, nil, err
	}
	now := timeutil.NowUnix()
	user := &model.User{
		ID:           newID(),
		FullName:     input.FullName,
		Email:        email,
		PasswordHash: hash,
		Country:      country,
		IsAdmin:      isAdmin,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}
	if err := s.otp.Issue(ctx, user.ID, user.Email, model.CodePurposeEmailVerification); err != nil {
		_ = s.users.Delete(ctx, user.ID)
		return nil, nil, err
	}
	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *AuthService) Login(ctx context.Context, email, plainPassword, deviceToken string) (*model.User, *TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, appErr.ErrUnauthorized
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return nil, nil, appErr.ErrUnauthorized
	}
	if deviceToken != "" && deviceToken != user.DeviceToken {
		if err := s.users.Update(ctx, user.ID, map[string]interface{}{"device_token": deviceToken}); err != nil {
			return nil, nil, err
		}
		user.DeviceToken = deviceToken
	}
	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh rotates the token pair. The presented token must both parse
// as a refresh JWT and match the one stored for the user, so a stolen
// token dies the moment the legitimate session rotates.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := jwt.ParseToken(refreshToken, s.jwtSecret)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, appErr.ErrUnauthorized
	}
	user, err := s.users.GetByRefreshToken(ctx, refreshToken)
	if err != nil || user.ID != claims.UserID {
		return nil, appErr.ErrUnauthorized
	}
	if user.RefreshTokenExpiry <= timeutil.NowUnix() {
		return nil, appErr.ErrUnauthorized
	}
	return s.issueTokens(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.users.ClearRefreshToken(ctx, refreshToken)
}

func (s *AuthService) issueTokens(ctx context.Context, user *model.User) (*TokenPair, error) {
	access, err := jwt.GenerateToken(user.ID, jwt.TokenTypeAccess, user.IsAdmin, s.jwtSecret, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := jwt.GenerateToken(user.ID, jwt.TokenTypeRefresh, user.IsAdmin, s.jwtSecret, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	update := map[string]interface{}{
		"refresh_token":        refresh,
		"refresh_token_expiry": timeutil.NowUnix() + int64(s.refreshTTL/time.Second),
	}
	if err := s.users.Update(ctx, user.ID, update); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, userID, code string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return appErr.ErrConflict
	}
	if err := s.otp.Verify(ctx, user.ID, model.CodePurposeEmailVerification, code); err != nil {
		return err
	}
	return s.users.Update(ctx, user.ID, map[string]interface{}{
		"email_verified": true,
		"mtime":          timeutil.NowUnix(),
	})
}

func (s *AuthService) ResendVerification(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return appErr.ErrConflict
	}
	return s.otp.Resend(ctx, user.ID, user.Email, model.CodePurposeEmailVerification)
}

// ForgotPassword never reveals whether the address is registered: an
// unknown email is silently accepted.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, appErr.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.otp.Resend(ctx, user.ID, user.Email, model.CodePurposePasswordReset)
}

// ResetPassword consumes a reset code and replaces the password. All
// sessions are invalidated by clearing the stored refresh token.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return appErr.ErrInvalid
	}
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, appErr.ErrNotFound) {
			return appErr.ErrCodeInvalid
		}
		return err
	}
	if err := s.otp.Verify(ctx, user.ID, model.CodePurposePasswordReset, code); err != nil {
		return err
	}
	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.Update(ctx, user.ID, map[string]interface{}{
		"password_hash":        hash,
		"refresh_token":        "",
		"refresh_token_expiry": 0,
		"mtime":                timeutil.NowUnix(),
	})
}
