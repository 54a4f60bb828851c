package service

import (
	"context"
	"strings"

	"github.com/wastewise/binreminder/internal/model"
	appErr "github.com/wastewise/binreminder/internal/pkg/errors"
	"github.com/wastewise/binreminder/internal/pkg/timeutil"
)

type UserService struct {
	users userStore
}

func NewUserService(users userStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Get(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// EditProfile updates the caller's name and/or country. At least one
// field must be provided.
func (s *UserService) EditProfile(ctx context.Context, userID, fullName, country string) (*model.User, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" && country == "" {
		return nil, appErr.ErrInvalid
	}
	update := map[string]interface{}{"mtime": timeutil.NowUnix()}
	if fullName != "" {
		update["full_name"] = fullName
	}
	if country != "" {
		normalized, err := NormalizeCountryCode(country)
		if err != nil {
			return nil, err
		}
		update["country"] = normalized
	}
	if err := s.users.Update(ctx, userID, update); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

func (s *UserService) RegisterDeviceToken(ctx context.Context, userID, deviceToken string) error {
	if strings.TrimSpace(deviceToken) == "" {
		return appErr.ErrInvalid
	}
	return s.users.Update(ctx, userID, map[string]interface{}{"device_token": deviceToken})
}

// List returns all accounts, admin only at the HTTP seam.
func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	return s.users.List(ctx)
}

type AdminUpdateUserInput struct {
	FullName string `json:"full_name,omitempty"`
	Country  string `json:"country,omitempty"`
	IsAdmin  *bool  `json:"is_admin,omitempty"`
}

func (s *UserService) AdminUpdate(ctx context.Context, userID string, input AdminUpdateUserInput) (*model.User, error) {
	update := map[string]interface{}{"mtime": timeutil.NowUnix()}
	if input.FullName != "" {
		update["full_name"] = input.FullName
	}
	if input.Country != "" {
		normalized, err := NormalizeCountryCode(input.Country)
		if err != nil {
			return nil, err
		}
		update["country"] = normalized
	}
	if input.IsAdmin != nil {
		update["is_admin"] = *input.IsAdmin
	}
	if err := s.users.Update(ctx, userID, update); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// Delete removes the account; bins and codes go with it via the schema.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	return s.users.Delete(ctx, userID)
}
