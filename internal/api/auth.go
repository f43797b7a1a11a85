package api

import (
	"context"

	"sibubur/terminal/internal/domain"
)

type AuthService struct {
	client *Client
}

func (s *AuthService) Login(ctx context.Context, username string, password string) (domain.LoginResponse, error) {
	var resp domain.LoginResponse
	err := s.client.post(ctx, "/auth/login", domain.LoginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	return resp, nil
}

func (s *AuthService) Profile(ctx context.Context) (domain.Profile, error) {
	var profile domain.Profile
	if err := s.client.get(ctx, "/auth/profile", nil, &profile); err != nil {
		return domain.Profile{}, err
	}
	return profile, nil
}

const superAdminRoleName = "SuperAdmin"

// IsSuperAdmin asks the backend whether the current session belongs to a
// SuperAdmin or Owner. Errors propagate so the permission cache can fail
// closed instead of caching a guess.
func (s *AuthService) IsSuperAdmin(ctx context.Context) (bool, error) {
	profile, err := s.Profile(ctx)
	if err != nil {
		return false, err
	}
	if profile.RoleName == nil {
		return false, nil
	}
	return *profile.RoleName == superAdminRoleName || *profile.RoleName == "Owner", nil
}

// UserPermissions returns the permission slugs granted to the current user.
func (s *AuthService) UserPermissions(ctx context.Context) ([]string, error) {
	profile, err := s.Profile(ctx)
	if err != nil {
		return nil, err
	}
	if profile.Permissions == nil {
		return []string{}, nil
	}
	return profile.Permissions, nil
}
