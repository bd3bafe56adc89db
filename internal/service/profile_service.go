package service

import (
	"context"
	"strings"

	"go-storefront/internal/apperr"
	"go-storefront/internal/domain"
)

type ProfileService struct {
	users domain.UserRepository
}

func NewProfileService(users domain.UserRepository) *ProfileService {
	return &ProfileService{users: users}
}

func (s *ProfileService) Get(ctx context.Context, email string) (*domain.Identity, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, apperr.Internal("load profile failed", err)
	}
	if u == nil {
		return nil, apperr.NotFound("user not found")
	}
	id := u.Identity()
	return &id, nil
}

type ProfileUpdateInput struct {
	FullName string `json:"fullName" validate:"required,min=2"`
	Image    string `json:"image" validate:"omitempty,url"`
}

// Update mutates only fullName and image on the user matching the session's
// email. Role and password are out of reach of this path.
func (s *ProfileService) Update(ctx context.Context, email string, in ProfileUpdateInput) (*domain.Identity, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validate.Struct(in); err != nil {
		return nil, apperr.Invalid(firstValidationMessage(err))
	}

	u, err := s.users.UpdateProfile(ctx, normalizeEmail(email), in.FullName, in.Image)
	if err != nil {
		return nil, apperr.Internal("update profile failed", err)
	}
	if u == nil {
		return nil, apperr.NotFound("user not found")
	}
	id := u.Identity()
	return &id, nil
}
