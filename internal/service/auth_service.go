package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"go-storefront/internal/apperr"
	"go-storefront/internal/core/auth"
	"go-storefront/internal/core/oauth"
	"go-storefront/internal/domain"
	"go-storefront/internal/repo"
	"go-storefront/pkg/utils"
)

// DefaultRedirect is where successful sign-in lands unless the caller
// supplied an explicit callback path.
const DefaultRedirect = "/products"

type AuthService struct {
	users domain.UserRepository
	jwt   *auth.JWTer
	log   *zap.Logger
}

func NewAuthService(users domain.UserRepository, jwt *auth.JWTer, log *zap.Logger) *AuthService {
	return &AuthService{users: users, jwt: jwt, log: log}
}

type SignupInput struct {
	FullName string `json:"fullName" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Image    string `json:"image" validate:"omitempty,url"`
}

// Signup registers a credentials account with role "user". The role is never
// taken from the payload.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) error {
	if err := validate.Struct(in); err != nil {
		return apperr.Invalid(firstValidationMessage(err))
	}
	if msg := checkPasswordComplexity(in.Password); msg != "" {
		return apperr.Invalid(msg)
	}

	email := normalizeEmail(in.Email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return apperr.Internal("signup failed", err)
	}
	if existing != nil {
		return apperr.Conflict("Email already in use")
	}

	u := &domain.User{
		Email:        email,
		FullName:     strings.TrimSpace(in.FullName),
		Image:        in.Image,
		PasswordHash: utils.HashPassword(in.Password),
		Role:         string(auth.RoleUser),
	}
	if err := s.users.Create(ctx, u); err != nil {
		// A concurrent signup can win the unique index race.
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return apperr.Conflict("Email already in use")
		}
		return apperr.Internal("signup failed", err)
	}
	s.log.Info("user signed up", zap.String("user_id", u.ID))
	return nil
}

// Authenticate verifies a credentials pair. It returns (nil, nil) for unknown
// email, OAuth-only accounts, and hash mismatches alike; the caller decides
// how to surface that. The hash never leaves this method.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.Identity, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil
	}
	u, err := s.users.FindByEmailWithPassword(ctx, email)
	if err != nil {
		return nil, apperr.Internal("authenticate failed", err)
	}
	if u == nil || u.BannedAt != nil || u.PasswordHash == "" {
		return nil, nil
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, nil
	}
	id := u.Identity()
	return &id, nil
}

type LoginResult struct {
	Token      string          `json:"token"`
	User       domain.Identity `json:"user"`
	RedirectTo string          `json:"redirectTo"`
}

func (s *AuthService) Login(ctx context.Context, email, password, callbackURL string) (*LoginResult, error) {
	id, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	tok, err := s.issue(*id)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: tok, User: *id, RedirectTo: RedirectTarget(callbackURL)}, nil
}

// FederatedSignIn provisions an account just in time from an external
// identity assertion. Existing users are left untouched; repeat federated
// logins never overwrite the profile.
func (s *AuthService) FederatedSignIn(ctx context.Context, p oauth.Profile) (*LoginResult, error) {
	email := normalizeEmail(p.Email)
	if email == "" {
		return nil, apperr.Unauthorized("provider returned no email")
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("federated sign-in failed", err)
	}
	if u == nil {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			if at := strings.IndexByte(email, '@'); at > 0 {
				name = email[:at]
			} else {
				name = "user"
			}
		}
		u = &domain.User{
			Email:    email,
			FullName: name,
			Image:    p.Picture,
			Role:     string(auth.RoleUser),
			// no password: this account cannot use the credentials path
		}
		if err := s.users.Create(ctx, u); err != nil {
			if errors.Is(err, repo.ErrDuplicateEmail) {
				// Concurrent first login; re-read the winner.
				if u, err = s.users.FindByEmail(ctx, email); err != nil || u == nil {
					return nil, apperr.Internal("federated sign-in failed", err)
				}
			} else {
				return nil, apperr.Internal("federated sign-in failed", err)
			}
		} else {
			s.log.Info("user provisioned via federation", zap.String("user_id", u.ID))
		}
	}
	if u.BannedAt != nil {
		return nil, apperr.Unauthorized("account disabled")
	}

	id := u.Identity()
	tok, err := s.issue(id)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: tok, User: id, RedirectTo: DefaultRedirect}, nil
}

// RoleByEmail implements auth.RoleSource for decode-time role backfill.
func (s *AuthService) RoleByEmail(ctx context.Context, email string) (string, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil || u == nil {
		return "", err
	}
	return u.Role, nil
}

func (s *AuthService) issue(id domain.Identity) (string, error) {
	tok, err := s.jwt.Issue(auth.Identity{
		ID:      id.ID,
		Email:   id.Email,
		Name:    id.FullName,
		Picture: id.Image,
		Role:    id.Role,
	})
	if err != nil {
		return "", apperr.Internal("issue token failed", err)
	}
	return tok, nil
}

// RedirectTarget sanitizes a post-login destination. Only relative paths are
// honored to keep the redirect on-site; absolute and protocol-relative URLs
// fall back to DefaultRedirect. Every sign-in path (credentials and OAuth
// alike) must route its callback through here.
func RedirectTarget(callbackURL string) string {
	if strings.HasPrefix(callbackURL, "/") && !strings.HasPrefix(callbackURL, "//") {
		return callbackURL
	}
	return DefaultRedirect
}
