package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-storefront/internal/apperr"
	"go-storefront/internal/core/auth"
	"go-storefront/internal/core/oauth"
	"go-storefront/internal/domain"
	"go-storefront/internal/repo"
	"go-storefront/pkg/utils"
)

func testJWTer() *auth.JWTer {
	return &auth.JWTer{Secret: []byte("test-secret"), Issuer: "storefront-test", TTL: time.Hour}
}

func TestSignupHashesPasswordAndForcesUserRole(t *testing.T) {
	users := new(mockUserRepo)
	users.On("FindByEmail", mock.Anything, "jane@example.com").Return(nil, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "jane@example.com" &&
			u.Role == string(auth.RoleUser) &&
			u.PasswordHash != "Passw0rd!" &&
			utils.CheckPassword("Passw0rd!", u.PasswordHash)
	})).Return(nil)

	svc := NewAuthService(users, testJWTer(), zap.NewNop())
	err := svc.Signup(context.Background(), SignupInput{
		FullName: "Jane Doe",
		Email:    "Jane@Example.com",
		Password: "Passw0rd!",
	})
	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestSignupValidation(t *testing.T) {
	svc := NewAuthService(new(mockUserRepo), testJWTer(), zap.NewNop())

	tests := []struct {
		name string
		in   SignupInput
		msg  string
	}{
		{"short name", SignupInput{FullName: "Jo", Email: "jo@example.com", Password: "Passw0rd!"}, "Full name must be at least 3 characters long"},
		{"bad email", SignupInput{FullName: "Jane Doe", Email: "not-an-email", Password: "Passw0rd!"}, "Invalid email address"},
		{"short password", SignupInput{FullName: "Jane Doe", Email: "jane@example.com", Password: "P1!"}, "Password must be at least 6 characters long"},
		{"no uppercase", SignupInput{FullName: "Jane Doe", Email: "jane@example.com", Password: "passw0rd!"}, "Password must contain at least one uppercase letter"},
		{"no digit", SignupInput{FullName: "Jane Doe", Email: "jane@example.com", Password: "Password!"}, "Password must contain at least one number"},
		{"no special", SignupInput{FullName: "Jane Doe", Email: "jane@example.com", Password: "Passw0rd"}, "Password must contain at least one special character"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Signup(context.Background(), tt.in)
			require.Error(t, err)
			require.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
			require.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	existing := &domain.User{ID: "u1", Email: "jane@example.com"}

	t.Run("pre-checked", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("FindByEmail", mock.Anything, "jane@example.com").Return(existing, nil)

		svc := NewAuthService(users, testJWTer(), zap.NewNop())
		err := svc.Signup(context.Background(), SignupInput{
			FullName: "Jane Doe", Email: "jane@example.com", Password: "Passw0rd!",
		})
		require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("lost the index race", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("FindByEmail", mock.Anything, "jane@example.com").Return(nil, nil)
		users.On("Create", mock.Anything, mock.Anything).Return(repo.ErrDuplicateEmail)

		svc := NewAuthService(users, testJWTer(), zap.NewNop())
		err := svc.Signup(context.Background(), SignupInput{
			FullName: "Jane Doe", Email: "jane@example.com", Password: "Passw0rd!",
		})
		require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})
}

func TestAuthenticateFailuresAreUniform(t *testing.T) {
	banned := time.Now()
	hash := utils.HashPassword("Passw0rd!")

	tests := []struct {
		name string
		user *domain.User
		pass string
	}{
		{"unknown email", nil, "Passw0rd!"},
		{"oauth-only account", &domain.User{Email: "jane@example.com"}, "Passw0rd!"},
		{"banned account", &domain.User{Email: "jane@example.com", PasswordHash: hash, BannedAt: &banned}, "Passw0rd!"},
		{"wrong password", &domain.User{Email: "jane@example.com", PasswordHash: hash}, "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(mockUserRepo)
			users.On("FindByEmailWithPassword", mock.Anything, "jane@example.com").Return(tt.user, nil)

			svc := NewAuthService(users, testJWTer(), zap.NewNop())
			id, err := svc.Authenticate(context.Background(), "jane@example.com", tt.pass)
			require.NoError(t, err)
			require.Nil(t, id)
		})
	}
}

func TestLoginIssuesTokenAndHonorsCallback(t *testing.T) {
	hash := utils.HashPassword("Passw0rd!")
	user := &domain.User{ID: "u1", Email: "jane@example.com", FullName: "Jane Doe", PasswordHash: hash, Role: "admin"}

	users := new(mockUserRepo)
	users.On("FindByEmailWithPassword", mock.Anything, "jane@example.com").Return(user, nil)

	jwter := testJWTer()
	svc := NewAuthService(users, jwter, zap.NewNop())

	tests := []struct {
		name     string
		callback string
		want     string
	}{
		{"relative path honored", "/dashboard?tab=stats", "/dashboard?tab=stats"},
		{"empty falls back", "", DefaultRedirect},
		{"absolute url rejected", "https://evil.example.com/", DefaultRedirect},
		{"protocol-relative rejected", "//evil.example.com", DefaultRedirect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Login(context.Background(), "jane@example.com", "Passw0rd!", tt.callback)
			require.NoError(t, err)
			require.Equal(t, tt.want, res.RedirectTo)
			require.Equal(t, "jane@example.com", res.User.Email)

			claims, err := jwter.Parse(res.Token)
			require.NoError(t, err)
			require.Equal(t, "admin", claims.Role)
			require.Equal(t, "u1", claims.Subject)
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	users := new(mockUserRepo)
	users.On("FindByEmailWithPassword", mock.Anything, "jane@example.com").Return(nil, nil)

	svc := NewAuthService(users, testJWTer(), zap.NewNop())
	_, err := svc.Login(context.Background(), "jane@example.com", "Passw0rd!", "")
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestFederatedSignInProvisionsOnce(t *testing.T) {
	profile := oauth.Profile{Email: "New@Example.com", Name: "New User", Picture: "https://example.com/p.png"}

	t.Run("first login creates a user account", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, nil)
		users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "new@example.com" &&
				u.FullName == "New User" &&
				u.Role == string(auth.RoleUser) &&
				u.PasswordHash == ""
		})).Return(nil)

		svc := NewAuthService(users, testJWTer(), zap.NewNop())
		res, err := svc.FederatedSignIn(context.Background(), profile)
		require.NoError(t, err)
		require.Equal(t, DefaultRedirect, res.RedirectTo)
		users.AssertExpectations(t)
	})

	t.Run("repeat login leaves the profile alone", func(t *testing.T) {
		existing := &domain.User{ID: "u1", Email: "new@example.com", FullName: "Renamed Locally", Role: "admin"}
		users := new(mockUserRepo)
		users.On("FindByEmail", mock.Anything, "new@example.com").Return(existing, nil)

		svc := NewAuthService(users, testJWTer(), zap.NewNop())
		res, err := svc.FederatedSignIn(context.Background(), profile)
		require.NoError(t, err)
		require.Equal(t, "Renamed Locally", res.User.FullName)
		require.Equal(t, "admin", res.User.Role)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("concurrent first login re-reads the winner", func(t *testing.T) {
		winner := &domain.User{ID: "u1", Email: "new@example.com", FullName: "New User", Role: "user"}
		users := new(mockUserRepo)
		users.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, nil).Once()
		users.On("Create", mock.Anything, mock.Anything).Return(repo.ErrDuplicateEmail)
		users.On("FindByEmail", mock.Anything, "new@example.com").Return(winner, nil).Once()

		svc := NewAuthService(users, testJWTer(), zap.NewNop())
		res, err := svc.FederatedSignIn(context.Background(), profile)
		require.NoError(t, err)
		require.Equal(t, "u1", res.User.ID)
	})
}
