package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the session token payload. Subject carries the user id; Picture
// mirrors the avatar URL field name used by federated providers.
type Claims struct {
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	Role    string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Identity is what both provisioning paths (credentials, federation) feed
// into token issuance.
type Identity struct {
	ID      string
	Email   string
	Name    string
	Picture string
	Role    string
}

func (j *JWTer) Issue(id Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:   id.Email,
		Name:    id.Name,
		Picture: id.Picture,
		Role:    id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithLeeway(60*time.Second))

	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

// RoleSource supplies a role for tokens minted without one. Empty string
// means the directory has no role for that user either.
type RoleSource interface {
	RoleByEmail(ctx context.Context, email string) (string, error)
}

// ParseWithRole decodes a token and backfills a missing role claim with at
// most one directory lookup. The enrichment applies to this decode only; the
// token itself is never re-minted here. Directory misses and lookup failures
// fall back to RoleUser.
func (j *JWTer) ParseWithRole(ctx context.Context, tokenStr string, src RoleSource) (*Claims, error) {
	c, err := j.Parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if c.Role != "" {
		return c, nil
	}
	if src != nil && c.Email != "" {
		if role, err := src.RoleByEmail(ctx, c.Email); err == nil && role != "" {
			c.Role = role
			return c, nil
		}
	}
	c.Role = string(RoleUser)
	return c, nil
}
