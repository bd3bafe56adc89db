package domain

import (
	"context"
	"time"
)

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"fullName"`
	Image        string     `json:"image"`
	PasswordHash string     `json:"-"` // absent for OAuth-only accounts
	Role         string     `json:"role"`            // "user"/"admin"
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	BannedAt     *time.Time `json:"-"`
}

// Identity is the safe projection handed to token issuance and responses.
// It never carries the password hash.
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Image    string `json:"image"`
	Role     string `json:"role"`
}

func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, FullName: u.FullName, Image: u.Image, Role: u.Role}
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	// FindByEmail excludes the password hash.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByEmailWithPassword opts in to the password hash field.
	FindByEmailWithPassword(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, email, fullName, image string) (*User, error)
	List(ctx context.Context, q string, offset, limit int64) ([]User, int64, error)
	Ban(ctx context.Context, id string) error
}
