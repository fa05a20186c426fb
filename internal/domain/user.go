package domain

import (
	"context"
	"time"
)

type contextKey string

// UserContextKey carries the authenticated user through request context.
const UserContextKey contextKey = "user"

// User is an administrative identity. Its id rides along as the actor on
// every version and audit row.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

type UserRepository interface {
	// GetByEmail returns ErrNotFound when no user has that email.
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, u *User) (*User, error)
}
