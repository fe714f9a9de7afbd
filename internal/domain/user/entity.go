// internal/domain/user/entity.go
package user

import (
	"context"
	"database/sql"
	"time"
)

// User represents an account in the user directory.
type User struct {
	ID           int64          `json:"id" db:"id"`
	Email        string         `json:"email" db:"email"`
	FullName     string         `json:"full_name" db:"full_name"`
	Role         string         `json:"role" db:"role"` // user, admin
	PasswordHash string         `json:"-" db:"password_hash"`
	IsActive     bool           `json:"is_active" db:"is_active"`
	LastLoginAt  sql.NullTime   `json:"last_login_at" db:"last_login_at"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// Info is the minimal user projection returned past the session boundary.
type Info struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Info projects the user for session responses. No credential material.
func (u *User) Info() Info {
	return Info{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
	}
}

// Directory is the user lookup contract the session core depends on.
type Directory interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	TouchLastLogin(ctx context.Context, id int64) error
}
