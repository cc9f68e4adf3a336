// Package identity stores user accounts and implements login and the admin
// user-management operations.
package identity

import (
	"context"
	"strings"
	"time"

	"jjc-attendance/internal/apperror"
	"jjc-attendance/internal/auth"
)

var (
	// ErrNotFound is returned by stores when no user matches.
	ErrNotFound = apperror.New(apperror.NotFound, "user.notFound")
	// ErrEmailTaken is returned by stores when an email is already in use.
	ErrEmailTaken = apperror.New(apperror.Conflict, "auth.emailTaken")
)

// User is a stored account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity projects the user onto the session identity.
func (u User) Identity() auth.Identity {
	return auth.Identity{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Store persists users. Emails are unique case-insensitively; Create and
// Update return ErrEmailTaken on a clash.
type Store interface {
	Create(ctx context.Context, u User) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	// List returns every user, newest first.
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u User) (User, error)
	Delete(ctx context.Context, id string) error
}

// NormalizeEmail is the stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
