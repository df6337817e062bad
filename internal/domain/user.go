package domain

import (
	"context"
	"time"
)

// Role is the authorization role of a user.
type Role string

const (
	// RoleParticipant may start and submit test attempts.
	RoleParticipant Role = "participant"
	// RoleCreator may author tests and view their statistics.
	RoleCreator Role = "creator"
)

// ValidRole reports whether s is a recognized role value.
func ValidRole(s string) bool {
	return Role(s) == RoleParticipant || Role(s) == RoleCreator
}

// User represents a registered account. Immutable after registration.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// UserRepository defines persistence for users.
type UserRepository interface {
	// CreateUser inserts a new user. Returns ErrDuplicateEmail if the email
	// is already registered.
	CreateUser(ctx context.Context, user *User) error

	// GetUserByEmail returns (nil, nil) when no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// GetUserByID returns (nil, nil) when the user does not exist.
	GetUserByID(ctx context.Context, id string) (*User, error)
}
