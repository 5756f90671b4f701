// Package domain contains the core business entities for Agora.
// These are pure Go structs with no external dependencies, representing
// the forum's users and the content they create.
package domain

import (
	"time"
)

// RoleUser is the role tag given to every self-registered account.
const RoleUser = "user"

// RoleAdmin is the role tag for accounts created through the admin CLI.
const RoleAdmin = "admin"

// User represents a registered forum member.
// Users own topics, posts and comments through their createdBy reference.
type User struct {
	// ID is the opaque unique identifier (UUID string).
	ID string `json:"id"`

	// Username is unique across all users.
	Username string `json:"username"`

	// Email is unique across all users and is the login identifier.
	Email string `json:"email"`

	// PasswordHash is the bcrypt digest of the user's password.
	// This should never be exposed in API responses.
	PasswordHash string `json:"-"`

	// Role is a free-form role tag ("user" for self-registered accounts).
	Role string `json:"role"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`
}

// NewUser creates a new User with the default role.
// The ID is assigned by the caller.
func NewUser(id, username, email, passwordHash string) *User {
	return &User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
}
