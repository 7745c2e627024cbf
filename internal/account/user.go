// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

package account

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// User is a registered account. Places holds the ordered ids of the places
// the user created; it is a back-reference maintained by the place write
// path, not ownership.
type User struct {
	ID           ulid.ULID   `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Image        string      `json:"image"`
	Places       []ulid.ULID `json:"places"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// NormalizeEmail lowercases and trims an email so lookups and the uniqueness
// check are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser creates a User with a fresh ID and a normalized email.
func NewUser(name, email, passwordHash, image string) (*User, error) {
	if name == "" {
		return nil, oops.Code("ACCOUNT_INVALID_NAME").Errorf("name cannot be empty")
	}
	email = NormalizeEmail(email)
	if email == "" {
		return nil, oops.Code("ACCOUNT_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if passwordHash == "" {
		return nil, oops.Code("ACCOUNT_INVALID_HASH").Errorf("password hash cannot be empty")
	}
	return &User{
		ID:           ulid.Make(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Image:        image,
		Places:       []ulid.ULID{},
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// Repository manages user persistence, including the places back-reference
// list. AppendPlace and RemovePlace are transaction-aware: when called under
// a store.Transactor they join the in-flight transaction.
type Repository interface {
	// Create stores a new user. Returns ErrEmailTaken if the email is
	// already registered.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID, including the places list.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByEmail retrieves a user by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*User, error)

	// List returns all users with their places lists.
	List(ctx context.Context) ([]*User, error)

	// AppendPlace appends a place id to the user's back-reference list.
	AppendPlace(ctx context.Context, userID, placeID ulid.ULID) error

	// RemovePlace removes a place id from the user's back-reference list.
	RemovePlace(ctx context.Context, userID, placeID ulid.ULID) error
}
