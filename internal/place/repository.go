// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

package place

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// Repository manages place persistence. Create and Delete are
// transaction-aware: under a Transactor they join the in-flight transaction.
type Repository interface {
	// Get retrieves a place by ID.
	Get(ctx context.Context, id ulid.ULID) (*Place, error)

	// ListByCreator returns all places created by a user, oldest first.
	ListByCreator(ctx context.Context, creatorID ulid.ULID) ([]*Place, error)

	// Create persists a new place.
	Create(ctx context.Context, p *Place) error

	// Update persists title and description changes.
	Update(ctx context.Context, p *Place) error

	// Delete removes a place by ID.
	Delete(ctx context.Context, id ulid.ULID) error
}

// OwnerDirectory provides the user-side operations the place write path
// needs. It mirrors part of the account repository without coupling this
// package to it.
type OwnerDirectory interface {
	// Exists reports whether the user is registered.
	Exists(ctx context.Context, id ulid.ULID) (bool, error)

	// AppendPlace appends a place id to the user's back-reference list.
	AppendPlace(ctx context.Context, userID, placeID ulid.ULID) error

	// RemovePlace removes a place id from the user's back-reference list.
	RemovePlace(ctx context.Context, userID, placeID ulid.ULID) error
}

// Transactor runs a function inside a single all-or-nothing transaction.
// Repository calls made with the callback's context join that transaction.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Geocoder resolves a street address to coordinates.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (Coordinates, error)
}

// FileRemover deletes a stored file by its reference. Used for best-effort
// image cleanup after a place is deleted.
type FileRemover interface {
	Remove(ref string) error
}
