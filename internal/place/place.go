// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

package place

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Coordinates is a geographic point derived from a place's address.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is a user-created location record. Creator references exactly one
// user; that user's back-reference list contains this place's id.
type Place struct {
	ID          ulid.ULID   `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Address     string      `json:"address"`
	Image       string      `json:"image"`
	Location    Coordinates `json:"location"`
	Creator     ulid.ULID   `json:"creator"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// CreateInput holds the validated fields for a new place. Image is the
// stored-file reference produced by the upload layer.
type CreateInput struct {
	Title       string
	Description string
	Address     string
	Image       string
}

// UpdateInput holds the mutable fields of a place. Only the title and
// description may change after creation.
type UpdateInput struct {
	Title       string
	Description string
}

// New creates a Place with a fresh ID for the given creator.
func New(creator ulid.ULID, in CreateInput, loc Coordinates) (*Place, error) {
	if in.Title == "" {
		return nil, oops.Code("PLACE_INVALID_TITLE").Errorf("title cannot be empty")
	}
	if in.Address == "" {
		return nil, oops.Code("PLACE_INVALID_ADDRESS").Errorf("address cannot be empty")
	}
	return &Place{
		ID:          ulid.Make(),
		Title:       in.Title,
		Description: in.Description,
		Address:     in.Address,
		Image:       in.Image,
		Location:    loc,
		Creator:     creator,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
