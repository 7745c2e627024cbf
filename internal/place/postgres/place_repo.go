// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

// Package postgres implements place repositories using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/placehub/placehub/internal/place"
	"github.com/placehub/placehub/internal/store"
)

// PlaceRepository implements place.Repository using PostgreSQL.
// Create and Delete join an in-flight store.Transactor transaction when one
// is present in the context.
type PlaceRepository struct {
	db store.DB
}

// NewPlaceRepository creates a new PlaceRepository.
func NewPlaceRepository(db store.DB) *PlaceRepository {
	return &PlaceRepository{db: db}
}

// Get retrieves a place by ID.
func (r *PlaceRepository) Get(ctx context.Context, id ulid.ULID) (*place.Place, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, title, description, address, image, lat, lng, creator, created_at
		FROM places WHERE id = $1
	`, id.String())

	p, err := scanPlace(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PLACE_NOT_FOUND").With("id", id.String()).Wrap(place.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PLACE_GET_FAILED").With("id", id.String()).Wrap(err)
	}
	return p, nil
}

// ListByCreator returns all places created by a user, oldest first.
func (r *PlaceRepository) ListByCreator(ctx context.Context, creatorID ulid.ULID) ([]*place.Place, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, description, address, image, lat, lng, creator, created_at
		FROM places WHERE creator = $1 ORDER BY created_at
	`, creatorID.String())
	if err != nil {
		return nil, oops.Code("PLACE_QUERY_FAILED").With("creator", creatorID.String()).Wrap(err)
	}
	defer rows.Close()

	var places []*place.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, oops.Code("PLACE_QUERY_FAILED").With("operation", "scan place row").Wrap(err)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("PLACE_QUERY_FAILED").With("operation", "iterate places").Wrap(err)
	}
	return places, nil
}

// Create persists a new place.
func (r *PlaceRepository) Create(ctx context.Context, p *place.Place) error {
	q := store.QuerierFrom(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO places (id, title, description, address, image, lat, lng, creator, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID.String(), p.Title, p.Description, p.Address, p.Image,
		p.Location.Lat, p.Location.Lng, p.Creator.String(), p.CreatedAt)
	if err != nil {
		return oops.Code("PLACE_INSERT_FAILED").With("id", p.ID.String()).Wrap(err)
	}
	return nil
}

// Update persists title and description changes.
func (r *PlaceRepository) Update(ctx context.Context, p *place.Place) error {
	result, err := r.db.Exec(ctx, `
		UPDATE places SET title = $2, description = $3 WHERE id = $1
	`, p.ID.String(), p.Title, p.Description)
	if err != nil {
		return oops.Code("PLACE_UPDATE_FAILED").With("id", p.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("PLACE_NOT_FOUND").With("id", p.ID.String()).Wrap(place.ErrNotFound)
	}
	return nil
}

// Delete removes a place by ID.
func (r *PlaceRepository) Delete(ctx context.Context, id ulid.ULID) error {
	q := store.QuerierFrom(ctx, r.db)
	result, err := q.Exec(ctx, `DELETE FROM places WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("PLACE_DELETE_ROW_FAILED").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("PLACE_NOT_FOUND").With("id", id.String()).Wrap(place.ErrNotFound)
	}
	return nil
}

// scanPlace scans a single row into a Place.
// Callers are responsible for handling pgx.ErrNoRows.
func scanPlace(row pgx.Row) (*place.Place, error) {
	var (
		idStr       string
		title       string
		description string
		address     string
		image       string
		lat         float64
		lng         float64
		creatorStr  string
		createdAt   time.Time
	)

	err := row.Scan(&idStr, &title, &description, &address, &image, &lat, &lng, &creatorStr, &createdAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("PLACE_SCAN_FAILED").With("operation", "scan place").Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("PLACE_INVALID_ID").With("id", idStr).Wrap(err)
	}
	creator, err := ulid.Parse(creatorStr)
	if err != nil {
		return nil, oops.Code("PLACE_INVALID_CREATOR").With("creator", creatorStr).Wrap(err)
	}

	return &place.Place{
		ID:          id,
		Title:       title,
		Description: description,
		Address:     address,
		Image:       image,
		Location:    place.Coordinates{Lat: lat, Lng: lng},
		Creator:     creator,
		CreatedAt:   createdAt,
	}, nil
}

// Compile-time interface check.
var _ place.Repository = (*PlaceRepository)(nil)
