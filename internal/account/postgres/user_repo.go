// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

// Package postgres implements account repositories using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/placehub/placehub/internal/account"
	"github.com/placehub/placehub/internal/store"
)

// UserRepository implements account.Repository using PostgreSQL.
// AppendPlace and RemovePlace join an in-flight store.Transactor transaction
// when one is present in the context.
type UserRepository struct {
	db store.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db store.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create stores a new user. A unique violation on the email index maps to
// account.ErrEmailTaken so races between concurrent signups surface the same
// error as the advisory check.
func (r *UserRepository) Create(ctx context.Context, user *account.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID.String(), user.Name, user.Email, user.PasswordHash, user.Image, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("USER_EMAIL_TAKEN").With("email", user.Email).Wrap(account.ErrEmailTaken)
		}
		return oops.Code("USER_CREATE_FAILED").With("operation", "insert user").Wrap(err)
	}
	return nil
}

// GetByID retrieves a user by ID, including the ordered places list.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*account.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, email, password_hash, image, created_at
		FROM users WHERE id = $1
	`, id.String())

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("id", id.String()).Wrap(account.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").With("id", id.String()).Wrap(err)
	}

	if err := r.loadPlaces(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*account.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, email, password_hash, image, created_at
		FROM users WHERE LOWER(email) = LOWER($1)
	`, email)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("email", email).Wrap(account.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_EMAIL_FAILED").With("email", email).Wrap(err)
	}

	if err := r.loadPlaces(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Exists reports whether a user with the given id is registered. The place
// write path uses it to satisfy place.OwnerDirectory.
func (r *UserRepository) Exists(ctx context.Context, id ulid.ULID) (bool, error) {
	var found bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)
	`, id.String()).Scan(&found)
	if err != nil {
		return false, oops.Code("USER_EXISTS_FAILED").With("id", id.String()).Wrap(err)
	}
	return found, nil
}

// List returns all users with their places lists.
func (r *UserRepository) List(ctx context.Context) ([]*account.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, email, password_hash, image, created_at
		FROM users ORDER BY created_at
	`)
	if err != nil {
		return nil, oops.Code("USER_LIST_FAILED").With("operation", "query users").Wrap(err)
	}
	defer rows.Close()

	var users []*account.User
	byID := make(map[string]*account.User)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, oops.Code("USER_LIST_FAILED").With("operation", "scan user row").Wrap(err)
		}
		users = append(users, user)
		byID[user.ID.String()] = user
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_LIST_FAILED").With("operation", "iterate users").Wrap(err)
	}

	backrefs, err := r.db.Query(ctx, `
		SELECT user_id, place_id FROM user_places ORDER BY user_id, position
	`)
	if err != nil {
		return nil, oops.Code("USER_LIST_FAILED").With("operation", "query back-references").Wrap(err)
	}
	defer backrefs.Close()

	for backrefs.Next() {
		var userID, placeID string
		if err := backrefs.Scan(&userID, &placeID); err != nil {
			return nil, oops.Code("USER_LIST_FAILED").With("operation", "scan back-reference").Wrap(err)
		}
		user, ok := byID[userID]
		if !ok {
			continue
		}
		id, err := ulid.Parse(placeID)
		if err != nil {
			return nil, oops.Code("USER_LIST_FAILED").With("operation", "parse place id").With("place_id", placeID).Wrap(err)
		}
		user.Places = append(user.Places, id)
	}
	if err := backrefs.Err(); err != nil {
		return nil, oops.Code("USER_LIST_FAILED").With("operation", "iterate back-references").Wrap(err)
	}

	return users, nil
}

// AppendPlace appends a place id to the end of the user's back-reference
// list. The position keeps insertion order stable.
func (r *UserRepository) AppendPlace(ctx context.Context, userID, placeID ulid.ULID) error {
	q := store.QuerierFrom(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO user_places (user_id, place_id, position)
		SELECT $1, $2, COALESCE(MAX(position) + 1, 0)
		FROM user_places WHERE user_id = $1
	`, userID.String(), placeID.String())
	if err != nil {
		return oops.Code("USER_APPEND_PLACE_FAILED").
			With("user_id", userID.String()).
			With("place_id", placeID.String()).
			Wrap(err)
	}
	return nil
}

// RemovePlace removes a place id from the user's back-reference list.
// A missing back-reference is an integrity violation and is reported.
func (r *UserRepository) RemovePlace(ctx context.Context, userID, placeID ulid.ULID) error {
	q := store.QuerierFrom(ctx, r.db)
	result, err := q.Exec(ctx, `
		DELETE FROM user_places WHERE user_id = $1 AND place_id = $2
	`, userID.String(), placeID.String())
	if err != nil {
		return oops.Code("USER_REMOVE_PLACE_FAILED").
			With("user_id", userID.String()).
			With("place_id", placeID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_BACKREF_MISSING").
			With("user_id", userID.String()).
			With("place_id", placeID.String()).
			Errorf("back-reference not found")
	}
	return nil
}

// loadPlaces fills in the ordered back-reference list for a single user.
func (r *UserRepository) loadPlaces(ctx context.Context, user *account.User) error {
	rows, err := r.db.Query(ctx, `
		SELECT place_id FROM user_places WHERE user_id = $1 ORDER BY position
	`, user.ID.String())
	if err != nil {
		return oops.Code("USER_PLACES_QUERY_FAILED").With("user_id", user.ID.String()).Wrap(err)
	}
	defer rows.Close()

	for rows.Next() {
		var placeID string
		if err := rows.Scan(&placeID); err != nil {
			return oops.Code("USER_PLACES_QUERY_FAILED").With("operation", "scan place id").Wrap(err)
		}
		id, err := ulid.Parse(placeID)
		if err != nil {
			return oops.Code("USER_PLACES_QUERY_FAILED").With("operation", "parse place id").With("place_id", placeID).Wrap(err)
		}
		user.Places = append(user.Places, id)
	}
	if err := rows.Err(); err != nil {
		return oops.Code("USER_PLACES_QUERY_FAILED").With("operation", "iterate place ids").Wrap(err)
	}
	return nil
}

// scanUser scans a single row into a User.
// Callers are responsible for handling pgx.ErrNoRows.
func scanUser(row pgx.Row) (*account.User, error) {
	var (
		idStr        string
		name         string
		email        string
		passwordHash string
		image        string
		createdAt    time.Time
	)

	err := row.Scan(&idStr, &name, &email, &passwordHash, &image, &createdAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("USER_SCAN_FAILED").With("operation", "scan user").Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("USER_INVALID_ID").With("id", idStr).Wrap(err)
	}

	return &account.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Image:        image,
		Places:       []ulid.ULID{},
		CreatedAt:    createdAt,
	}, nil
}

// Compile-time interface check.
var _ account.Repository = (*UserRepository)(nil)
