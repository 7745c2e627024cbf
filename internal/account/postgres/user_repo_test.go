// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placehub/placehub/internal/account"
	"github.com/placehub/placehub/internal/account/postgres"
	"github.com/placehub/placehub/pkg/errutil"
)

var userColumns = []string{"id", "name", "email", "password_hash", "image", "created_at"}

func testUser() *account.User {
	return &account.User{
		ID:           ulid.Make(),
		Name:         "Alice",
		Email:        "a@x.com",
		PasswordHash: "$argon2id$hash",
		Image:        "uploads/images/alice.png",
		Places:       []ulid.ULID{},
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts user", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		u := testUser()
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(u.ID.String(), u.Name, u.Email, u.PasswordHash, u.Image, u.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := postgres.NewUserRepository(mock)
		require.NoError(t, repo.Create(ctx, u))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to ErrEmailTaken", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		u := testUser()
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(u.ID.String(), u.Name, u.Email, u.PasswordHash, u.Image, u.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

		repo := postgres.NewUserRepository(mock)
		err = repo.Create(ctx, u)
		require.Error(t, err)
		assert.ErrorIs(t, err, account.ErrEmailTaken)
		errutil.AssertErrorCode(t, err, "USER_EMAIL_TAKEN")
	})

	t.Run("other errors are wrapped", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		u := testUser()
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(u.ID.String(), u.Name, u.Email, u.PasswordHash, u.Image, u.CreatedAt).
			WillReturnError(errors.New("connection refused"))

		repo := postgres.NewUserRepository(mock)
		err = repo.Create(ctx, u)
		require.Error(t, err)
		assert.NotErrorIs(t, err, account.ErrEmailTaken)
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("retrieves user with places list", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		u := testUser()
		placeID := ulid.Make()

		mock.ExpectQuery(`SELECT id, name, email, password_hash, image, created_at\s+FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`).
			WithArgs(u.Email).
			WillReturnRows(pgxmock.NewRows(userColumns).
				AddRow(u.ID.String(), u.Name, u.Email, u.PasswordHash, u.Image, u.CreatedAt))
		mock.ExpectQuery(`SELECT place_id FROM user_places WHERE user_id = \$1 ORDER BY position`).
			WithArgs(u.ID.String()).
			WillReturnRows(pgxmock.NewRows([]string{"place_id"}).AddRow(placeID.String()))

		repo := postgres.NewUserRepository(mock)
		got, err := repo.GetByEmail(ctx, u.Email)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		require.Len(t, got.Places, 1)
		assert.Equal(t, placeID, got.Places[0])
	})

	t.Run("returns ErrNotFound for unknown email", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT .* FROM users WHERE LOWER\(email\)`).
			WithArgs("nobody@x.com").
			WillReturnRows(pgxmock.NewRows(userColumns))

		repo := postgres.NewUserRepository(mock)
		_, err = repo.GetByEmail(ctx, "nobody@x.com")
		require.Error(t, err)
		assert.ErrorIs(t, err, account.ErrNotFound)
		errutil.AssertErrorCode(t, err, "USER_NOT_FOUND")
	})
}

func TestUserRepository_Exists(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := ulid.Make()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(id.String()).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	repo := postgres.NewUserRepository(mock)
	found, err := repo.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestUserRepository_List(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	alice := testUser()
	bob := testUser()
	bob.Name = "Bob"
	bob.Email = "b@x.com"
	placeID := ulid.Make()

	mock.ExpectQuery(`SELECT id, name, email, password_hash, image, created_at\s+FROM users ORDER BY created_at`).
		WillReturnRows(pgxmock.NewRows(userColumns).
			AddRow(alice.ID.String(), alice.Name, alice.Email, alice.PasswordHash, alice.Image, alice.CreatedAt).
			AddRow(bob.ID.String(), bob.Name, bob.Email, bob.PasswordHash, bob.Image, bob.CreatedAt))
	mock.ExpectQuery(`SELECT user_id, place_id FROM user_places ORDER BY user_id, position`).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "place_id"}).
			AddRow(alice.ID.String(), placeID.String()))

	repo := postgres.NewUserRepository(mock)
	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Len(t, users[0].Places, 1)
	assert.Equal(t, placeID, users[0].Places[0])
	assert.Empty(t, users[1].Places)
}

func TestUserRepository_RemovePlace_MissingBackref(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := ulid.Make()
	placeID := ulid.Make()
	mock.ExpectExec(`DELETE FROM user_places WHERE user_id = \$1 AND place_id = \$2`).
		WithArgs(userID.String(), placeID.String()).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := postgres.NewUserRepository(mock)
	err = repo.RemovePlace(ctx, userID, placeID)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "USER_BACKREF_MISSING")
}
