// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/placehub/placehub/internal/account"
	"github.com/placehub/placehub/internal/httpapi"
	"github.com/placehub/placehub/internal/observability"
	"github.com/placehub/placehub/internal/place"
)

const testSecret = "test-signing-secret"

type mockPlaceService struct {
	mock.Mock
}

func (m *mockPlaceService) Get(ctx context.Context, id ulid.ULID) (*place.Place, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*place.Place), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPlaceService) ListByCreator(ctx context.Context, creatorID ulid.ULID) ([]*place.Place, error) {
	args := m.Called(ctx, creatorID)
	if ps := args.Get(0); ps != nil {
		return ps.([]*place.Place), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPlaceService) Create(ctx context.Context, creatorID ulid.ULID, in place.CreateInput) (*place.Place, error) {
	args := m.Called(ctx, creatorID, in)
	if p := args.Get(0); p != nil {
		return p.(*place.Place), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPlaceService) Update(ctx context.Context, id, requesterID ulid.ULID, in place.UpdateInput) (*place.Place, error) {
	args := m.Called(ctx, id, requesterID, in)
	if p := args.Get(0); p != nil {
		return p.(*place.Place), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPlaceService) Delete(ctx context.Context, id, requesterID ulid.ULID) error {
	args := m.Called(ctx, id, requesterID)
	return args.Error(0)
}

type mockAccountService struct {
	mock.Mock
}

func (m *mockAccountService) SignUp(ctx context.Context, in account.SignUpInput) (*account.Session, error) {
	args := m.Called(ctx, in)
	if s := args.Get(0); s != nil {
		return s.(*account.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountService) Login(ctx context.Context, email, password string) (*account.Session, error) {
	args := m.Called(ctx, email, password)
	if s := args.Get(0); s != nil {
		return s.(*account.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountService) List(ctx context.Context) ([]*account.User, error) {
	args := m.Called(ctx)
	if us := args.Get(0); us != nil {
		return us.([]*account.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Store(r io.Reader, origName string) (string, error) {
	args := m.Called(r, origName)
	return args.String(0), args.Error(1)
}

func (m *mockUploader) Remove(ref string) error {
	args := m.Called(ref)
	return args.Error(0)
}

type testEnv struct {
	places   *mockPlaceService
	accounts *mockAccountService
	uploads  *mockUploader
	tokens   *account.JWT
	metrics  *observability.Metrics
	handler  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tokens, err := account.NewJWT(testSecret, time.Minute)
	require.NoError(t, err)

	env := &testEnv{
		places:   &mockPlaceService{},
		accounts: &mockAccountService{},
		uploads:  &mockUploader{},
		tokens:   tokens,
		metrics:  observability.NewMetrics(prometheus.NewRegistry()),
	}

	srv, err := httpapi.NewServer(httpapi.ServerConfig{
		Accounts: env.accounts,
		Places:   env.places,
		Tokens:   tokens,
		Uploads:  env.uploads,
		Metrics:  env.metrics,
		Logger:   slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	env.handler = srv.Handler()

	return env
}

// bearerFor issues a valid token for the given user.
func (e *testEnv) bearerFor(t *testing.T, userID ulid.ULID) string {
	t.Helper()
	token, err := e.tokens.Issue(userID, "user@x.com")
	require.NoError(t, err)
	return "Bearer " + token
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a JSON response body into a map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// multipartBody builds a multipart form with the given fields and one image
// file part.
func multipartBody(t *testing.T, fields map[string]string, imageName string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if imageName != "" {
		part, err := w.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = part.Write([]byte("image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func testPlace(creator ulid.ULID) *place.Place {
	return &place.Place{
		ID:          ulid.Make(),
		Title:       "Empire State Building",
		Description: "One of the most famous sky scrapers in the world.",
		Address:     "20 W 34th St, New York, NY 10001",
		Image:       "uploads/images/esb.jpg",
		Location:    place.Coordinates{Lat: 40.7484, Lng: -73.9857},
		Creator:     creator,
		CreatedAt:   time.Now().UTC(),
	}
}
