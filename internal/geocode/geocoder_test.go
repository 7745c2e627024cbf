// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

package geocode_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placehub/placehub/internal/geocode"
	"github.com/placehub/placehub/internal/place"
	"github.com/placehub/placehub/pkg/errutil"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *geocode.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := geocode.NewClient(srv.URL, "placehub-test/0",
		geocode.WithRetry(2, time.Millisecond))
	require.NoError(t, err)
	return client
}

func TestNewClient_Validation(t *testing.T) {
	_, err := geocode.NewClient("", "agent")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "GEOCODE_CONFIG_INVALID")

	_, err = geocode.NewClient("http://geo.local", "")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "GEOCODE_CONFIG_INVALID")
}

func TestClient_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves an address", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search", r.URL.Path)
			assert.Equal(t, "Empire State Building", r.URL.Query().Get("q"))
			assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
			assert.Equal(t, "placehub-test/0", r.Header.Get("User-Agent"))
			w.Write([]byte(`[{"lat": "40.7484", "lon": "-73.9857"}]`)) //nolint:errcheck
		})

		coords, err := client.Resolve(ctx, "Empire State Building")
		require.NoError(t, err)
		assert.InDelta(t, 40.7484, coords.Lat, 1e-9)
		assert.InDelta(t, -73.9857, coords.Lng, 1e-9)
	})

	t.Run("empty result set is unresolvable", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`[]`)) //nolint:errcheck
		})

		_, err := client.Resolve(ctx, "nowhere at all")
		require.Error(t, err)
		assert.ErrorIs(t, err, place.ErrUnresolvableAddress)
		errutil.AssertErrorCode(t, err, "GEOCODE_NO_MATCH")
	})

	t.Run("retries transient failures", func(t *testing.T) {
		var calls atomic.Int64
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Write([]byte(`[{"lat": "1", "lon": "2"}]`)) //nolint:errcheck
		})

		coords, err := client.Resolve(ctx, "somewhere")
		require.NoError(t, err)
		assert.Equal(t, int64(2), calls.Load())
		assert.InDelta(t, 1.0, coords.Lat, 1e-9)
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls atomic.Int64
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusForbidden)
		})

		_, err := client.Resolve(ctx, "somewhere")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "GEOCODE_UPSTREAM_FAILED")
		assert.Equal(t, int64(1), calls.Load())
	})

	t.Run("gives up after exhausting retries", func(t *testing.T) {
		var calls atomic.Int64
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := client.Resolve(ctx, "somewhere")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "GEOCODE_UNAVAILABLE")
		assert.Equal(t, int64(3), calls.Load())
	})

	t.Run("malformed response body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`not json`)) //nolint:errcheck
		})

		_, err := client.Resolve(ctx, "somewhere")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "GEOCODE_RESPONSE_INVALID")
	})
}
