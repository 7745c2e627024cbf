// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

// Package geocode resolves street addresses to coordinates using a
// Nominatim-compatible search endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/placehub/placehub/internal/place"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultMaxRetries  = 3
	defaultRetryBase   = 250 * time.Millisecond
	defaultSearchLimit = 1
)

// Client resolves addresses against a Nominatim-compatible /search endpoint.
// Transient failures (transport errors, 5xx responses) are retried with
// exponential backoff; an empty result set is terminal and maps to
// place.ErrUnresolvableAddress.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	maxRetries uint64
	retryBase  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry overrides the retry policy.
func WithRetry(maxRetries uint64, base time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryBase = base
	}
}

// NewClient creates a geocoding client for the given base URL. The user agent
// identifies this service to the provider, which public Nominatim instances
// require.
func NewClient(baseURL, userAgent string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, oops.Code("GEOCODE_CONFIG_INVALID").Errorf("base URL is required")
	}
	if userAgent == "" {
		return nil, oops.Code("GEOCODE_CONFIG_INVALID").Errorf("user agent is required")
	}

	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		userAgent:  userAgent,
		maxRetries: defaultMaxRetries,
		retryBase:  defaultRetryBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// searchResult is the subset of the provider's response we read.
type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve looks up the coordinates for a street address.
// Returns place.ErrUnresolvableAddress when the provider has no match.
func (c *Client) Resolve(ctx context.Context, address string) (place.Coordinates, error) {
	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, url.Values{
		"q":      []string{address},
		"format": []string{"jsonv2"},
		"limit":  []string{strconv.Itoa(defaultSearchLimit)},
	}.Encode())

	var results []searchResult
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return oops.Code("GEOCODE_REQUEST_INVALID").Wrap(err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			io.Copy(io.Discard, resp.Body) //nolint:errcheck // Drain for connection reuse
			return retry.RetryableError(fmt.Errorf("geocoding provider returned %d", resp.StatusCode))
		case resp.StatusCode != http.StatusOK:
			return oops.Code("GEOCODE_UPSTREAM_FAILED").
				With("status", resp.StatusCode).
				Errorf("geocoding provider returned %d", resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
			return oops.Code("GEOCODE_RESPONSE_INVALID").Wrap(err)
		}
		return nil
	})
	if err != nil {
		if _, ok := oops.AsOops(err); ok {
			return place.Coordinates{}, err
		}
		return place.Coordinates{}, oops.Code("GEOCODE_UNAVAILABLE").With("address", address).Wrap(err)
	}

	if len(results) == 0 {
		return place.Coordinates{}, oops.Code("GEOCODE_NO_MATCH").
			With("address", address).
			Wrap(place.ErrUnresolvableAddress)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return place.Coordinates{}, oops.Code("GEOCODE_RESPONSE_INVALID").With("lat", results[0].Lat).Wrap(err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return place.Coordinates{}, oops.Code("GEOCODE_RESPONSE_INVALID").With("lon", results[0].Lon).Wrap(err)
	}

	return place.Coordinates{Lat: lat, Lng: lng}, nil
}

// Compile-time interface check.
var _ place.Geocoder = (*Client)(nil)
