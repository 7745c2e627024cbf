// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

package account

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// DefaultTokenTTL is the fixed lifetime of access tokens. There is no
// refresh mechanism; expiry forces re-authentication.
const DefaultTokenTTL = time.Hour

// Identity is the verified identity carried by an access token.
type Identity struct {
	UserID ulid.ULID
	Email  string
}

// TokenIssuer mints signed access tokens binding a user identity.
type TokenIssuer interface {
	Issue(userID ulid.ULID, email string) (string, error)
}

// TokenVerifier checks access tokens presented by clients.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// tokenClaims is the JWT payload: the user identity plus the registered
// expiry and issue timestamps.
type tokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWT issues and verifies HMAC-signed access tokens.
type JWT struct {
	secret []byte
	ttl    time.Duration
}

// NewJWT creates a JWT token service. An empty secret is a server
// misconfiguration and is rejected up front rather than at first use.
func NewJWT(secret string, ttl time.Duration) (*JWT, error) {
	if secret == "" {
		return nil, oops.Code("ACCOUNT_SIGNING_KEY_MISSING").Errorf("token signing secret is required")
	}
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &JWT{secret: []byte(secret), ttl: ttl}, nil
}

// Issue produces a signed token embedding the user id and email.
func (j *JWT) Issue(userID ulid.ULID, email string) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		UserID: userID.String(),
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", oops.Code("ACCOUNT_TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify parses and validates a token. Malformed, tampered, and expired
// tokens all fail with ErrInvalidToken; no distinction is surfaced.
func (j *JWT) Verify(token string) (Identity, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return Identity{}, oops.Code("ACCOUNT_INVALID_TOKEN").Wrap(ErrInvalidToken)
	}

	userID, err := ulid.Parse(claims.UserID)
	if err != nil {
		return Identity{}, oops.Code("ACCOUNT_INVALID_TOKEN").Wrap(ErrInvalidToken)
	}

	return Identity{UserID: userID, Email: claims.Email}, nil
}

// Compile-time interface checks.
var (
	_ TokenIssuer   = (*JWT)(nil)
	_ TokenVerifier = (*JWT)(nil)
)
