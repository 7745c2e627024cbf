// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

package account

import "errors"

// ErrNotFound is returned when a requested user does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned when a signup reuses a registered email.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidCredentials is returned on login failure. It is deliberately the
// same for unknown emails and wrong passwords to avoid user enumeration.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInvalidToken is returned for malformed, tampered, or expired tokens.
// Callers are given no further detail.
var ErrInvalidToken = errors.New("invalid token")
