// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

// Package account provides user accounts and credentials for PlaceHub.
//
// # Domain Types
//
// User should be created with NewUser, which assigns an ID, normalizes the
// email, and timestamps the record. Direct struct initialization bypasses
// that and may create invalid state.
//
// # Services
//
// Service coordinates signup, login, and user listing on top of a
// Repository, a PasswordHasher, and a TokenIssuer. JWT implements token
// issuance and verification with an HMAC-signed JWT carrying the user's
// identity.
package account
