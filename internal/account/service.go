// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

package account

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

// dummyPasswordHash is used when a user doesn't exist to prevent timing
// attacks. We still run password verification to make response time
// consistent. This is NOT a real credential.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Session is the result of a successful signup or login.
type Session struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// SignUpInput holds validated signup fields. Image is the stored-file
// reference produced by the upload layer, not raw bytes.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
	Image    string
}

// Service provides account operations.
type Service struct {
	users  Repository
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewService creates an account Service.
func NewService(users Repository, hasher PasswordHasher, tokens TokenIssuer) (*Service, error) {
	if users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token issuer is required")
	}
	return &Service{users: users, hasher: hasher, tokens: tokens}, nil
}

// SignUp registers a new account and returns a session for it.
// The email uniqueness check here is advisory; the storage layer enforces it
// again so concurrent signups with the same email cannot both succeed.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
	email := NormalizeEmail(in.Email)

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, oops.Code("ACCOUNT_EMAIL_TAKEN").With("email", email).Wrap(ErrEmailTaken)
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("ACCOUNT_SIGNUP_FAILED").With("operation", "check existing email").Wrap(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, oops.Code("ACCOUNT_SIGNUP_FAILED").With("operation", "hash password").Wrap(err)
	}

	user, err := NewUser(in.Name, email, hash, in.Image)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, err
		}
		return nil, oops.Code("ACCOUNT_SIGNUP_FAILED").With("operation", "insert user").Wrap(err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, oops.Code("ACCOUNT_SIGNUP_FAILED").With("operation", "issue token").Wrap(err)
	}

	return &Session{UserID: user.ID.String(), Email: user.Email, Token: token}, nil
}

// Login authenticates a user and returns a session.
// Unknown emails and wrong passwords fail identically, and a dummy hash is
// verified for unknown emails so response time stays constant.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, lookupErr := s.users.GetByEmail(ctx, NormalizeEmail(email))

	targetHash := dummyPasswordHash
	userExists := false

	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, oops.Code("ACCOUNT_LOGIN_FAILED").With("operation", "get user by email").Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !userExists {
			return nil, oops.Code("ACCOUNT_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
		}
		return nil, oops.Code("ACCOUNT_LOGIN_FAILED").With("operation", "verify password").Wrap(verifyErr)
	}

	if !userExists || !valid {
		return nil, oops.Code("ACCOUNT_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, oops.Code("ACCOUNT_LOGIN_FAILED").With("operation", "issue token").Wrap(err)
	}

	return &Session{UserID: user.ID.String(), Email: user.Email, Token: token}, nil
}

// List returns all registered users. Password hashes never serialize.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, oops.Code("ACCOUNT_LIST_FAILED").With("operation", "list users").Wrap(err)
	}
	return users, nil
}
