// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/placehub/placehub/internal/account"
	"github.com/placehub/placehub/internal/observability"
	"github.com/placehub/placehub/pkg/errutil"
)

// AccountService is the slice of the account service the HTTP layer uses.
type AccountService interface {
	SignUp(ctx context.Context, in account.SignUpInput) (*account.Session, error)
	Login(ctx context.Context, email, password string) (*account.Session, error)
	List(ctx context.Context) ([]*account.User, error)
}

// UserHandler serves the /api/users routes.
type UserHandler struct {
	accounts AccountService
	uploads  Uploader
	limiter  *account.LoginLimiter
	logger   *slog.Logger
}

// NewUserHandler creates a UserHandler. A nil limiter disables login
// throttling.
func NewUserHandler(accounts AccountService, uploads Uploader, limiter *account.LoginLimiter, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{accounts: accounts, uploads: uploads, limiter: limiter, logger: logger}
}

type signUpForm struct {
	Name     string `form:"name" binding:"required"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=8"`
}

type loginBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// List serves GET /api/users. Password hashes never serialize.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.accounts.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// SignUp serves POST /api/users/signup: multipart form with a profile image.
// The image lands in storage before the account is created; a failed signup
// removes it again.
func (h *UserHandler) SignUp(c *gin.Context) {
	var form signUpForm
	if err := c.ShouldBind(&form); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorBody{Message: msgInvalidInput})
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorBody{Message: msgInvalidInput})
		return
	}

	f, err := header.Open()
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	defer f.Close()

	ref, err := h.uploads.Store(f, header.Filename)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	session, err := h.accounts.SignUp(c.Request.Context(), account.SignUpInput{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
		Image:    ref,
	})
	if err != nil {
		observability.RecordOrphanedUpload()
		if removeErr := h.uploads.Remove(ref); removeErr != nil {
			errutil.LogError(h.logger, "failed to remove orphaned upload", removeErr)
		}
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// Login serves POST /api/users/login. Repeated failures for the same email
// are throttled with a progressive delay and eventually a lockout.
func (h *UserHandler) Login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorBody{Message: msgInvalidInput})
		return
	}

	if h.limiter != nil {
		if retryAfter, ok := h.limiter.Allow(body.Email); !ok {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorBody{Message: msgTooManyAttempts})
			return
		}
	}

	session, err := h.accounts.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		if h.limiter != nil && errors.Is(err, account.ErrInvalidCredentials) {
			h.limiter.RecordFailure(body.Email)
		}
		writeError(c, h.logger, err)
		return
	}

	if h.limiter != nil {
		h.limiter.Reset(body.Email)
	}

	c.JSON(http.StatusOK, session)
}
