// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/placehub/placehub/internal/account"
	"github.com/placehub/placehub/internal/place"
	"github.com/placehub/placehub/internal/upload"
	"github.com/placehub/placehub/pkg/errutil"
)

// Client-safe error messages. Internal causes are logged, never sent.
const (
	msgAuthFailed         = "Authentication failed."
	msgInvalidInput       = "Invalid inputs passed, please check your data."
	msgEmailTaken         = "User exists already, please login instead."
	msgInvalidCredentials = "Invalid credentials, could not log you in."
	msgPlaceNotFound      = "Could not find place for the provided id."
	msgUserNotFound       = "Could not find user for the provided id."
	msgNotYours           = "You are not allowed to modify this place."
	msgBadAddress         = "Could not find location for the specified address."
	msgBadImage           = "Please provide a PNG or JPEG image."
	msgRouteNotFound      = "Could not find this route."
	msgTooManyAttempts    = "Too many failed login attempts, please try again later."
	msgInternal           = "An unknown error occurred, please try again."
)

// errorBody is the uniform error response shape.
type errorBody struct {
	Message string `json:"message"`
}

// writeError maps a service error to an HTTP status and a safe message.
// Authentication failures are 401, authorization failures 403, missing
// resources 404, rejected input 422, and everything else a logged 500 with a
// generic body.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	status, msg := http.StatusInternalServerError, msgInternal

	switch {
	case errors.Is(err, account.ErrInvalidToken):
		status, msg = http.StatusUnauthorized, msgAuthFailed
	case errors.Is(err, place.ErrNotOwner):
		status, msg = http.StatusForbidden, msgNotYours
	case errors.Is(err, account.ErrInvalidCredentials):
		status, msg = http.StatusForbidden, msgInvalidCredentials
	case errors.Is(err, place.ErrNotFound):
		status, msg = http.StatusNotFound, msgPlaceNotFound
	case errors.Is(err, place.ErrOwnerNotFound), errors.Is(err, account.ErrNotFound):
		status, msg = http.StatusNotFound, msgUserNotFound
	case errors.Is(err, account.ErrEmailTaken):
		status, msg = http.StatusUnprocessableEntity, msgEmailTaken
	case errors.Is(err, place.ErrUnresolvableAddress):
		status, msg = http.StatusUnprocessableEntity, msgBadAddress
	case errors.Is(err, upload.ErrUnsupportedType):
		status, msg = http.StatusUnprocessableEntity, msgBadImage
	}

	if status == http.StatusInternalServerError {
		errutil.LogError(logger, "request failed", err)
	}

	c.AbortWithStatusJSON(status, errorBody{Message: msg})
}
