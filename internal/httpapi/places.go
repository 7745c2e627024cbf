// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/placehub/placehub/internal/observability"
	"github.com/placehub/placehub/internal/place"
	"github.com/placehub/placehub/pkg/errutil"
)

const msgNoPlacesForUser = "Could not find places for the provided user id."

// PlaceService is the slice of the place service the HTTP layer uses.
type PlaceService interface {
	Get(ctx context.Context, id ulid.ULID) (*place.Place, error)
	ListByCreator(ctx context.Context, creatorID ulid.ULID) ([]*place.Place, error)
	Create(ctx context.Context, creatorID ulid.ULID, in place.CreateInput) (*place.Place, error)
	Update(ctx context.Context, id, requesterID ulid.ULID, in place.UpdateInput) (*place.Place, error)
	Delete(ctx context.Context, id, requesterID ulid.ULID) error
}

// Uploader stores uploaded files and removes them again when a request fails
// after its file was already written.
type Uploader interface {
	Store(r io.Reader, origName string) (string, error)
	Remove(ref string) error
}

// PlaceHandler serves the /api/places routes.
type PlaceHandler struct {
	places  PlaceService
	uploads Uploader
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPlaceHandler creates a PlaceHandler. A nil metrics disables write counters.
func NewPlaceHandler(places PlaceService, uploads Uploader, metrics *observability.Metrics, logger *slog.Logger) *PlaceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaceHandler{places: places, uploads: uploads, metrics: metrics, logger: logger}
}

type createPlaceForm struct {
	Title       string `form:"title" binding:"required"`
	Description string `form:"description" binding:"required,min=5"`
	Address     string `form:"address" binding:"required"`
}

type updatePlaceBody struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required,min=5"`
}

// GetByID serves GET /api/places/:pid.
func (h *PlaceHandler) GetByID(c *gin.Context) {
	id, err := ulid.Parse(c.Param("pid"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, errorBody{Message: msgPlaceNotFound})
		return
	}

	p, err := h.places.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"place": p})
}

// ListByUser serves GET /api/places/user/:uid. A user with no places yields
// 404, matching the not-found shape clients already handle.
func (h *PlaceHandler) ListByUser(c *gin.Context) {
	id, err := ulid.Parse(c.Param("uid"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, errorBody{Message: msgNoPlacesForUser})
		return
	}

	places, err := h.places.ListByCreator(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if len(places) == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, errorBody{Message: msgNoPlacesForUser})
		return
	}

	c.JSON(http.StatusOK, gin.H{"places": places})
}

// Create serves POST /api/places: multipart form with an image file. The
// image is written to storage before the database writes; when anything
// downstream fails the stored file is removed again.
func (h *PlaceHandler) Create(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Message: msgAuthFailed})
		return
	}

	var form createPlaceForm
	if err := c.ShouldBind(&form); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorBody{Message: msgInvalidInput})
		return
	}

	ref, ok := h.storeImage(c)
	if !ok {
		return
	}

	p, err := h.places.Create(c.Request.Context(), identity.UserID, place.CreateInput{
		Title:       form.Title,
		Description: form.Description,
		Address:     form.Address,
		Image:       ref,
	})
	h.metrics.RecordPlaceWrite("create", err)
	if err != nil {
		h.discardUpload(ref)
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"place": p})
}

// Update serves PATCH /api/places/:pid. Only title and description change.
func (h *PlaceHandler) Update(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Message: msgAuthFailed})
		return
	}

	id, err := ulid.Parse(c.Param("pid"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, errorBody{Message: msgPlaceNotFound})
		return
	}

	var body updatePlaceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorBody{Message: msgInvalidInput})
		return
	}

	p, err := h.places.Update(c.Request.Context(), id, identity.UserID, place.UpdateInput{
		Title:       body.Title,
		Description: body.Description,
	})
	h.metrics.RecordPlaceWrite("update", err)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"place": p})
}

// Delete serves DELETE /api/places/:pid.
func (h *PlaceHandler) Delete(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Message: msgAuthFailed})
		return
	}

	id, err := ulid.Parse(c.Param("pid"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, errorBody{Message: msgPlaceNotFound})
		return
	}

	err = h.places.Delete(c.Request.Context(), id, identity.UserID)
	h.metrics.RecordPlaceWrite("delete", err)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted place."})
}

// storeImage extracts the multipart image and writes it to storage.
// On failure it writes the error response and reports false.
func (h *PlaceHandler) storeImage(c *gin.Context) (string, bool) {
	header, err := c.FormFile("image")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorBody{Message: msgInvalidInput})
		return "", false
	}

	f, err := header.Open()
	if err != nil {
		writeError(c, h.logger, err)
		return "", false
	}
	defer f.Close()

	ref, err := h.uploads.Store(f, header.Filename)
	if err != nil {
		writeError(c, h.logger, err)
		return "", false
	}
	return ref, true
}

// discardUpload removes a stored file after a downstream failure. Removal is
// best-effort; a leftover file is a minor leak, not a correctness problem.
func (h *PlaceHandler) discardUpload(ref string) {
	observability.RecordOrphanedUpload()
	if err := h.uploads.Remove(ref); err != nil {
		errutil.LogError(h.logger, "failed to remove orphaned upload", err)
	}
}
