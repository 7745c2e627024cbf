// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

package place

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/placehub/placehub/pkg/errutil"
)

// ServiceConfig holds dependencies for Service.
type ServiceConfig struct {
	Places   Repository
	Owners   OwnerDirectory
	Tx       Transactor
	Geocoder Geocoder
	Files    FileRemover
	Logger   *slog.Logger
}

// Service owns the place lifecycle, including the transactional create and
// delete protocol that keeps places and owner back-references consistent.
type Service struct {
	places   Repository
	owners   OwnerDirectory
	tx       Transactor
	geocoder Geocoder
	files    FileRemover
	logger   *slog.Logger
}

// NewService creates a place Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Places == nil {
		return nil, oops.Errorf("places repository is required")
	}
	if cfg.Owners == nil {
		return nil, oops.Errorf("owner directory is required")
	}
	if cfg.Tx == nil {
		return nil, oops.Errorf("transactor is required")
	}
	if cfg.Geocoder == nil {
		return nil, oops.Errorf("geocoder is required")
	}
	if cfg.Files == nil {
		return nil, oops.Errorf("file remover is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		places:   cfg.Places,
		owners:   cfg.Owners,
		tx:       cfg.Tx,
		geocoder: cfg.Geocoder,
		files:    cfg.Files,
		logger:   logger,
	}, nil
}

// Get retrieves a place by ID.
func (s *Service) Get(ctx context.Context, id ulid.ULID) (*Place, error) {
	return s.places.Get(ctx, id)
}

// ListByCreator returns the places created by a user.
func (s *Service) ListByCreator(ctx context.Context, creatorID ulid.ULID) ([]*Place, error) {
	return s.places.ListByCreator(ctx, creatorID)
}

// Create resolves the address, then inserts the place and appends the
// owner's back-reference inside one transaction. Nothing is written when
// geocoding fails or the owner is unknown; on transaction failure neither
// write is retained. File cleanup for an already-uploaded image is the
// caller's responsibility.
func (s *Service) Create(ctx context.Context, creatorID ulid.ULID, in CreateInput) (*Place, error) {
	loc, err := s.geocoder.Resolve(ctx, in.Address)
	if err != nil {
		return nil, oops.Code("PLACE_GEOCODE_FAILED").With("address", in.Address).Wrap(err)
	}

	exists, err := s.owners.Exists(ctx, creatorID)
	if err != nil {
		return nil, oops.Code("PLACE_CREATE_FAILED").With("operation", "look up owner").Wrap(err)
	}
	if !exists {
		return nil, oops.Code("PLACE_OWNER_NOT_FOUND").With("creator", creatorID.String()).Wrap(ErrOwnerNotFound)
	}

	p, err := New(creatorID, in, loc)
	if err != nil {
		return nil, err
	}

	err = s.tx.InTransaction(ctx, func(txCtx context.Context) error {
		if err := s.places.Create(txCtx, p); err != nil {
			return err
		}
		return s.owners.AppendPlace(txCtx, creatorID, p.ID)
	})
	if err != nil {
		return nil, oops.Code("PLACE_CREATE_FAILED").With("place_id", p.ID.String()).Wrap(err)
	}

	return p, nil
}

// Update applies title and description changes. Only the creator may update
// a place; a single row mutates, so no transaction is needed.
func (s *Service) Update(ctx context.Context, id, requesterID ulid.ULID, in UpdateInput) (*Place, error) {
	p, err := s.places.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Creator != requesterID {
		return nil, oops.Code("PLACE_NOT_OWNER").
			With("place_id", id.String()).
			With("requester", requesterID.String()).
			Wrap(ErrNotOwner)
	}

	p.Title = in.Title
	p.Description = in.Description

	if err := s.places.Update(ctx, p); err != nil {
		return nil, oops.Code("PLACE_UPDATE_FAILED").With("place_id", id.String()).Wrap(err)
	}
	return p, nil
}

// Delete removes a place and its owner back-reference inside one
// transaction, then best-effort deletes the stored image. A failed image
// removal is logged, not surfaced: the record is already gone and a
// dangling file is a minor leak, not a correctness violation.
func (s *Service) Delete(ctx context.Context, id, requesterID ulid.ULID) error {
	p, err := s.places.Get(ctx, id)
	if err != nil {
		return err
	}

	if p.Creator != requesterID {
		return oops.Code("PLACE_NOT_OWNER").
			With("place_id", id.String()).
			With("requester", requesterID.String()).
			Wrap(ErrNotOwner)
	}

	// The back-reference row holds a foreign key to the place row, so it
	// must be removed first.
	err = s.tx.InTransaction(ctx, func(txCtx context.Context) error {
		if err := s.owners.RemovePlace(txCtx, p.Creator, id); err != nil {
			return err
		}
		return s.places.Delete(txCtx, id)
	})
	if err != nil {
		return oops.Code("PLACE_DELETE_FAILED").With("place_id", id.String()).Wrap(err)
	}

	if p.Image != "" {
		if err := s.files.Remove(p.Image); err != nil {
			errutil.LogError(s.logger, "failed to remove place image", err)
		}
	}

	return nil
}
