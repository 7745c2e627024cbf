// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

// Package upload stores uploaded images on disk.
package upload

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/placehub/placehub/internal/place"
)

// ErrUnsupportedType is returned when an upload's extension is not an
// accepted image type.
var ErrUnsupportedType = errors.New("unsupported file type")

// allowedExtensions are the image types accepted for storage.
var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
}

// DiskStore persists uploaded images under a single directory. Stored files
// get fresh ULID names so uploads never collide and client-supplied names
// never reach the filesystem.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the storage directory if needed and returns a store
// rooted there.
func NewDiskStore(dir string) (*DiskStore, error) {
	if dir == "" {
		return nil, oops.Code("UPLOAD_CONFIG_INVALID").Errorf("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, oops.Code("UPLOAD_DIR_FAILED").With("dir", dir).Wrap(err)
	}
	return &DiskStore{dir: dir}, nil
}

// Store writes the upload to disk and returns its reference, a slash-separated
// path relative to the server root suitable for persisting and serving.
// Only the original name's extension is kept.
func (s *DiskStore) Store(r io.Reader, origName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(origName))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", oops.Code("UPLOAD_TYPE_UNSUPPORTED").With("extension", ext).Wrap(ErrUnsupportedType)
	}

	name := ulid.Make().String() + ext
	dst := filepath.Join(s.dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", oops.Code("UPLOAD_WRITE_FAILED").With("path", dst).Wrap(err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()          //nolint:errcheck,gosec // Write error takes precedence
		os.Remove(dst)     //nolint:errcheck,gosec // Partial file cleanup
		return "", oops.Code("UPLOAD_WRITE_FAILED").With("path", dst).Wrap(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst) //nolint:errcheck,gosec // Partial file cleanup
		return "", oops.Code("UPLOAD_WRITE_FAILED").With("path", dst).Wrap(err)
	}

	return filepath.ToSlash(filepath.Join(s.dir, name)), nil
}

// Remove deletes a previously stored file by its reference. References that
// resolve outside the storage directory are rejected.
func (s *DiskStore) Remove(ref string) error {
	cleaned := filepath.Clean(filepath.FromSlash(ref))
	if cleaned != filepath.Join(s.dir, filepath.Base(cleaned)) {
		return oops.Code("UPLOAD_REF_INVALID").With("ref", ref).Errorf("reference outside storage directory")
	}
	if err := os.Remove(cleaned); err != nil {
		return oops.Code("UPLOAD_REMOVE_FAILED").With("ref", ref).Wrap(err)
	}
	return nil
}

// Dir returns the storage directory, used to serve stored files statically.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Compile-time interface check.
var _ place.FileRemover = (*DiskStore)(nil)
