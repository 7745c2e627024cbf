// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

package place

import "errors"

// ErrNotFound is returned when a requested place does not exist.
var ErrNotFound = errors.New("not found")

// ErrOwnerNotFound is returned when a place is created for a user that does
// not exist.
var ErrOwnerNotFound = errors.New("owner not found")

// ErrNotOwner is returned when a mutation is attempted by someone other than
// the place's creator. Nothing is modified when it is returned.
var ErrNotOwner = errors.New("not the place's creator")

// ErrUnresolvableAddress is returned by geocoders when an address has no
// known coordinates.
var ErrUnresolvableAddress = errors.New("address could not be resolved")
