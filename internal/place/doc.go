// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

// Package place provides the place domain model and its consistency-
// preserving write path.
//
// A Place and its owner's back-reference list are kept in lock-step: the
// create path inserts the place row and appends the back-reference inside
// one transaction, and the delete path removes both the same way. The
// Transactor interface is the atomicity boundary; repositories joining it
// observe all-or-nothing semantics.
package place
