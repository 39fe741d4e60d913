// Copyright 2021 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// Package errs collects the sentinel errors that make up the core's error
// taxonomy. Call sites wrap these with fmt.Errorf("%w: ...")
// so errors.Is keeps working across the wrap.
package errs

import "errors"

var (
	// ErrUnauthorized is returned by every gated operation on predicate
	// failure: missing grant, expired/pending window, anonymous attempting
	// a manage-level operation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidInput covers oversize identifiers, malformed stored bytes,
	// and invalid time windows (start > end).
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotInitialized carries the caller-facing "memory not initialized"
	// text. No operation in this repository returns it: a KeyManager exists
	// only once Init has succeeded, and a data file that cannot be opened
	// surfaces boltdb.Open's own wrapped error.
	ErrNotInitialized = errors.New("memory not initialized")

	// ErrAlreadyInitialized is returned by Init when called a second time
	// against the same storage handles.
	ErrAlreadyInitialized = errors.New("already initialized")

	// ErrOracleFailure wraps a non-success reply from the external
	// key-derivation oracle. It is fatal to the in-flight request; the
	// core performs no retry.
	ErrOracleFailure = errors.New("oracle failure")
)
