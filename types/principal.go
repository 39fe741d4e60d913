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

// Package types holds the wire- and storage-level building blocks shared by
// keymanager and encryptedmaps: Principal identity, fixed-width identifiers,
// access rights, audit entries and tombstones.
package types

import (
	"bytes"
	"encoding/hex"
)

// Principal is an opaque caller identity with a canonical byte encoding and
// a total order (bytewise comparison of the raw identity bytes).
type Principal struct {
	raw []byte
}

// anonymousRaw is the well-known "everyone" identity. It may hold Read or
// ReadWrite grants but is never honored for management operations.
var anonymousRaw = []byte{0x04}

// Anonymous is the well-known "everyone" grantee.
var Anonymous = Principal{raw: anonymousRaw}

// ManagementCanister is never a real grantee; its canonical byte value
// (the empty identity) is only used as the lower-bound sentinel for prefix
// range scans over grantees.
var ManagementCanister = Principal{raw: []byte{}}

// PrincipalFromBytes builds a Principal from its canonical byte encoding.
// The bytes are copied; the caller's slice may be reused afterwards.
func PrincipalFromBytes(b []byte) Principal {
	raw := make([]byte, len(b))
	copy(raw, b)
	return Principal{raw: raw}
}

// Bytes returns the canonical byte encoding of p.
func (p Principal) Bytes() []byte {
	return p.raw
}

// Equal reports whether p and other denote the same identity.
func (p Principal) Equal(other Principal) bool {
	return bytes.Equal(p.raw, other.raw)
}

// Compare orders p and other bytewise over their canonical encoding.
func (p Principal) Compare(other Principal) int {
	return bytes.Compare(p.raw, other.raw)
}

// IsAnonymous reports whether p is the well-known anonymous principal.
func (p Principal) IsAnonymous() bool {
	return p.Equal(Anonymous)
}

// String renders p as a hex string for logging; it is never used for
// equality or storage.
func (p Principal) String() string {
	if len(p.raw) == 0 {
		return "<management-canister>"
	}
	return hex.EncodeToString(p.raw)
}
