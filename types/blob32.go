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

package types

import (
	"fmt"

	"github.com/erigontech/vetkeys-core/errs"
)

// Blob32Len is the fixed width of KeyName and MapKey identifiers. Fixed
// width keeps prefix range scans by owner or by KeyId lexicographically
// correct and O(log N + k).
const Blob32Len = 32

// Blob32 is a fixed 32-byte identifier, used for both KeyName and MapKey.
type Blob32 [Blob32Len]byte

// NewBlob32 validates b is exactly 32 bytes and returns it as a Blob32.
// Shorter or longer inputs are rejected; callers must not zero-pad.
func NewBlob32(b []byte) (Blob32, error) {
	var out Blob32
	if len(b) > Blob32Len {
		return out, fmt.Errorf("%w: too large input", errs.ErrInvalidInput)
	}
	if len(b) < Blob32Len {
		return out, fmt.Errorf("%w: expected %d bytes, got %d", errs.ErrInvalidInput, Blob32Len, len(b))
	}
	copy(out[:], b)
	return out, nil
}

// Bytes returns b's 32-byte slice.
func (b Blob32) Bytes() []byte {
	return b[:]
}
