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

// Package encryptedmaps implements mapkey_vals/tombstones: opaque
// encrypted key-value storage grouped by KeyId, with soft-delete and
// restore, authorized entirely through keymanager.KeyManager.
package encryptedmaps

import (
	"fmt"

	"github.com/erigontech/vetkeys-core/errs"
	"github.com/erigontech/vetkeys-core/types"
)

var errShortKey = fmt.Errorf("%w: composite key truncated", errs.ErrInvalidInput)

// mapEntryKey encodes the mapkey_vals/tombstones composite key
// (KeyId, MapKey): KeyId.Encode() followed by the fixed 32-byte MapKey.
func mapEntryKey(keyID types.KeyId, mapKey types.Blob32) []byte {
	kk := keyID.Encode()
	out := make([]byte, 0, len(kk)+types.Blob32Len)
	out = append(out, kk...)
	out = append(out, mapKey.Bytes()...)
	return out
}

// mapPrefix returns the prefix shared by every mapkey_vals/tombstones
// entry for keyID, for the "values/tombstones for map" range scans.
func mapPrefix(keyID types.KeyId) []byte {
	return keyID.Encode()
}

// decodeMapKey extracts the trailing 32-byte MapKey from a mapEntryKey,
// given the KeyId-prefix length to skip.
func decodeMapKey(key []byte, prefixLen int) (types.Blob32, error) {
	if len(key) < prefixLen+types.Blob32Len {
		return types.Blob32{}, errShortKey
	}
	return types.NewBlob32(key[prefixLen : prefixLen+types.Blob32Len])
}

// decodeOwnedName extracts the 32-byte name from a mapkey_vals key whose
// owner prefix (types.OwnerKeyPrefix) has already been stripped — used
// by the owned-non-empty-map derivation in AccessibleMaps.
func decodeOwnedName(remainder []byte) (types.Blob32, error) {
	if len(remainder) < types.Blob32Len {
		return types.Blob32{}, errShortKey
	}
	return types.NewBlob32(remainder[:types.Blob32Len])
}
