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

// Package keymanager implements the authorization model, the
// access_control/shared_keys tables, the audit log, and the derivation
// request protocol to the external oracle.
package keymanager

import (
	"fmt"

	"github.com/erigontech/vetkeys-core/errs"
	"github.com/erigontech/vetkeys-core/types"
)

// errShortKey reports a stored composite key shorter than its own encoded
// length prefixes claim — corrupt persisted bytes, treated as a fatal
// assertion failure rather than a recoverable NotFound.
var errShortKey = fmt.Errorf("%w: composite key truncated", errs.ErrInvalidInput)

func principalKey(p types.Principal) []byte {
	return types.OwnerKeyPrefix(p)
}

// accessControlKey encodes the access_control composite key (user, KeyId).
func accessControlKey(user types.Principal, keyID types.KeyId) []byte {
	uk := principalKey(user)
	kk := keyID.Encode()
	out := make([]byte, 0, len(uk)+len(kk))
	out = append(out, uk...)
	out = append(out, kk...)
	return out
}

// accessControlPrefix returns the prefix shared by every access_control
// entry for user, for the "accessible shared key ids" range scan.
func accessControlPrefix(user types.Principal) []byte {
	return principalKey(user)
}

// sharedKeysKey encodes the shared_keys composite key (KeyId, user).
func sharedKeysKey(keyID types.KeyId, user types.Principal) []byte {
	kk := keyID.Encode()
	uk := principalKey(user)
	out := make([]byte, 0, len(kk)+len(uk))
	out = append(out, kk...)
	out = append(out, uk...)
	return out
}

// sharedKeysPrefix returns the prefix shared by every shared_keys entry
// for keyID, for the "shared user access for key" range scan.
func sharedKeysPrefix(keyID types.KeyId) []byte {
	return keyID.Encode()
}

// auditLogKey encodes the audit_logs key: just the KeyId, the whole log
// is one value.
func auditLogKey(keyID types.KeyId) []byte {
	return keyID.Encode()
}

// decodeKeyIdFromEncoded is the inverse of types.KeyId.Encode.
func decodeKeyIdFromEncoded(b []byte) (types.KeyId, error) {
	if len(b) < 1 {
		return types.KeyId{}, errShortKey
	}
	ownerLen := int(b[0])
	if len(b) < 1+ownerLen+types.Blob32Len {
		return types.KeyId{}, errShortKey
	}
	owner := types.PrincipalFromBytes(b[1 : 1+ownerLen])
	name, err := types.NewBlob32(b[1+ownerLen : 1+ownerLen+types.Blob32Len])
	if err != nil {
		return types.KeyId{}, err
	}
	return types.KeyId{Owner: owner, Name: name}, nil
}

// decodePrincipalKey is the inverse of principalKey.
func decodePrincipalKey(b []byte) (types.Principal, error) {
	if len(b) < 1 {
		return types.Principal{}, errShortKey
	}
	n := int(b[0])
	if len(b) < 1+n {
		return types.Principal{}, errShortKey
	}
	return types.PrincipalFromBytes(b[1 : 1+n]), nil
}
