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

import "encoding/json"

// EncryptedValue is opaque ciphertext; the core never inspects, decrypts,
// or generates it.
type EncryptedValue []byte

// TransportKey is the caller-supplied transport public key an encrypted
// vetkey is wrapped under. Opaque to the core.
type TransportKey []byte

// VerificationKey is the oracle's public key material, used by callers to
// verify derivation results. Opaque to the core.
type VerificationKey []byte

// VetKey is the oracle's encrypted derived key material. Opaque to the
// core; never persisted.
type VetKey []byte

// Tombstone preserves a soft-deleted value's original ciphertext plus
// deletion metadata. tombstones and mapkey_vals have disjoint key sets for
// any KeyId: a (KeyId, MapKey) exists in at most one of them.
type Tombstone struct {
	Value          EncryptedValue
	DeletedAt      uint64
	DeletedBy      Principal
	MarkedForPurge bool
}

type tombstoneWire struct {
	Value          []byte `json:"value"`
	DeletedAt      uint64 `json:"deleted_at"`
	DeletedBy      []byte `json:"deleted_by"`
	MarkedForPurge bool   `json:"marked_for_purge"`
}

// MarshalBinary implements the self-describing stable encoding required so
// process restarts recover exact Tombstone state.
func (t Tombstone) MarshalBinary() ([]byte, error) {
	return json.Marshal(tombstoneWire{
		Value:          t.Value,
		DeletedAt:      t.DeletedAt,
		DeletedBy:      t.DeletedBy.Bytes(),
		MarkedForPurge: t.MarkedForPurge,
	})
}

// UnmarshalBinary is the inverse of MarshalBinary.
func (t *Tombstone) UnmarshalBinary(b []byte) error {
	var w tombstoneWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	t.Value = EncryptedValue(w.Value)
	t.DeletedAt = w.DeletedAt
	t.DeletedBy = PrincipalFromBytes(w.DeletedBy)
	t.MarkedForPurge = w.MarkedForPurge
	return nil
}
