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

// Package oracle specifies the request/response contract with the external
// key-derivation oracle. Field and type naming mirror the wire contract
// exactly; that mapping is part of the contract, not an implementation
// detail.
package oracle

// Curve names the curve the oracle derives over. BLS12-381 is the only
// curve this repository names a default for; the core never does curve
// math itself — that happens inside the oracle.
type Curve string

const Bls12381 Curve = "bls12_381"

// KeyId names which oracle-side key material to derive from. It defaults
// to {Bls12381, "insecure_test_key_1"} unless overridden at
// keymanager.Init.
type KeyId struct {
	Curve Curve  `json:"curve"`
	Name  string `json:"name"`
}

// DefaultKeyId is the oracle KeyId used unless keymanager.Init overrides
// it.
var DefaultKeyId = KeyId{Curve: Bls12381, Name: "insecure_test_key_1"}

// PublicKeyRequest asks the oracle for its verification key material along
// a derivation path.
type PublicKeyRequest struct {
	CanisterID      []byte   `json:"canister_id,omitempty"`
	DerivationPath  [][]byte `json:"derivation_path"`
	KeyId           KeyId    `json:"key_id"`
}

// PublicKeyReply carries the oracle's verification key bytes, opaque to
// the core.
type PublicKeyReply struct {
	PublicKey []byte `json:"public_key"`
}

// EncryptedKeyRequest asks the oracle to derive a secret key for
// DerivationID and return it encrypted under EncryptionPublicKey.
// DerivationID must be exactly KeyId.DerivationID() — owner bytes followed
// by the 32-byte name, no separator.
type EncryptedKeyRequest struct {
	DerivationID             []byte   `json:"derivation_id"`
	PublicKeyDerivationPath  [][]byte `json:"public_key_derivation_path"`
	KeyId                    KeyId    `json:"key_id"`
	EncryptionPublicKey      []byte   `json:"encryption_public_key"`
}

// EncryptedKeyReply carries the oracle's encrypted derived key, opaque to
// the core.
type EncryptedKeyReply struct {
	EncryptedKey []byte `json:"encrypted_key"`
}
