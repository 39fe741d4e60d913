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

// KeyId identifies one logical protected resource: the owning Principal
// plus a 32-byte name chosen by that owner. The owner is always the first
// component, and always holds implicit ReadWriteManage rights —
// no explicit access_control entry is ever created for the owner.
type KeyId struct {
	Owner Principal
	Name  Blob32
}

// Encode returns the composite byte key used for ordered-map lookups and
// range scans keyed by KeyId: a length byte, then the owner bytes, then the
// 32-byte name. The length byte keeps the encoding prefix-free across
// different-length owners so a scan bounded by (ownerA, 0x00) never laps
// into ownerB's range.
func (k KeyId) Encode() []byte {
	owner := k.Owner.Bytes()
	out := make([]byte, 0, len(owner)+1+Blob32Len)
	out = append(out, byte(len(owner)))
	out = append(out, owner...)
	out = append(out, k.Name[:]...)
	return out
}

// DerivationID returns owner_bytes ‖ name_bytes — exactly the derivation
// identity used in oracle.EncryptedKeyRequest. This concatenation is
// security-critical and must stay bit-exact: no length prefix, no
// separator, unlike Encode above.
func (k KeyId) DerivationID() []byte {
	owner := k.Owner.Bytes()
	out := make([]byte, 0, len(owner)+Blob32Len)
	out = append(out, owner...)
	out = append(out, k.Name[:]...)
	return out
}

// Equal reports whether k and other denote the same resource.
func (k KeyId) Equal(other KeyId) bool {
	return k.Owner.Equal(other.Owner) && k.Name == other.Name
}

// OwnerKeyPrefix returns the length-prefixed owner encoding that begins
// both KeyId.Encode() and any composite key built on top of it. Range
// scans that need "every KeyId owned by X, any name" — the owned-maps
// derivation in the accessible-maps scan — seek this prefix rather
// than a full KeyId.
func OwnerKeyPrefix(owner Principal) []byte {
	raw := owner.Bytes()
	out := make([]byte, 0, len(raw)+1)
	out = append(out, byte(len(raw)))
	out = append(out, raw...)
	return out
}
