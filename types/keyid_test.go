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
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func blob32(b byte) Blob32 {
	var out Blob32
	out[0] = b
	return out
}

func TestKeyIdEncodeIsPrefixFreeAcrossOwners(t *testing.T) {
	short := PrincipalFromBytes([]byte{0x01})
	long := PrincipalFromBytes([]byte{0x01, 0x02})

	a := KeyId{Owner: short, Name: blob32(0xff)}
	b := KeyId{Owner: long, Name: blob32(0x00)}

	// a's encoding must never be a byte-prefix of b's, or a prefix scan
	// bounded by a's owner would leak into b's range.
	require.False(t, bytes.HasPrefix(b.Encode(), a.Encode()))
}

func TestOwnerKeyPrefixIsKeyIdEncodePrefix(t *testing.T) {
	owner := PrincipalFromBytes([]byte{0xaa, 0xbb})
	k := KeyId{Owner: owner, Name: blob32(0x42)}

	require.True(t, bytes.HasPrefix(k.Encode(), OwnerKeyPrefix(owner)))
}

func TestDerivationIDHasNoSeparator(t *testing.T) {
	owner := PrincipalFromBytes([]byte{0x01, 0x02, 0x03})
	name := blob32(0x09)
	k := KeyId{Owner: owner, Name: name}

	want := append(append([]byte{}, owner.Bytes()...), name.Bytes()...)
	require.Equal(t, want, k.DerivationID())
}

func TestKeyIdEqual(t *testing.T) {
	owner := PrincipalFromBytes([]byte{0x01})
	a := KeyId{Owner: owner, Name: blob32(1)}
	b := KeyId{Owner: owner, Name: blob32(1)}
	c := KeyId{Owner: owner, Name: blob32(2)}

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}
