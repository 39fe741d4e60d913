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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrincipalEqualAndCompare(t *testing.T) {
	a := PrincipalFromBytes([]byte{0x01, 0x02})
	b := PrincipalFromBytes([]byte{0x01, 0x02})
	c := PrincipalFromBytes([]byte{0x01, 0x03})

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.Equal(t, 0, a.Compare(b))
	require.Negative(t, a.Compare(c))
	require.Positive(t, c.Compare(a))
}

func TestPrincipalFromBytesCopies(t *testing.T) {
	raw := []byte{0x01, 0x02}
	p := PrincipalFromBytes(raw)
	raw[0] = 0xff

	require.True(t, p.Equal(PrincipalFromBytes([]byte{0x01, 0x02})))
}

func TestAnonymousIsAnonymous(t *testing.T) {
	require.True(t, Anonymous.IsAnonymous())
	require.False(t, PrincipalFromBytes([]byte{0x01}).IsAnonymous())
}
