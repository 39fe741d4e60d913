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

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func u64(v uint64) *uint64 { return &v }

func TestAccessRightsRoundTrip(t *testing.T) {
	cases := []AccessRights{
		ReadOnly(),
		ReadWriteRights(),
		ReadWriteManageRights(),
		{Rights: Read, Start: u64(10), End: u64(20)},
		{Rights: ReadWrite, Start: u64(0), End: nil},
	}
	for _, want := range cases {
		b, err := want.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, b, accessRightsEncodedLen)

		var got AccessRights
		require.NoError(t, got.UnmarshalBinary(b))
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestAccessRightsUnmarshalRejectsWrongLength(t *testing.T) {
	var ar AccessRights
	require.Error(t, ar.UnmarshalBinary([]byte{1, 2, 3}))
}

func TestNewAccessRightsRejectsInvertedWindow(t *testing.T) {
	_, err := NewAccessRights(Read, u64(20), u64(10))
	require.Error(t, err)
}

func TestAccessRightsIsLiveAt(t *testing.T) {
	ar, err := NewAccessRights(Read, u64(100), u64(200))
	require.NoError(t, err)

	require.False(t, ar.IsLiveAt(99))
	require.True(t, ar.IsLiveAt(100))
	require.True(t, ar.IsLiveAt(199))
	require.False(t, ar.IsLiveAt(200))
}

func TestAccessRightsIsLiveAtUnbounded(t *testing.T) {
	require.True(t, ReadWriteRights().IsLiveAt(0))
	require.True(t, ReadWriteRights().IsLiveAt(^uint64(0)))
}
