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

func TestAuditEntryJSONRoundTrip(t *testing.T) {
	user := PrincipalFromBytes([]byte{0x07})
	rights := ReadWriteRights()

	entries := []AuditEntry{
		{Type: AuditCreated, Timestamp: 1, Caller: PrincipalFromBytes([]byte{0x01})},
		{Type: AuditShare, Timestamp: 2, Caller: PrincipalFromBytes([]byte{0x01}), User: &user, Rights: &rights},
		{Type: AuditAccessVetKey, Timestamp: 3, Caller: Anonymous},
	}

	for _, want := range entries {
		b, err := want.MarshalBinary()
		require.NoError(t, err)

		var got AuditEntry
		require.NoError(t, got.UnmarshalBinary(b))

		require.Equal(t, want.Type, got.Type)
		require.Equal(t, want.Timestamp, got.Timestamp)
		require.True(t, want.Caller.Equal(got.Caller))
		if want.User != nil {
			require.NotNil(t, got.User)
			require.True(t, want.User.Equal(*got.User))
		} else {
			require.Nil(t, got.User)
		}
		if want.Rights != nil {
			require.NotNil(t, got.Rights)
			require.Equal(t, *want.Rights, *got.Rights)
		} else {
			require.Nil(t, got.Rights)
		}
	}
}

func TestAuditLogRoundTripAndEmpty(t *testing.T) {
	var empty AuditLog
	b, err := empty.MarshalBinary()
	require.NoError(t, err)

	var got AuditLog
	require.NoError(t, got.UnmarshalBinary(b))
	require.Empty(t, got.Entries)

	log := AuditLog{Entries: []AuditEntry{
		{Type: AuditCreated, Timestamp: 1, Caller: PrincipalFromBytes([]byte{0x01})},
		{Type: AuditUnshare, Timestamp: 2, Caller: PrincipalFromBytes([]byte{0x01})},
	}}
	b, err = log.MarshalBinary()
	require.NoError(t, err)

	require.NoError(t, got.UnmarshalBinary(b))
	require.Len(t, got.Entries, 2)
	require.Equal(t, AuditCreated, got.Entries[0].Type)
	require.Equal(t, AuditUnshare, got.Entries[1].Type)
}

func TestAuditLogUnmarshalEmptyBytes(t *testing.T) {
	var log AuditLog
	require.NoError(t, log.UnmarshalBinary(nil))
	require.Nil(t, log.Entries)
}
