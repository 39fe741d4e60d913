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

package encryptedmaps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/vetkeys-core/clock"
	"github.com/erigontech/vetkeys-core/errs"
	"github.com/erigontech/vetkeys-core/keymanager"
	"github.com/erigontech/vetkeys-core/kv/memdb"
	"github.com/erigontech/vetkeys-core/oracle/fake"
	"github.com/erigontech/vetkeys-core/types"
)

func newTestEncryptedMaps(t *testing.T, auditEnabled bool) *EncryptedMaps {
	t.Helper()
	km, err := keymanager.Init(context.Background(), memdb.New(), keymanager.Config{
		DomainSeparator: "test-domain",
		OracleClient:    &fake.Client{},
		Clock:           clock.Fixed(0),
		AuditEnabled:    auditEnabled,
	})
	require.NoError(t, err)
	return New(km, Config{})
}

// TestInsertThenGet is scenario 1: inserting a value makes it readable
// and the audit log ends with Created.
func TestInsertThenGet(t *testing.T) {
	ctx := context.Background()
	em := newTestEncryptedMaps(t, true)
	owner := types.PrincipalFromBytes([]byte{0x01})
	keyID := types.KeyId{Owner: owner}
	mapKey := blob32(0x01)

	prior, err := em.Insert(ctx, owner, keyID, mapKey, types.EncryptedValue{0xaa})
	require.NoError(t, err)
	require.Nil(t, prior)

	got, err := em.Get(ctx, owner, keyID, mapKey)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, types.EncryptedValue{0xaa}, *got)

	log, err := em.km.AuditLog(ctx, owner, keyID)
	require.NoError(t, err)
	require.NotEmpty(t, log.Entries)
	require.Equal(t, types.AuditCreated, log.Entries[len(log.Entries)-1].Type)
}

func TestInsertSecondWriteAuditsUpdated(t *testing.T) {
	ctx := context.Background()
	em := newTestEncryptedMaps(t, true)
	owner := types.PrincipalFromBytes([]byte{0x01})
	keyID := types.KeyId{Owner: owner}
	mapKey := blob32(0x01)

	_, err := em.Insert(ctx, owner, keyID, mapKey, types.EncryptedValue{0x01})
	require.NoError(t, err)

	prior, err := em.Insert(ctx, owner, keyID, mapKey, types.EncryptedValue{0x02})
	require.NoError(t, err)
	require.NotNil(t, prior)
	require.Equal(t, types.EncryptedValue{0x01}, *prior)

	log, err := em.km.AuditLog(ctx, owner, keyID)
	require.NoError(t, err)
	require.Len(t, log.Entries, 2)
	require.Equal(t, types.AuditCreated, log.Entries[0].Type)
	require.Equal(t, types.AuditUpdated, log.Entries[1].Type)
}

func TestInsertRejectsWithoutWriteRights(t *testing.T) {
	ctx := context.Background()
	em := newTestEncryptedMaps(t, false)
	owner := types.PrincipalFromBytes([]byte{0x01})
	stranger := types.PrincipalFromBytes([]byte{0x02})
	keyID := types.KeyId{Owner: owner}

	_, err := em.Insert(ctx, stranger, keyID, blob32(0x01), types.EncryptedValue{0x01})
	require.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestGetValuesForMap(t *testing.T) {
	ctx := context.Background()
	em := newTestEncryptedMaps(t, false)
	owner := types.PrincipalFromBytes([]byte{0x01})
	keyID := types.KeyId{Owner: owner}

	_, err := em.Insert(ctx, owner, keyID, blob32(0x01), types.EncryptedValue{0x01})
	require.NoError(t, err)
	_, err = em.Insert(ctx, owner, keyID, blob32(0x02), types.EncryptedValue{0x02})
	require.NoError(t, err)

	entries, err := em.GetValuesForMap(ctx, owner, keyID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestRemoveValueHardErasesWithoutTombstone(t *testing.T) {
	ctx := context.Background()
	em := newTestEncryptedMaps(t, false)
	owner := types.PrincipalFromBytes([]byte{0x01})
	keyID := types.KeyId{Owner: owner}
	mapKey := blob32(0x01)

	_, err := em.Insert(ctx, owner, keyID, mapKey, types.EncryptedValue{0x01})
	require.NoError(t, err)

	removed, err := em.RemoveValue(ctx, owner, keyID, mapKey, true)
	require.NoError(t, err)
	require.NotNil(t, removed)

	got, err := em.Get(ctx, owner, keyID, mapKey)
	require.NoError(t, err)
	require.Nil(t, got)

	tombstones, err := em.TombstonesForMap(ctx, owner, keyID)
	require.NoError(t, err)
	require.Empty(t, tombstones)
}

// TestSoftDeleteRestoreRoundTrip is scenario 5: insert, soft-remove,
// confirm exactly one tombstone, restore, confirm the value reads back,
// and the audit log carries Created, SoftDeleted, Restored in order.
func TestSoftDeleteRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	em := newTestEncryptedMaps(t, true)
	owner := types.PrincipalFromBytes([]byte{0x01})
	keyID := types.KeyId{Owner: owner}
	mapKey := blob32(0x01)
	value := types.EncryptedValue{0xde, 0xad}

	_, err := em.Insert(ctx, owner, keyID, mapKey, value)
	require.NoError(t, err)

	removed, err := em.RemoveValue(ctx, owner, keyID, mapKey, false)
	require.NoError(t, err)
	require.NotNil(t, removed)
	require.Equal(t, value, *removed)

	got, err := em.Get(ctx, owner, keyID, mapKey)
	require.NoError(t, err)
	require.Nil(t, got)

	tombstones, err := em.TombstonesForMap(ctx, owner, keyID)
	require.NoError(t, err)
	require.Len(t, tombstones, 1)
	require.Equal(t, mapKey, tombstones[0].MapKey)
	require.Equal(t, value, tombstones[0].Tombstone.Value)
	require.True(t, tombstones[0].Tombstone.DeletedBy.Equal(owner))

	restored, err := em.Restore(ctx, owner, keyID, mapKey)
	require.NoError(t, err)
	require.NotNil(t, restored)
	require.Equal(t, value, *restored)

	got, err = em.Get(ctx, owner, keyID, mapKey)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, value, *got)

	tombstones, err = em.TombstonesForMap(ctx, owner, keyID)
	require.NoError(t, err)
	require.Empty(t, tombstones)

	log, err := em.km.AuditLog(ctx, owner, keyID)
	require.NoError(t, err)
	require.Len(t, log.Entries, 3)
	require.Equal(t, types.AuditCreated, log.Entries[0].Type)
	require.Equal(t, types.AuditSoftDeleted, log.Entries[1].Type)
	require.Equal(t, types.AuditRestored, log.Entries[2].Type)
}

func TestRestoreWithoutTombstoneIsNoop(t *testing.T) {
	ctx := context.Background()
	em := newTestEncryptedMaps(t, false)
	owner := types.PrincipalFromBytes([]byte{0x01})
	keyID := types.KeyId{Owner: owner}

	restored, err := em.Restore(ctx, owner, keyID, blob32(0x01))
	require.NoError(t, err)
	require.Nil(t, restored)
}

func TestPurgeTombstoneRequiresManage(t *testing.T) {
	ctx := context.Background()
	em := newTestEncryptedMaps(t, false)
	owner := types.PrincipalFromBytes([]byte{0x01})
	writer := types.PrincipalFromBytes([]byte{0x02})
	keyID := types.KeyId{Owner: owner}
	mapKey := blob32(0x01)

	_, err := em.km.SetUserRights(ctx, owner, keyID, writer, types.ReadWriteRights())
	require.NoError(t, err)

	_, err = em.Insert(ctx, owner, keyID, mapKey, types.EncryptedValue{0x01})
	require.NoError(t, err)
	_, err = em.RemoveValue(ctx, owner, keyID, mapKey, false)
	require.NoError(t, err)

	err = em.PurgeTombstone(ctx, writer, keyID, mapKey)
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	err = em.PurgeTombstone(ctx, owner, keyID, mapKey)
	require.NoError(t, err)

	tombstones, err := em.TombstonesForMap(ctx, owner, keyID)
	require.NoError(t, err)
	require.Empty(t, tombstones)
}

func TestPurgeTombstoneWithoutTombstoneIsNoop(t *testing.T) {
	ctx := context.Background()
	em := newTestEncryptedMaps(t, false)
	owner := types.PrincipalFromBytes([]byte{0x01})
	keyID := types.KeyId{Owner: owner}

	require.NoError(t, em.PurgeTombstone(ctx, owner, keyID, blob32(0x01)))
}

func TestRemoveMapEmptyIsNoopWithoutAudit(t *testing.T) {
	ctx := context.Background()
	em := newTestEncryptedMaps(t, true)
	owner := types.PrincipalFromBytes([]byte{0x01})
	keyID := types.KeyId{Owner: owner}

	removed, err := em.RemoveMap(ctx, owner, keyID, true)
	require.NoError(t, err)
	require.Empty(t, removed)

	log, err := em.km.AuditLog(ctx, owner, keyID)
	require.NoError(t, err)
	require.Empty(t, log.Entries)
}

// TestRemoveMapBulkAtomicity covers RemoveMap's single-audit-event,
// one-tombstone-per-value batch behavior.
func TestRemoveMapBulkAtomicity(t *testing.T) {
	ctx := context.Background()
	em := newTestEncryptedMaps(t, true)
	owner := types.PrincipalFromBytes([]byte{0x01})
	keyID := types.KeyId{Owner: owner}

	_, err := em.Insert(ctx, owner, keyID, blob32(0x01), types.EncryptedValue{0x01})
	require.NoError(t, err)
	_, err = em.Insert(ctx, owner, keyID, blob32(0x02), types.EncryptedValue{0x02})
	require.NoError(t, err)

	removed, err := em.RemoveMap(ctx, owner, keyID, true)
	require.NoError(t, err)
	require.Len(t, removed, 2)

	entries, err := em.GetValuesForMap(ctx, owner, keyID)
	require.NoError(t, err)
	require.Empty(t, entries)

	tombstones, err := em.TombstonesForMap(ctx, owner, keyID)
	require.NoError(t, err)
	require.Len(t, tombstones, 2)

	log, err := em.km.AuditLog(ctx, owner, keyID)
	require.NoError(t, err)
	require.Len(t, log.Entries, 3)
	require.Equal(t, types.AuditSoftDeleted, log.Entries[2].Type)
}

func TestRemoveMapHardSkipsTombstones(t *testing.T) {
	ctx := context.Background()
	em := newTestEncryptedMaps(t, false)
	owner := types.PrincipalFromBytes([]byte{0x01})
	keyID := types.KeyId{Owner: owner}

	_, err := em.Insert(ctx, owner, keyID, blob32(0x01), types.EncryptedValue{0x01})
	require.NoError(t, err)

	removed, err := em.RemoveMap(ctx, owner, keyID, false)
	require.NoError(t, err)
	require.Len(t, removed, 1)

	tombstones, err := em.TombstonesForMap(ctx, owner, keyID)
	require.NoError(t, err)
	require.Empty(t, tombstones)
}

func TestAccessibleMapsUnionsOwnedAndShared(t *testing.T) {
	ctx := context.Background()
	em := newTestEncryptedMaps(t, false)
	owner := types.PrincipalFromBytes([]byte{0x01})
	other := types.PrincipalFromBytes([]byte{0x02})
	friend := types.PrincipalFromBytes([]byte{0x03})

	ownedKey := types.KeyId{Owner: owner}
	sharedKey := types.KeyId{Owner: other}

	_, err := em.Insert(ctx, owner, ownedKey, blob32(0x01), types.EncryptedValue{0x01})
	require.NoError(t, err)

	_, err = em.km.SetUserRights(ctx, other, sharedKey, friend, types.ReadOnly())
	require.NoError(t, err)

	accessible, err := em.AccessibleMaps(ctx, friend)
	require.NoError(t, err)
	require.Len(t, accessible, 1)
	require.True(t, accessible[0].Equal(sharedKey))

	accessibleOwner, err := em.AccessibleMaps(ctx, owner)
	require.NoError(t, err)
	require.Len(t, accessibleOwner, 1)
	require.True(t, accessibleOwner[0].Equal(ownedKey))
}

func TestAccessibleMapsOwnedWithOnlyTombstoneIsExcluded(t *testing.T) {
	ctx := context.Background()
	em := newTestEncryptedMaps(t, false)
	owner := types.PrincipalFromBytes([]byte{0x01})
	keyID := types.KeyId{Owner: owner}

	_, err := em.Insert(ctx, owner, keyID, blob32(0x01), types.EncryptedValue{0x01})
	require.NoError(t, err)
	_, err = em.RemoveValue(ctx, owner, keyID, blob32(0x01), false)
	require.NoError(t, err)

	accessible, err := em.AccessibleMaps(ctx, owner)
	require.NoError(t, err)
	require.Empty(t, accessible)
}

func blob32(b byte) types.Blob32 {
	var out types.Blob32
	out[0] = b
	return out
}
