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

package keymanager

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/vetkeys-core/clock"
	"github.com/erigontech/vetkeys-core/errs"
	"github.com/erigontech/vetkeys-core/kv/memdb"
	"github.com/erigontech/vetkeys-core/oracle/fake"
	"github.com/erigontech/vetkeys-core/types"
)

func u64(v uint64) *uint64 { return &v }

func newTestKeyManager(t *testing.T, now clock.Source, auditEnabled bool) (*KeyManager, *fake.Client) {
	t.Helper()
	oc := &fake.Client{}
	km, err := Init(context.Background(), memdb.New(), Config{
		DomainSeparator: "test-domain",
		OracleClient:    oc,
		Clock:           now,
		AuditEnabled:    auditEnabled,
	})
	require.NoError(t, err)
	return km, oc
}

func TestInitFailsOnSecondCallAgainstSameHandle(t *testing.T) {
	ctx := context.Background()
	db := memdb.New()
	oc := &fake.Client{}

	_, err := Init(ctx, db, Config{DomainSeparator: "d", OracleClient: oc})
	require.NoError(t, err)

	_, err = Init(ctx, db, Config{DomainSeparator: "d", OracleClient: oc})
	require.ErrorIs(t, err, errs.ErrAlreadyInitialized)
}

func TestInitRequiresOracleClient(t *testing.T) {
	_, err := Init(context.Background(), memdb.New(), Config{DomainSeparator: "d"})
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestVerificationKeyIsUngated(t *testing.T) {
	km, oc := newTestKeyManager(t, clock.Fixed(0), false)
	_, err := km.VerificationKey(context.Background())
	require.NoError(t, err)
	require.Len(t, oc.PublicCalls, 1)
}

func TestSetUserRightsRejectsOwnerSelfTarget(t *testing.T) {
	km, _ := newTestKeyManager(t, clock.Fixed(0), false)
	owner := types.PrincipalFromBytes([]byte{0x01})
	keyID := types.KeyId{Owner: owner}

	_, err := km.SetUserRights(context.Background(), owner, keyID, owner, types.ReadWriteRights())
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestSetUserRightsRequiresManage(t *testing.T) {
	km, _ := newTestKeyManager(t, clock.Fixed(0), false)
	owner := types.PrincipalFromBytes([]byte{0x01})
	stranger := types.PrincipalFromBytes([]byte{0x02})
	grantee := types.PrincipalFromBytes([]byte{0x03})
	keyID := types.KeyId{Owner: owner}

	_, err := km.SetUserRights(context.Background(), stranger, keyID, grantee, types.ReadWriteRights())
	require.ErrorIs(t, err, errs.ErrUnauthorized)
}

// TestShareThenUnshare is scenario 2: grant, confirm, revoke, confirm gone,
// and the audit log carries exactly Share then Unshare.
func TestShareThenUnshare(t *testing.T) {
	ctx := context.Background()
	km, _ := newTestKeyManager(t, clock.Fixed(0), true)
	owner := types.PrincipalFromBytes([]byte{0x01})
	p1 := types.PrincipalFromBytes([]byte{0x02})
	keyID := types.KeyId{Owner: owner}

	prior, err := km.SetUserRights(ctx, owner, keyID, p1, types.ReadWriteRights())
	require.NoError(t, err)
	require.Nil(t, prior)

	ar, err := km.UserRights(ctx, owner, keyID, p1)
	require.NoError(t, err)
	require.NotNil(t, ar)
	require.Equal(t, types.ReadWrite, ar.Rights)

	removed, err := km.RemoveUser(ctx, owner, keyID, p1)
	require.NoError(t, err)
	require.NotNil(t, removed)
	require.Equal(t, types.ReadWrite, removed.Rights)

	ar, err = km.UserRights(ctx, owner, keyID, p1)
	require.NoError(t, err)
	require.Nil(t, ar)

	log, err := km.AuditLog(ctx, owner, keyID)
	require.NoError(t, err)
	require.Len(t, log.Entries, 2)
	require.Equal(t, types.AuditShare, log.Entries[0].Type)
	require.Equal(t, types.AuditUnshare, log.Entries[1].Type)
}

// TestTimeWindowedGrant is scenario 3: a grant is only live inside its
// [start, end) window.
func TestTimeWindowedGrant(t *testing.T) {
	ctx := context.Background()
	c := &clockBox{now: 50}
	km, _ := newTestKeyManager(t, c, false)
	owner := types.PrincipalFromBytes([]byte{0x01})
	p1 := types.PrincipalFromBytes([]byte{0x02})
	keyID := types.KeyId{Owner: owner}

	rights, err := types.NewAccessRights(types.Read, u64(100), u64(200))
	require.NoError(t, err)
	_, err = km.SetUserRights(ctx, owner, keyID, p1, rights)
	require.NoError(t, err)

	_, err = km.EncryptedVetKey(ctx, p1, keyID, types.TransportKey{0x01})
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	c.now = 150
	_, err = km.EncryptedVetKey(ctx, p1, keyID, types.TransportKey{0x01})
	require.NoError(t, err)

	c.now = 200
	_, err = km.EncryptedVetKey(ctx, p1, keyID, types.TransportKey{0x01})
	require.ErrorIs(t, err, errs.ErrUnauthorized)
}

// TestAnonymousGrantFallback is scenario 4: an anonymous Read grant lets
// any caller read, but never lets them manage.
func TestAnonymousGrantFallback(t *testing.T) {
	ctx := context.Background()
	km, _ := newTestKeyManager(t, clock.Fixed(0), false)
	owner := types.PrincipalFromBytes([]byte{0x01})
	stranger := types.PrincipalFromBytes([]byte{0x02})
	keyID := types.KeyId{Owner: owner}

	_, err := km.SetUserRights(ctx, owner, keyID, types.Anonymous, types.ReadOnly())
	require.NoError(t, err)

	_, err = km.EncryptedVetKey(ctx, stranger, keyID, types.TransportKey{0x01})
	require.NoError(t, err)

	_, err = km.SetUserRights(ctx, stranger, keyID, stranger, types.ReadWriteRights())
	require.ErrorIs(t, err, errs.ErrUnauthorized)
}

// TestInitSucceedsOnFreshHandle complements scenario 6, which is covered
// directly above by TestInitFailsOnSecondCallAgainstSameHandle: a fresh
// handle always succeeds.
func TestInitSucceedsOnFreshHandle(t *testing.T) {
	_, err := Init(context.Background(), memdb.New(), Config{DomainSeparator: "d", OracleClient: &fake.Client{}})
	require.NoError(t, err)
}

func TestEncryptedVetKeyFirstOwnerTouchAuditsCreated(t *testing.T) {
	ctx := context.Background()
	km, _ := newTestKeyManager(t, clock.Fixed(0), true)
	owner := types.PrincipalFromBytes([]byte{0x01})
	keyID := types.KeyId{Owner: owner}

	_, err := km.EncryptedVetKey(ctx, owner, keyID, types.TransportKey{0x01})
	require.NoError(t, err)

	log, err := km.AuditLog(ctx, owner, keyID)
	require.NoError(t, err)
	require.Len(t, log.Entries, 2)
	require.Equal(t, types.AuditAccessVetKey, log.Entries[0].Type)
	require.Equal(t, types.AuditCreated, log.Entries[1].Type)

	// A second touch by the owner must not re-audit Created.
	_, err = km.EncryptedVetKey(ctx, owner, keyID, types.TransportKey{0x01})
	require.NoError(t, err)
	log, err = km.AuditLog(ctx, owner, keyID)
	require.NoError(t, err)
	require.Len(t, log.Entries, 3)
	require.Equal(t, types.AuditAccessVetKey, log.Entries[2].Type)
}

func TestOracleFailurePropagates(t *testing.T) {
	ctx := context.Background()
	km, oc := newTestKeyManager(t, clock.Fixed(0), false)
	owner := types.PrincipalFromBytes([]byte{0x01})
	keyID := types.KeyId{Owner: owner}

	oc.FailNext.Store(1)
	_, err := km.EncryptedVetKey(ctx, owner, keyID, types.TransportKey{0x01})
	require.True(t, errors.Is(err, errs.ErrOracleFailure))
}

// clockBox is a mutable clock.Source, for tests that need "now" to
// advance mid-test without constructing a new KeyManager.
type clockBox struct{ now uint64 }

func (c *clockBox) Now() uint64 { return c.now }
