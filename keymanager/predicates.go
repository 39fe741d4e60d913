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
	"github.com/erigontech/vetkeys-core/errs"
	"github.com/erigontech/vetkeys-core/kv"
	"github.com/erigontech/vetkeys-core/types"
)

// lookupAccessControl reads the access_control entry for (user, keyID), if
// any.
func lookupAccessControl(tx kv.Tx, user types.Principal, keyID types.KeyId) (types.AccessRights, bool, error) {
	raw, ok, err := tx.Get(kv.TableAccessControl, accessControlKey(user, keyID))
	if err != nil || !ok {
		return types.AccessRights{}, false, err
	}
	var ar types.AccessRights
	if err := ar.UnmarshalBinary(raw); err != nil {
		return types.AccessRights{}, false, err
	}
	return ar, true, nil
}

// canRead is the read-access predicate: owner shortcut, then the caller's
// own grant, then the anonymous grant as a wildcard fallback — so probing
// any other user's effective rights also falls through to anonymous.
func (km *KeyManager) canRead(tx kv.Tx, user types.Principal, keyID types.KeyId) (types.AccessRights, error) {
	if user.Equal(keyID.Owner) {
		return types.ReadWriteManageRights(), nil
	}
	now := km.clock.Now()

	if ar, ok, err := lookupAccessControl(tx, user, keyID); err != nil {
		return types.AccessRights{}, err
	} else if ok && ar.IsLiveAt(now) {
		return ar, nil
	}

	if ar, ok, err := lookupAccessControl(tx, types.Anonymous, keyID); err != nil {
		return types.AccessRights{}, err
	} else if ok && ar.IsLiveAt(now) {
		return ar, nil
	}

	return types.AccessRights{}, errs.ErrUnauthorized
}

// canManage implements can_manage: owner shortcut, else an explicit live
// grant with exactly ReadWriteManage rights. Anonymous is never honored
// — the anonymous principal may hold Read/ReadWrite but never Manage.
func (km *KeyManager) canManage(tx kv.Tx, user types.Principal, keyID types.KeyId) (types.AccessRights, error) {
	if user.Equal(keyID.Owner) {
		return types.ReadWriteManageRights(), nil
	}
	if user.IsAnonymous() {
		return types.AccessRights{}, errs.ErrUnauthorized
	}
	now := km.clock.Now()

	ar, ok, err := lookupAccessControl(tx, user, keyID)
	if err != nil {
		return types.AccessRights{}, err
	}
	if ok && ar.IsLiveAt(now) && ar.Rights.CanManage() {
		return ar, nil
	}
	return types.AccessRights{}, errs.ErrUnauthorized
}

// canWrite is the write-access predicate, kept separate from canRead:
// any live grant with rights in {ReadWrite, ReadWriteManage}.
// It is expressed in terms of canRead so the single isLive/time-window
// check in types.AccessRights.IsLiveAt stays the only place that decides
// liveness for either reads or writes.
func (km *KeyManager) canWrite(tx kv.Tx, user types.Principal, keyID types.KeyId) (types.AccessRights, error) {
	ar, err := km.canRead(tx, user, keyID)
	if err != nil {
		return types.AccessRights{}, err
	}
	if !ar.Rights.CanWrite() {
		return types.AccessRights{}, errs.ErrUnauthorized
	}
	return ar, nil
}

// CanRead exposes can_read to encryptedmaps, which shares this
// KeyManager's kv.DB and must run its authorization check inside the
// same transaction as its own mapkey_vals/tombstones reads or writes —
// each public operation opens exactly one transaction, so the gate
// cannot be a separate round trip.
func (km *KeyManager) CanRead(tx kv.Tx, user types.Principal, keyID types.KeyId) (types.AccessRights, error) {
	return km.canRead(tx, user, keyID)
}

// CanWrite exposes the write-gate to encryptedmaps, under the same
// single-transaction constraint as CanRead.
func (km *KeyManager) CanWrite(tx kv.Tx, user types.Principal, keyID types.KeyId) (types.AccessRights, error) {
	return km.canWrite(tx, user, keyID)
}

// CanManage exposes can_manage to encryptedmaps (purge_tombstone is
// manage-gated), under the same single-transaction constraint.
func (km *KeyManager) CanManage(tx kv.Tx, user types.Principal, keyID types.KeyId) (types.AccessRights, error) {
	return km.canManage(tx, user, keyID)
}
