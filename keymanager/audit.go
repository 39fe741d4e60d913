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

	"github.com/erigontech/vetkeys-core/kv"
	"github.com/erigontech/vetkeys-core/types"
)

// appendAudit loads the KeyId's audit log, appends one entry, and writes
// it back — unless auditing is disabled, in which case mk is never
// invoked, so a disabled audit log costs nothing beyond the closure
// allocation itself.
func (km *KeyManager) appendAudit(tx kv.RwTx, keyID types.KeyId, mk func() types.AuditEntry) error {
	if !km.auditEnabled {
		return nil
	}
	entry := mk()

	key := auditLogKey(keyID)
	raw, ok, err := tx.Get(kv.TableAuditLogs, key)
	if err != nil {
		return err
	}
	var log types.AuditLog
	if ok {
		if err := log.UnmarshalBinary(raw); err != nil {
			return err
		}
	}
	log.Entries = append(log.Entries, entry)

	encoded, err := log.MarshalBinary()
	if err != nil {
		return err
	}
	return tx.Put(kv.TableAuditLogs, key, encoded)
}

// auditLog returns the full audit log for keyID, or an empty log if
// auditing is disabled or nothing has been recorded yet.
func (km *KeyManager) auditLog(tx kv.Tx, keyID types.KeyId) (types.AuditLog, error) {
	raw, ok, err := tx.Get(kv.TableAuditLogs, auditLogKey(keyID))
	if err != nil || !ok {
		return types.AuditLog{}, err
	}
	var log types.AuditLog
	if err := log.UnmarshalBinary(raw); err != nil {
		return types.AuditLog{}, err
	}
	return log, nil
}

// AppendAudit exposes the audit-append helper to encryptedmaps, which
// shares this KeyId's audit log and must append its own Created/Updated/
// Deleted/SoftDeleted/Restored entries inside the same transaction as its
// mapkey_vals/tombstones mutation.
func (km *KeyManager) AppendAudit(tx kv.RwTx, keyID types.KeyId, mk func() types.AuditEntry) error {
	return km.appendAudit(tx, keyID, mk)
}

// AuditLog returns the full audit trail for keyID, gated by the manage
// predicate, or an empty log if auditing is disabled or nothing has
// been recorded yet.
func (km *KeyManager) AuditLog(ctx context.Context, caller types.Principal, keyID types.KeyId) (types.AuditLog, error) {
	var log types.AuditLog
	err := km.db.View(ctx, func(tx kv.Tx) error {
		if _, err := km.canManage(tx, caller, keyID); err != nil {
			return err
		}
		var err error
		log, err = km.auditLog(tx, keyID)
		return err
	})
	return log, err
}

