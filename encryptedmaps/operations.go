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

	"github.com/erigontech/vetkeys-core/kv"
	"github.com/erigontech/vetkeys-core/types"
)

// MapEntry pairs a MapKey with its stored value, returned by
// GetValuesForMap.
type MapEntry struct {
	MapKey types.Blob32
	Value  types.EncryptedValue
}

// TombstoneEntry pairs a MapKey with its Tombstone, returned by
// TombstonesForMap.
type TombstoneEntry struct {
	MapKey    types.Blob32
	Tombstone types.Tombstone
}

func getValue(tx kv.Tx, keyID types.KeyId, mapKey types.Blob32) (types.EncryptedValue, bool, error) {
	raw, ok, err := tx.Get(kv.TableMapKeyVals, mapEntryKey(keyID, mapKey))
	if err != nil || !ok {
		return nil, false, err
	}
	return types.EncryptedValue(raw), true, nil
}

func putValue(tx kv.RwTx, keyID types.KeyId, mapKey types.Blob32, value types.EncryptedValue) error {
	return tx.Put(kv.TableMapKeyVals, mapEntryKey(keyID, mapKey), value)
}

func deleteValue(tx kv.RwTx, keyID types.KeyId, mapKey types.Blob32) error {
	return tx.Delete(kv.TableMapKeyVals, mapEntryKey(keyID, mapKey))
}

func getTombstone(tx kv.Tx, keyID types.KeyId, mapKey types.Blob32) (types.Tombstone, bool, error) {
	raw, ok, err := tx.Get(kv.TableTombstones, mapEntryKey(keyID, mapKey))
	if err != nil || !ok {
		return types.Tombstone{}, false, err
	}
	var ts types.Tombstone
	if err := ts.UnmarshalBinary(raw); err != nil {
		return types.Tombstone{}, false, err
	}
	return ts, true, nil
}

func putTombstone(tx kv.RwTx, keyID types.KeyId, mapKey types.Blob32, ts types.Tombstone) error {
	encoded, err := ts.MarshalBinary()
	if err != nil {
		return err
	}
	return tx.Put(kv.TableTombstones, mapEntryKey(keyID, mapKey), encoded)
}

func deleteTombstone(tx kv.RwTx, keyID types.KeyId, mapKey types.Blob32) error {
	return tx.Delete(kv.TableTombstones, mapEntryKey(keyID, mapKey))
}

// Insert upserts mapkey_vals(keyID, mapKey), gated by the write
// predicate, auditing Created on first write or Updated thereafter. Any
// tombstone for (keyID, mapKey) is discarded, so the pair never sits in
// both mapkey_vals and tombstones. Returns the prior value, if any.
func (em *EncryptedMaps) Insert(ctx context.Context, caller types.Principal, keyID types.KeyId, mapKey types.Blob32, value types.EncryptedValue) (*types.EncryptedValue, error) {
	var prior *types.EncryptedValue
	err := em.km.DB().Update(ctx, func(tx kv.RwTx) error {
		if _, err := em.km.CanWrite(tx, caller, keyID); err != nil {
			return err
		}

		existing, ok, err := getValue(tx, keyID, mapKey)
		if err != nil {
			return err
		}
		auditType := types.AuditCreated
		if ok {
			prior = &existing
			auditType = types.AuditUpdated
		}

		if err := putValue(tx, keyID, mapKey, value); err != nil {
			return err
		}
		if err := deleteTombstone(tx, keyID, mapKey); err != nil {
			return err
		}

		return em.km.AppendAudit(tx, keyID, func() types.AuditEntry {
			return types.AuditEntry{Type: auditType, Timestamp: em.km.Clock().Now(), Caller: caller}
		})
	})
	em.logResult("insert", keyID, caller, err)
	if err != nil {
		return nil, err
	}
	return prior, nil
}

// Get looks up mapkey_vals(keyID, mapKey), gated by the read predicate.
func (em *EncryptedMaps) Get(ctx context.Context, caller types.Principal, keyID types.KeyId, mapKey types.Blob32) (*types.EncryptedValue, error) {
	var out *types.EncryptedValue
	err := em.km.DB().View(ctx, func(tx kv.Tx) error {
		if _, err := em.km.CanRead(tx, caller, keyID); err != nil {
			return err
		}
		value, ok, err := getValue(tx, keyID, mapKey)
		if err != nil || !ok {
			return err
		}
		out = &value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetValuesForMap range-scans mapkey_vals by KeyId prefix, gated by the
// read predicate.
func (em *EncryptedMaps) GetValuesForMap(ctx context.Context, caller types.Principal, keyID types.KeyId) ([]MapEntry, error) {
	var out []MapEntry
	err := em.km.DB().View(ctx, func(tx kv.Tx) error {
		if _, err := em.km.CanRead(tx, caller, keyID); err != nil {
			return err
		}
		prefix := mapPrefix(keyID)
		return kv.ScanPrefix(tx, kv.TableMapKeyVals, prefix, func(key, value []byte) (bool, error) {
			mapKey, err := decodeMapKey(key, len(prefix))
			if err != nil {
				return false, err
			}
			out = append(out, MapEntry{MapKey: mapKey, Value: types.EncryptedValue(value)})
			return true, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveValue removes mapkey_vals(keyID, mapKey), gated by the write
// predicate. hard erases it outright and audits Deleted; soft moves it
// to tombstones (preserving the deleted_at/deleted_by metadata) and
// audits SoftDeleted. Returns the removed value, or nil if absent
// as part of the value's soft-delete lifecycle.
func (em *EncryptedMaps) RemoveValue(ctx context.Context, caller types.Principal, keyID types.KeyId, mapKey types.Blob32, hard bool) (*types.EncryptedValue, error) {
	var removed *types.EncryptedValue
	err := em.km.DB().Update(ctx, func(tx kv.RwTx) error {
		if _, err := em.km.CanWrite(tx, caller, keyID); err != nil {
			return err
		}

		value, ok, err := getValue(tx, keyID, mapKey)
		if err != nil || !ok {
			return err
		}
		removed = &value

		if err := deleteValue(tx, keyID, mapKey); err != nil {
			return err
		}

		if hard {
			return em.km.AppendAudit(tx, keyID, func() types.AuditEntry {
				return types.AuditEntry{Type: types.AuditDeleted, Timestamp: em.km.Clock().Now(), Caller: caller}
			})
		}

		now := em.km.Clock().Now()
		if err := putTombstone(tx, keyID, mapKey, types.Tombstone{
			Value:     value,
			DeletedAt: now,
			DeletedBy: caller,
		}); err != nil {
			return err
		}
		return em.km.AppendAudit(tx, keyID, func() types.AuditEntry {
			return types.AuditEntry{Type: types.AuditSoftDeleted, Timestamp: now, Caller: caller}
		})
	})
	em.logResult("remove_value", keyID, caller, err)
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// RemoveMap removes every mapkey_vals entry for keyID, gated by the write
// predicate. If non-empty, it records exactly one audit event covering
// the whole batch and, for soft delete, inserts one tombstone per
// removed value — all inside the single RwTx, so whether a failure midway
// leaves a partial removal behind is decided by the backend: kv/boltdb
// discards every mutation of a failed Update, kv/memdb does not undo the
// writes made before the error. An empty map produces no
// mutation and no audit event. Returns the removed MapKeys.
func (em *EncryptedMaps) RemoveMap(ctx context.Context, caller types.Principal, keyID types.KeyId, soft bool) ([]types.Blob32, error) {
	var removed []types.Blob32
	err := em.km.DB().Update(ctx, func(tx kv.RwTx) error {
		if _, err := em.km.CanWrite(tx, caller, keyID); err != nil {
			return err
		}

		prefix := mapPrefix(keyID)
		var entries []MapEntry
		if err := kv.ScanPrefix(tx, kv.TableMapKeyVals, prefix, func(key, value []byte) (bool, error) {
			mapKey, err := decodeMapKey(key, len(prefix))
			if err != nil {
				return false, err
			}
			entries = append(entries, MapEntry{MapKey: mapKey, Value: types.EncryptedValue(value)})
			return true, nil
		}); err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		now := em.km.Clock().Now()
		for _, e := range entries {
			if err := deleteValue(tx, keyID, e.MapKey); err != nil {
				return err
			}
			if soft {
				if err := putTombstone(tx, keyID, e.MapKey, types.Tombstone{
					Value:     e.Value,
					DeletedAt: now,
					DeletedBy: caller,
				}); err != nil {
					return err
				}
			}
			removed = append(removed, e.MapKey)
		}

		auditType := types.AuditDeleted
		if soft {
			auditType = types.AuditSoftDeleted
		}
		return em.km.AppendAudit(tx, keyID, func() types.AuditEntry {
			return types.AuditEntry{Type: auditType, Timestamp: now, Caller: caller}
		})
	})
	em.logResult("remove_map", keyID, caller, err)
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// Restore moves a tombstoned value back to mapkey_vals, gated by the
// write predicate. Returns nil if no tombstone exists for mapKey.
func (em *EncryptedMaps) Restore(ctx context.Context, caller types.Principal, keyID types.KeyId, mapKey types.Blob32) (*types.EncryptedValue, error) {
	var out *types.EncryptedValue
	err := em.km.DB().Update(ctx, func(tx kv.RwTx) error {
		if _, err := em.km.CanWrite(tx, caller, keyID); err != nil {
			return err
		}

		ts, ok, err := getTombstone(tx, keyID, mapKey)
		if err != nil || !ok {
			return err
		}

		if err := putValue(tx, keyID, mapKey, ts.Value); err != nil {
			return err
		}
		if err := deleteTombstone(tx, keyID, mapKey); err != nil {
			return err
		}
		out = &ts.Value

		return em.km.AppendAudit(tx, keyID, func() types.AuditEntry {
			return types.AuditEntry{Type: types.AuditRestored, Timestamp: em.km.Clock().Now(), Caller: caller}
		})
	})
	em.logResult("restore", keyID, caller, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PurgeTombstone permanently erases a tombstone, gated by the manage
// predicate. It is a no-op (not an error) if no tombstone exists.
func (em *EncryptedMaps) PurgeTombstone(ctx context.Context, caller types.Principal, keyID types.KeyId, mapKey types.Blob32) error {
	err := em.km.DB().Update(ctx, func(tx kv.RwTx) error {
		if _, err := em.km.CanManage(tx, caller, keyID); err != nil {
			return err
		}

		_, ok, err := getTombstone(tx, keyID, mapKey)
		if err != nil || !ok {
			return err
		}

		if err := deleteTombstone(tx, keyID, mapKey); err != nil {
			return err
		}
		return em.km.AppendAudit(tx, keyID, func() types.AuditEntry {
			return types.AuditEntry{Type: types.AuditDeleted, Timestamp: em.km.Clock().Now(), Caller: caller}
		})
	})
	em.logResult("purge_tombstone", keyID, caller, err)
	return err
}

// TombstonesForMap range-scans tombstones by KeyId prefix, gated by the
// read predicate.
func (em *EncryptedMaps) TombstonesForMap(ctx context.Context, caller types.Principal, keyID types.KeyId) ([]TombstoneEntry, error) {
	var out []TombstoneEntry
	err := em.km.DB().View(ctx, func(tx kv.Tx) error {
		if _, err := em.km.CanRead(tx, caller, keyID); err != nil {
			return err
		}
		prefix := mapPrefix(keyID)
		return kv.ScanPrefix(tx, kv.TableTombstones, prefix, func(key, value []byte) (bool, error) {
			mapKey, err := decodeMapKey(key, len(prefix))
			if err != nil {
				return false, err
			}
			var ts types.Tombstone
			if err := ts.UnmarshalBinary(value); err != nil {
				return false, err
			}
			out = append(out, TombstoneEntry{MapKey: mapKey, Tombstone: ts})
			return true, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AccessibleMaps returns the union of caller's shared KeyIds and every
// KeyId caller owns with at least one live mapkey_vals entry, deduplicated
// Tombstones alone never make a map "non-empty" — only
// mapkey_vals is scanned for the owned half of the union.
func (em *EncryptedMaps) AccessibleMaps(ctx context.Context, caller types.Principal) ([]types.KeyId, error) {
	// types.KeyId embeds types.Principal, which holds a []byte and so is
	// not itself comparable; dedup on the encoded byte key instead.
	seen := make(map[string]struct{})
	var out []types.KeyId
	add := func(k types.KeyId) {
		enc := string(k.Encode())
		if _, ok := seen[enc]; ok {
			return
		}
		seen[enc] = struct{}{}
		out = append(out, k)
	}

	err := em.km.DB().View(ctx, func(tx kv.Tx) error {
		shared, err := em.km.SharedKeyIdsTx(tx, caller)
		if err != nil {
			return err
		}
		for _, k := range shared {
			add(k)
		}

		ownerPrefix := types.OwnerKeyPrefix(caller)
		return kv.ScanPrefix(tx, kv.TableMapKeyVals, ownerPrefix, func(key, _ []byte) (bool, error) {
			name, err := decodeOwnedName(key[len(ownerPrefix):])
			if err != nil {
				return false, err
			}
			add(types.KeyId{Owner: caller, Name: name})
			return true, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
