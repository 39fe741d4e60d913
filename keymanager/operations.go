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
	"fmt"

	"go.uber.org/zap"

	"github.com/erigontech/vetkeys-core/errs"
	"github.com/erigontech/vetkeys-core/kv"
	"github.com/erigontech/vetkeys-core/types"
)

// SharedAccess pairs a grantee with its stored AccessRights, returned by
// SharedUserAccessForKey.
type SharedAccess struct {
	User   types.Principal
	Rights types.AccessRights
}

// AccessibleSharedKeyIds returns every KeyId for which caller holds an
// explicit access_control entry, via a prefix range scan keyed by caller
// It does not filter by time-window liveness: the scan
// reports what is shared, live or not, matching the source's contract.
func (km *KeyManager) AccessibleSharedKeyIds(ctx context.Context, caller types.Principal) ([]types.KeyId, error) {
	var out []types.KeyId
	err := km.db.View(ctx, func(tx kv.Tx) error {
		ids, err := km.SharedKeyIdsTx(tx, caller)
		out = ids
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SharedKeyIdsTx is AccessibleSharedKeyIds's scan, exposed to run inside a
// transaction a caller already holds — encryptedmaps.AccessibleMaps needs
// this alongside its own mapkey_vals scan within one transaction, since
// kv/memdb's View/Update are not reentrant.
func (km *KeyManager) SharedKeyIdsTx(tx kv.Tx, caller types.Principal) ([]types.KeyId, error) {
	var out []types.KeyId
	prefix := accessControlPrefix(caller)
	err := kv.ScanPrefix(tx, kv.TableAccessControl, prefix, func(key, _ []byte) (bool, error) {
		keyID, err := decodeKeyIdFromEncoded(key[len(prefix):])
		if err != nil {
			return false, err
		}
		out = append(out, keyID)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SharedUserAccessForKey returns every (user, rights) pair shared on
// keyID, gated by can_read(caller, keyID).
func (km *KeyManager) SharedUserAccessForKey(ctx context.Context, caller types.Principal, keyID types.KeyId) ([]SharedAccess, error) {
	var out []SharedAccess
	err := km.db.View(ctx, func(tx kv.Tx) error {
		if _, err := km.canRead(tx, caller, keyID); err != nil {
			return err
		}

		prefix := sharedKeysPrefix(keyID)
		return kv.ScanPrefix(tx, kv.TableSharedKeys, prefix, func(key, _ []byte) (bool, error) {
			user, err := decodePrincipalKey(key[len(prefix):])
			if err != nil {
				return false, err
			}
			ar, ok, err := lookupAccessControl(tx, user, keyID)
			if err != nil {
				return false, err
			}
			if ok {
				out = append(out, SharedAccess{User: user, Rights: ar})
			}
			return true, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UserRights returns user's effective rights on keyID if live, gated by
// can_read(caller, keyID). The effective rights are resolved the same way
// can_read resolves them for user: the owner's implicit ReadWriteManage,
// else user's own live grant, else a live anonymous grant.
func (km *KeyManager) UserRights(ctx context.Context, caller types.Principal, keyID types.KeyId, user types.Principal) (*types.AccessRights, error) {
	var out *types.AccessRights
	err := km.db.View(ctx, func(tx kv.Tx) error {
		if _, err := km.canRead(tx, caller, keyID); err != nil {
			return err
		}
		ar, err := km.canRead(tx, user, keyID)
		if errors.Is(err, errs.ErrUnauthorized) {
			return nil
		}
		if err != nil {
			return err
		}
		out = &ar
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetUserRights upserts both shared_keys and access_control for (keyID,
// user), gated by can_manage(caller, keyID); an owner may never
// target itself. Returns the prior rights, if any.
func (km *KeyManager) SetUserRights(ctx context.Context, caller types.Principal, keyID types.KeyId, user types.Principal, rights types.AccessRights) (*types.AccessRights, error) {
	if caller.Equal(keyID.Owner) && user.Equal(keyID.Owner) {
		return nil, fmt.Errorf("%w: cannot change/remove key owner", errs.ErrInvalidInput)
	}

	var prior *types.AccessRights
	err := km.db.Update(ctx, func(tx kv.RwTx) error {
		if _, err := km.canManage(tx, caller, keyID); err != nil {
			return err
		}

		if ar, ok, err := lookupAccessControl(tx, user, keyID); err != nil {
			return err
		} else if ok {
			prior = &ar
		}

		if err := km.putGrant(tx, user, keyID, rights); err != nil {
			return err
		}

		return km.appendAudit(tx, keyID, func() types.AuditEntry {
			ar := rights
			return types.AuditEntry{
				Type:      types.AuditShare,
				Timestamp: km.clock.Now(),
				Caller:    caller,
				User:      &user,
				Rights:    &ar,
			}
		})
	})
	km.logResult("set_user_rights", keyID, caller, err)
	if err != nil {
		return nil, err
	}
	return prior, nil
}

// RemoveUser removes both shared_keys and access_control entries for
// (keyID, user), gated the same way as SetUserRights. Returns the prior
// rights, if any. It never audits Deleted for a self-targeting owner
// removal: that state is unreachable given the owner-implicit-rights and
// no-self-targeting invariants, so the
// branch the source carried for it is simply not implemented here.
func (km *KeyManager) RemoveUser(ctx context.Context, caller types.Principal, keyID types.KeyId, user types.Principal) (*types.AccessRights, error) {
	if caller.Equal(keyID.Owner) && user.Equal(keyID.Owner) {
		return nil, fmt.Errorf("%w: cannot change/remove key owner", errs.ErrInvalidInput)
	}

	var prior *types.AccessRights
	err := km.db.Update(ctx, func(tx kv.RwTx) error {
		if _, err := km.canManage(tx, caller, keyID); err != nil {
			return err
		}

		ar, ok, err := lookupAccessControl(tx, user, keyID)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		prior = &ar

		if err := km.deleteGrant(tx, user, keyID); err != nil {
			return err
		}

		return km.appendAudit(tx, keyID, func() types.AuditEntry {
			return types.AuditEntry{
				Type:      types.AuditUnshare,
				Timestamp: km.clock.Now(),
				Caller:    caller,
				User:      &user,
			}
		})
	})
	km.logResult("remove_user", keyID, caller, err)
	if err != nil {
		return nil, err
	}
	return prior, nil
}

// putGrant centralizes the access_control/shared_keys dual write so the
// two tables' set-equivalence can only be broken in one place, not at
// every call site.
func (km *KeyManager) putGrant(tx kv.RwTx, user types.Principal, keyID types.KeyId, rights types.AccessRights) error {
	encoded, err := rights.MarshalBinary()
	if err != nil {
		return err
	}
	if err := tx.Put(kv.TableAccessControl, accessControlKey(user, keyID), encoded); err != nil {
		return err
	}
	return tx.Put(kv.TableSharedKeys, sharedKeysKey(keyID, user), []byte{})
}

// deleteGrant is putGrant's inverse, keeping that same centralization
// on removal.
func (km *KeyManager) deleteGrant(tx kv.RwTx, user types.Principal, keyID types.KeyId) error {
	if err := tx.Delete(kv.TableAccessControl, accessControlKey(user, keyID)); err != nil {
		return err
	}
	return tx.Delete(kv.TableSharedKeys, sharedKeysKey(keyID, user))
}

// logResult records one state-changing operation's outcome: a Warn line
// plus an unauthorized-attempt metric on errs.ErrUnauthorized, an Info
// line on success, nothing on other errors (those are the caller's to
// log, since they're not authorization- or audit-relevant events).
func (km *KeyManager) logResult(op string, keyID types.KeyId, caller types.Principal, err error) {
	switch {
	case errors.Is(err, errs.ErrUnauthorized):
		km.metrics.ObserveUnauthorized(op)
		km.metrics.ObserveOp(op, "unauthorized")
		km.logger.Warn(op+" rejected", zap.String("caller", caller.String()), zap.String("owner", keyID.Owner.String()))
	case err == nil:
		km.metrics.ObserveOp(op, "ok")
		km.logger.Info(op, zap.String("caller", caller.String()), zap.String("owner", keyID.Owner.String()))
	default:
		km.metrics.ObserveOp(op, "error")
	}
}
