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
	"time"

	"github.com/erigontech/vetkeys-core/kv"
	"github.com/erigontech/vetkeys-core/oracle"
	"github.com/erigontech/vetkeys-core/types"
)

// VerificationKey issues a public_key oracle request with derivation path
// [domain_separator] and returns the verification key bytes. It is
// ungated — no precondition gates it — and performs no durable
// write, so it opens no transaction of its own; callers wanting dedupe of
// concurrent identical calls should wrap the configured oracle.Client in
// an oracle.SingleflightClient, not rely on KeyManager for it.
func (km *KeyManager) VerificationKey(ctx context.Context) (types.VerificationKey, error) {
	start := time.Now()
	reply, err := km.oracleClient.PublicKey(ctx, oracle.PublicKeyRequest{
		DerivationPath: [][]byte{[]byte(km.domainSeparator)},
		KeyId:          km.oracleKeyID,
	})
	km.metrics.ObserveOracleLatency("public_key", outcomeLabel(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	return types.VerificationKey(reply.PublicKey), nil
}

func outcomeLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// EncryptedVetKey builds the derivation identity owner_bytes‖name_bytes,
// issues an encrypted_key oracle request, and audits AccessVetKey with
// the caller's effective rights. If this is the owner's first touch of a
// KeyId that currently has no shared users, it additionally audits
// Created. KeyId itself has no explicit creation record; the other
// Created entries come from encryptedmaps.Insert's first write of a value.
func (km *KeyManager) EncryptedVetKey(ctx context.Context, caller types.Principal, keyID types.KeyId, transportPK types.TransportKey) (types.VetKey, error) {
	err := km.db.Update(ctx, func(tx kv.RwTx) error {
		ar, err := km.canRead(tx, caller, keyID)
		if err != nil {
			return err
		}

		firstTouch, err := km.isFirstOwnerTouch(tx, caller, keyID)
		if err != nil {
			return err
		}

		if err := km.appendAudit(tx, keyID, func() types.AuditEntry {
			return types.AuditEntry{
				Type:      types.AuditAccessVetKey,
				Timestamp: km.clock.Now(),
				Caller:    caller,
				Rights:    &ar,
			}
		}); err != nil {
			return err
		}

		if firstTouch {
			return km.appendAudit(tx, keyID, func() types.AuditEntry {
				return types.AuditEntry{
					Type:      types.AuditCreated,
					Timestamp: km.clock.Now(),
					Caller:    caller,
				}
			})
		}
		return nil
	})
	km.logResult("encrypted_vetkey", keyID, caller, err)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	reply, err := km.oracleClient.EncryptedKey(ctx, oracle.EncryptedKeyRequest{
		DerivationID:            keyID.DerivationID(),
		PublicKeyDerivationPath: [][]byte{[]byte(km.domainSeparator)},
		KeyId:                   km.oracleKeyID,
		EncryptionPublicKey:     transportPK,
	})
	km.metrics.ObserveOracleLatency("encrypted_key", outcomeLabel(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	return types.VetKey(reply.EncryptedKey), nil
}

// isFirstOwnerTouch reports whether caller is keyID's owner, keyID's
// audit log is empty, and keyID has no shared users yet — the exact
// condition that triggers the implicit Created audit event.
func (km *KeyManager) isFirstOwnerTouch(tx kv.RwTx, caller types.Principal, keyID types.KeyId) (bool, error) {
	if !caller.Equal(keyID.Owner) {
		return false, nil
	}

	log, err := km.auditLog(tx, keyID)
	if err != nil {
		return false, err
	}
	if len(log.Entries) > 0 {
		return false, nil
	}

	hasShared := false
	if err := kv.ScanPrefix(tx, kv.TableSharedKeys, sharedKeysPrefix(keyID), func(_, _ []byte) (bool, error) {
		hasShared = true
		return false, nil
	}); err != nil {
		return false, err
	}
	return !hasShared, nil
}
