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
	"fmt"

	"go.uber.org/zap"

	"github.com/erigontech/vetkeys-core/clock"
	"github.com/erigontech/vetkeys-core/errs"
	"github.com/erigontech/vetkeys-core/kv"
	"github.com/erigontech/vetkeys-core/metrics"
	"github.com/erigontech/vetkeys-core/oracle"
)

// Config configures one KeyManager instance. DomainSeparator and
// OracleClient have no default and must be set; everything else falls
// back to a usable zero behavior.
type Config struct {
	// DomainSeparator is mixed into every derivation-path request to
	// isolate this system's keys from others sharing the oracle.
	DomainSeparator string

	// OracleClient is the only seam reaching the external key-derivation
	// oracle. Required.
	OracleClient oracle.Client

	// OracleKeyID overrides the default {BLS12-381, "insecure_test_key_1"}.
	OracleKeyID oracle.KeyId

	// Clock supplies now(); defaults to clock.System{}.
	Clock clock.Source

	// AuditEnabled gates whether audit_logs is written at all. When
	// false, the audit append helper never evaluates its entry thunk.
	AuditEnabled bool

	// Logger defaults to zap.NewNop().
	Logger *zap.Logger

	// Metrics is optional; a nil collector is always safe to call.
	Metrics *metrics.Collector
}

// KeyManager is the explicit "Core" value: authorization
// predicates, the access_control/shared_keys tables, the optional audit
// log, and the derivation-request protocol to the oracle. It holds no
// package-level state; tests construct as many disposable instances as
// they want over kv/memdb.
type KeyManager struct {
	db              kv.DB
	oracleClient    oracle.Client
	oracleKeyID     oracle.KeyId
	clock           clock.Source
	domainSeparator string
	auditEnabled    bool
	logger          *zap.Logger
	metrics         *metrics.Collector
}

// Init persists cfg.DomainSeparator if this is the first Init against db.
// It creates no tables itself: kv/db.go's AllTables are created by the
// backend (memdb.New, boltdb.Open). A second Init call against the
// same db handle fails with errs.ErrAlreadyInitialized and makes no
// further state change.
func Init(ctx context.Context, db kv.DB, cfg Config) (*KeyManager, error) {
	if cfg.OracleClient == nil {
		return nil, fmt.Errorf("%w: OracleClient is required", errs.ErrInvalidInput)
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.OracleKeyID == (oracle.KeyId{}) {
		cfg.OracleKeyID = oracle.DefaultKeyId
	}

	err := db.Update(ctx, func(tx kv.RwTx) error {
		_, exists, err := tx.Get(kv.TableMeta, kv.MetaDomainSeparatorKey)
		if err != nil {
			return err
		}
		if exists {
			return errs.ErrAlreadyInitialized
		}
		return tx.Put(kv.TableMeta, kv.MetaDomainSeparatorKey, []byte(cfg.DomainSeparator))
	})
	if err != nil {
		return nil, err
	}

	return &KeyManager{
		db:              db,
		oracleClient:    cfg.OracleClient,
		oracleKeyID:     cfg.OracleKeyID,
		clock:           cfg.Clock,
		domainSeparator: cfg.DomainSeparator,
		auditEnabled:    cfg.AuditEnabled,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
	}, nil
}

// DB returns the underlying kv.DB, for EncryptedMaps to share the same
// durable handle without re-opening it.
func (km *KeyManager) DB() kv.DB { return km.db }

// Clock returns the configured time source, for EncryptedMaps to stamp
// tombstones with the same now() KeyManager uses.
func (km *KeyManager) Clock() clock.Source { return km.clock }
