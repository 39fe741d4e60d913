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
	"errors"

	"go.uber.org/zap"

	"github.com/erigontech/vetkeys-core/errs"
	"github.com/erigontech/vetkeys-core/keymanager"
	"github.com/erigontech/vetkeys-core/metrics"
	"github.com/erigontech/vetkeys-core/types"
)

// Config configures one EncryptedMaps instance.
type Config struct {
	// Logger defaults to zap.NewNop().
	Logger *zap.Logger

	// Metrics is optional; a nil collector is always safe to call.
	Metrics *metrics.Collector
}

// EncryptedMaps owns mapkey_vals and tombstones and delegates every
// authorization decision to the KeyManager it wraps. It
// shares the KeyManager's kv.DB so both cores' tables live in the same
// durable handle and every public method still opens exactly one
// transaction.
type EncryptedMaps struct {
	km      *keymanager.KeyManager
	logger  *zap.Logger
	metrics *metrics.Collector
}

// New wraps km. km must already be initialized.
func New(km *keymanager.KeyManager, cfg Config) *EncryptedMaps {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &EncryptedMaps{km: km, logger: cfg.Logger, metrics: cfg.Metrics}
}

// logResult mirrors keymanager's own logResult: a Warn line plus an
// unauthorized-attempt metric on errs.ErrUnauthorized, an Info line on
// success, nothing otherwise.
func (em *EncryptedMaps) logResult(op string, keyID types.KeyId, caller types.Principal, err error) {
	switch {
	case errors.Is(err, errs.ErrUnauthorized):
		em.metrics.ObserveUnauthorized(op)
		em.metrics.ObserveOp(op, "unauthorized")
		em.logger.Warn(op+" rejected", zap.String("caller", caller.String()), zap.String("owner", keyID.Owner.String()))
	case err == nil:
		em.metrics.ObserveOp(op, "ok")
		em.logger.Info(op, zap.String("caller", caller.String()), zap.String("owner", keyID.Owner.String()))
	default:
		em.metrics.ObserveOp(op, "error")
	}
}
