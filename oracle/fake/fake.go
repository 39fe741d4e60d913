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

// Package fake is a deterministic oracle.Client double for tests: no
// network, no real BLS derivation, just enough structure for tests to
// assert on request shape and for round-trips to be observable.
package fake

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/erigontech/vetkeys-core/errs"
	"github.com/erigontech/vetkeys-core/oracle"
)

// Client is a fake oracle.Client. The zero value is usable.
type Client struct {
	// FailNext, if >0, makes the next N calls (across both methods)
	// return errs.ErrOracleFailure, decrementing by one each call. Used
	// to test OracleFailure propagation without a real oracle outage.
	FailNext atomic.Int32

	mu          sync.Mutex
	PublicCalls []oracle.PublicKeyRequest
	KeyCalls    []oracle.EncryptedKeyRequest
}

func (c *Client) PublicKey(_ context.Context, req oracle.PublicKeyRequest) (oracle.PublicKeyReply, error) {
	if c.shouldFail() {
		return oracle.PublicKeyReply{}, fmt.Errorf("%w: fake induced failure", errs.ErrOracleFailure)
	}
	c.mu.Lock()
	c.PublicCalls = append(c.PublicCalls, req)
	c.mu.Unlock()

	h := sha256.New()
	for _, seg := range req.DerivationPath {
		h.Write(seg)
	}
	h.Write([]byte(req.KeyId.Curve))
	h.Write([]byte(req.KeyId.Name))
	return oracle.PublicKeyReply{PublicKey: h.Sum(nil)}, nil
}

func (c *Client) EncryptedKey(_ context.Context, req oracle.EncryptedKeyRequest) (oracle.EncryptedKeyReply, error) {
	if c.shouldFail() {
		return oracle.EncryptedKeyReply{}, fmt.Errorf("%w: fake induced failure", errs.ErrOracleFailure)
	}
	c.mu.Lock()
	c.KeyCalls = append(c.KeyCalls, req)
	c.mu.Unlock()

	h := sha256.New()
	h.Write(req.DerivationID)
	h.Write(req.EncryptionPublicKey)
	return oracle.EncryptedKeyReply{EncryptedKey: h.Sum(nil)}, nil
}

func (c *Client) shouldFail() bool {
	for {
		n := c.FailNext.Load()
		if n <= 0 {
			return false
		}
		if c.FailNext.CompareAndSwap(n, n-1) {
			return true
		}
	}
}
