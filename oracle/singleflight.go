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

package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/json"

	"golang.org/x/sync/singleflight"
)

// SingleflightClient wraps a Client and collapses concurrent, identical
// requests into a single in-flight oracle round trip. KeyManager's
// the public key lookup is logically a lazy, memoized value; this is
// that laziness, expressed as a dedupe decorator rather than a change to
// retry semantics — the wrapped Client still performs no retry.
type SingleflightClient struct {
	inner Client
	group singleflight.Group
}

// NewSingleflightClient wraps inner.
func NewSingleflightClient(inner Client) *SingleflightClient {
	return &SingleflightClient{inner: inner}
}

func (c *SingleflightClient) PublicKey(ctx context.Context, req PublicKeyRequest) (PublicKeyReply, error) {
	key, err := requestKey("pk", req)
	if err != nil {
		return c.inner.PublicKey(ctx, req)
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.inner.PublicKey(ctx, req)
	})
	if err != nil {
		return PublicKeyReply{}, err
	}
	return v.(PublicKeyReply), nil
}

func (c *SingleflightClient) EncryptedKey(ctx context.Context, req EncryptedKeyRequest) (EncryptedKeyReply, error) {
	key, err := requestKey("ek", req)
	if err != nil {
		return c.inner.EncryptedKey(ctx, req)
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.inner.EncryptedKey(ctx, req)
	})
	if err != nil {
		return EncryptedKeyReply{}, err
	}
	return v.(EncryptedKeyReply), nil
}

// requestKey derives a singleflight dedupe key from the request's content
// hash, so two callers racing on the exact same derivation collapse into
// one oracle round trip without a cache that could leak key material
// between unrelated requests.
func requestKey(kind string, req any) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return kind + ":" + string(sum[:]), nil
}
