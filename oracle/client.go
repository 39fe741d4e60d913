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

import "context"

// Client is the only seam KeyManager uses to reach the external oracle.
// A failed call is fatal to the in-flight request; the core never retries
// — retry policy, if any, belongs to a Client decorator, not to
// KeyManager. SingleflightClient, the one decorator here, only collapses
// concurrent identical calls and does not retry.
type Client interface {
	PublicKey(ctx context.Context, req PublicKeyRequest) (PublicKeyReply, error)
	EncryptedKey(ctx context.Context, req EncryptedKeyRequest) (EncryptedKeyReply, error)
}
