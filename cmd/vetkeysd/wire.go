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

// Command vetkeysd is a thin façade binary: it wires kv.DB, oracle.Client,
// keymanager.KeyManager and encryptedmaps.EncryptedMaps together per
// config.Config and exposes them over HTTP. No authorization or storage
// logic lives in this package; it only translates wire requests into
// core calls and core errors into status codes.
package main

import (
	"encoding/hex"
	"fmt"

	"github.com/erigontech/vetkeys-core/types"
)

// decodeHexPrincipal decodes a hex-encoded caller/user identity. The
// empty string decodes to types.Anonymous, matching how an unauthenticated
// HTTP caller is represented across every handler.
func decodeHexPrincipal(s string) (types.Principal, error) {
	if s == "" {
		return types.Anonymous, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return types.Principal{}, fmt.Errorf("decode principal: %w", err)
	}
	return types.PrincipalFromBytes(b), nil
}

// decodeHexBlob32 decodes a hex-encoded KeyName or MapKey.
func decodeHexBlob32(s string) (types.Blob32, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return types.Blob32{}, fmt.Errorf("decode blob32: %w", err)
	}
	return types.NewBlob32(b)
}

// keyIDFromPath builds a types.KeyId from its two path-level hex
// components.
func keyIDFromPath(ownerHex, nameHex string) (types.KeyId, error) {
	owner, err := decodeHexPrincipal(ownerHex)
	if err != nil {
		return types.KeyId{}, err
	}
	name, err := decodeHexBlob32(nameHex)
	if err != nil {
		return types.KeyId{}, err
	}
	return types.KeyId{Owner: owner, Name: name}, nil
}
