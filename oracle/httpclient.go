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
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/erigontech/vetkeys-core/errs"
)

// HTTPClient is a JSON-over-HTTP Client talking to an oracle that exposes
// POST /public_key and POST /encrypted_key. It performs no retry.
type HTTPClient struct {
	BaseURL string
	HTTP    *http.Client
}

// NewHTTPClient returns an HTTPClient using http.DefaultClient if hc is
// nil.
func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPClient{BaseURL: baseURL, HTTP: hc}
}

func (c *HTTPClient) PublicKey(ctx context.Context, req PublicKeyRequest) (PublicKeyReply, error) {
	var reply PublicKeyReply
	if err := c.do(ctx, "/public_key", req, &reply); err != nil {
		return PublicKeyReply{}, err
	}
	return reply, nil
}

func (c *HTTPClient) EncryptedKey(ctx context.Context, req EncryptedKeyRequest) (EncryptedKeyReply, error) {
	var reply EncryptedKeyReply
	if err := c.do(ctx, "/encrypted_key", req, &reply); err != nil {
		return EncryptedKeyReply{}, err
	}
	return reply, nil
}

func (c *HTTPClient) do(ctx context.Context, path string, body, reply any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: encoding oracle request: %v", errs.ErrOracleFailure, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: building oracle request: %v", errs.ErrOracleFailure, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrOracleFailure, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading oracle reply: %v", errs.ErrOracleFailure, err)
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: oracle returned status %d: %s", errs.ErrOracleFailure, resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, reply); err != nil {
		return fmt.Errorf("%w: decoding oracle reply: %v", errs.ErrOracleFailure, err)
	}
	return nil
}
