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

package main

import (
	"encoding/hex"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/erigontech/vetkeys-core/types"
)

func (s *server) handleVerificationKey(w http.ResponseWriter, r *http.Request) {
	pk, err := s.km.VerificationKey(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"public_key": hex.EncodeToString(pk)})
}

type vetKeyRequest struct {
	TransportPublicKey string `json:"transport_public_key"`
}

func (s *server) handleEncryptedVetKey(w http.ResponseWriter, r *http.Request) {
	caller, keyID, err := callerAndKeyID(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	var req vetKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, err)
		return
	}
	tpk, err := hex.DecodeString(req.TransportPublicKey)
	if err != nil {
		writeErr(w, err)
		return
	}
	vk, err := s.km.EncryptedVetKey(r.Context(), caller, keyID, types.TransportKey(tpk))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"encrypted_key": hex.EncodeToString(vk)})
}

func (s *server) handleSharedUserAccessForKey(w http.ResponseWriter, r *http.Request) {
	caller, keyID, err := callerAndKeyID(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	shared, err := s.km.SharedUserAccessForKey(r.Context(), caller, keyID)
	if err != nil {
		writeErr(w, err)
		return
	}
	type dto struct {
		User   string             `json:"user"`
		Rights types.AccessRights `json:"rights"`
	}
	out := make([]dto, len(shared))
	for i, sa := range shared {
		out[i] = dto{User: hex.EncodeToString(sa.User.Bytes()), Rights: sa.Rights}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleUserRights(w http.ResponseWriter, r *http.Request) {
	caller, keyID, err := callerAndKeyID(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	user, err := decodeHexPrincipal(chi.URLParam(r, "user"))
	if err != nil {
		writeErr(w, err)
		return
	}
	ar, err := s.km.UserRights(r.Context(), caller, keyID, user)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ar)
}

type setRightsRequest struct {
	Rights types.Rights `json:"rights"`
	Start  *uint64      `json:"start,omitempty"`
	End    *uint64      `json:"end,omitempty"`
}

func (s *server) handleSetUserRights(w http.ResponseWriter, r *http.Request) {
	caller, keyID, err := callerAndKeyID(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	user, err := decodeHexPrincipal(chi.URLParam(r, "user"))
	if err != nil {
		writeErr(w, err)
		return
	}
	var req setRightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, err)
		return
	}
	rights, err := types.NewAccessRights(req.Rights, req.Start, req.End)
	if err != nil {
		writeErr(w, err)
		return
	}
	prior, err := s.km.SetUserRights(r.Context(), caller, keyID, user, rights)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prior)
}

func (s *server) handleRemoveUser(w http.ResponseWriter, r *http.Request) {
	caller, keyID, err := callerAndKeyID(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	user, err := decodeHexPrincipal(chi.URLParam(r, "user"))
	if err != nil {
		writeErr(w, err)
		return
	}
	prior, err := s.km.RemoveUser(r.Context(), caller, keyID, user)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prior)
}

func (s *server) handleAccessibleSharedKeyIds(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	ids, err := s.km.AccessibleSharedKeyIds(r.Context(), caller)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeKeyIDs(ids))
}

func (s *server) handleAccessibleMaps(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	ids, err := s.em.AccessibleMaps(r.Context(), caller)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeKeyIDs(ids))
}

type insertRequest struct {
	Value string `json:"value"`
}

func (s *server) handleInsert(w http.ResponseWriter, r *http.Request) {
	caller, keyID, mapKey, err := callerKeyIDAndMapKey(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	var req insertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, err)
		return
	}
	value, err := hex.DecodeString(req.Value)
	if err != nil {
		writeErr(w, err)
		return
	}
	prior, err := s.em.Insert(r.Context(), caller, keyID, mapKey, types.EncryptedValue(value))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeEncryptedValue(prior))
}

func (s *server) handleGetValue(w http.ResponseWriter, r *http.Request) {
	caller, keyID, mapKey, err := callerKeyIDAndMapKey(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	val, err := s.em.Get(r.Context(), caller, keyID, mapKey)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeEncryptedValue(val))
}

func (s *server) handleGetValuesForMap(w http.ResponseWriter, r *http.Request) {
	caller, keyID, err := callerAndKeyID(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	entries, err := s.em.GetValuesForMap(r.Context(), caller, keyID)
	if err != nil {
		writeErr(w, err)
		return
	}
	type dto struct {
		MapKey string `json:"map_key"`
		Value  string `json:"value"`
	}
	out := make([]dto, len(entries))
	for i, e := range entries {
		out[i] = dto{MapKey: hex.EncodeToString(e.MapKey.Bytes()), Value: hex.EncodeToString(e.Value)}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleRemoveValue(w http.ResponseWriter, r *http.Request) {
	caller, keyID, mapKey, err := callerKeyIDAndMapKey(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	hard := r.URL.Query().Get("hard") == "true"
	prior, err := s.em.RemoveValue(r.Context(), caller, keyID, mapKey, hard)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeEncryptedValue(prior))
}

func (s *server) handleRemoveMap(w http.ResponseWriter, r *http.Request) {
	caller, keyID, err := callerAndKeyID(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	soft := r.URL.Query().Get("hard") != "true"
	removed, err := s.em.RemoveMap(r.Context(), caller, keyID, soft)
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]string, len(removed))
	for i, k := range removed {
		out[i] = hex.EncodeToString(k.Bytes())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleRestore(w http.ResponseWriter, r *http.Request) {
	caller, keyID, mapKey, err := callerKeyIDAndMapKey(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	val, err := s.em.Restore(r.Context(), caller, keyID, mapKey)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeEncryptedValue(val))
}

func (s *server) handlePurgeTombstone(w http.ResponseWriter, r *http.Request) {
	caller, keyID, mapKey, err := callerKeyIDAndMapKey(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := s.em.PurgeTombstone(r.Context(), caller, keyID, mapKey); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleTombstonesForMap(w http.ResponseWriter, r *http.Request) {
	caller, keyID, err := callerAndKeyID(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	entries, err := s.em.TombstonesForMap(r.Context(), caller, keyID)
	if err != nil {
		writeErr(w, err)
		return
	}
	type dto struct {
		MapKey    string `json:"map_key"`
		Value     string `json:"value"`
		DeletedAt uint64 `json:"deleted_at"`
		DeletedBy string `json:"deleted_by"`
	}
	out := make([]dto, len(entries))
	for i, e := range entries {
		out[i] = dto{
			MapKey:    hex.EncodeToString(e.MapKey.Bytes()),
			Value:     hex.EncodeToString(e.Tombstone.Value),
			DeletedAt: e.Tombstone.DeletedAt,
			DeletedBy: hex.EncodeToString(e.Tombstone.DeletedBy.Bytes()),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	caller, keyID, err := callerAndKeyID(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	log, err := s.km.AuditLog(r.Context(), caller, keyID)
	if err != nil {
		writeErr(w, err)
		return
	}
	type dto struct {
		Type      types.AuditType     `json:"type"`
		Timestamp uint64              `json:"timestamp"`
		Caller    string              `json:"caller"`
		User      string              `json:"user,omitempty"`
		Rights    *types.AccessRights `json:"rights,omitempty"`
	}
	out := make([]dto, len(log.Entries))
	for i, e := range log.Entries {
		d := dto{Type: e.Type, Timestamp: e.Timestamp, Caller: hex.EncodeToString(e.Caller.Bytes()), Rights: e.Rights}
		if e.User != nil {
			d.User = hex.EncodeToString(e.User.Bytes())
		}
		out[i] = d
	}
	writeJSON(w, http.StatusOK, out)
}

// callerAndKeyID decodes the caller header and the {owner}/{name} route
// params shared by every /keys/{owner}/{name}/... handler.
func callerAndKeyID(r *http.Request) (types.Principal, types.KeyId, error) {
	caller, err := callerFrom(r)
	if err != nil {
		return types.Principal{}, types.KeyId{}, err
	}
	keyID, err := keyIDFromPath(chi.URLParam(r, "owner"), chi.URLParam(r, "name"))
	if err != nil {
		return types.Principal{}, types.KeyId{}, err
	}
	return caller, keyID, nil
}

func callerKeyIDAndMapKey(r *http.Request) (types.Principal, types.KeyId, types.Blob32, error) {
	caller, keyID, err := callerAndKeyID(r)
	if err != nil {
		return types.Principal{}, types.KeyId{}, types.Blob32{}, err
	}
	mapKey, err := decodeHexBlob32(chi.URLParam(r, "mapKey"))
	if err != nil {
		return types.Principal{}, types.KeyId{}, types.Blob32{}, err
	}
	return caller, keyID, mapKey, nil
}

func encodeKeyIDs(ids []types.KeyId) []map[string]string {
	out := make([]map[string]string, len(ids))
	for i, k := range ids {
		out[i] = map[string]string{
			"owner": hex.EncodeToString(k.Owner.Bytes()),
			"name":  hex.EncodeToString(k.Name.Bytes()),
		}
	}
	return out
}

func encodeEncryptedValue(v *types.EncryptedValue) map[string]string {
	if v == nil {
		return nil
	}
	return map[string]string{"value": hex.EncodeToString(*v)}
}
