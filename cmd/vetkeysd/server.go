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
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/erigontech/vetkeys-core/encryptedmaps"
	"github.com/erigontech/vetkeys-core/errs"
	"github.com/erigontech/vetkeys-core/keymanager"
	"github.com/erigontech/vetkeys-core/types"
)

// server holds the two wired cores and nothing else; every handler is a
// thin decode/call/encode shim around them.
type server struct {
	km     *keymanager.KeyManager
	em     *encryptedmaps.EncryptedMaps
	logger *zap.Logger
}

func newRouter(s *server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/verification_key", s.handleVerificationKey)

	r.Route("/keys/{owner}/{name}", func(r chi.Router) {
		r.Post("/vetkey", s.handleEncryptedVetKey)
		r.Get("/rights", s.handleSharedUserAccessForKey)
		r.Get("/rights/{user}", s.handleUserRights)
		r.Put("/rights/{user}", s.handleSetUserRights)
		r.Delete("/rights/{user}", s.handleRemoveUser)

		r.Get("/maps", s.handleGetValuesForMap)
		r.Get("/maps/{mapKey}", s.handleGetValue)
		r.Put("/maps/{mapKey}", s.handleInsert)
		r.Delete("/maps/{mapKey}", s.handleRemoveValue)
		r.Post("/maps/{mapKey}/restore", s.handleRestore)
		r.Delete("/maps", s.handleRemoveMap)

		r.Get("/tombstones", s.handleTombstonesForMap)
		r.Delete("/tombstones/{mapKey}", s.handlePurgeTombstone)

		r.Get("/audit_log", s.handleAuditLog)
	})

	r.Get("/shared_keys", s.handleAccessibleSharedKeyIds)
	r.Get("/accessible_maps", s.handleAccessibleMaps)

	return r
}

// callerFrom reads the caller identity off a request, defaulting to
// types.Anonymous when absent — the façade performs no authentication of
// its own; it only trusts the X-Principal header a fronting proxy is
// expected to set.
func callerFrom(r *http.Request) (types.Principal, error) {
	return decodeHexPrincipal(r.Header.Get("X-Principal"))
}

// writeJSON encodes v with goccy/go-json, matching oracle.HTTPClient's
// wire format.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorReply struct {
	Error string `json:"error"`
}

// writeErr maps the core's error taxonomy onto HTTP status codes. Any
// error not in errs is a 500: the façade never guesses at an unrecognized
// failure's severity.
func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, errs.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrNotInitialized):
		status = http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrAlreadyInitialized):
		status = http.StatusConflict
	case errors.Is(err, errs.ErrOracleFailure):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorReply{Error: err.Error()})
}
