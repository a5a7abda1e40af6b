/*
 * Copyright © 2025 The DataTrust Nexus Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
 * an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Bigboss298/DataTrust-Nexus/internal/access"
	"github.com/Bigboss298/DataTrust-Nexus/internal/accessrequest"
	"github.com/Bigboss298/DataTrust-Nexus/internal/audit"
	"github.com/Bigboss298/DataTrust-Nexus/internal/datarecord"
	"github.com/Bigboss298/DataTrust-Nexus/internal/explorer"
	"github.com/Bigboss298/DataTrust-Nexus/internal/httpserver"
	"github.com/Bigboss298/DataTrust-Nexus/internal/institution"
	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/gorilla/mux"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

const walletHeader = "X-Wallet-Address"

type Services struct {
	Institutions institution.Service
	Records      datarecord.Service
	Access       access.Service
	Requests     accessrequest.Service
	Audit        audit.Service
}

type api struct {
	*Services
}

// NewRouter registers every route. Literal paths are registered ahead of the
// parameterized ones they would otherwise collide with.
func NewRouter(services *Services) *mux.Router {
	a := &api{Services: services}
	r := mux.NewRouter()
	r.HandleFunc("/health", a.health).Methods(http.MethodGet)
	a.institutionRoutes(r.PathPrefix("/api/institution").Subrouter())
	a.dataRoutes(r.PathPrefix("/api/data").Subrouter())
	a.accessRoutes(r.PathPrefix("/api/access").Subrouter())
	a.auditRoutes(r.PathPrefix("/api/audit").Subrouter())
	return r
}

func NewServer(ctx context.Context, conf *nxconf.APIServerConfig, services *Services, opts ...httpserver.Option) (httpserver.Server, error) {
	opts = append([]httpserver.Option{httpserver.WithCORSHeaders("Content-Type", walletHeader)}, opts...)
	return httpserver.NewServer(ctx, "API", &conf.HTTPServerConfig, NewRouter(services), opts...)
}

type txResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	*explorer.TxResult
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeTx(w http.ResponseWriter, message string, result *explorer.TxResult) {
	writeJSON(w, http.StatusOK, &txResponse{
		Success:  true,
		Message:  message,
		TxResult: result,
	})
}

// statusFor prefers the status hint registered with the message, then the error kind
func statusFor(err error) int {
	var ffErr i18n.FFError
	if errors.As(err, &ffErr) && ffErr.HTTPStatus() != http.StatusInternalServerError {
		return ffErr.HTTPStatus()
	}
	return nxerrors.HTTPStatus(nxerrors.KindOf(err))
}

// writeError sends 404 {message} for absent entities, the error itself for other client
// errors, and {message,error,kind} with the failed action for everything else
func writeError(w http.ResponseWriter, r *http.Request, action string, err error) {
	status := statusFor(err)
	kind := string(nxerrors.KindOf(err))
	switch {
	case status == http.StatusNotFound:
		log.L(r.Context()).Debugf("%s: %s", action, err)
		writeJSON(w, status, &errorResponse{Message: err.Error()})
	case status < http.StatusInternalServerError:
		log.L(r.Context()).Warnf("%s: %s", action, err)
		writeJSON(w, status, &errorResponse{Message: err.Error(), Kind: kind})
	default:
		log.L(r.Context()).Errorf("%s: %s", action, err)
		writeJSON(w, status, &errorResponse{Message: action, Error: err.Error(), Kind: kind})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, action string, body interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		writeError(w, r, action, nxerrors.Wrap(r.Context(), nxerrors.InvalidArgument, err, msgs.MsgAPIInvalidBody))
		return false
	}
	return true
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, nxerrors.Wrap(r.Context(), nxerrors.InvalidArgument, err, msgs.MsgAPIInvalidQuery, name)
	}
	return v, nil
}

// page reads skip/take. A missing take is left at zero, for the reader default to apply.
func page(w http.ResponseWriter, r *http.Request, action string) (skip, take int, ok bool) {
	var err error
	if skip, err = queryInt(r, "skip", 0); err == nil {
		take, err = queryInt(r, "take", 0)
	}
	if err != nil {
		writeError(w, r, action, err)
		return 0, 0, false
	}
	return skip, take, true
}

func walletFromHeader(w http.ResponseWriter, r *http.Request, action string) (string, bool) {
	wallet := r.Header.Get(walletHeader)
	if wallet == "" {
		writeError(w, r, action, nxerrors.New(r.Context(), nxerrors.InvalidArgument, msgs.MsgAPIMissingWallet))
		return "", false
	}
	return wallet, true
}

func listOrError[T any](w http.ResponseWriter, r *http.Request, action string, items []T, err error) {
	if err != nil {
		writeError(w, r, action, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
