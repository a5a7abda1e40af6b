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
	"net/http"
	"strconv"

	"github.com/Bigboss298/DataTrust-Nexus/internal/audit"
	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/gorilla/mux"
)

const defaultRecentCount = 50

func (a *api) auditRoutes(r *mux.Router) {
	r.HandleFunc("", a.auditList(func(r *http.Request, skip, take int) ([]*audit.LogEntry, error) {
		return a.Audit.List(r.Context(), skip, take)
	})).Methods(http.MethodGet)
	r.HandleFunc("/log", a.createAuditLog).Methods(http.MethodPost)
	r.HandleFunc("/recent", a.recentAuditLogs).Methods(http.MethodGet)
	r.HandleFunc("/statistics", a.auditStatistics).Methods(http.MethodGet)
	r.HandleFunc("/action/{actionType}", a.auditList(func(r *http.Request, skip, take int) ([]*audit.LogEntry, error) {
		actionType, err := pathInt(r, "actionType")
		if err != nil {
			return nil, err
		}
		return a.Audit.ListByActionType(r.Context(), actionType, skip, take)
	})).Methods(http.MethodGet)
	r.HandleFunc("/actor/{actorAddress}", a.auditList(func(r *http.Request, skip, take int) ([]*audit.LogEntry, error) {
		return a.Audit.ListByActor(r.Context(), mux.Vars(r)["actorAddress"], skip, take)
	})).Methods(http.MethodGet)
	r.HandleFunc("/record/{recordId}", a.auditList(func(r *http.Request, skip, take int) ([]*audit.LogEntry, error) {
		return a.Audit.ListByRecord(r.Context(), mux.Vars(r)["recordId"], skip, take)
	})).Methods(http.MethodGet)
	r.HandleFunc("/{logId}", a.getAuditLog).Methods(http.MethodGet)
}

func pathInt(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		return 0, nxerrors.Wrap(r.Context(), nxerrors.InvalidArgument, err, msgs.MsgAPIInvalidQuery, name)
	}
	return v, nil
}

func (a *api) auditList(list func(r *http.Request, skip, take int) ([]*audit.LogEntry, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const action = "Failed to retrieve audit logs"
		skip, take, ok := page(w, r, action)
		if !ok {
			return
		}
		entries, err := list(r, skip, take)
		listOrError(w, r, action, entries, err)
	}
}

func (a *api) getAuditLog(w http.ResponseWriter, r *http.Request) {
	const action = "Failed to retrieve audit log"
	logID, err := pathInt(r, "logId")
	if err == nil {
		var entry *audit.LogEntry
		if entry, err = a.Audit.Get(r.Context(), int64(logID)); err == nil {
			writeJSON(w, http.StatusOK, entry)
			return
		}
	}
	writeError(w, r, action, err)
}

func (a *api) recentAuditLogs(w http.ResponseWriter, r *http.Request) {
	const action = "Failed to retrieve recent audit logs"
	count, err := queryInt(r, "count", defaultRecentCount)
	if err != nil {
		writeError(w, r, action, err)
		return
	}
	entries, err := a.Audit.Recent(r.Context(), count)
	listOrError(w, r, action, entries, err)
}

func (a *api) auditStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Audit.Statistics(r.Context())
	if err != nil {
		writeError(w, r, "Failed to retrieve audit statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *api) createAuditLog(w http.ResponseWriter, r *http.Request) {
	const action = "Failed to create audit log"
	var req audit.LogRequest
	if !decodeBody(w, r, action, &req) {
		return
	}
	res, err := a.Audit.Log(r.Context(), &req)
	if err != nil {
		writeError(w, r, action, err)
		return
	}
	writeTx(w, "Audit log created on blockchain", res)
}
