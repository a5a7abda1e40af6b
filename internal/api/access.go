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

	"github.com/Bigboss298/DataTrust-Nexus/internal/access"
	"github.com/Bigboss298/DataTrust-Nexus/internal/accessrequest"
	"github.com/gorilla/mux"
)

func (a *api) accessRoutes(r *mux.Router) {
	r.HandleFunc("/check", a.checkAccess).Methods(http.MethodGet)
	r.HandleFunc("/grant", a.grantAccess).Methods(http.MethodPost)
	r.HandleFunc("/revoke", a.revokeAccess).Methods(http.MethodPost)
	r.HandleFunc("/update", a.updateAccess).Methods(http.MethodPut)
	r.HandleFunc("/request", a.submitAccessRequest).Methods(http.MethodPost)
	r.HandleFunc("/requests/check", a.checkAccessRequest).Methods(http.MethodGet)
	r.HandleFunc("/requests/respond", a.respondAccessRequest).Methods(http.MethodPost)
	r.HandleFunc("/requests/pending/{ownerAddress}", a.pendingAccessRequests).Methods(http.MethodGet)
	r.HandleFunc("/requests/my/{requesterAddress}", a.myAccessRequests).Methods(http.MethodGet)
	r.HandleFunc("/record/{recordId}", a.permissionsList(func(r *http.Request, skip, take int) ([]*access.Permission, error) {
		return a.Access.ListForRecord(r.Context(), mux.Vars(r)["recordId"], skip, take)
	})).Methods(http.MethodGet)
	r.HandleFunc("/user/{userAddress}", a.permissionsList(func(r *http.Request, skip, take int) ([]*access.Permission, error) {
		return a.Access.ListForUser(r.Context(), mux.Vars(r)["userAddress"], skip, take)
	})).Methods(http.MethodGet)
	r.HandleFunc("/granted/{ownerAddress}", a.permissionsList(func(r *http.Request, skip, take int) ([]*access.Permission, error) {
		return a.Access.ListGrantedBy(r.Context(), mux.Vars(r)["ownerAddress"], skip, take)
	})).Methods(http.MethodGet)
	r.HandleFunc("/received/{granteeAddress}", a.permissionsList(func(r *http.Request, skip, take int) ([]*access.Permission, error) {
		return a.Access.ListReceivedBy(r.Context(), mux.Vars(r)["granteeAddress"], skip, take)
	})).Methods(http.MethodGet)
	r.HandleFunc("/{recordId}/{granteeAddress}", a.getPermission).Methods(http.MethodGet)
}

func (a *api) permissionsList(list func(r *http.Request, skip, take int) ([]*access.Permission, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const action = "Failed to retrieve access permissions"
		skip, take, ok := page(w, r, action)
		if !ok {
			return
		}
		permissions, err := list(r, skip, take)
		listOrError(w, r, action, permissions, err)
	}
}

func (a *api) getPermission(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	permission, err := a.Access.GetSpecificPermission(r.Context(), vars["recordId"], vars["granteeAddress"])
	if err != nil {
		writeError(w, r, "Failed to retrieve permission", err)
		return
	}
	writeJSON(w, http.StatusOK, permission)
}

func (a *api) checkAccess(w http.ResponseWriter, r *http.Request) {
	recordID := r.URL.Query().Get("recordId")
	wallet := r.URL.Query().Get("walletAddress")
	hasAccess, err := a.Access.CheckAccess(r.Context(), recordID, wallet)
	if err != nil {
		writeError(w, r, "Failed to check access", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recordId":      recordID,
		"walletAddress": wallet,
		"hasAccess":     hasAccess,
	})
}

func (a *api) grantAccess(w http.ResponseWriter, r *http.Request) {
	const action = "Failed to grant access"
	var req access.GrantRequest
	if !decodeBody(w, r, action, &req) {
		return
	}
	res, err := a.Access.Grant(r.Context(), &req)
	if err != nil {
		writeError(w, r, action, err)
		return
	}
	writeTx(w, "Access granted on blockchain", res)
}

func (a *api) revokeAccess(w http.ResponseWriter, r *http.Request) {
	const action = "Failed to revoke access"
	var req access.RevokeRequest
	if !decodeBody(w, r, action, &req) {
		return
	}
	res, err := a.Access.Revoke(r.Context(), &req)
	if err != nil {
		writeError(w, r, action, err)
		return
	}
	writeTx(w, "Access revoked on blockchain", res)
}

func (a *api) updateAccess(w http.ResponseWriter, r *http.Request) {
	const action = "Failed to update permission"
	var req access.UpdateRequest
	if !decodeBody(w, r, action, &req) {
		return
	}
	res, err := a.Access.UpdateExpiry(r.Context(), &req)
	if err != nil {
		writeError(w, r, action, err)
		return
	}
	writeTx(w, "Permission updated on blockchain", res)
}

func (a *api) submitAccessRequest(w http.ResponseWriter, r *http.Request) {
	const action = "Failed to submit access request"
	wallet, ok := walletFromHeader(w, r, action)
	if !ok {
		return
	}
	var req accessrequest.SubmitRequest
	if !decodeBody(w, r, action, &req) {
		return
	}
	ar, err := a.Requests.Submit(r.Context(), wallet, &req)
	if err != nil {
		writeError(w, r, action, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "Access request submitted successfully",
		"requestId": ar.ID,
		"recordId":  ar.RecordID,
		"status":    ar.Status,
	})
}

func (a *api) respondAccessRequest(w http.ResponseWriter, r *http.Request) {
	const action = "Failed to respond to request"
	wallet, ok := walletFromHeader(w, r, action)
	if !ok {
		return
	}
	var req accessrequest.RespondRequest
	if !decodeBody(w, r, action, &req) {
		return
	}
	ar, err := a.Requests.Respond(r.Context(), wallet, &req)
	if err != nil {
		writeError(w, r, action, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "Access request " + string(ar.Status),
		"requestId": ar.ID,
		"status":    ar.Status,
	})
}

func (a *api) pendingAccessRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := a.Requests.Pending(r.Context(), mux.Vars(r)["ownerAddress"])
	listOrError(w, r, "Failed to fetch pending requests", requests, err)
}

func (a *api) myAccessRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := a.Requests.Mine(r.Context(), mux.Vars(r)["requesterAddress"])
	listOrError(w, r, "Failed to fetch requests", requests, err)
}

func (a *api) checkAccessRequest(w http.ResponseWriter, r *http.Request) {
	recordID := r.URL.Query().Get("recordId")
	requester := r.URL.Query().Get("requesterAddress")
	hasPending, err := a.Requests.HasPending(r.Context(), recordID, requester)
	if err != nil {
		writeError(w, r, "Failed to check request", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recordId":         recordID,
		"requesterAddress": requester,
		"hasPending":       hasPending,
	})
}
