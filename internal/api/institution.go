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

	"github.com/Bigboss298/DataTrust-Nexus/internal/institution"
	"github.com/gorilla/mux"
)

type privateKeyBody struct {
	PrivateKey string `json:"privateKey"`
}

func (a *api) institutionRoutes(r *mux.Router) {
	r.HandleFunc("", a.listInstitutions).Methods(http.MethodGet)
	r.HandleFunc("/register", a.registerInstitution).Methods(http.MethodPost)
	r.HandleFunc("/{walletAddress}", a.getInstitution).Methods(http.MethodGet)
	r.HandleFunc("/{walletAddress}", a.updateInstitution).Methods(http.MethodPut)
	r.HandleFunc("/{walletAddress}/verify", a.verifyInstitution).Methods(http.MethodGet)
	r.HandleFunc("/{walletAddress}/deactivate", a.deactivateInstitution).Methods(http.MethodPost)
}

func (a *api) listInstitutions(w http.ResponseWriter, r *http.Request) {
	const action = "Failed to retrieve institutions"
	skip, take, ok := page(w, r, action)
	if !ok {
		return
	}
	institutions, err := a.Institutions.List(r.Context(), skip, take)
	listOrError(w, r, action, institutions, err)
}

func (a *api) getInstitution(w http.ResponseWriter, r *http.Request) {
	inst, err := a.Institutions.Get(r.Context(), mux.Vars(r)["walletAddress"])
	if err != nil {
		writeError(w, r, "Failed to retrieve institution", err)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

func (a *api) verifyInstitution(w http.ResponseWriter, r *http.Request) {
	wallet := mux.Vars(r)["walletAddress"]
	verified, err := a.Institutions.IsVerified(r.Context(), wallet)
	if err != nil {
		writeError(w, r, "Failed to verify institution", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"walletAddress": wallet,
		"isVerified":    verified,
	})
}

func (a *api) registerInstitution(w http.ResponseWriter, r *http.Request) {
	const action = "Failed to register institution"
	var req institution.RegisterRequest
	if !decodeBody(w, r, action, &req) {
		return
	}
	res, err := a.Institutions.Register(r.Context(), &req)
	if err != nil {
		writeError(w, r, action, err)
		return
	}
	writeTx(w, "Institution registered on blockchain", res)
}

func (a *api) updateInstitution(w http.ResponseWriter, r *http.Request) {
	const action = "Failed to update institution"
	var req institution.UpdateRequest
	if !decodeBody(w, r, action, &req) {
		return
	}
	req.WalletAddress = mux.Vars(r)["walletAddress"]
	res, err := a.Institutions.Update(r.Context(), &req)
	if err != nil {
		writeError(w, r, action, err)
		return
	}
	writeTx(w, "Institution updated on blockchain", res)
}

func (a *api) deactivateInstitution(w http.ResponseWriter, r *http.Request) {
	const action = "Failed to deactivate institution"
	var body privateKeyBody
	if !decodeBody(w, r, action, &body) {
		return
	}
	res, err := a.Institutions.Deactivate(r.Context(), &institution.DeactivateRequest{
		WalletAddress: mux.Vars(r)["walletAddress"],
		PrivateKey:    body.PrivateKey,
	})
	if err != nil {
		writeError(w, r, action, err)
		return
	}
	writeTx(w, "Institution deactivated on blockchain", res)
}
