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

	"github.com/Bigboss298/DataTrust-Nexus/internal/datarecord"
	"github.com/gorilla/mux"
)

type verifyBody struct {
	RecordID     string `json:"recordId"`
	ProvidedHash string `json:"providedHash"`
}

type updateMetadataBody struct {
	MetadataURI string `json:"metadataUri"`
	PrivateKey  string `json:"privateKey"`
}

func (a *api) dataRoutes(r *mux.Router) {
	r.HandleFunc("", a.listRecords).Methods(http.MethodGet)
	r.HandleFunc("/owner/{ownerAddress}", a.listRecordsByOwner).Methods(http.MethodGet)
	r.HandleFunc("/verify", a.verifyRecord).Methods(http.MethodPost)
	r.HandleFunc("/upload", a.uploadRecord).Methods(http.MethodPost)
	r.HandleFunc("/{recordId}", a.getRecord).Methods(http.MethodGet)
	r.HandleFunc("/{recordId}", a.updateRecord).Methods(http.MethodPut)
	r.HandleFunc("/{recordId}/deactivate", a.deactivateRecord).Methods(http.MethodPost)
}

func (a *api) listRecords(w http.ResponseWriter, r *http.Request) {
	const action = "Failed to retrieve data records"
	skip, take, ok := page(w, r, action)
	if !ok {
		return
	}
	records, err := a.Records.List(r.Context(), skip, take)
	listOrError(w, r, action, records, err)
}

func (a *api) listRecordsByOwner(w http.ResponseWriter, r *http.Request) {
	const action = "Failed to retrieve data records"
	skip, take, ok := page(w, r, action)
	if !ok {
		return
	}
	records, err := a.Records.ListByOwner(r.Context(), mux.Vars(r)["ownerAddress"], skip, take)
	listOrError(w, r, action, records, err)
}

func (a *api) getRecord(w http.ResponseWriter, r *http.Request) {
	record, err := a.Records.Get(r.Context(), mux.Vars(r)["recordId"])
	if err != nil {
		writeError(w, r, "Failed to retrieve data record", err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (a *api) verifyRecord(w http.ResponseWriter, r *http.Request) {
	const action = "Failed to verify data"
	var body verifyBody
	if !decodeBody(w, r, action, &body) {
		return
	}
	valid, err := a.Records.Verify(r.Context(), body.RecordID, body.ProvidedHash)
	if err != nil {
		writeError(w, r, action, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recordId": body.RecordID,
		"isValid":  valid,
	})
}

func (a *api) uploadRecord(w http.ResponseWriter, r *http.Request) {
	const action = "Failed to upload data"
	var req datarecord.UploadRequest
	if !decodeBody(w, r, action, &req) {
		return
	}
	res, err := a.Records.Upload(r.Context(), &req)
	if err != nil {
		writeError(w, r, action, err)
		return
	}
	writeTx(w, "Data uploaded to blockchain", res)
}

func (a *api) updateRecord(w http.ResponseWriter, r *http.Request) {
	const action = "Failed to update data metadata"
	var body updateMetadataBody
	if !decodeBody(w, r, action, &body) {
		return
	}
	res, err := a.Records.UpdateMetadata(r.Context(), &datarecord.UpdateMetadataRequest{
		RecordID:    mux.Vars(r)["recordId"],
		MetadataURI: body.MetadataURI,
		PrivateKey:  body.PrivateKey,
	})
	if err != nil {
		writeError(w, r, action, err)
		return
	}
	writeTx(w, "Data metadata updated on blockchain", res)
}

func (a *api) deactivateRecord(w http.ResponseWriter, r *http.Request) {
	const action = "Failed to deactivate data"
	var body privateKeyBody
	if !decodeBody(w, r, action, &body) {
		return
	}
	res, err := a.Records.Deactivate(r.Context(), &datarecord.DeactivateRequest{
		RecordID:   mux.Vars(r)["recordId"],
		PrivateKey: body.PrivateKey,
	})
	if err != nil {
		writeError(w, r, action, err)
		return
	}
	writeTx(w, "Data record deactivated on blockchain", res)
}
