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

package datarecord

import (
	"context"

	"github.com/Bigboss298/DataTrust-Nexus/internal/batch"
	"github.com/Bigboss298/DataTrust-Nexus/internal/contracts"
	"github.com/Bigboss298/DataTrust-Nexus/internal/domain"
	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
)

type reader struct {
	vault contracts.DataVault
	batch *batch.Reader
}

func (r *reader) Get(ctx context.Context, recordID string) (*DataRecord, error) {
	if recordID == "" {
		return nil, nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgInvalidParameters, "recordId")
	}
	state, err := r.vault.GetDataRecord(ctx, recordID)
	if err != nil {
		return nil, domain.NotFoundOnRevert(ctx, err, msgs.MsgDataRecordNotFound, recordID)
	}
	if state.Owner.IsZero() {
		return nil, nxerrors.New(ctx, nxerrors.NotFound, msgs.MsgDataRecordNotFound, recordID)
	}
	uploadedAt, formatted := domain.UnixSeconds(ctx, &state.UploadedAt, "uploadedAt")
	return &DataRecord{
		RecordID:            recordID,
		DataHash:            state.DataHash.DataHashString(),
		Owner:               state.Owner,
		FileName:            state.FileName,
		FileType:            state.FileType,
		FileSize:            state.FileSize.Int64Clamped(ctx, "fileSize"),
		IPFSHash:            state.IPFSHash,
		EncryptionAlgorithm: state.EncryptionAlgorithm,
		Category:            state.Category,
		MetadataURI:         state.MetadataURI,
		UploadedAt:          uploadedAt,
		UploadedAtFormatted: formatted,
		IsActive:            state.IsActive,
	}, nil
}

func (r *reader) List(ctx context.Context, skip, take int) ([]*DataRecord, error) {
	events, err := r.vault.DataUploaded(ctx, nil)
	if err != nil {
		return nil, err
	}
	recordIDs := make([]string, 0, len(events))
	seen := make(map[string]bool, len(events))
	for _, e := range events {
		if !seen[e.Data.RecordID] {
			seen[e.Data.RecordID] = true
			recordIDs = append(recordIDs, e.Data.RecordID)
		}
	}
	log.L(ctx).Debugf("Discovered %d data records", len(recordIDs))
	return batch.Fetch(ctx, r.batch, "data record", batch.Paginate(r.batch, recordIDs, skip, take), r.Get)
}

func (r *reader) RecordIDsByOwner(ctx context.Context, owner string) ([]string, error) {
	addr, err := domain.ParseWallet(ctx, owner)
	if err != nil {
		return nil, err
	}
	recordIDs, err := r.vault.GetRecordsByOwner(ctx, addr)
	if err != nil {
		return nil, err
	}
	if recordIDs == nil {
		recordIDs = []string{}
	}
	return recordIDs, nil
}

// ListByOwner uses the contract's own owner index rather than the event history
func (r *reader) ListByOwner(ctx context.Context, owner string, skip, take int) ([]*DataRecord, error) {
	recordIDs, err := r.RecordIDsByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	return batch.Fetch(ctx, r.batch, "data record", batch.Paginate(r.batch, recordIDs, skip, take), r.Get)
}

func (r *reader) Verify(ctx context.Context, recordID, dataHash string) (bool, error) {
	if recordID == "" || dataHash == "" {
		return false, nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgInvalidParameters, "recordId, dataHash")
	}
	return r.vault.VerifyData(ctx, recordID, nxtypes.DataHashToBytes32(dataHash))
}

func (r *reader) Count(ctx context.Context) (int64, error) {
	total, err := r.vault.GetTotalRecords(ctx)
	if err != nil {
		return 0, err
	}
	return total.Int64Clamped(ctx, "totalRecords"), nil
}
