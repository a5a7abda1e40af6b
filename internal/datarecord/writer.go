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

	"github.com/Bigboss298/DataTrust-Nexus/internal/contracts"
	"github.com/Bigboss298/DataTrust-Nexus/internal/explorer"
	"github.com/Bigboss298/DataTrust-Nexus/internal/validation"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
)

type writer struct {
	vault     contracts.DataVault
	validator *validation.Validator
	explorer  *explorer.Explorer
}

func (w *writer) Upload(ctx context.Context, req *UploadRequest) (*explorer.TxResult, error) {
	if err := w.validator.Struct(ctx, req); err != nil {
		return nil, err
	}
	algorithm := req.EncryptionAlgorithm
	if algorithm == "" {
		algorithm = DefaultEncryptionAlgorithm
	}
	log.L(ctx).Infof("Uploading data record '%s' (%s, %d bytes)", req.RecordID, req.FileName, req.FileSize)
	res, err := w.vault.UploadData(ctx, req.PrivateKey, &contracts.UploadDataInput{
		RecordID:            req.RecordID,
		DataHash:            nxtypes.DataHashToBytes32(req.DataHash),
		FileName:            req.FileName,
		FileType:            req.FileType,
		FileSize:            *nxtypes.NewUint256(req.FileSize),
		IPFSHash:            req.IPFSHash,
		EncryptionAlgorithm: algorithm,
		Category:            req.Category,
		MetadataURI:         req.MetadataURI,
	})
	if err != nil {
		return nil, err
	}
	return w.explorer.Result(res), nil
}

func (w *writer) UpdateMetadata(ctx context.Context, req *UpdateMetadataRequest) (*explorer.TxResult, error) {
	if err := w.validator.Struct(ctx, req); err != nil {
		return nil, err
	}
	log.L(ctx).Infof("Updating metadata of data record '%s'", req.RecordID)
	res, err := w.vault.UpdateDataMetadata(ctx, req.PrivateKey, req.RecordID, req.MetadataURI)
	if err != nil {
		return nil, err
	}
	return w.explorer.Result(res), nil
}

func (w *writer) Deactivate(ctx context.Context, req *DeactivateRequest) (*explorer.TxResult, error) {
	if err := w.validator.Struct(ctx, req); err != nil {
		return nil, err
	}
	log.L(ctx).Infof("Deactivating data record '%s'", req.RecordID)
	res, err := w.vault.DeactivateData(ctx, req.PrivateKey, req.RecordID)
	if err != nil {
		return nil, err
	}
	return w.explorer.Result(res), nil
}
