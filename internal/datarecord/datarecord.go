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
	"github.com/Bigboss298/DataTrust-Nexus/internal/domain"
	"github.com/Bigboss298/DataTrust-Nexus/internal/explorer"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
)

const DefaultEncryptionAlgorithm = "AES-256-GCM"

type DataRecord struct {
	RecordID            string             `json:"recordId"`
	DataHash            string             `json:"dataHash"`
	Owner               nxtypes.EthAddress `json:"owner"`
	FileName            string             `json:"fileName"`
	FileType            string             `json:"fileType"`
	FileSize            int64              `json:"fileSize"`
	IPFSHash            string             `json:"ipfsHash"`
	EncryptionAlgorithm string             `json:"encryptionAlgorithm"`
	Category            string             `json:"category"`
	MetadataURI         string             `json:"metadataUri"`
	UploadedAt          int64              `json:"uploadedAt"`
	UploadedAtFormatted string             `json:"uploadedAtFormatted"`
	IsActive            bool               `json:"isActive"`
}

// UploadRequest carries a content hash and storage locator that were produced off-chain.
// Both are stored verbatim, apart from fitting the hash into its 32 byte slot.
type UploadRequest struct {
	RecordID            string `json:"recordId" validate:"notblank,max=100"`
	DataHash            string `json:"dataHash" validate:"notblank,max=66"`
	FileName            string `json:"fileName" validate:"notblank,max=255"`
	FileType            string `json:"fileType" validate:"max=100"`
	FileSize            int64  `json:"fileSize" validate:"min=0"`
	IPFSHash            string `json:"ipfsHash" validate:"notblank,max=100"`
	EncryptionAlgorithm string `json:"encryptionAlgorithm" validate:"max=50"`
	Category            string `json:"category" validate:"notblank,max=100"`
	MetadataURI         string `json:"metadataUri"`
	PrivateKey          string `json:"privateKey" validate:"required"`
}

type UpdateMetadataRequest struct {
	RecordID    string `json:"recordId" validate:"notblank,max=100"`
	MetadataURI string `json:"metadataUri"`
	PrivateKey  string `json:"privateKey" validate:"required"`
}

type DeactivateRequest struct {
	RecordID   string `json:"recordId" validate:"notblank,max=100"`
	PrivateKey string `json:"privateKey" validate:"required"`
}

type Service interface {
	Upload(ctx context.Context, req *UploadRequest) (*explorer.TxResult, error)
	UpdateMetadata(ctx context.Context, req *UpdateMetadataRequest) (*explorer.TxResult, error)
	Deactivate(ctx context.Context, req *DeactivateRequest) (*explorer.TxResult, error)
	Get(ctx context.Context, recordID string) (*DataRecord, error)
	List(ctx context.Context, skip, take int) ([]*DataRecord, error)
	ListByOwner(ctx context.Context, owner string, skip, take int) ([]*DataRecord, error)
	RecordIDsByOwner(ctx context.Context, owner string) ([]string, error)
	Verify(ctx context.Context, recordID, dataHash string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type service struct {
	*reader
	*writer
}

func New(vault contracts.DataVault, tk *domain.Toolkit) Service {
	return &service{
		reader: &reader{vault: vault, batch: tk.Batch},
		writer: &writer{vault: vault, validator: tk.Validator, explorer: tk.Explorer},
	}
}
