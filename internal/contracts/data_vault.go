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

package contracts

import (
	"context"

	"github.com/Bigboss298/DataTrust-Nexus/internal/projector"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/ethclient"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
)

type DataVault interface {
	UploadData(ctx context.Context, signerKey string, in *UploadDataInput) (*ethclient.SendResult, error)
	UpdateDataMetadata(ctx context.Context, signerKey string, recordID, metadataURI string) (*ethclient.SendResult, error)
	DeactivateData(ctx context.Context, signerKey string, recordID string) (*ethclient.SendResult, error)
	GetDataRecord(ctx context.Context, recordID string) (*DataRecordState, error)
	GetRecordsByOwner(ctx context.Context, owner nxtypes.EthAddress) ([]string, error)
	VerifyData(ctx context.Context, recordID string, dataHash nxtypes.Bytes32) (bool, error)
	GetTotalRecords(ctx context.Context) (*nxtypes.Uint256, error)
	DataUploaded(ctx context.Context, predicate func(e *projector.Event[DataUploadedEvent]) bool) ([]*projector.Event[DataUploadedEvent], error)
}

type UploadDataInput struct {
	RecordID            string          `json:"recordId"`
	DataHash            nxtypes.Bytes32 `json:"dataHash"`
	FileName            string          `json:"fileName"`
	FileType            string          `json:"fileType"`
	FileSize            nxtypes.Uint256 `json:"fileSize"`
	IPFSHash            string          `json:"ipfsHash"`
	EncryptionAlgorithm string          `json:"encryptionAlgorithm"`
	Category            string          `json:"category"`
	MetadataURI         string          `json:"metadataURI"`
}

type DataRecordState struct {
	DataHash            nxtypes.Bytes32    `json:"dataHash"`
	Owner               nxtypes.EthAddress `json:"owner"`
	FileName            string             `json:"fileName"`
	FileType            string             `json:"fileType"`
	FileSize            nxtypes.Uint256    `json:"fileSize"`
	IPFSHash            string             `json:"ipfsHash"`
	EncryptionAlgorithm string             `json:"encryptionAlgorithm"`
	Category            string             `json:"category"`
	MetadataURI         string             `json:"metadataURI"`
	UploadedAt          nxtypes.Uint256    `json:"uploadedAt"`
	IsActive            bool               `json:"isActive"`
}

type DataUploadedEvent struct {
	RecordID  string             `json:"recordId"`
	Owner     nxtypes.EthAddress `json:"owner"`
	FileName  string             `json:"fileName"`
	Timestamp nxtypes.Uint256    `json:"timestamp"`
}

type dataVault struct {
	*boundContract
	uploadData         *ethclient.Function
	updateDataMetadata *ethclient.Function
	deactivateData     *ethclient.Function
	getDataRecord      *ethclient.Function
	getRecordsByOwner  *ethclient.Function
	verifyData         *ethclient.Function
	getTotalRecords    *ethclient.Function
	dataUploaded       *ethclient.EventDef
}

func newDataVault(ctx context.Context, bc *boundContract) (DataVault, error) {
	dv := &dataVault{boundContract: bc}
	err := bc.bindAll(ctx, []functionBinding{
		{functionSpec{"uploadData", "uploadData(string,bytes32,string,string,uint256,string,string,string,string)", []string{}}, &dv.uploadData},
		{functionSpec{"updateDataMetadata", "updateDataMetadata(string,string)", []string{}}, &dv.updateDataMetadata},
		{functionSpec{"deactivateData", "deactivateData(string)", []string{}}, &dv.deactivateData},
		{functionSpec{"getDataRecord", "getDataRecord(string)", []string{
			"bytes32", "address", "string", "string", "uint256", "string", "string", "string", "string", "uint256", "bool",
		}}, &dv.getDataRecord},
		{functionSpec{"getRecordsByOwner", "getRecordsByOwner(address)", []string{"string[]"}}, &dv.getRecordsByOwner},
		{functionSpec{"verifyData", "verifyData(string,bytes32)", []string{"bool"}}, &dv.verifyData},
		{functionSpec{"getTotalRecords", "getTotalRecords()", []string{"uint256"}}, &dv.getTotalRecords},
	}, []eventBinding{
		{eventSpec{"DataUploaded", "DataUploaded(string,address,string,uint256)", []bool{false, true, false, false}}, &dv.dataUploaded},
	})
	if err != nil {
		return nil, err
	}
	return dv, nil
}

func (dv *dataVault) UploadData(ctx context.Context, signerKey string, in *UploadDataInput) (*ethclient.SendResult, error) {
	return dv.send(ctx, signerKey, dv.uploadData, in)
}

func (dv *dataVault) UpdateDataMetadata(ctx context.Context, signerKey string, recordID, metadataURI string) (*ethclient.SendResult, error) {
	return dv.send(ctx, signerKey, dv.updateDataMetadata, map[string]interface{}{
		"recordId":    recordID,
		"metadataURI": metadataURI,
	})
}

func (dv *dataVault) DeactivateData(ctx context.Context, signerKey string, recordID string) (*ethclient.SendResult, error) {
	return dv.send(ctx, signerKey, dv.deactivateData, map[string]interface{}{"recordId": recordID})
}

func (dv *dataVault) GetDataRecord(ctx context.Context, recordID string) (*DataRecordState, error) {
	var out DataRecordState
	if err := dv.call(ctx, dv.getDataRecord, map[string]interface{}{"recordId": recordID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (dv *dataVault) GetRecordsByOwner(ctx context.Context, owner nxtypes.EthAddress) ([]string, error) {
	var out single[[]string]
	if err := dv.call(ctx, dv.getRecordsByOwner, map[string]interface{}{"owner": owner}, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

func (dv *dataVault) VerifyData(ctx context.Context, recordID string, dataHash nxtypes.Bytes32) (bool, error) {
	var out single[bool]
	err := dv.call(ctx, dv.verifyData, map[string]interface{}{"recordId": recordID, "dataHash": dataHash}, &out)
	return out.Value, err
}

func (dv *dataVault) GetTotalRecords(ctx context.Context) (*nxtypes.Uint256, error) {
	var out single[nxtypes.Uint256]
	if err := dv.call(ctx, dv.getTotalRecords, nil, &out); err != nil {
		return nil, err
	}
	return &out.Value, nil
}

func (dv *dataVault) DataUploaded(ctx context.Context, predicate func(e *projector.Event[DataUploadedEvent]) bool) ([]*projector.Event[DataUploadedEvent], error) {
	return projectEvents(ctx, dv.boundContract, dv.dataUploaded, predicate)
}
