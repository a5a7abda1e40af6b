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

type InstitutionRegistry interface {
	RegisterInstitution(ctx context.Context, signerKey string, in *RegisterInstitutionInput) (*ethclient.SendResult, error)
	UpdateInstitution(ctx context.Context, signerKey string, in *UpdateInstitutionInput) (*ethclient.SendResult, error)
	DeactivateInstitution(ctx context.Context, signerKey string, wallet nxtypes.EthAddress) (*ethclient.SendResult, error)
	GetInstitution(ctx context.Context, wallet nxtypes.EthAddress) (*InstitutionState, error)
	GetTotalInstitutions(ctx context.Context) (*nxtypes.Uint256, error)
	GetInstitutionByIndex(ctx context.Context, index int) (*nxtypes.EthAddress, error)
	VerifyInstitution(ctx context.Context, wallet nxtypes.EthAddress) (bool, error)
	InstitutionRegistered(ctx context.Context, predicate func(e *projector.Event[InstitutionRegisteredEvent]) bool) ([]*projector.Event[InstitutionRegisteredEvent], error)
}

type RegisterInstitutionInput struct {
	Name               string `json:"name"`
	InstitutionType    string `json:"institutionType"`
	RegistrationNumber string `json:"registrationNumber"`
	MetadataURI        string `json:"metadataURI"`
}

type UpdateInstitutionInput struct {
	Name        string `json:"name"`
	MetadataURI string `json:"metadataURI"`
}

type InstitutionState struct {
	Name               string             `json:"name"`
	InstitutionType    string             `json:"institutionType"`
	RegistrationNumber string             `json:"registrationNumber"`
	WalletAddress      nxtypes.EthAddress `json:"walletAddress"`
	RegisteredAt       nxtypes.Uint256    `json:"registeredAt"`
	IsActive           bool               `json:"isActive"`
	MetadataURI        string             `json:"metadataURI"`
}

type InstitutionRegisteredEvent struct {
	WalletAddress nxtypes.EthAddress `json:"walletAddress"`
	Name          string             `json:"name"`
	Timestamp     nxtypes.Uint256    `json:"timestamp"`
}

type institutionRegistry struct {
	*boundContract
	registerInstitution   *ethclient.Function
	updateInstitution     *ethclient.Function
	deactivateInstitution *ethclient.Function
	getInstitution        *ethclient.Function
	getTotalInstitutions  *ethclient.Function
	getInstitutionByIndex *ethclient.Function
	verifyInstitution     *ethclient.Function
	institutionRegistered *ethclient.EventDef
}

func newInstitutionRegistry(ctx context.Context, bc *boundContract) (InstitutionRegistry, error) {
	ir := &institutionRegistry{boundContract: bc}
	err := bc.bindAll(ctx, []functionBinding{
		{functionSpec{"registerInstitution", "registerInstitution(string,string,string,string)", []string{}}, &ir.registerInstitution},
		{functionSpec{"updateInstitution", "updateInstitution(string,string)", []string{}}, &ir.updateInstitution},
		{functionSpec{"deactivateInstitution", "deactivateInstitution(address)", []string{}}, &ir.deactivateInstitution},
		{functionSpec{"getInstitution", "getInstitution(address)",
			[]string{"string", "string", "string", "address", "uint256", "bool", "string"}}, &ir.getInstitution},
		{functionSpec{"getTotalInstitutions", "getTotalInstitutions()", []string{"uint256"}}, &ir.getTotalInstitutions},
		{functionSpec{"getInstitutionByIndex", "getInstitutionByIndex(uint256)", []string{"address"}}, &ir.getInstitutionByIndex},
		{functionSpec{"verifyInstitution", "verifyInstitution(address)", []string{"bool"}}, &ir.verifyInstitution},
	}, []eventBinding{
		{eventSpec{"InstitutionRegistered", "InstitutionRegistered(address,string,uint256)", []bool{true, false, false}}, &ir.institutionRegistered},
	})
	if err != nil {
		return nil, err
	}
	return ir, nil
}

func (ir *institutionRegistry) RegisterInstitution(ctx context.Context, signerKey string, in *RegisterInstitutionInput) (*ethclient.SendResult, error) {
	return ir.send(ctx, signerKey, ir.registerInstitution, in)
}

func (ir *institutionRegistry) UpdateInstitution(ctx context.Context, signerKey string, in *UpdateInstitutionInput) (*ethclient.SendResult, error) {
	return ir.send(ctx, signerKey, ir.updateInstitution, in)
}

func (ir *institutionRegistry) DeactivateInstitution(ctx context.Context, signerKey string, wallet nxtypes.EthAddress) (*ethclient.SendResult, error) {
	return ir.send(ctx, signerKey, ir.deactivateInstitution, map[string]interface{}{"walletAddress": wallet})
}

func (ir *institutionRegistry) GetInstitution(ctx context.Context, wallet nxtypes.EthAddress) (*InstitutionState, error) {
	var out InstitutionState
	if err := ir.call(ctx, ir.getInstitution, map[string]interface{}{"walletAddress": wallet}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (ir *institutionRegistry) GetTotalInstitutions(ctx context.Context) (*nxtypes.Uint256, error) {
	var out single[nxtypes.Uint256]
	if err := ir.call(ctx, ir.getTotalInstitutions, nil, &out); err != nil {
		return nil, err
	}
	return &out.Value, nil
}

func (ir *institutionRegistry) GetInstitutionByIndex(ctx context.Context, index int) (*nxtypes.EthAddress, error) {
	var out single[nxtypes.EthAddress]
	if err := ir.call(ctx, ir.getInstitutionByIndex, map[string]interface{}{"index": index}, &out); err != nil {
		return nil, err
	}
	return &out.Value, nil
}

func (ir *institutionRegistry) VerifyInstitution(ctx context.Context, wallet nxtypes.EthAddress) (bool, error) {
	var out single[bool]
	err := ir.call(ctx, ir.verifyInstitution, map[string]interface{}{"walletAddress": wallet}, &out)
	return out.Value, err
}

func (ir *institutionRegistry) InstitutionRegistered(ctx context.Context, predicate func(e *projector.Event[InstitutionRegisteredEvent]) bool) ([]*projector.Event[InstitutionRegisteredEvent], error) {
	return projectEvents(ctx, ir.boundContract, ir.institutionRegistered, predicate)
}
