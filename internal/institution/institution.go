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

package institution

import (
	"context"

	"github.com/Bigboss298/DataTrust-Nexus/internal/contracts"
	"github.com/Bigboss298/DataTrust-Nexus/internal/domain"
	"github.com/Bigboss298/DataTrust-Nexus/internal/explorer"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/confutil"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
)

type Institution struct {
	WalletAddress         nxtypes.EthAddress `json:"walletAddress"`
	Name                  string             `json:"name"`
	InstitutionType       string             `json:"institutionType"`
	RegistrationNumber    string             `json:"registrationNumber"`
	MetadataURI           string             `json:"metadataUri"`
	RegisteredAt          int64              `json:"registeredAt"`
	RegisteredAtFormatted string             `json:"registeredAtFormatted"`
	IsActive              bool               `json:"isActive"`
}

// RegisterRequest is submitted on behalf of the institution wallet, and signed by the
// server key. The wallet proves consent with a personal_sign signature over
// RegistrationMessage.
type RegisterRequest struct {
	Name               string `json:"name" validate:"notblank,max=200"`
	InstitutionType    string `json:"institutionType" validate:"notblank,max=100"`
	RegistrationNumber string `json:"registrationNumber" validate:"max=100"`
	MetadataURI        string `json:"metadataUri"`
	WalletAddress      string `json:"walletAddress" validate:"required,ethaddr"`
	Signature          string `json:"signature"`
}

type UpdateRequest struct {
	WalletAddress string `json:"walletAddress" validate:"required,ethaddr"`
	Name          string `json:"name" validate:"notblank,max=200"`
	MetadataURI   string `json:"metadataUri"`
	PrivateKey    string `json:"privateKey" validate:"required"`
}

type DeactivateRequest struct {
	WalletAddress string `json:"walletAddress" validate:"required,ethaddr"`
	PrivateKey    string `json:"privateKey" validate:"required"`
}

type Service interface {
	Register(ctx context.Context, req *RegisterRequest) (*explorer.TxResult, error)
	Update(ctx context.Context, req *UpdateRequest) (*explorer.TxResult, error)
	Deactivate(ctx context.Context, req *DeactivateRequest) (*explorer.TxResult, error)
	Get(ctx context.Context, wallet string) (*Institution, error)
	List(ctx context.Context, skip, take int) ([]*Institution, error)
	IsVerified(ctx context.Context, wallet string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type service struct {
	*reader
	*writer
}

func New(conf *nxconf.InstitutionConfig, registry contracts.InstitutionRegistry, chainID int64, serverKey string, tk *domain.Toolkit) Service {
	return &service{
		reader: &reader{
			registry: registry,
			batch:    tk.Batch,
		},
		writer: &writer{
			registry:         registry,
			validator:        tk.Validator,
			explorer:         tk.Explorer,
			serverKey:        serverKey,
			chainID:          chainID,
			requireSignature: confutil.Bool(conf.RequireSignature, *nxconf.InstitutionDefaults.RequireSignature),
		},
	}
}
