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
	"github.com/Bigboss298/DataTrust-Nexus/internal/validation"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
)

type writer struct {
	registry         contracts.InstitutionRegistry
	validator        *validation.Validator
	explorer         *explorer.Explorer
	serverKey        string
	chainID          int64
	requireSignature bool
}

// Register is the one flow signed with the server key, after the wallet's own signature
// has been checked
func (w *writer) Register(ctx context.Context, req *RegisterRequest) (*explorer.TxResult, error) {
	if err := w.validator.Struct(ctx, req); err != nil {
		return nil, err
	}
	wallet, err := domain.ParseWallet(ctx, req.WalletAddress)
	if err != nil {
		return nil, err
	}
	if err := w.verifyRegistrationSignature(ctx, req, wallet); err != nil {
		return nil, err
	}
	log.L(ctx).Infof("Registering institution '%s' for wallet %s", req.Name, wallet)
	res, err := w.registry.RegisterInstitution(ctx, w.serverKey, &contracts.RegisterInstitutionInput{
		Name:               req.Name,
		InstitutionType:    req.InstitutionType,
		RegistrationNumber: req.RegistrationNumber,
		MetadataURI:        req.MetadataURI,
	})
	if err != nil {
		return nil, err
	}
	return w.explorer.Result(res), nil
}

func (w *writer) Update(ctx context.Context, req *UpdateRequest) (*explorer.TxResult, error) {
	if err := w.validator.Struct(ctx, req); err != nil {
		return nil, err
	}
	log.L(ctx).Infof("Updating institution %s", req.WalletAddress)
	res, err := w.registry.UpdateInstitution(ctx, req.PrivateKey, &contracts.UpdateInstitutionInput{
		Name:        req.Name,
		MetadataURI: req.MetadataURI,
	})
	if err != nil {
		return nil, err
	}
	return w.explorer.Result(res), nil
}

func (w *writer) Deactivate(ctx context.Context, req *DeactivateRequest) (*explorer.TxResult, error) {
	if err := w.validator.Struct(ctx, req); err != nil {
		return nil, err
	}
	wallet, err := domain.ParseWallet(ctx, req.WalletAddress)
	if err != nil {
		return nil, err
	}
	log.L(ctx).Infof("Deactivating institution %s", wallet)
	res, err := w.registry.DeactivateInstitution(ctx, req.PrivateKey, wallet)
	if err != nil {
		return nil, err
	}
	return w.explorer.Result(res), nil
}
