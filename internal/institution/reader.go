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

	"github.com/Bigboss298/DataTrust-Nexus/internal/batch"
	"github.com/Bigboss298/DataTrust-Nexus/internal/contracts"
	"github.com/Bigboss298/DataTrust-Nexus/internal/domain"
	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
)

type reader struct {
	registry contracts.InstitutionRegistry
	batch    *batch.Reader
}

func (r *reader) Get(ctx context.Context, wallet string) (*Institution, error) {
	addr, err := domain.ParseWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}
	return r.getInstitution(ctx, addr)
}

func (r *reader) getInstitution(ctx context.Context, wallet nxtypes.EthAddress) (*Institution, error) {
	state, err := r.registry.GetInstitution(ctx, wallet)
	if err != nil {
		return nil, domain.NotFoundOnRevert(ctx, err, msgs.MsgInstitutionNotFound, wallet)
	}
	// unknown wallets come back as an empty struct rather than a revert
	if state.WalletAddress.IsZero() {
		return nil, nxerrors.New(ctx, nxerrors.NotFound, msgs.MsgInstitutionNotFound, wallet)
	}
	registeredAt, formatted := domain.UnixSeconds(ctx, &state.RegisteredAt, "registeredAt")
	return &Institution{
		WalletAddress:         state.WalletAddress,
		Name:                  state.Name,
		InstitutionType:       state.InstitutionType,
		RegistrationNumber:    state.RegistrationNumber,
		MetadataURI:           state.MetadataURI,
		RegisteredAt:          registeredAt,
		RegisteredAtFormatted: formatted,
		IsActive:              state.IsActive,
	}, nil
}

// List discovers wallets from the registration events, and reads each one live. A wallet
// registered twice is listed once, at its first registration.
func (r *reader) List(ctx context.Context, skip, take int) ([]*Institution, error) {
	events, err := r.registry.InstitutionRegistered(ctx, nil)
	if err != nil {
		return nil, err
	}
	seen := make(map[nxtypes.EthAddress]bool, len(events))
	wallets := make([]nxtypes.EthAddress, 0, len(events))
	for _, e := range events {
		if !seen[e.Data.WalletAddress] {
			seen[e.Data.WalletAddress] = true
			wallets = append(wallets, e.Data.WalletAddress)
		}
	}
	log.L(ctx).Debugf("Discovered %d institutions from %d registration events", len(wallets), len(events))
	return batch.Fetch(ctx, r.batch, "institution", batch.Paginate(r.batch, wallets, skip, take), r.getInstitution)
}

func (r *reader) IsVerified(ctx context.Context, wallet string) (bool, error) {
	addr, err := domain.ParseWallet(ctx, wallet)
	if err != nil {
		return false, err
	}
	return r.registry.VerifyInstitution(ctx, addr)
}

func (r *reader) Count(ctx context.Context) (int64, error) {
	total, err := r.registry.GetTotalInstitutions(ctx)
	if err != nil {
		return 0, err
	}
	return total.Int64Clamped(ctx, "totalInstitutions"), nil
}
