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

package access

import (
	"context"
	"time"

	"github.com/Bigboss298/DataTrust-Nexus/internal/batch"
	"github.com/Bigboss298/DataTrust-Nexus/internal/contracts"
	"github.com/Bigboss298/DataTrust-Nexus/internal/domain"
	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/internal/projector"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
)

type reader struct {
	ac    contracts.AccessControl
	batch *batch.Reader
	now   func() time.Time
}

type grantKey struct {
	recordID string
	grantee  nxtypes.EthAddress
}

func (k grantKey) String() string {
	return k.recordID + "/" + k.grantee.String()
}

func (r *reader) parseKey(ctx context.Context, recordID, wallet string) (grantKey, error) {
	if recordID == "" {
		return grantKey{}, nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgInvalidParameters, "recordId")
	}
	addr, err := domain.ParseWallet(ctx, wallet)
	if err != nil {
		return grantKey{}, err
	}
	return grantKey{recordID: recordID, grantee: addr}, nil
}

func (r *reader) GetSpecificPermission(ctx context.Context, recordID, grantee string) (*Permission, error) {
	key, err := r.parseKey(ctx, recordID, grantee)
	if err != nil {
		return nil, err
	}
	return r.getPermission(ctx, key)
}

func (r *reader) getPermission(ctx context.Context, key grantKey) (*Permission, error) {
	state, err := r.ac.GetPermission(ctx, key.recordID, key.grantee)
	if err != nil {
		return nil, domain.NotFoundOnRevert(ctx, err, msgs.MsgPermissionNotFound, key.grantee, key.recordID)
	}
	// the contract answers an unknown pair with an all zero struct
	if state.Owner.IsZero() {
		return nil, nxerrors.New(ctx, nxerrors.NotFound, msgs.MsgPermissionNotFound, key.grantee, key.recordID)
	}
	grantedAt, grantedAtFormatted := domain.UnixSeconds(ctx, &state.GrantedAt, "grantedAt")
	expiresAt, expiresAtFormatted := domain.UnixSeconds(ctx, &state.ExpiresAt, "expiresAt")
	return &Permission{
		RecordID:           key.recordID,
		Grantee:            key.grantee,
		Owner:              state.Owner,
		PermissionType:     state.PermissionType,
		GrantReason:        state.GrantReason,
		GrantedAt:          grantedAt,
		GrantedAtFormatted: grantedAtFormatted,
		ExpiresAt:          expiresAt,
		ExpiresAtFormatted: expiresAtFormatted,
		IsActive:           state.IsActive,
		HasValidAccess:     HasValidAccess(state.IsActive, expiresAt, r.now()),
	}, nil
}

// CheckAccess answers from the live permission, so a missing permission is simply false
func (r *reader) CheckAccess(ctx context.Context, recordID, wallet string) (bool, error) {
	key, err := r.parseKey(ctx, recordID, wallet)
	if err != nil {
		return false, err
	}
	p, err := r.getPermission(ctx, key)
	if err != nil {
		if nxerrors.Is(err, nxerrors.NotFound) {
			return false, nil
		}
		return false, err
	}
	return p.HasValidAccess, nil
}

func (r *reader) HasAccessOnChain(ctx context.Context, recordID, wallet string) (bool, error) {
	key, err := r.parseKey(ctx, recordID, wallet)
	if err != nil {
		return false, err
	}
	return r.ac.HasAccess(ctx, key.recordID, key.grantee)
}

func (r *reader) ListForRecord(ctx context.Context, recordID string, skip, take int) ([]*Permission, error) {
	if recordID == "" {
		return nil, nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgInvalidParameters, "recordId")
	}
	return r.list(ctx, skip, take, func(e *contracts.AccessGrantedEvent) bool {
		return e.RecordID == recordID
	})
}

// ListForUser covers both directions: permissions the wallet granted, and those it holds
func (r *reader) ListForUser(ctx context.Context, wallet string, skip, take int) ([]*Permission, error) {
	addr, err := domain.ParseWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, skip, take, func(e *contracts.AccessGrantedEvent) bool {
		return e.Owner.Equals(&addr) || e.Grantee.Equals(&addr)
	})
}

func (r *reader) ListGrantedBy(ctx context.Context, owner string, skip, take int) ([]*Permission, error) {
	addr, err := domain.ParseWallet(ctx, owner)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, skip, take, func(e *contracts.AccessGrantedEvent) bool {
		return e.Owner.Equals(&addr)
	})
}

func (r *reader) ListReceivedBy(ctx context.Context, grantee string, skip, take int) ([]*Permission, error) {
	addr, err := domain.ParseWallet(ctx, grantee)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, skip, take, func(e *contracts.AccessGrantedEvent) bool {
		return e.Grantee.Equals(&addr)
	})
}

// list finds every (record, grantee) pair ever granted that matches, reads each one live,
// and keeps the active ones. A pair granted more than once is listed at its latest grant.
func (r *reader) list(ctx context.Context, skip, take int, match func(e *contracts.AccessGrantedEvent) bool) ([]*Permission, error) {
	events, err := r.ac.AccessGranted(ctx, func(e *projector.Event[contracts.AccessGrantedEvent]) bool {
		return match(&e.Data)
	})
	if err != nil {
		return nil, err
	}
	keys := make([]grantKey, 0, len(events))
	seen := make(map[grantKey]bool, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		key := grantKey{recordID: events[i].Data.RecordID, grantee: events[i].Data.Grantee}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}
	log.L(ctx).Debugf("Discovered %d granted permissions from %d grants", len(keys), len(events))

	permissions, err := batch.Fetch(ctx, r.batch, "permission", keys, r.getPermission)
	if err != nil {
		return nil, err
	}
	active := make([]*Permission, 0, len(permissions))
	for _, p := range permissions {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return batch.Paginate(r.batch, active, skip, take), nil
}
