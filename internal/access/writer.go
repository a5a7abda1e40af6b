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

	"github.com/Bigboss298/DataTrust-Nexus/internal/contracts"
	"github.com/Bigboss298/DataTrust-Nexus/internal/explorer"
	"github.com/Bigboss298/DataTrust-Nexus/internal/validation"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
)

type writer struct {
	ac        contracts.AccessControl
	validator *validation.Validator
	explorer  *explorer.Explorer
}

func (w *writer) Grant(ctx context.Context, req *GrantRequest) (*explorer.TxResult, error) {
	if err := w.validator.Struct(ctx, req); err != nil {
		return nil, err
	}
	permissionType := req.PermissionType
	if permissionType == "" {
		permissionType = DefaultPermissionType
	}
	grantee := nxtypes.MustEthAddress(req.GranteeAddress)
	log.L(ctx).Infof("Granting %s access on record '%s' to %s (expires=%d)", permissionType, req.RecordID, grantee, req.ExpiresAt)
	res, err := w.ac.GrantAccess(ctx, req.PrivateKey, &contracts.GrantAccessInput{
		RecordID:       req.RecordID,
		Grantee:        *grantee,
		ExpiresAt:      *nxtypes.NewUint256(req.ExpiresAt),
		PermissionType: permissionType,
		GrantReason:    req.GrantReason,
	})
	if err != nil {
		return nil, err
	}
	return w.explorer.Result(res), nil
}

// Revoke always submits. Whether the permission is still active is for the contract to
// decide, and its revert is returned as is.
func (w *writer) Revoke(ctx context.Context, req *RevokeRequest) (*explorer.TxResult, error) {
	if err := w.validator.Struct(ctx, req); err != nil {
		return nil, err
	}
	grantee := nxtypes.MustEthAddress(req.GranteeAddress)
	log.L(ctx).Infof("Revoking access on record '%s' from %s", req.RecordID, grantee)
	res, err := w.ac.RevokeAccess(ctx, req.PrivateKey, req.RecordID, *grantee)
	if err != nil {
		return nil, err
	}
	return w.explorer.Result(res), nil
}

func (w *writer) UpdateExpiry(ctx context.Context, req *UpdateRequest) (*explorer.TxResult, error) {
	if err := w.validator.Struct(ctx, req); err != nil {
		return nil, err
	}
	grantee := nxtypes.MustEthAddress(req.GranteeAddress)
	log.L(ctx).Infof("Updating expiry on record '%s' for %s to %d", req.RecordID, grantee, req.NewExpiresAt)
	res, err := w.ac.UpdatePermission(ctx, req.PrivateKey, req.RecordID, *grantee, nxtypes.NewUint256(req.NewExpiresAt))
	if err != nil {
		return nil, err
	}
	return w.explorer.Result(res), nil
}
