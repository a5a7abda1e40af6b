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

	"github.com/Bigboss298/DataTrust-Nexus/internal/contracts"
	"github.com/Bigboss298/DataTrust-Nexus/internal/domain"
	"github.com/Bigboss298/DataTrust-Nexus/internal/explorer"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
)

const DefaultPermissionType = "read"

// Permission is the live contract view of a (record, grantee) pair. HasValidAccess is
// derived here at read time, and is never stored.
type Permission struct {
	RecordID           string             `json:"recordId"`
	Grantee            nxtypes.EthAddress `json:"granteeAddress"`
	Owner              nxtypes.EthAddress `json:"ownerAddress"`
	PermissionType     string             `json:"permissionType"`
	GrantReason        string             `json:"grantReason"`
	GrantedAt          int64              `json:"grantedAt"`
	GrantedAtFormatted string             `json:"grantedAtFormatted"`
	ExpiresAt          int64              `json:"expiresAt"`
	ExpiresAtFormatted string             `json:"expiresAtFormatted"`
	IsActive           bool               `json:"isActive"`
	HasValidAccess     bool               `json:"hasValidAccess"`
}

// HasValidAccess treats an expiry of zero as never expiring, and the expiry second
// itself as already expired
func HasValidAccess(isActive bool, expiresAt int64, now time.Time) bool {
	return isActive && (expiresAt == 0 || now.Unix() < expiresAt)
}

// GrantRequest does not check the expiry against the clock. A grant that is already
// expired can be created, and simply never reads as valid.
type GrantRequest struct {
	RecordID       string `json:"recordId" validate:"notblank,max=100"`
	GranteeAddress string `json:"granteeAddress" validate:"required,ethaddr"`
	ExpiresAt      int64  `json:"expiresAt" validate:"min=0"`
	PermissionType string `json:"permissionType" validate:"max=50"`
	GrantReason    string `json:"grantReason" validate:"max=500"`
	PrivateKey     string `json:"privateKey" validate:"required"`
}

type RevokeRequest struct {
	RecordID       string `json:"recordId" validate:"notblank,max=100"`
	GranteeAddress string `json:"granteeAddress" validate:"required,ethaddr"`
	PrivateKey     string `json:"privateKey" validate:"required"`
}

type UpdateRequest struct {
	RecordID       string `json:"recordId" validate:"notblank,max=100"`
	GranteeAddress string `json:"granteeAddress" validate:"required,ethaddr"`
	NewExpiresAt   int64  `json:"newExpiresAt" validate:"min=0"`
	PrivateKey     string `json:"privateKey" validate:"required"`
}

type Service interface {
	Grant(ctx context.Context, req *GrantRequest) (*explorer.TxResult, error)
	Revoke(ctx context.Context, req *RevokeRequest) (*explorer.TxResult, error)
	UpdateExpiry(ctx context.Context, req *UpdateRequest) (*explorer.TxResult, error)
	GetSpecificPermission(ctx context.Context, recordID, grantee string) (*Permission, error)
	CheckAccess(ctx context.Context, recordID, wallet string) (bool, error)
	HasAccessOnChain(ctx context.Context, recordID, wallet string) (bool, error)
	ListForRecord(ctx context.Context, recordID string, skip, take int) ([]*Permission, error)
	ListForUser(ctx context.Context, wallet string, skip, take int) ([]*Permission, error)
	ListGrantedBy(ctx context.Context, owner string, skip, take int) ([]*Permission, error)
	ListReceivedBy(ctx context.Context, grantee string, skip, take int) ([]*Permission, error)
}

type service struct {
	*reader
	*writer
}

func New(ac contracts.AccessControl, tk *domain.Toolkit) Service {
	return &service{
		reader: &reader{
			ac:    ac,
			batch: tk.Batch,
			now:   time.Now,
		},
		writer: &writer{
			ac:        ac,
			validator: tk.Validator,
			explorer:  tk.Explorer,
		},
	}
}
