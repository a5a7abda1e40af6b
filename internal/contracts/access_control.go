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

type AccessControl interface {
	GrantAccess(ctx context.Context, signerKey string, in *GrantAccessInput) (*ethclient.SendResult, error)
	RevokeAccess(ctx context.Context, signerKey string, recordID string, grantee nxtypes.EthAddress) (*ethclient.SendResult, error)
	UpdatePermission(ctx context.Context, signerKey string, recordID string, grantee nxtypes.EthAddress, newExpiresAt *nxtypes.Uint256) (*ethclient.SendResult, error)
	HasAccess(ctx context.Context, recordID string, grantee nxtypes.EthAddress) (bool, error)
	GetPermission(ctx context.Context, recordID string, grantee nxtypes.EthAddress) (*PermissionState, error)
	AccessGranted(ctx context.Context, predicate func(e *projector.Event[AccessGrantedEvent]) bool) ([]*projector.Event[AccessGrantedEvent], error)
}

type GrantAccessInput struct {
	RecordID       string             `json:"recordId"`
	Grantee        nxtypes.EthAddress `json:"grantee"`
	ExpiresAt      nxtypes.Uint256    `json:"expiresAt"`
	PermissionType string             `json:"permissionType"`
	GrantReason    string             `json:"grantReason"`
}

type PermissionState struct {
	Owner          nxtypes.EthAddress `json:"owner"`
	PermissionType string             `json:"permissionType"`
	GrantReason    string             `json:"grantReason"`
	GrantedAt      nxtypes.Uint256    `json:"grantedAt"`
	ExpiresAt      nxtypes.Uint256    `json:"expiresAt"`
	IsActive       bool               `json:"isActive"`
}

type AccessGrantedEvent struct {
	RecordID       string             `json:"recordId"`
	Owner          nxtypes.EthAddress `json:"owner"`
	Grantee        nxtypes.EthAddress `json:"grantee"`
	PermissionType string             `json:"permissionType"`
	ExpiresAt      nxtypes.Uint256    `json:"expiresAt"`
}

type accessControl struct {
	*boundContract
	grantAccess      *ethclient.Function
	revokeAccess     *ethclient.Function
	updatePermission *ethclient.Function
	hasAccess        *ethclient.Function
	getPermission    *ethclient.Function
	accessGranted    *ethclient.EventDef
}

func newAccessControl(ctx context.Context, bc *boundContract) (AccessControl, error) {
	ac := &accessControl{boundContract: bc}
	err := bc.bindAll(ctx, []functionBinding{
		{functionSpec{"grantAccess", "grantAccess(string,address,uint256,string,string)", []string{}}, &ac.grantAccess},
		{functionSpec{"revokeAccess", "revokeAccess(string,address)", []string{}}, &ac.revokeAccess},
		{functionSpec{"updatePermission", "updatePermission(string,address,uint256)", []string{}}, &ac.updatePermission},
		{functionSpec{"hasAccess", "hasAccess(string,address)", []string{"bool"}}, &ac.hasAccess},
		{functionSpec{"getPermission", "getPermission(string,address)",
			[]string{"address", "string", "string", "uint256", "uint256", "bool"}}, &ac.getPermission},
	}, []eventBinding{
		{eventSpec{"AccessGranted", "AccessGranted(string,address,address,string,uint256)", []bool{false, true, true, false, false}}, &ac.accessGranted},
	})
	if err != nil {
		return nil, err
	}
	return ac, nil
}

func (ac *accessControl) GrantAccess(ctx context.Context, signerKey string, in *GrantAccessInput) (*ethclient.SendResult, error) {
	return ac.send(ctx, signerKey, ac.grantAccess, in)
}

func (ac *accessControl) RevokeAccess(ctx context.Context, signerKey string, recordID string, grantee nxtypes.EthAddress) (*ethclient.SendResult, error) {
	return ac.send(ctx, signerKey, ac.revokeAccess, map[string]interface{}{"recordId": recordID, "grantee": grantee})
}

func (ac *accessControl) UpdatePermission(ctx context.Context, signerKey string, recordID string, grantee nxtypes.EthAddress, newExpiresAt *nxtypes.Uint256) (*ethclient.SendResult, error) {
	return ac.send(ctx, signerKey, ac.updatePermission, map[string]interface{}{
		"recordId":     recordID,
		"grantee":      grantee,
		"newExpiresAt": newExpiresAt,
	})
}

func (ac *accessControl) HasAccess(ctx context.Context, recordID string, grantee nxtypes.EthAddress) (bool, error) {
	var out single[bool]
	err := ac.call(ctx, ac.hasAccess, map[string]interface{}{"recordId": recordID, "grantee": grantee}, &out)
	return out.Value, err
}

func (ac *accessControl) GetPermission(ctx context.Context, recordID string, grantee nxtypes.EthAddress) (*PermissionState, error) {
	var out PermissionState
	if err := ac.call(ctx, ac.getPermission, map[string]interface{}{"recordId": recordID, "grantee": grantee}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (ac *accessControl) AccessGranted(ctx context.Context, predicate func(e *projector.Event[AccessGrantedEvent]) bool) ([]*projector.Event[AccessGrantedEvent], error) {
	return projectEvents(ctx, ac.boundContract, ac.accessGranted, predicate)
}
