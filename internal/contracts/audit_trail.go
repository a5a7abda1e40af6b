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

type AuditTrail interface {
	CreateLog(ctx context.Context, signerKey string, in *CreateLogInput) (*ethclient.SendResult, error)
	GetAuditLog(ctx context.Context, logID *nxtypes.Uint256) (*AuditLogState, error)
	GetTotalLogs(ctx context.Context) (*nxtypes.Uint256, error)
	GetLogsByActionType(ctx context.Context, actionType uint8) ([]*nxtypes.Uint256, error)
	AuditLogCreated(ctx context.Context, predicate func(e *projector.Event[AuditLogCreatedEvent]) bool) ([]*projector.Event[AuditLogCreatedEvent], error)
	// TailAuditLogCreated folds events after the given position into fn
	TailAuditLogCreated(ctx context.Context, after *projector.Position, fn func(e *projector.Event[AuditLogCreatedEvent]) error) (*projector.Position, error)
}

type CreateLogInput struct {
	ActionType    uint8              `json:"actionType"`
	TargetAddress nxtypes.EthAddress `json:"targetAddress"`
	RecordID      string             `json:"recordId"`
	ActionDetails string             `json:"actionDetails"`
	DataHash      nxtypes.Bytes32    `json:"dataHash"`
	Success       bool               `json:"success"`
	IPAddress     string             `json:"ipAddress"`
	UserAgent     string             `json:"userAgent"`
}

type AuditLogState struct {
	ActionType    nxtypes.Uint256    `json:"actionType"`
	Actor         nxtypes.EthAddress `json:"actor"`
	TargetAddress nxtypes.EthAddress `json:"targetAddress"`
	RecordID      string             `json:"recordId"`
	ActionDetails string             `json:"actionDetails"`
	DataHash      nxtypes.Bytes32    `json:"dataHash"`
	Success       bool               `json:"success"`
	Timestamp     nxtypes.Uint256    `json:"timestamp"`
	IPAddress     string             `json:"ipAddress"`
	UserAgent     string             `json:"userAgent"`
}

type AuditLogCreatedEvent struct {
	LogID      nxtypes.Uint256    `json:"logId"`
	Actor      nxtypes.EthAddress `json:"actor"`
	ActionType nxtypes.Uint256    `json:"actionType"`
	Timestamp  nxtypes.Uint256    `json:"timestamp"`
}

type auditTrail struct {
	*boundContract
	createLog           *ethclient.Function
	getAuditLog         *ethclient.Function
	getTotalLogs        *ethclient.Function
	getLogsByActionType *ethclient.Function
	auditLogCreated     *ethclient.EventDef
}

func newAuditTrail(ctx context.Context, bc *boundContract) (AuditTrail, error) {
	at := &auditTrail{boundContract: bc}
	err := bc.bindAll(ctx, []functionBinding{
		{functionSpec{"createLog", "createLog(uint8,address,string,string,bytes32,bool,string,string)", []string{"uint256"}}, &at.createLog},
		{functionSpec{"getAuditLog", "getAuditLog(uint256)", []string{
			"uint8", "address", "address", "string", "string", "bytes32", "bool", "uint256", "string", "string",
		}}, &at.getAuditLog},
		{functionSpec{"getTotalLogs", "getTotalLogs()", []string{"uint256"}}, &at.getTotalLogs},
		{functionSpec{"getLogsByActionType", "getLogsByActionType(uint8)", []string{"uint256[]"}}, &at.getLogsByActionType},
	}, []eventBinding{
		{eventSpec{"AuditLogCreated", "AuditLogCreated(uint256,address,uint8,uint256)", []bool{true, true, false, false}}, &at.auditLogCreated},
	})
	if err != nil {
		return nil, err
	}
	return at, nil
}

func (at *auditTrail) CreateLog(ctx context.Context, signerKey string, in *CreateLogInput) (*ethclient.SendResult, error) {
	return at.send(ctx, signerKey, at.createLog, in)
}

func (at *auditTrail) GetAuditLog(ctx context.Context, logID *nxtypes.Uint256) (*AuditLogState, error) {
	var out AuditLogState
	if err := at.call(ctx, at.getAuditLog, map[string]interface{}{"logId": logID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (at *auditTrail) GetTotalLogs(ctx context.Context) (*nxtypes.Uint256, error) {
	var out single[nxtypes.Uint256]
	if err := at.call(ctx, at.getTotalLogs, nil, &out); err != nil {
		return nil, err
	}
	return &out.Value, nil
}

func (at *auditTrail) GetLogsByActionType(ctx context.Context, actionType uint8) ([]*nxtypes.Uint256, error) {
	var out single[[]*nxtypes.Uint256]
	if err := at.call(ctx, at.getLogsByActionType, map[string]interface{}{"actionType": actionType}, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

func (at *auditTrail) AuditLogCreated(ctx context.Context, predicate func(e *projector.Event[AuditLogCreatedEvent]) bool) ([]*projector.Event[AuditLogCreatedEvent], error) {
	return projectEvents(ctx, at.boundContract, at.auditLogCreated, predicate)
}

func (at *auditTrail) TailAuditLogCreated(ctx context.Context, after *projector.Position, fn func(e *projector.Event[AuditLogCreatedEvent]) error) (*projector.Position, error) {
	return at.projector.Tail(ctx, at.auditLogCreated, after, func(l *ethclient.Log) error {
		e, err := projector.Decode[AuditLogCreatedEvent](ctx, at.auditLogCreated, l)
		if err != nil {
			return err
		}
		return fn(e)
	})
}
