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

package audit

import (
	"context"

	"github.com/Bigboss298/DataTrust-Nexus/internal/contracts"
	"github.com/Bigboss298/DataTrust-Nexus/internal/domain"
	"github.com/Bigboss298/DataTrust-Nexus/internal/explorer"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
)

type ActionType uint8

const (
	InstitutionRegistered ActionType = iota
	DataUploaded
	AccessGranted
	AccessRevoked
	VerificationRequested
	VerificationCompleted
	DataAccessed
	DataDownloaded
	PermissionUpdated
	RecordDeactivated
	RecordReactivated
)

// MaxActionType is the highest code the audit contract accepts
const MaxActionType = RecordReactivated

var actionTypeNames = []string{
	"INSTITUTION_REGISTERED",
	"DATA_UPLOADED",
	"ACCESS_GRANTED",
	"ACCESS_REVOKED",
	"VERIFICATION_REQUESTED",
	"VERIFICATION_COMPLETED",
	"DATA_ACCESSED",
	"DATA_DOWNLOADED",
	"PERMISSION_UPDATED",
	"RECORD_DEACTIVATED",
	"RECORD_REACTIVATED",
}

func (at ActionType) String() string {
	if at > MaxActionType {
		return "UNKNOWN"
	}
	return actionTypeNames[at]
}

type LogEntry struct {
	LogID              int64              `json:"logId"`
	ActionType         ActionType         `json:"actionType"`
	ActionTypeName     string             `json:"actionTypeName"`
	Actor              nxtypes.EthAddress `json:"actor"`
	TargetAddress      nxtypes.EthAddress `json:"targetAddress"`
	RecordID           string             `json:"recordId"`
	ActionDetails      string             `json:"actionDetails"`
	DataHash           string             `json:"dataHash"`
	Success            bool               `json:"success"`
	Timestamp          int64              `json:"timestamp"`
	TimestampFormatted string             `json:"timestampFormatted"`
	IPAddress          string             `json:"ipAddress"`
	UserAgent          string             `json:"userAgent"`
}

type LogRequest struct {
	ActionType    int    `json:"actionType" validate:"min=0,max=10"`
	TargetAddress string `json:"targetAddress" validate:"omitempty,ethaddr"`
	RecordID      string `json:"recordId" validate:"max=100"`
	ActionDetails string `json:"actionDetails" validate:"max=1000"`
	DataHash      string `json:"dataHash" validate:"max=66"`
	Success       bool   `json:"success"`
	IPAddress     string `json:"ipAddress" validate:"max=64"`
	UserAgent     string `json:"userAgent" validate:"max=500"`
	PrivateKey    string `json:"privateKey" validate:"required"`
}

type Statistics struct {
	TotalLogs               int64            `json:"totalLogs"`
	TotalUploads            int64            `json:"totalUploads"`
	TotalVerifications      int64            `json:"totalVerifications"`
	SuccessfulVerifications int64            `json:"successfulVerifications"`
	FailedVerifications     int64            `json:"failedVerifications"`
	TotalAccessGrants       int64            `json:"totalAccessGrants"`
	TotalAccessRevocations  int64            `json:"totalAccessRevocations"`
	TotalInstitutions       int64            `json:"totalInstitutions"`
	ActionTypeCounts        map[string]int64 `json:"actionTypeCounts"`
}

// Counter is satisfied by the data record and institution services
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type Service interface {
	Log(ctx context.Context, req *LogRequest) (*explorer.TxResult, error)
	Get(ctx context.Context, logID int64) (*LogEntry, error)
	List(ctx context.Context, skip, take int) ([]*LogEntry, error)
	ListByActor(ctx context.Context, actor string, skip, take int) ([]*LogEntry, error)
	ListByRecord(ctx context.Context, recordID string, skip, take int) ([]*LogEntry, error)
	ListByActionType(ctx context.Context, actionType int, skip, take int) ([]*LogEntry, error)
	Recent(ctx context.Context, count int) ([]*LogEntry, error)
	Statistics(ctx context.Context) (*Statistics, error)
}

type service struct {
	*reader
	*writer
	*tally
}

func New(trail contracts.AuditTrail, records, institutions Counter, tk *domain.Toolkit) Service {
	return &service{
		reader: &reader{
			trail: trail,
			batch: tk.Batch,
		},
		writer: &writer{
			trail:     trail,
			validator: tk.Validator,
			explorer:  tk.Explorer,
		},
		tally: &tally{
			trail:        trail,
			records:      records,
			institutions: institutions,
			counts:       map[ActionType]int64{},
		},
	}
}
