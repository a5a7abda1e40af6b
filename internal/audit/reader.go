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
	"strings"

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
	trail contracts.AuditTrail
	batch *batch.Reader
}

func (r *reader) Get(ctx context.Context, logID int64) (*LogEntry, error) {
	if logID < 0 {
		return nil, nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgInvalidParameters, "logId")
	}
	state, err := r.trail.GetAuditLog(ctx, nxtypes.NewUint256(logID))
	if err != nil {
		return nil, domain.NotFoundOnRevert(ctx, err, msgs.MsgAuditLogNotFound, logID)
	}
	if state.Actor.IsZero() {
		return nil, nxerrors.New(ctx, nxerrors.NotFound, msgs.MsgAuditLogNotFound, logID)
	}
	actionType := ActionType(state.ActionType.IntClamped(ctx, "actionType"))
	ts, formatted := domain.UnixSeconds(ctx, &state.Timestamp, "timestamp")
	entry := &LogEntry{
		LogID:              logID,
		ActionType:         actionType,
		ActionTypeName:     actionType.String(),
		Actor:              state.Actor,
		TargetAddress:      state.TargetAddress,
		RecordID:           state.RecordID,
		ActionDetails:      state.ActionDetails,
		Success:            state.Success,
		Timestamp:          ts,
		TimestampFormatted: formatted,
		IPAddress:          state.IPAddress,
		UserAgent:          state.UserAgent,
	}
	if !state.DataHash.IsZero() {
		entry.DataHash = state.DataHash.DataHashString()
	}
	return entry, nil
}

// logIDs lists the ids of every matching log in creation order. Logs never change once
// created, so the event payload is enough to filter on actor and type.
func (r *reader) logIDs(ctx context.Context, match func(e *contracts.AuditLogCreatedEvent) bool) ([]int64, error) {
	events, err := r.trail.AuditLogCreated(ctx, func(e *projector.Event[contracts.AuditLogCreatedEvent]) bool {
		return match == nil || match(&e.Data)
	})
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(events))
	for i, e := range events {
		ids[i] = e.Data.LogID.Int64Clamped(ctx, "logId")
	}
	log.L(ctx).Debugf("Discovered %d audit logs", len(ids))
	return ids, nil
}

func (r *reader) fetchPage(ctx context.Context, ids []int64, skip, take int) ([]*LogEntry, error) {
	return batch.Fetch(ctx, r.batch, "audit log", batch.Paginate(r.batch, ids, skip, take), r.Get)
}

func (r *reader) List(ctx context.Context, skip, take int) ([]*LogEntry, error) {
	ids, err := r.logIDs(ctx, nil)
	if err != nil {
		return nil, err
	}
	return r.fetchPage(ctx, ids, skip, take)
}

func (r *reader) ListByActor(ctx context.Context, actor string, skip, take int) ([]*LogEntry, error) {
	addr, err := domain.ParseWallet(ctx, actor)
	if err != nil {
		return nil, err
	}
	ids, err := r.logIDs(ctx, func(e *contracts.AuditLogCreatedEvent) bool {
		return e.Actor.Equals(&addr)
	})
	if err != nil {
		return nil, err
	}
	return r.fetchPage(ctx, ids, skip, take)
}

func (r *reader) ListByActionType(ctx context.Context, actionType int, skip, take int) ([]*LogEntry, error) {
	if actionType < 0 || actionType > int(MaxActionType) {
		return nil, nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgInvalidActionType, actionType)
	}
	ids, err := r.logIDs(ctx, func(e *contracts.AuditLogCreatedEvent) bool {
		return e.ActionType.IntClamped(ctx, "actionType") == actionType
	})
	if err != nil {
		return nil, err
	}
	return r.fetchPage(ctx, ids, skip, take)
}

// ListByRecord has to read every log, as the record id is not in the event
func (r *reader) ListByRecord(ctx context.Context, recordID string, skip, take int) ([]*LogEntry, error) {
	if recordID == "" {
		return nil, nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgInvalidParameters, "recordId")
	}
	ids, err := r.logIDs(ctx, nil)
	if err != nil {
		return nil, err
	}
	entries, err := batch.Fetch(ctx, r.batch, "audit log", ids, r.Get)
	if err != nil {
		return nil, err
	}
	matched := make([]*LogEntry, 0, len(entries))
	for _, e := range entries {
		if strings.EqualFold(e.RecordID, recordID) {
			matched = append(matched, e)
		}
	}
	return batch.Paginate(r.batch, matched, skip, take), nil
}

// Recent returns up to count of the newest logs, newest first
func (r *reader) Recent(ctx context.Context, count int) ([]*LogEntry, error) {
	_, count = r.batch.Page(0, count)
	ids, err := r.logIDs(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(ids) > count {
		ids = ids[len(ids)-count:]
	}
	newestFirst := make([]int64, len(ids))
	for i, id := range ids {
		newestFirst[len(ids)-1-i] = id
	}
	return batch.Fetch(ctx, r.batch, "audit log", newestFirst, r.Get)
}
