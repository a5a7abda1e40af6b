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
	"sync"

	"github.com/Bigboss298/DataTrust-Nexus/internal/contracts"
	"github.com/Bigboss298/DataTrust-Nexus/internal/projector"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
)

// tally keeps running counts of audit logs, folding in only the events created since the
// last refresh. Verification outcomes need the log itself, so those are read as they
// are folded. A verification whose read fails is counted once it can be read.
type tally struct {
	trail        contracts.AuditTrail
	records      Counter
	institutions Counter

	mu               sync.Mutex
	position         *projector.Position
	counts           map[ActionType]int64
	verificationsOK  int64
	verificationsBad int64
	unresolved       []nxtypes.Uint256
}

func isVerification(at ActionType) bool {
	return at == VerificationRequested || at == VerificationCompleted
}

// refresh works on a copy, so a failed scan leaves the counts and the position exactly
// as they were
func (t *tally) refresh(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	counts := make(map[ActionType]int64, len(t.counts))
	for k, v := range t.counts {
		counts[k] = v
	}
	ok, bad := t.verificationsOK, t.verificationsBad
	var unresolved []nxtypes.Uint256

	resolve := func(logID nxtypes.Uint256) error {
		state, err := t.trail.GetAuditLog(ctx, &logID)
		switch {
		case err == nil && state.Success:
			ok++
		case err == nil:
			bad++
		case ctx.Err() != nil:
			return err
		default:
			log.L(ctx).Warnf("Verification outcome of audit log %s unavailable, retrying on next refresh: %s", logID.String(), err)
			unresolved = append(unresolved, logID)
		}
		return nil
	}

	for _, logID := range t.unresolved {
		if err := resolve(logID); err != nil {
			return err
		}
	}
	pos, err := t.trail.TailAuditLogCreated(ctx, t.position, func(e *projector.Event[contracts.AuditLogCreatedEvent]) error {
		at := ActionType(e.Data.ActionType.IntClamped(ctx, "actionType"))
		counts[at]++
		if isVerification(at) {
			return resolve(e.Data.LogID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	t.position, t.counts, t.verificationsOK, t.verificationsBad, t.unresolved = pos, counts, ok, bad, unresolved
	return nil
}

func (t *tally) Statistics(ctx context.Context) (*Statistics, error) {
	if err := t.refresh(ctx); err != nil {
		return nil, err
	}
	stats := &Statistics{ActionTypeCounts: make(map[string]int64, len(actionTypeNames))}
	for _, name := range actionTypeNames {
		stats.ActionTypeCounts[name] = 0
	}
	t.mu.Lock()
	for at, n := range t.counts {
		stats.ActionTypeCounts[at.String()] += n
		stats.TotalLogs += n
	}
	stats.TotalVerifications = t.counts[VerificationRequested] + t.counts[VerificationCompleted]
	stats.SuccessfulVerifications = t.verificationsOK
	stats.FailedVerifications = t.verificationsBad
	stats.TotalAccessGrants = t.counts[AccessGranted]
	stats.TotalAccessRevocations = t.counts[AccessRevoked]
	t.mu.Unlock()

	// the registry totals are best effort, an unreachable contract leaves the total at zero
	if n, err := t.records.Count(ctx); err == nil {
		stats.TotalUploads = n
	} else {
		log.L(ctx).Warnf("Failed to count data records: %s", err)
	}
	if n, err := t.institutions.Count(ctx); err == nil {
		stats.TotalInstitutions = n
	} else {
		log.L(ctx).Warnf("Failed to count institutions: %s", err)
	}
	return stats, nil
}
