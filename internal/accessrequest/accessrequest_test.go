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

package accessrequest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Bigboss298/DataTrust-Nexus/internal/datarecord"
	"github.com/Bigboss298/DataTrust-Nexus/internal/domain"
	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	owner     = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	requester = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	stranger  = "0xcccccccccccccccccccccccccccccccccccccccc"
)

type fakeRecords map[string]*datarecord.DataRecord

func (f fakeRecords) Get(ctx context.Context, recordID string) (*datarecord.DataRecord, error) {
	if r := f[recordID]; r != nil {
		return r, nil
	}
	return nil, nxerrors.New(ctx, nxerrors.NotFound, msgs.MsgDataRecordNotFound, recordID)
}

func newTestService() (context.Context, *service) {
	records := fakeRecords{
		"REC-1": {RecordID: "REC-1", FileName: "a.pdf", Owner: *nxtypes.MustEthAddress(owner)},
		"REC-2": {RecordID: "REC-2", FileName: "b.pdf", Owner: *nxtypes.MustEthAddress(owner)},
	}
	svc := New(records, domain.NewToolkit(&nxconf.NexusConfig{})).(*service)
	tick := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}
	return context.Background(), svc
}

func TestSubmitResolvesOwner(t *testing.T) {
	ctx, svc := newTestService()
	r, err := svc.Submit(ctx, "0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB", &SubmitRequest{RecordID: "REC-1", RequestReason: "audit"})
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, StatusPending, r.Status)
	assert.Equal(t, "read", r.PermissionType)
	assert.Equal(t, owner, r.OwnerWalletAddress.String())
	assert.Equal(t, requester, r.RequesterWalletAddress.String())
	assert.Equal(t, "a.pdf", r.RecordFileName)

	pending, err := svc.HasPending(ctx, "REC-1", requester)
	require.NoError(t, err)
	assert.True(t, pending)

	_, err = svc.Submit(ctx, requester, &SubmitRequest{RecordID: "REC-1"})
	assert.Regexp(t, "ND010804", err)
}

func TestSubmitErrors(t *testing.T) {
	ctx, svc := newTestService()
	_, err := svc.Submit(ctx, requester, &SubmitRequest{RecordID: "REC-404"})
	assert.Equal(t, nxerrors.NotFound, nxerrors.KindOf(err))
	_, err = svc.Submit(ctx, "", &SubmitRequest{RecordID: "REC-1"})
	assert.Regexp(t, "ND010709", err)
	_, err = svc.Submit(ctx, requester, &SubmitRequest{RecordID: " "})
	assert.Regexp(t, "ND010700.*recordId failed notblank", err)
	assert.Empty(t, svc.requests)
}

func TestRespondRules(t *testing.T) {
	ctx, svc := newTestService()
	r, err := svc.Submit(ctx, requester, &SubmitRequest{RecordID: "REC-1", PermissionType: "verify"})
	require.NoError(t, err)

	_, err = svc.Respond(ctx, stranger, &RespondRequest{RequestID: r.ID, Action: "approve"})
	assert.Regexp(t, "ND010801", err)
	_, err = svc.Respond(ctx, owner, &RespondRequest{RequestID: r.ID, Action: "maybe"})
	assert.Regexp(t, "ND010803", err)
	_, err = svc.Respond(ctx, owner, &RespondRequest{RequestID: "nope", Action: "deny"})
	assert.Regexp(t, "ND010800", err)
	assert.Equal(t, nxerrors.NotFound, nxerrors.KindOf(err))

	approved, err := svc.Respond(ctx, owner, &RespondRequest{RequestID: r.ID, Action: "Approved", ResponseNote: "ok"})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	assert.NotNil(t, approved.RespondedAt)
	assert.Equal(t, "ok", approved.ResponseNote)

	_, err = svc.Respond(ctx, owner, &RespondRequest{RequestID: r.ID, Action: "deny"})
	assert.Regexp(t, "ND010802.*approved", err)

	pending, err := svc.HasPending(ctx, "REC-1", requester)
	require.NoError(t, err)
	assert.False(t, pending)

	// a new request is allowed once the earlier one is answered
	_, err = svc.Submit(ctx, requester, &SubmitRequest{RecordID: "REC-1"})
	require.NoError(t, err)
}

func TestPendingAndMine(t *testing.T) {
	ctx, svc := newTestService()
	first, err := svc.Submit(ctx, requester, &SubmitRequest{RecordID: "REC-1"})
	require.NoError(t, err)
	second, err := svc.Submit(ctx, requester, &SubmitRequest{RecordID: "REC-2"})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, stranger, &SubmitRequest{RecordID: "REC-1"})
	require.NoError(t, err)
	_, err = svc.Respond(ctx, owner, &RespondRequest{RequestID: first.ID, Action: "deny"})
	require.NoError(t, err)

	pending, err := svc.Pending(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	none, err := svc.Pending(ctx, requester)
	require.NoError(t, err)
	assert.Empty(t, none)

	mine, err := svc.Mine(ctx, requester)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, StatusDenied, mine[1].Status)

	// results are copies
	mine[0].Status = StatusApproved
	again, err := svc.Mine(ctx, requester)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, again[0].Status)
}

func TestConcurrentSubmit(t *testing.T) {
	ctx, svc := newTestService()
	svc.now = func() time.Time { return time.Unix(0, 0) }
	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(ctx, requester, &SubmitRequest{RecordID: "REC-1"})
		}(i)
	}
	wg.Wait()
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, svc.requests, 1)
}
