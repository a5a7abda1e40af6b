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

// Package accessrequest keeps the off-chain negotiation that precedes a grant. Requests
// live only in process memory and are lost on restart. An approval records the owner's
// decision, and the grant itself is still a separate transaction.
package accessrequest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Bigboss298/DataTrust-Nexus/internal/datarecord"
	"github.com/Bigboss298/DataTrust-Nexus/internal/domain"
	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/internal/validation"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
)

type Request struct {
	ID                     string             `json:"id"`
	RecordID               string             `json:"recordId"`
	RecordFileName         string             `json:"recordFileName"`
	RequesterWalletAddress nxtypes.EthAddress `json:"requesterWalletAddress"`
	OwnerWalletAddress     nxtypes.EthAddress `json:"ownerWalletAddress"`
	PermissionType         string             `json:"permissionType"`
	RequestReason          string             `json:"requestReason"`
	RequestedAt            time.Time          `json:"requestedAt"`
	Status                 Status             `json:"status"`
	RespondedAt            *time.Time         `json:"respondedAt,omitempty"`
	ResponseNote           string             `json:"responseNote,omitempty"`
}

type SubmitRequest struct {
	RecordID       string `json:"recordId" validate:"notblank,max=100"`
	PermissionType string `json:"permissionType" validate:"max=50"`
	RequestReason  string `json:"requestReason" validate:"max=1000"`
}

type RespondRequest struct {
	RequestID    string `json:"requestId" validate:"required"`
	Action       string `json:"action" validate:"required"`
	ResponseNote string `json:"responseNote" validate:"max=500"`
}

// RecordLookup finds the current owner of a record
type RecordLookup interface {
	Get(ctx context.Context, recordID string) (*datarecord.DataRecord, error)
}

type Service interface {
	Submit(ctx context.Context, requester string, req *SubmitRequest) (*Request, error)
	Respond(ctx context.Context, responder string, req *RespondRequest) (*Request, error)
	Pending(ctx context.Context, owner string) ([]*Request, error)
	Mine(ctx context.Context, requester string) ([]*Request, error)
	HasPending(ctx context.Context, recordID, requester string) (bool, error)
}

type service struct {
	records   RecordLookup
	validator *validation.Validator
	now       func() time.Time

	mu       sync.Mutex
	requests []*Request
}

func New(records RecordLookup, tk *domain.Toolkit) Service {
	return &service{
		records:   records,
		validator: tk.Validator,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func responseStatus(action string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "approve", "approved":
		return StatusApproved, true
	case "deny", "denied":
		return StatusDenied, true
	default:
		return "", false
	}
}

func (s *service) Submit(ctx context.Context, requester string, req *SubmitRequest) (*Request, error) {
	if err := s.validator.Struct(ctx, req); err != nil {
		return nil, err
	}
	requesterAddr, err := domain.ParseWallet(ctx, requester)
	if err != nil {
		return nil, err
	}
	// resolved outside the lock, the record read is a network call
	record, err := s.records.Get(ctx, req.RecordID)
	if err != nil {
		return nil, err
	}
	permissionType := req.PermissionType
	if permissionType == "" {
		permissionType = "read"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findPending(req.RecordID, requesterAddr) != nil {
		return nil, nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgAccessRequestDuplicate, req.RecordID, requesterAddr)
	}
	r := &Request{
		ID:                     uuid.New().String(),
		RecordID:               req.RecordID,
		RecordFileName:         record.FileName,
		RequesterWalletAddress: requesterAddr,
		OwnerWalletAddress:     record.Owner,
		PermissionType:         permissionType,
		RequestReason:          req.RequestReason,
		RequestedAt:            s.now(),
		Status:                 StatusPending,
	}
	s.requests = append(s.requests, r)
	log.L(ctx).Infof("Access request %s submitted for record '%s' by %s", r.ID, r.RecordID, requesterAddr)
	copied := *r
	return &copied, nil
}

func (s *service) findPending(recordID string, requester nxtypes.EthAddress) *Request {
	for _, r := range s.requests {
		if r.Status == StatusPending && r.RecordID == recordID && r.RequesterWalletAddress == requester {
			return r
		}
	}
	return nil
}

func (s *service) Respond(ctx context.Context, responder string, req *RespondRequest) (*Request, error) {
	if err := s.validator.Struct(ctx, req); err != nil {
		return nil, err
	}
	responderAddr, err := domain.ParseWallet(ctx, responder)
	if err != nil {
		return nil, err
	}
	status, ok := responseStatus(req.Action)
	if !ok {
		return nil, nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgAccessRequestInvalidAction, req.Action)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var r *Request
	for _, candidate := range s.requests {
		if candidate.ID == req.RequestID {
			r = candidate
			break
		}
	}
	switch {
	case r == nil:
		return nil, nxerrors.New(ctx, nxerrors.NotFound, msgs.MsgAccessRequestNotFound, req.RequestID)
	case r.OwnerWalletAddress != responderAddr:
		log.L(ctx).Warnf("Rejected response to access request %s from %s, who is not the owner", r.ID, responderAddr)
		return nil, nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgAccessRequestNotOwner, r.ID)
	case r.Status != StatusPending:
		return nil, nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgAccessRequestNotPending, r.ID, r.Status)
	}
	respondedAt := s.now()
	r.Status = status
	r.RespondedAt = &respondedAt
	r.ResponseNote = req.ResponseNote
	log.L(ctx).Infof("Access request %s marked %s", r.ID, status)
	copied := *r
	return &copied, nil
}

func (s *service) filter(match func(r *Request) bool) []*Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*Request{}
	for _, r := range s.requests {
		if match(r) {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out
}

func (s *service) Pending(ctx context.Context, owner string) ([]*Request, error) {
	ownerAddr, err := domain.ParseWallet(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.filter(func(r *Request) bool {
		return r.Status == StatusPending && r.OwnerWalletAddress == ownerAddr
	}), nil
}

// Mine lists every request the wallet made, whatever its status, newest first
func (s *service) Mine(ctx context.Context, requester string) ([]*Request, error) {
	requesterAddr, err := domain.ParseWallet(ctx, requester)
	if err != nil {
		return nil, err
	}
	mine := s.filter(func(r *Request) bool {
		return r.RequesterWalletAddress == requesterAddr
	})
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].RequestedAt.After(mine[j].RequestedAt)
	})
	return mine, nil
}

func (s *service) HasPending(ctx context.Context, recordID, requester string) (bool, error) {
	requesterAddr, err := domain.ParseWallet(ctx, requester)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findPending(recordID, requesterAddr) != nil, nil
}
