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
	"github.com/Bigboss298/DataTrust-Nexus/internal/explorer"
	"github.com/Bigboss298/DataTrust-Nexus/internal/validation"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
)

type writer struct {
	trail     contracts.AuditTrail
	validator *validation.Validator
	explorer  *explorer.Explorer
}

func (w *writer) Log(ctx context.Context, req *LogRequest) (*explorer.TxResult, error) {
	if err := w.validator.Struct(ctx, req); err != nil {
		return nil, err
	}
	var target nxtypes.EthAddress
	if req.TargetAddress != "" {
		target = *nxtypes.MustEthAddress(req.TargetAddress)
	}
	in := &contracts.CreateLogInput{
		ActionType:    uint8(req.ActionType),
		TargetAddress: target,
		RecordID:      req.RecordID,
		ActionDetails: req.ActionDetails,
		Success:       req.Success,
		IPAddress:     req.IPAddress,
		UserAgent:     req.UserAgent,
	}
	if req.DataHash != "" {
		in.DataHash = nxtypes.DataHashToBytes32(req.DataHash)
	}
	log.L(ctx).Infof("Creating %s audit log (record='%s' success=%t)", ActionType(req.ActionType), req.RecordID, req.Success)
	res, err := w.trail.CreateLog(ctx, req.PrivateKey, in)
	if err != nil {
		return nil, err
	}
	return w.explorer.Result(res), nil
}
