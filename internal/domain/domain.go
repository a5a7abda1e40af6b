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

// Package domain holds what the institution, data, access and audit services share:
// the batch reader, the explorer link builder, input validation and a few conversions.
package domain

import (
	"context"
	"time"

	"github.com/Bigboss298/DataTrust-Nexus/internal/batch"
	"github.com/Bigboss298/DataTrust-Nexus/internal/explorer"
	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/internal/validation"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

const TimeFormat = "2006-01-02 15:04:05 UTC"

type Toolkit struct {
	Batch     *batch.Reader
	Explorer  *explorer.Explorer
	Validator *validation.Validator
}

func NewToolkit(conf *nxconf.NexusConfig) *Toolkit {
	return &Toolkit{
		Batch:     batch.NewReader(&conf.Reader),
		Explorer:  explorer.New(&conf.Explorer),
		Validator: validation.New(),
	}
}

// ParseWallet returns InvalidArgument for anything that is not a 20 byte hex address
func ParseWallet(ctx context.Context, s string) (nxtypes.EthAddress, error) {
	addr, err := nxtypes.ParseEthAddress(ctx, s)
	if err != nil {
		return nxtypes.EthAddress{}, nxerrors.Wrap(ctx, nxerrors.InvalidArgument, err, msgs.MsgInvalidWallet, s)
	}
	return *addr, nil
}

// NotFoundOnRevert turns the revert a getter raises for an unknown key into NotFound,
// keeping the revert as the cause. Anything else is returned as is.
func NotFoundOnRevert(ctx context.Context, err error, key i18n.ErrorMessageKey, inserts ...interface{}) error {
	if nxerrors.Is(err, nxerrors.Reverted) {
		return nxerrors.Wrap(ctx, nxerrors.NotFound, err, key, inserts...)
	}
	return err
}

// UnixSeconds narrows an on-chain timestamp, also returning it formatted for display.
// Zero stays zero with an empty string.
func UnixSeconds(ctx context.Context, u *nxtypes.Uint256, field string) (int64, string) {
	secs := u.Int64Clamped(ctx, field)
	if secs == 0 {
		return 0, ""
	}
	return secs, time.Unix(secs, 0).UTC().Format(TimeFormat)
}
