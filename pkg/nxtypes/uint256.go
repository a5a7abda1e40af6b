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

package nxtypes

import (
	"context"
	"encoding/json"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
)

// Uint256 carries on-chain integers at full precision. Narrowing to a Go integer only
// happens through the Clamped accessors, which log when the value does not fit.
type Uint256 big.Int

var (
	maxInt64 = big.NewInt(math.MaxInt64)
	maxInt   = big.NewInt(math.MaxInt)
)

func NewUint256(i int64) *Uint256 {
	return (*Uint256)(big.NewInt(i))
}

func Uint256FromBig(i *big.Int) *Uint256 {
	return (*Uint256)(new(big.Int).Set(i))
}

// ParseUint256 accepts base 10, or 0x prefixed hex. Negative values are rejected.
func ParseUint256(ctx context.Context, s string) (*Uint256, error) {
	i, ok := new(big.Int).SetString(strings.TrimSpace(s), 0)
	if !ok || i.Sign() < 0 {
		return nil, nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgTypesInvalidUint256, s)
	}
	return (*Uint256)(i), nil
}

// Int returns a copy, so callers cannot mutate the value
func (u *Uint256) Int() *big.Int {
	if u == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(u))
}

func (u *Uint256) IsZero() bool {
	return u == nil || (*big.Int)(u).Sign() == 0
}

func (u *Uint256) String() string {
	if u == nil {
		return "0"
	}
	return (*big.Int)(u).String()
}

func (u *Uint256) clampTo(ctx context.Context, field string, max *big.Int) *big.Int {
	i := u.Int()
	switch {
	case i.Sign() < 0:
		log.L(ctx).Warnf("Value of %s (%s) is negative, clamped to 0", field, i)
		return new(big.Int)
	case i.Cmp(max) > 0:
		log.L(ctx).Warnf("Value of %s (%s) exceeds %s, clamped", field, i, max)
		return max
	default:
		return i
	}
}

func (u *Uint256) Int64Clamped(ctx context.Context, field string) int64 {
	return u.clampTo(ctx, field, maxInt64).Int64()
}

func (u *Uint256) IntClamped(ctx context.Context, field string) int {
	return int(u.clampTo(ctx, field, maxInt).Int64())
}

// UnixTime interprets the value as seconds since the epoch. Zero maps to the zero time.
func (u *Uint256) UnixTime(ctx context.Context, field string) time.Time {
	secs := u.Int64Clamped(ctx, field)
	if secs == 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

func (u *Uint256) UnmarshalJSON(data []byte) error {
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	parsed, err := ParseUint256(context.Background(), s)
	if err != nil {
		return err
	}
	*u = *parsed
	return nil
}

func (u Uint256) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}
