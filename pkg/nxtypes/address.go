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
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

// EthAddress is a 20 byte account or contract address. Equality is on the bytes, so the
// case of the hex it was parsed from never matters.
type EthAddress [20]byte

var zeroAddress = EthAddress{}

func ParseEthAddress(ctx context.Context, s string) (*EthAddress, error) {
	a, err := ethtypes.NewAddress(strings.TrimSpace(s))
	if err != nil {
		return nil, nxerrors.Wrap(ctx, nxerrors.InvalidArgument, err, msgs.MsgTypesInvalidAddress, s)
	}
	return (*EthAddress)(a), nil
}

func MustEthAddress(s string) *EthAddress {
	return (*EthAddress)(ethtypes.MustNewAddress(s))
}

func EthAddressBytes(b []byte) *EthAddress {
	var a EthAddress
	copy(a[:], b)
	return &a
}

// SameAddress compares two hex addresses case-insensitively, returning false if either does not parse
func SameAddress(a, b string) bool {
	aa, errA := ethtypes.NewAddress(a)
	ab, errB := ethtypes.NewAddress(b)
	return errA == nil && errB == nil && *aa == *ab
}

func (a *EthAddress) Address0xHex() *ethtypes.Address0xHex {
	return (*ethtypes.Address0xHex)(a)
}

// Checksummed is the canonical (EIP-55 mixed case) rendering
func (a *EthAddress) Checksummed() string {
	return (*ethtypes.AddressWithChecksum)(a).String()
}

func (a *EthAddress) Equals(b *EthAddress) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (a *EthAddress) IsZero() bool {
	return a == nil || *a == zeroAddress
}

func (a EthAddress) String() string {
	return a.Address0xHex().String()
}

func (a EthAddress) HexString() string {
	return hex.EncodeToString(a[:])
}

func (a *EthAddress) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseEthAddress(context.Background(), s)
	if err != nil {
		return err
	}
	*a = *parsed
	return nil
}

func (a EthAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Checksummed())
}
