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
)

// HexBytes marshals as 0x prefixed hex
type HexBytes []byte

func ParseHexBytes(ctx context.Context, s string) (HexBytes, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
	if err != nil {
		return nil, nxerrors.Wrap(ctx, nxerrors.InvalidArgument, err, msgs.MsgTypesInvalidHex, s)
	}
	return b, nil
}

func MustParseHexBytes(s string) HexBytes {
	b, err := ParseHexBytes(context.Background(), s)
	if err != nil {
		panic(err)
	}
	return b
}

func (hb HexBytes) String() string {
	return "0x" + hex.EncodeToString(hb)
}

func (hb *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := ParseHexBytes(context.Background(), s)
	if err != nil {
		return err
	}
	*hb = b
	return nil
}

func (hb HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hb.String())
}
