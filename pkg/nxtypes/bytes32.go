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
	"bytes"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
)

// Bytes32 is the fixed size slot used on-chain for digests
type Bytes32 [32]byte

var hex64 = regexp.MustCompile(`^(0x|0X)?[0-9a-fA-F]{64}$`)

// ParseBytes32 requires exactly 32 bytes of hex, with or without 0x
func ParseBytes32(ctx context.Context, s string) (Bytes32, error) {
	var b32 Bytes32
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
	if err != nil {
		return b32, nxerrors.Wrap(ctx, nxerrors.InvalidArgument, err, msgs.MsgTypesInvalidHex, s)
	}
	if len(b) != 32 {
		return b32, nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgTypesInvalidBytes32, len(b))
	}
	copy(b32[:], b)
	return b32, nil
}

// DataHashToBytes32 maps a caller supplied content hash onto the 32 byte slot.
// A 64 character hex string (optional 0x) is decoded. Anything else is taken as UTF-8
// and right padded with zeros, or truncated, to 32 bytes.
func DataHashToBytes32(s string) Bytes32 {
	var b32 Bytes32
	if hex64.MatchString(s) {
		b, _ := hex.DecodeString(s[len(s)-64:])
		copy(b32[:], b)
		return b32
	}
	copy(b32[:], s)
	return b32
}

// DataHashString reverses DataHashToBytes32 for reporting. A slot holding printable
// UTF-8 followed by zero padding is returned as that text, anything else as lower
// case hex with no prefix. Text longer than 32 bytes was truncated on the way in.
func (b Bytes32) DataHashString() string {
	text := bytes.TrimRight(b[:], "\x00")
	if len(text) == 0 || !utf8.Valid(text) {
		return b.HexString()
	}
	for _, r := range string(text) {
		if !unicode.IsPrint(r) {
			return b.HexString()
		}
	}
	return string(text)
}

func (b Bytes32) IsZero() bool {
	return b == Bytes32{}
}

// HexString is lower case with no prefix, the form data hashes are reported in
func (b Bytes32) HexString() string {
	return hex.EncodeToString(b[:])
}

func (b Bytes32) String() string {
	return "0x" + b.HexString()
}

func (b *Bytes32) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseBytes32(context.Background(), s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

func (b Bytes32) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}
