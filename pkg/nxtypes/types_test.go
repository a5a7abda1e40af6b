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
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEthAddress(t *testing.T) {
	ctx := context.Background()
	a, err := ParseEthAddress(ctx, "0xABCDEF0123456789abcdef0123456789ABCDEF01")
	require.NoError(t, err)
	assert.Equal(t, "0xabcdef0123456789abcdef0123456789abcdef01", a.String())
	assert.Equal(t, "abcdef0123456789abcdef0123456789abcdef01", a.HexString())
	assert.True(t, a.Equals(MustEthAddress("0xabcdef0123456789abcdef0123456789abcdef01")))
	assert.False(t, a.Equals(nil))
	assert.True(t, (*EthAddress)(nil).Equals(nil))
	assert.False(t, a.IsZero())
	assert.True(t, EthAddressBytes(make([]byte, 20)).IsZero())

	b, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, `"`+a.Checksummed()+`"`, string(b))
	var a2 EthAddress
	require.NoError(t, json.Unmarshal(b, &a2))
	assert.Equal(t, *a, a2)

	_, err = ParseEthAddress(ctx, "0x1234")
	assert.Regexp(t, "ND010501", err)
	assert.Equal(t, nxerrors.InvalidArgument, nxerrors.KindOf(err))
	assert.Error(t, a2.UnmarshalJSON([]byte(`"wrong"`)))
	assert.Error(t, a2.UnmarshalJSON([]byte(`{}`)))
}

func TestSameAddress(t *testing.T) {
	assert.True(t, SameAddress("0xABCDEF0123456789abcdef0123456789ABCDEF01", "0xabcdef0123456789abcdef0123456789abcdef01"))
	assert.False(t, SameAddress("0xABCDEF0123456789abcdef0123456789ABCDEF01", "0x0000000000000000000000000000000000000001"))
	assert.False(t, SameAddress("bad", "bad"))
}

func TestDataHashToBytes32(t *testing.T) {
	h := strings.Repeat("a1b2", 16)
	assert.Equal(t, h, DataHashToBytes32(h).HexString())
	assert.Equal(t, h, DataHashToBytes32("0x"+h).HexString())
	assert.Equal(t, h, DataHashToBytes32(strings.ToUpper(h)).HexString())

	short := DataHashToBytes32("abc")
	assert.Equal(t, "616263"+strings.Repeat("00", 29), short.HexString())

	long := DataHashToBytes32(strings.Repeat("z", 40))
	assert.Equal(t, strings.Repeat("7a", 32), long.HexString())
	assert.True(t, Bytes32{}.IsZero())
}

func TestDataHashString(t *testing.T) {
	h := strings.Repeat("a1b2", 16)
	assert.Equal(t, h, DataHashToBytes32(h).DataHashString())
	assert.Equal(t, h, DataHashToBytes32("0x"+h).DataHashString())
	assert.Equal(t, h, DataHashToBytes32(strings.ToUpper(h)).DataHashString())

	assert.Equal(t, "sha256:abc", DataHashToBytes32("sha256:abc").DataHashString())
	assert.Equal(t, "QmT5NvUtoM5nWFfrQdVrFtvGfKFmG7AHE8P34isapyhCxX"[:32],
		DataHashToBytes32("QmT5NvUtoM5nWFfrQdVrFtvGfKFmG7AHE8P34isapyhCxX").DataHashString())

	var binary Bytes32
	binary[0] = 0x01
	assert.Equal(t, "01"+strings.Repeat("00", 31), binary.DataHashString())
}

func TestParseBytes32(t *testing.T) {
	ctx := context.Background()
	h := "0x" + strings.Repeat("0f", 32)
	b, err := ParseBytes32(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, h, b.String())

	_, err = ParseBytes32(ctx, "0x0f")
	assert.Regexp(t, "ND010503", err)
	_, err = ParseBytes32(ctx, "zz")
	assert.Regexp(t, "ND010500", err)

	var b2 Bytes32
	require.NoError(t, json.Unmarshal([]byte(`"`+h+`"`), &b2))
	assert.Equal(t, b, b2)
	out, err := json.Marshal(b2)
	require.NoError(t, err)
	assert.JSONEq(t, `"`+h+`"`, string(out))
}

func TestHexBytes(t *testing.T) {
	hb := MustParseHexBytes("0xfeed")
	assert.Equal(t, "0xfeed", hb.String())
	var hb2 HexBytes
	require.NoError(t, json.Unmarshal([]byte(`"FEED"`), &hb2))
	assert.Equal(t, hb, hb2)
	assert.Error(t, json.Unmarshal([]byte(`"not hex"`), &hb2))
	assert.Panics(t, func() { MustParseHexBytes("nope") })
}

func TestUint256(t *testing.T) {
	ctx := context.Background()
	u, err := ParseUint256(ctx, "0x10")
	require.NoError(t, err)
	assert.Equal(t, "16", u.String())
	assert.Equal(t, int64(16), u.Int64Clamped(ctx, "x"))
	assert.Equal(t, 16, u.IntClamped(ctx, "x"))

	_, err = ParseUint256(ctx, "-1")
	assert.Regexp(t, "ND010502", err)

	huge := Uint256FromBig(new(big.Int).Lsh(big.NewInt(1), 200))
	assert.Equal(t, int64(9223372036854775807), huge.Int64Clamped(ctx, "huge"))
	assert.Equal(t, "1606938044258990275541962092341162602522202993782792835301376", huge.String())

	var nilU *Uint256
	assert.True(t, nilU.IsZero())
	assert.Equal(t, "0", nilU.String())
	assert.Equal(t, int64(0), nilU.Int().Int64())

	// Int is a copy
	u.Int().SetInt64(99)
	assert.Equal(t, "16", u.String())
}

func TestUint256JSON(t *testing.T) {
	var v struct {
		A *Uint256 `json:"a"`
		B *Uint256 `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"12345678901234567890123","b":42}`), &v))
	assert.Equal(t, "12345678901234567890123", v.A.String())
	assert.Equal(t, int64(42), v.B.Int64Clamped(context.Background(), "b"))
	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"12345678901234567890123","b":"42"}`, string(out))
	assert.Error(t, json.Unmarshal([]byte(`{"a":"x"}`), &v))
}

func TestUnixTime(t *testing.T) {
	ctx := context.Background()
	assert.True(t, NewUint256(0).UnixTime(ctx, "t").IsZero())
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), NewUint256(1700000000).UnixTime(ctx, "t"))
}

func TestDecodeInto(t *testing.T) {
	ctx := context.Background()
	outputs := abi.ParameterArray{
		{Name: "owner", Type: "address"},
		{Name: "dataHash", Type: "bytes32"},
		{Name: "fileSize", Type: "uint256"},
		{Name: "isActive", Type: "bool"},
	}
	hash := "0x" + strings.Repeat("ab", 32)
	data, err := outputs.EncodeABIDataJSON([]byte(`{
		"owner": "0x0000000000000000000000000000000000000abc",
		"dataHash": "` + hash + `",
		"fileSize": "1024",
		"isActive": true
	}`))
	require.NoError(t, err)
	cv, err := outputs.DecodeABIDataCtx(ctx, data, 0)
	require.NoError(t, err)

	var out struct {
		Owner    EthAddress `json:"owner"`
		DataHash Bytes32    `json:"dataHash"`
		FileSize *Uint256   `json:"fileSize"`
		IsActive bool       `json:"isActive"`
	}
	require.NoError(t, DecodeInto(ctx, cv, &out))
	assert.Equal(t, "0x0000000000000000000000000000000000000abc", out.Owner.String())
	assert.Equal(t, hash, out.DataHash.String())
	assert.Equal(t, "1024", out.FileSize.String())
	assert.True(t, out.IsActive)
}
