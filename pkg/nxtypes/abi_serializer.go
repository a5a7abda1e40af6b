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

	"github.com/hyperledger/firefly-signer/pkg/abi"
)

// StandardABISerializer renders decoded ABI values as JSON objects, with integers as
// base 10 strings and bytes/addresses as 0x hex. Unnamed outputs are keyed by position.
func StandardABISerializer() *abi.Serializer {
	return abi.NewSerializer().
		SetFormattingMode(abi.FormatAsObjects).
		SetIntSerializer(abi.Base10StringIntSerializer).
		SetFloatSerializer(abi.Base10StringFloatSerializer).
		SetByteSerializer(abi.HexByteSerializer0xPrefix).
		SetAddressSerializer(abi.HexAddrSerializer0xPrefix)
}

// DecodeInto serializes a decoded component tree to JSON, then unmarshals it onto target
func DecodeInto(ctx context.Context, cv *abi.ComponentValue, target interface{}) error {
	b, err := StandardABISerializer().SerializeJSONCtx(ctx, cv)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, target)
}
