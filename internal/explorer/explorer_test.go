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

package explorer

import (
	"testing"

	"github.com/Bigboss298/DataTrust-Nexus/pkg/confutil"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/ethclient"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
	"github.com/stretchr/testify/assert"
)

func TestResultDefaultBase(t *testing.T) {
	e := New(&nxconf.ExplorerConfig{})
	res := e.Result(&ethclient.SendResult{
		TxHash: nxtypes.DataHashToBytes32("00000000000000000000000000000000000000000000000000000000000000ff"),
	})
	assert.Equal(t, "0x00000000000000000000000000000000000000000000000000000000000000ff", res.TransactionHash)
	assert.Equal(t, "https://awakening.bdagscan.com/tx/0x00000000000000000000000000000000000000000000000000000000000000ff", res.ExplorerURL)
}

func TestTxURLTrimsSlash(t *testing.T) {
	e := New(&nxconf.ExplorerConfig{BaseURL: confutil.P("http://explorer.local/")})
	assert.Equal(t, "http://explorer.local/tx/0xabc", e.TxURL("0xabc"))
}
