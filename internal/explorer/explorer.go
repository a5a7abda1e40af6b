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
	"strings"

	"github.com/Bigboss298/DataTrust-Nexus/pkg/confutil"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/ethclient"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
)

// TxResult is what every write operation hands back: the hash the node accepted, and
// where to watch it. It is not a confirmation.
type TxResult struct {
	TransactionHash string `json:"transactionHash"`
	ExplorerURL     string `json:"explorerUrl"`
}

type Explorer struct {
	baseURL string
}

func New(conf *nxconf.ExplorerConfig) *Explorer {
	return &Explorer{
		baseURL: strings.TrimSuffix(confutil.StringNotEmpty(conf.BaseURL, *nxconf.ExplorerDefaults.BaseURL), "/"),
	}
}

func (e *Explorer) TxURL(txHash string) string {
	return e.baseURL + "/tx/" + txHash
}

func (e *Explorer) Result(sr *ethclient.SendResult) *TxResult {
	txHash := sr.TxHash.String()
	return &TxResult{
		TransactionHash: txHash,
		ExplorerURL:     e.TxURL(txHash),
	}
}
