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

package nxconf

import "github.com/Bigboss298/DataTrust-Nexus/pkg/confutil"

type EthClientConfig struct {
	HTTPClientConfig `json:",inline"`
	// when set, the node's eth_chainId must match
	ChainID *int64 `json:"chainId"`
	// multiplier applied to eth_estimateGas results, never below 1.0
	EstimateGasFactor *float64 `json:"estimateGasFactor"`
	// eip1559, legacy_eip155 or legacy_original
	TransactionType *string `json:"transactionType"`
	// fixed gas price in wei (decimal or 0x hex), otherwise eth_gasPrice is queried per transaction
	GasPrice *string `json:"gasPrice"`
	// zero disables client side rate limiting
	RequestsPerSecond *float64 `json:"requestsPerSecond"`
	RequestBurst      *int     `json:"requestBurst"`
	// maximum span of a single eth_getLogs request
	LogsBlockRange *int64 `json:"logsBlockRange"`
	// hex private key used for server facilitated registration. Never logged.
	ServerKey string `json:"serverKey"`
}

var EthClientDefaults = &EthClientConfig{
	HTTPClientConfig:  *DefaultHTTPConfig,
	EstimateGasFactor: confutil.P(1.2),
	TransactionType:   confutil.P("legacy_eip155"),
	RequestsPerSecond: confutil.P(0.0),
	RequestBurst:      confutil.P(10),
	LogsBlockRange:    confutil.P(int64(50000)),
}
