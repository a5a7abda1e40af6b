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

package ethclient

import "time"

// Metrics receives RPC and transaction outcomes. The zero config uses a no-op.
type Metrics interface {
	ObserveRPC(method, outcome string, duration time.Duration)
	TransactionFinished(function string, result *SendResult)
}

type noopMetrics struct{}

func (noopMetrics) ObserveRPC(string, string, time.Duration) {}
func (noopMetrics) TransactionFinished(string, *SendResult) {}
