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

package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/Bigboss298/DataTrust-Nexus/pkg/ethclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "nexus"

// Metrics records node traffic, transaction outcomes and API traffic, on a
// registry of its own rather than the prometheus global one
type Metrics interface {
	ethclient.Metrics
	ObserveHTTP(server, method string, status int, duration time.Duration)
	Registry() *prometheus.Registry
}

type metricsManager struct {
	ctx             context.Context
	metricsRegistry *prometheus.Registry
	rpcRequests     *prometheus.CounterVec
	rpcDuration     *prometheus.HistogramVec
	transactions    *prometheus.CounterVec
	httpRequests    *prometheus.HistogramVec
}

func NewMetricsManager(ctx context.Context) Metrics {
	registry := prometheus.NewRegistry()
	mm := &metricsManager{
		ctx:             ctx,
		metricsRegistry: registry,
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "JSON-RPC requests sent to the node, by method and outcome",
		}, []string{"method", "outcome"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "request_duration_seconds",
			Help:      "JSON-RPC round trip time",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tx",
			Name:      "submissions_total",
			Help:      "Transactions by contract function, final stage and the stage a rejection happened at",
		}, []string{"function", "stage", "failed_at"}),
		// paths are left out, record IDs and wallets would explode the label set
		httpRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Requests served, by server, method and status",
			Buckets:   prometheus.DefBuckets,
		}, []string{"server", "method", "status"}),
	}
	registry.MustRegister(
		mm.rpcRequests,
		mm.rpcDuration,
		mm.transactions,
		mm.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return mm
}

func (mm *metricsManager) Registry() *prometheus.Registry {
	return mm.metricsRegistry
}

func (mm *metricsManager) ObserveRPC(method, outcome string, duration time.Duration) {
	mm.rpcRequests.WithLabelValues(method, outcome).Inc()
	if duration > 0 {
		mm.rpcDuration.WithLabelValues(method).Observe(duration.Seconds())
	}
}

func (mm *metricsManager) TransactionFinished(function string, result *ethclient.SendResult) {
	mm.transactions.WithLabelValues(function, string(result.Stage), string(result.FailedAt)).Inc()
}

func (mm *metricsManager) ObserveHTTP(server, method string, status int, duration time.Duration) {
	mm.httpRequests.WithLabelValues(server, method, strconv.Itoa(status)).Observe(duration.Seconds())
}
