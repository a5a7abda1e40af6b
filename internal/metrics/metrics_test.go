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
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/Bigboss298/DataTrust-Nexus/pkg/confutil"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/ethclient"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	mgr := NewMetricsManager(context.Background())
	assert.NotNil(t, mgr)

	err := mgr.Registry().Register(prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_counter",
	}))
	assert.NoError(t, err, "should register a counter successfully")
}

// sample returns the value of the counter or the sample count of the histogram
// carrying exactly the given labels, or -1 if there is none
func sample(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			if len(m.GetLabel()) != len(labels) {
				continue
			}
			for _, lp := range m.GetLabel() {
				if v, ok := labels[lp.GetName()]; !ok || v != lp.GetValue() {
					continue metrics
				}
			}
			if m.GetHistogram() != nil {
				return float64(m.GetHistogram().GetSampleCount())
			}
			return m.GetCounter().GetValue()
		}
	}
	return -1
}

func TestObserveRPCAndTransactions(t *testing.T) {
	mgr := NewMetricsManager(context.Background())
	reg := mgr.Registry()

	mgr.ObserveRPC("eth_call", "ok", 20*time.Millisecond)
	mgr.ObserveRPC("eth_call", "ok", 0)
	mgr.ObserveRPC("eth_call", "reverted", time.Millisecond)
	assert.Equal(t, 2.0, sample(t, reg, "nexus_rpc_requests_total", map[string]string{"method": "eth_call", "outcome": "ok"}))
	assert.Equal(t, 1.0, sample(t, reg, "nexus_rpc_requests_total", map[string]string{"method": "eth_call", "outcome": "reverted"}))
	assert.Equal(t, 2.0, sample(t, reg, "nexus_rpc_request_duration_seconds", map[string]string{"method": "eth_call"}))

	mgr.TransactionFinished("uploadData", &ethclient.SendResult{Stage: ethclient.StageAccepted})
	mgr.TransactionFinished("uploadData", &ethclient.SendResult{Stage: ethclient.StageRejected, FailedAt: ethclient.StageGasEstimated})
	assert.Equal(t, 1.0, sample(t, reg, "nexus_tx_submissions_total", map[string]string{
		"function": "uploadData", "stage": string(ethclient.StageAccepted), "failed_at": "",
	}))
	assert.Equal(t, 1.0, sample(t, reg, "nexus_tx_submissions_total", map[string]string{
		"function": "uploadData", "stage": string(ethclient.StageRejected), "failed_at": string(ethclient.StageGasEstimated),
	}))
	assert.Equal(t, -1.0, sample(t, reg, "nexus_tx_submissions_total", map[string]string{"function": "grantAccess"}))
}

func TestObserveHTTP(t *testing.T) {
	mgr := NewMetricsManager(context.Background())
	mgr.ObserveHTTP("API", "GET", 200, 3*time.Millisecond)
	mgr.ObserveHTTP("API", "GET", 200, time.Millisecond)
	mgr.ObserveHTTP("API", "POST", 409, time.Millisecond)
	assert.Equal(t, 2.0, sample(t, mgr.Registry(), "nexus_http_request_duration_seconds", map[string]string{"server": "API", "method": "GET", "status": "200"}))
	assert.Equal(t, 1.0, sample(t, mgr.Registry(), "nexus_http_request_duration_seconds", map[string]string{"server": "API", "method": "POST", "status": "409"}))
}

func TestServerDisabled(t *testing.T) {
	s, err := NewServer(context.Background(), prometheus.NewRegistry(), &nxconf.MetricsServerConfig{})
	require.NoError(t, err)
	assert.NoError(t, s.Start())
	s.Stop()
}

func TestServerMissingPort(t *testing.T) {
	_, err := NewServer(context.Background(), prometheus.NewRegistry(), &nxconf.MetricsServerConfig{
		Enabled: confutil.P(true),
	})
	assert.Regexp(t, "ND010900", err)
}

func TestServerServesMetrics(t *testing.T) {
	mgr := NewMetricsManager(context.Background())
	mgr.ObserveRPC("eth_chainId", "ok", time.Millisecond)

	s, err := NewServer(context.Background(), mgr.Registry(), &nxconf.MetricsServerConfig{
		Enabled: confutil.P(true),
		HTTPServerConfig: nxconf.HTTPServerConfig{
			Address: confutil.P("127.0.0.1"),
			Port:    confutil.P(0),
		},
	})
	require.NoError(t, err)
	require.NoError(t, s.Start())
	defer s.Stop()

	addr := s.(*metricsServer).httpServer.Addr()
	res, err := http.Get(fmt.Sprintf("http://%s/metrics", addr))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `nexus_rpc_requests_total{method="eth_chainId",outcome="ok"} 1`)
}
