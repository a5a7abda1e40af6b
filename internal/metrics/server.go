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

	"github.com/Bigboss298/DataTrust-Nexus/internal/httpserver"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/confutil"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server interface {
	Start() error
	Stop()
}

var _ Server = &metricsServer{}

type metricsServer struct {
	httpServer httpserver.Router
}

// NewServer serves /metrics when enabled. A disabled server starts and stops as a no-op.
func NewServer(ctx context.Context, registry *prometheus.Registry, conf *nxconf.MetricsServerConfig) (Server, error) {
	s := &metricsServer{}
	if !confutil.Bool(conf.Enabled, *nxconf.MetricsServerDefaults.Enabled) {
		return s, nil
	}
	r, err := httpserver.NewRouter(ctx, "Metrics", &conf.HTTPServerConfig)
	if err != nil {
		return nil, err
	}
	r.HandleFunc("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP)
	s.httpServer = r
	return s, nil
}

func (s *metricsServer) Start() error {
	if s.httpServer != nil {
		return s.httpServer.Start()
	}
	return nil
}

func (s *metricsServer) Stop() {
	if s.httpServer != nil {
		s.httpServer.Stop()
	}
}
