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

package httpserver

import (
	"context"
	"net/http"
	"slices"

	"github.com/Bigboss298/DataTrust-Nexus/pkg/confutil"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/rs/cors"
)

var corsDefaultMethods = []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodDelete}

// WithCORSHeaders names request headers the handler depends on. Browsers are always
// allowed to send them, along with Request-Timeout, whatever the configured list says.
func WithCORSHeaders(headers ...string) Option {
	return func(s *httpServer) {
		s.corsHeaders = append(s.corsHeaders, headers...)
	}
}

// withCORS answers browser preflights for the server when enabled
func withCORS(ctx context.Context, description string, conf *nxconf.CORSConfig, required []string, next http.Handler) http.Handler {
	if !conf.Enabled {
		return next
	}
	headers := slices.Clone(confutil.StringSlice(conf.AllowedHeaders, []string{"Content-Type"}))
	if !slices.Contains(headers, "*") {
		for _, h := range append([]string{requestTimeoutHeader}, required...) {
			if !slices.Contains(headers, h) {
				headers = append(headers, h)
			}
		}
	}
	opts := cors.Options{
		AllowedOrigins:   confutil.StringSlice(conf.AllowedOrigins, []string{"*"}),
		AllowedMethods:   confutil.StringSlice(conf.AllowedMethods, corsDefaultMethods),
		AllowedHeaders:   headers,
		AllowCredentials: confutil.Bool(conf.AllowCredentials, false),
		MaxAge:           int(confutil.DurationSeconds(conf.MaxAge, 0, "0")),
		Debug:            conf.Debug,
	}
	log.L(ctx).Debugf("%s server CORS: origins=%v methods=%v headers=%v credentials=%t maxAge=%ds",
		description, opts.AllowedOrigins, opts.AllowedMethods, opts.AllowedHeaders, opts.AllowCredentials, opts.MaxAge)
	return cors.New(opts).Handler(next)
}
