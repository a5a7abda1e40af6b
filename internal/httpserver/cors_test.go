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
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calledServer() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("CalledServer", "true")
	})
}

func TestCORSDisabled(t *testing.T) {
	s := httptest.NewServer(withCORS(context.Background(), "unittest", &nxconf.CORSConfig{}, nil, calledServer()))
	defer s.Close()

	req, err := http.NewRequest(http.MethodOptions, s.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://some.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "true", res.Header.Get("CalledServer"))
}

func TestCORSOriginAllowed(t *testing.T) {
	s := httptest.NewServer(withCORS(context.Background(), "unittest", &nxconf.CORSConfig{
		Enabled:        true,
		AllowedOrigins: []string{"https://some.example"},
	}, nil, calledServer()))
	defer s.Close()

	req, err := http.NewRequest(http.MethodGet, s.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://some.example")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "true", res.Header.Get("CalledServer"))
	assert.Equal(t, "https://some.example", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORSOriginRefused(t *testing.T) {
	s := httptest.NewServer(withCORS(context.Background(), "unittest", &nxconf.CORSConfig{
		Enabled:        true,
		AllowedOrigins: []string{"https://some.example"},
	}, nil, calledServer()))
	defer s.Close()

	req, err := http.NewRequest(http.MethodGet, s.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://another.example")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	// still served, but without the header the browser needs to trust it
	assert.Equal(t, "true", res.Header.Get("CalledServer"))
	assert.Empty(t, res.Header.Get("Access-Control-Allow-Origin"))
}

func preflight(t *testing.T, url, headers string) *http.Response {
	req, err := http.NewRequest(http.MethodOptions, url, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://some.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", headers)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return res
}

func TestCORSRequiredHeadersAlwaysAllowed(t *testing.T) {
	s := httptest.NewServer(withCORS(context.Background(), "unittest", &nxconf.CORSConfig{
		Enabled:        true,
		AllowedHeaders: []string{"Content-Type"},
	}, []string{"X-Wallet-Address"}, calledServer()))
	defer s.Close()

	res := preflight(t, s.URL, "content-type,request-timeout,x-wallet-address")
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	allowed := strings.ToLower(res.Header.Get("Access-Control-Allow-Headers"))
	assert.Contains(t, allowed, "x-wallet-address")
	assert.Contains(t, allowed, "request-timeout")
	assert.Empty(t, res.Header.Get("CalledServer"))

	res = preflight(t, s.URL, "x-other")
	assert.Empty(t, res.Header.Get("Access-Control-Allow-Headers"))
}
