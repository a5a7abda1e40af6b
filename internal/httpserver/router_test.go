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
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/Bigboss298/DataTrust-Nexus/pkg/confutil"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterServes(t *testing.T) {
	r, err := NewRouter(context.Background(), "unittest", &nxconf.HTTPServerConfig{
		Address: confutil.P("127.0.0.1"),
		Port:    confutil.P(0),
	})
	require.NoError(t, err)
	r.HandleFunc("/exact", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("exact"))
	})
	r.PathPrefixHandleFunc("/prefix/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path))
	})
	require.NoError(t, r.Start())
	defer r.Stop()

	get := func(path string) (int, string) {
		res, err := http.Get(fmt.Sprintf("http://%s%s", r.Addr(), path))
		require.NoError(t, err)
		defer res.Body.Close()
		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		return res.StatusCode, string(body)
	}
	status, body := get("/exact")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "exact", body)
	_, body = get("/prefix/a/b")
	assert.Equal(t, "/prefix/a/b", body)
	status, _ = get("/missing")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRouterMissingPort(t *testing.T) {
	_, err := NewRouter(context.Background(), "unittest", &nxconf.HTTPServerConfig{})
	assert.Regexp(t, "ND010900", err)
}
