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

package rpcclient

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/confutil"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/aidarkhanov/nanoid"
	"github.com/go-resty/resty/v2"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/sirupsen/logrus"
)

type attemptCtxKey struct{}

type attemptCtx struct {
	id       string
	start    time.Time
	attempts int
}

// NewResty builds the HTTP client used to reach the node. Only http and https URLs are accepted.
func NewResty(ctx context.Context, conf *nxconf.HTTPClientConfig) (*resty.Client, error) {
	def := nxconf.DefaultHTTPConfig
	u, err := url.Parse(conf.URL)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgRPCClientInvalidHTTPURL, conf.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, i18n.NewError(ctx, msgs.MsgRPCClientInvalidHTTPURL, conf.URL)
	}

	connTimeout := confutil.DurationMin(conf.ConnectionTimeout, 0, *def.ConnectionTimeout)
	client := resty.NewWithClient(&http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   connTimeout,
				KeepAlive: connTimeout,
			}).DialContext,
			ForceAttemptHTTP2: true,
		},
	})
	baseURL := strings.TrimSuffix(conf.URL, "/")
	client.SetBaseURL(baseURL)
	client.SetTimeout(confutil.DurationMin(conf.RequestTimeout, 0, *def.RequestTimeout))

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		rCtx := req.Context()
		if rCtx.Value(attemptCtxKey{}) == nil {
			ac := &attemptCtx{id: nanoid.New()[:8], start: time.Now()}
			rCtx = log.WithLogField(context.WithValue(rCtx, attemptCtxKey{}, ac), "breq", ac.id)
			req.SetContext(rCtx)
		}
		log.L(rCtx).Tracef("==> %s %s%s", req.Method, baseURL, req.URL)
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		rCtx := res.Request.Context()
		level := logrus.TraceLevel
		if res.StatusCode() >= 300 {
			level = logrus.ErrorLevel
		}
		if ac, ok := rCtx.Value(attemptCtxKey{}).(*attemptCtx); ok {
			log.L(rCtx).Logf(level, "<== %s [%d] (%dms)", res.Request.Method, res.StatusCode(), time.Since(ac.start).Milliseconds())
		}
		return nil
	})

	for k, v := range conf.HTTPHeaders {
		if vs, ok := v.(string); ok {
			client.SetHeader(k, vs)
		}
	}
	if conf.Auth.Username != "" && conf.Auth.Password != "" {
		client.SetBasicAuth(conf.Auth.Username, conf.Auth.Password)
	}

	if conf.Retry.Enabled {
		retryCount := confutil.IntMin(conf.Retry.Count, 0, *def.Retry.Count)
		minDelay := confutil.DurationMin(conf.Retry.InitialDelay, 0, *def.Retry.InitialDelay)
		maxDelay := confutil.DurationMin(conf.Retry.MaximumDelay, 0, *def.Retry.MaximumDelay)
		client.
			SetRetryCount(retryCount).
			SetRetryWaitTime(minDelay).
			SetRetryMaxWaitTime(maxDelay).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				// Only gateway level failures are retried. A JSON/RPC error is an answer.
				if r == nil || r.StatusCode() < 500 {
					return false
				}
				rCtx := r.Request.Context()
				if ac, ok := rCtx.Value(attemptCtxKey{}).(*attemptCtx); ok {
					ac.attempts++
					log.L(rCtx).Infof("retry %d/%d status=%d", ac.attempts, retryCount, r.StatusCode())
				}
				return true
			})
	}

	return client, nil
}
