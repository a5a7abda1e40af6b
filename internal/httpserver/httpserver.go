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
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/confutil"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/aidarkhanov/nanoid"
)

const requestTimeoutHeader = "Request-Timeout"

type Server interface {
	Start() error
	Stop()
	Addr() net.Addr
}

// Observer is told about every completed request
type Observer interface {
	ObserveHTTP(server, method string, status int, duration time.Duration)
}

type Option func(s *httpServer)

func WithObserver(o Observer) Option {
	return func(s *httpServer) {
		s.observer = o
	}
}

var _ Server = &httpServer{}

type httpServer struct {
	ctx         context.Context
	cancelCtx   func()
	description string
	observer    Observer
	corsHeaders []string

	listener        net.Listener
	srv             *http.Server
	served          chan error
	shutdownTimeout time.Duration
	defaultTimeout  time.Duration
	maxTimeout      time.Duration
	started         bool
}

// NewServer binds the listener straight away, so Addr is usable before Start.
// Port zero picks a free port.
func NewServer(ctx context.Context, description string, conf *nxconf.HTTPServerConfig, handler http.Handler, opts ...Option) (Server, error) {
	if conf.Port == nil {
		return nil, nxerrors.New(ctx, nxerrors.ConfigurationMissing, msgs.MsgHTTPServerMissingPort, description)
	}
	s := &httpServer{
		description:     description,
		served:          make(chan error, 1),
		shutdownTimeout: confutil.DurationMin(conf.ShutdownTimeout, 0, *nxconf.HTTPDefaults.ShutdownTimeout),
		maxTimeout:      confutil.DurationMin(conf.MaxRequestTimeout, time.Second, *nxconf.HTTPDefaults.MaxRequestTimeout),
		defaultTimeout:  confutil.DurationMin(conf.DefaultRequestTimeout, time.Second, *nxconf.HTTPDefaults.DefaultRequestTimeout),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancelCtx = context.WithCancel(ctx)

	addr := fmt.Sprintf("%s:%d", confutil.StringNotEmpty(conf.Address, *nxconf.HTTPDefaults.Address), *conf.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.cancelCtx()
		return nil, nxerrors.Wrap(ctx, nxerrors.ConfigurationMissing, err, msgs.MsgHTTPServerStartFailed, addr)
	}
	s.listener = listener
	log.L(ctx).Infof("%s server listening on %s", description, listener.Addr())

	// body reads and writes get a second of grace beyond the longest request
	ioTimeout := s.maxTimeout + time.Second
	readTimeout := confutil.DurationMin(conf.ReadTimeout, ioTimeout, "0")
	writeTimeout := confutil.DurationMin(conf.WriteTimeout, ioTimeout, "0")
	log.L(ctx).Debugf("%s server timeouts: read=%s write=%s request=%s/%s", description, readTimeout, writeTimeout, s.defaultTimeout, s.maxTimeout)

	s.srv = &http.Server{
		Handler:           withCORS(ctx, description, &conf.CORS, s.corsHeaders, s.instrument(handler)),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
		ConnContext: func(connCtx context.Context, c net.Conn) context.Context {
			l := log.L(ctx).WithField("req", nanoid.New()[:8])
			l.Debugf("%s connection from %s", description, c.RemoteAddr())
			return log.WithLogger(connCtx, l)
		},
	}
	return s, nil
}

// requestTimeout reads a Request-Timeout header given in whole seconds or as a Go
// duration. A missing or unparsable header gives the default, and nothing exceeds max.
func requestTimeout(ctx context.Context, header string, def, max time.Duration) time.Duration {
	if header == "" {
		return def
	}
	timeout, err := time.ParseDuration(header)
	if secs, convErr := strconv.ParseInt(header, 10, 32); convErr == nil {
		timeout, err = time.Duration(secs)*time.Second, nil
	}
	switch {
	case err != nil:
		log.L(ctx).Warnf("Ignoring %s header %q: %s", requestTimeoutHeader, header, err)
		return def
	case timeout > max:
		return max
	default:
		return timeout
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (s *httpServer) instrument(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ctx, cancel := context.WithTimeout(req.Context(),
			requestTimeout(req.Context(), req.Header.Get(requestTimeoutHeader), s.defaultTimeout, s.maxTimeout))
		defer cancel()
		req = req.WithContext(ctx)
		log.L(ctx).Debugf("--> %s %s", req.Method, req.URL.Path)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handler.ServeHTTP(rec, req)

		elapsed := time.Since(start)
		log.L(ctx).Infof("<-- %s %s [%d] %dB (%.2fms)", req.Method, req.URL.Path, rec.status, rec.bytes, float64(elapsed)/float64(time.Millisecond))
		if s.observer != nil {
			s.observer.ObserveHTTP(s.description, req.Method, rec.status, elapsed)
		}
	})
}

func (s *httpServer) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *httpServer) Start() error {
	s.started = true
	go func() {
		s.served <- s.srv.Serve(s.listener)
	}()
	return nil
}

// Stop drains in-flight requests for up to the shutdown timeout, then closes whatever
// connections remain
func (s *httpServer) Stop() {
	defer s.cancelCtx()
	if !s.started {
		_ = s.listener.Close()
		return
	}
	log.L(s.ctx).Infof("%s server shutting down", s.description)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		_ = s.srv.Shutdown(s.ctx)
	}()
	select {
	case <-drained:
	case <-time.After(s.shutdownTimeout):
		log.L(s.ctx).Warnf("%s server did not drain within %s, closing connections", s.description, s.shutdownTimeout)
		_ = s.srv.Close()
	}
	log.L(s.ctx).Infof("%s server ended (err=%v)", s.description, <-s.served)
	s.started = false
}
