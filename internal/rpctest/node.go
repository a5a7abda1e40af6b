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

// Package rpctest provides an in-process JSON/RPC node for tests, with per-method handlers
// and helpers to answer contract calls and produce encoded event logs.
package rpctest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Bigboss298/DataTrust-Nexus/pkg/confutil"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/rpcclient"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/stretchr/testify/require"
)

const DefaultChainID = 12345

type Handler func(ctx context.Context, params []json.RawMessage) (interface{}, *rpcclient.RPCError)

type Node struct {
	t        *testing.T
	server   *httptest.Server
	lock     sync.Mutex
	handlers map[string]Handler
	calls    map[string]int
	head     uint64

	contracts       map[ethtypes.Address0xHex]*simContract
	logs            []*simLog
	rawTransactions []ethtypes.HexBytes0xPrefix
}

func NewNode(t *testing.T) *Node {
	n := &Node{
		t:        t,
		handlers: map[string]Handler{},
		calls:    map[string]int{},
	}
	n.On("eth_chainId", Result(fmt.Sprintf("0x%x", DefaultChainID)))
	n.On("eth_blockNumber", func(ctx context.Context, params []json.RawMessage) (interface{}, *rpcclient.RPCError) {
		n.lock.Lock()
		defer n.lock.Unlock()
		return fmt.Sprintf("0x%x", n.head), nil
	})
	n.On("eth_gasPrice", Result("0x3b9aca00"))
	n.On("eth_getTransactionCount", Result("0x0"))
	n.server = httptest.NewServer(http.HandlerFunc(n.serveHTTP))
	t.Cleanup(n.server.Close)
	return n
}

// Result is a handler that always returns the same result
func Result(v interface{}) Handler {
	return func(context.Context, []json.RawMessage) (interface{}, *rpcclient.RPCError) {
		return v, nil
	}
}

// Error is a handler that always fails with a JSON/RPC error
func Error(code int64, message string, data interface{}) Handler {
	return func(context.Context, []json.RawMessage) (interface{}, *rpcclient.RPCError) {
		rpcErr := &rpcclient.RPCError{Code: code, Message: message}
		if data != nil {
			rpcErr.Data, _ = json.Marshal(data)
		}
		return nil, rpcErr
	}
}

// Close stops the node, so later calls fail at the transport
func (n *Node) Close() {
	n.server.Close()
}

func (n *Node) URL() string {
	return n.server.URL
}

func (n *Node) Config() *nxconf.EthClientConfig {
	return &nxconf.EthClientConfig{
		HTTPClientConfig: nxconf.HTTPClientConfig{
			URL:            n.server.URL,
			RequestTimeout: confutil.P("5s"),
		},
	}
}

func (n *Node) SetHead(head uint64) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.head = head
}

func (n *Node) On(method string, h Handler) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.handlers[method] = h
}

// Handler returns the current handler for a method, so a test can wrap it
func (n *Node) Handler(method string) Handler {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.handlers[method]
}

func (n *Node) Calls(method string) int {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.calls[method]
}

func (n *Node) serveHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcclient.RPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	n.lock.Lock()
	n.calls[req.Method]++
	h := n.handlers[req.Method]
	n.lock.Unlock()

	res := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if h == nil {
		res["error"] = &rpcclient.RPCError{Code: -32601, Message: fmt.Sprintf("method %s not found", req.Method)}
	} else {
		result, rpcErr := h(r.Context(), req.Params)
		if rpcErr != nil {
			res["error"] = rpcErr
		} else {
			res["result"] = result
		}
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(n.t, json.NewEncoder(w).Encode(res))
}
