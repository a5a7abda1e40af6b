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
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/go-resty/resty/v2"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

type RPCCode int64

const (
	RPCCodeParseError     RPCCode = -32700
	RPCCodeInvalidRequest RPCCode = -32600
	RPCCodeMethodNotFound RPCCode = -32601
	RPCCodeInvalidParams  RPCCode = -32602
	RPCCodeInternalError  RPCCode = -32603
	RPCCodeLimitExceeded  RPCCode = -32005
)

type ErrorRPC interface {
	error
	RPCError() *RPCError
}

type Client interface {
	CallRPC(ctx context.Context, result interface{}, method string, params ...interface{}) ErrorRPC
}

func NewHTTPClient(ctx context.Context, conf *nxconf.HTTPClientConfig) (Client, error) {
	rc, err := NewResty(ctx, conf)
	if err != nil {
		return nil, err
	}
	return WrapRestyClient(rc), nil
}

func WrapRestyClient(rc *resty.Client) Client {
	return &rpcClient{client: rc}
}

type rpcClient struct {
	client         *resty.Client
	requestCounter int64
}

type RPCRequest struct {
	JSONRpc string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params,omitempty"`
}

type RPCError struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	cause   error
}

func (e *RPCError) Error() string {
	return e.Message
}

func (e *RPCError) RPCError() *RPCError {
	return e
}

// Unwrap exposes transport failures (context cancellation, deadlines) to errors.Is
func (e *RPCError) Unwrap() error {
	return e.cause
}

// TransportFailure is true when no JSON/RPC answer came back from the node at all
func (e *RPCError) TransportFailure() bool {
	return e.cause != nil
}

type RPCResponse struct {
	JSONRpc string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

func (rc *rpcClient) CallRPC(ctx context.Context, result interface{}, method string, params ...interface{}) ErrorRPC {
	req, rpcErr := buildRequest(ctx, method, params)
	if rpcErr != nil {
		return rpcErr
	}
	res, rpcErr := rc.syncRequest(ctx, req)
	if rpcErr != nil {
		return rpcErr
	}
	if err := json.Unmarshal(res.Result, &result); err != nil {
		err = i18n.NewError(ctx, msgs.MsgRPCClientResultParseFailed, result, err)
		return &RPCError{Code: int64(RPCCodeParseError), Message: err.Error()}
	}
	return nil
}

func (rc *rpcClient) syncRequest(ctx context.Context, req *RPCRequest) (*RPCResponse, ErrorRPC) {
	reqID := fmt.Sprintf(`%.9d`, atomic.AddInt64(&rc.requestCounter, 1))
	req.ID = json.RawMessage(`"` + reqID + `"`)

	log.L(ctx).Debugf("RPC[%s] --> %s", reqID, req.Method)
	if log.IsTraceEnabled() {
		jsonInput, _ := json.Marshal(req)
		log.L(ctx).Tracef("RPC[%s] INPUT: %s", reqID, jsonInput)
	}
	start := time.Now()
	rpcRes := new(RPCResponse)
	res, err := rc.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(rpcRes).
		SetError(rpcRes).
		Post("")
	if err != nil {
		wrapped := i18n.NewError(ctx, msgs.MsgRPCClientRequestFailed, err)
		log.L(ctx).Errorf("RPC[%s] <-- ERROR: %s", reqID, wrapped)
		return nil, &RPCError{Code: int64(RPCCodeInternalError), Message: wrapped.Error(), cause: err}
	}
	if log.IsTraceEnabled() {
		log.L(ctx).Tracef("RPC[%s] OUTPUT: %s", reqID, res.Body())
	}
	// JSON/RPC errors can arrive with a 200 status code, as well as with error codes
	if res.IsError() || (rpcRes.Error != nil && rpcRes.Error.Code != 0) {
		if rpcRes.Error == nil || rpcRes.Error.Message == "" {
			msg := i18n.NewError(ctx, msgs.MsgRPCClientRequestFailed, res.Status()).Error()
			log.L(ctx).Errorf("RPC[%s] <-- [%d]: %s", reqID, res.StatusCode(), res.Body())
			return nil, &RPCError{Code: int64(RPCCodeInternalError), Message: msg, cause: errors.New(res.Status())}
		}
		log.L(ctx).Errorf("RPC[%s] <-- [%d]: %s", reqID, res.StatusCode(), rpcRes.Error.Message)
		return nil, rpcRes.Error
	}
	log.L(ctx).Infof("RPC[%s] <-- %s [%d] OK (%.2fms)", reqID, req.Method, res.StatusCode(), float64(time.Since(start))/float64(time.Millisecond))
	return rpcRes, nil
}

func buildRequest(ctx context.Context, method string, params []interface{}) (*RPCRequest, ErrorRPC) {
	req := &RPCRequest{
		JSONRpc: "2.0",
		Method:  method,
		Params:  make([]json.RawMessage, len(params)),
	}
	for i, param := range params {
		b, err := json.Marshal(param)
		if err != nil {
			err = i18n.NewError(ctx, msgs.MsgRPCClientInvalidParam, i, method, err)
			return nil, &RPCError{Code: int64(RPCCodeInvalidRequest), Message: err.Error()}
		}
		req.Params[i] = b
	}
	return req, nil
}
