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

package ethclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/confutil"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/rpcclient"
	"github.com/hyperledger/firefly-signer/pkg/ethsigner"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"golang.org/x/time/rate"
)

type EthTXVersion string

const (
	LEGACY_ORIGINAL EthTXVersion = "legacy_original"
	LEGACY_EIP155   EthTXVersion = "legacy_eip155"
	EIP1559         EthTXVersion = "eip1559"
)

// BlockRef is "latest" or a 0x block number
type BlockRef string

const Latest BlockRef = "latest"

func AtBlock(n uint64) BlockRef {
	return BlockRef(fmt.Sprintf("0x%x", n))
}

// ChainClient is the only thing that talks to the node
type ChainClient interface {
	ChainID() int64
	BlockNumber(ctx context.Context) (uint64, error)
	Call(ctx context.Context, fn *Function, args interface{}, block BlockRef, output interface{}) error
	GetLogs(ctx context.Context, ev *EventDef, fromBlock uint64, toBlock BlockRef) ([]*Log, error)
	EstimateGas(ctx context.Context, from *nxtypes.EthAddress, fn *Function, args interface{}) (uint64, error)
	// Send returns once the node has accepted the transaction into its pool. There is no
	// retry on any failure, as resubmitting is the caller's decision.
	Send(ctx context.Context, signerKey string, fn *Function, args interface{}) (*SendResult, error)
	SenderAddress(ctx context.Context, signerKey string) (*nxtypes.EthAddress, error)
}

type ethClient struct {
	rpc               rpcclient.Client
	chainID           int64
	requestTimeout    time.Duration
	gasEstimateFactor float64
	txVersion         EthTXVersion
	gasPrice          *big.Int
	logsBlockRange    uint64
	limiter           *rate.Limiter
	metrics           Metrics
}

func New(ctx context.Context, conf *nxconf.EthClientConfig, metrics Metrics) (ChainClient, error) {
	rpc, err := rpcclient.NewHTTPClient(ctx, &conf.HTTPClientConfig)
	if err != nil {
		return nil, nxerrors.WithKind(nxerrors.ConfigurationMissing, err)
	}
	return WrapRPCClient(ctx, rpc, conf, metrics)
}

// WrapRPCClient queries eth_chainId straight away, so a misconfigured endpoint fails at startup
func WrapRPCClient(ctx context.Context, rpc rpcclient.Client, conf *nxconf.EthClientConfig, metrics Metrics) (ChainClient, error) {
	def := nxconf.EthClientDefaults
	if metrics == nil {
		metrics = noopMetrics{}
	}
	ec := &ethClient{
		rpc:               rpc,
		requestTimeout:    confutil.DurationMin(conf.RequestTimeout, time.Millisecond, *def.RequestTimeout),
		gasEstimateFactor: confutil.Float64Min(conf.EstimateGasFactor, 1.0, *def.EstimateGasFactor),
		txVersion:         EthTXVersion(confutil.StringNotEmpty(conf.TransactionType, *def.TransactionType)),
		gasPrice:          confutil.BigIntOrNil(conf.GasPrice),
		logsBlockRange:    uint64(confutil.Int64Min(conf.LogsBlockRange, 1, *def.LogsBlockRange)),
		metrics:           metrics,
	}
	switch ec.txVersion {
	case LEGACY_ORIGINAL, LEGACY_EIP155, EIP1559:
	default:
		return nil, nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgEthClientInvalidTXVersion, ec.txVersion)
	}
	if rps := confutil.Float64Min(conf.RequestsPerSecond, 0, *def.RequestsPerSecond); rps > 0 {
		ec.limiter = rate.NewLimiter(rate.Limit(rps), confutil.IntMin(conf.RequestBurst, 1, *def.RequestBurst))
	}
	if err := ec.setupChainID(ctx); err != nil {
		return nil, err
	}
	if conf.ChainID != nil && *conf.ChainID != ec.chainID {
		return nil, nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgConfigChainIDMismatch, ec.chainID, *conf.ChainID)
	}
	log.L(ctx).Infof("Connected to chain %d (tx=%s gasFactor=%.2f)", ec.chainID, ec.txVersion, ec.gasEstimateFactor)
	return ec, nil
}

func (ec *ethClient) ChainID() int64 {
	return ec.chainID
}

func (ec *ethClient) setupChainID(ctx context.Context) error {
	ctx, cancel := ec.withTimeout(ctx)
	defer cancel()
	var chainID ethtypes.HexUint64
	if err := ec.callRPC(ctx, &chainID, "eth_chainId"); err != nil {
		log.L(ctx).Errorf("eth_chainId failed: %s", err)
		return nxerrors.Wrap(ctx, nxerrors.RpcUnavailable, err, msgs.MsgEthClientChainIDFailed)
	}
	ec.chainID = int64(chainID.Uint64())
	return nil
}

// withTimeout applies the configured request timeout when the caller has not set a deadline
func (ec *ethClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, ec.requestTimeout)
}

// callRPC is the single exit point to the node. It applies rate limiting, records metrics
// and classifies failures.
func (ec *ethClient) callRPC(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	if ec.limiter != nil {
		if err := ec.limiter.Wait(ctx); err != nil {
			ec.metrics.ObserveRPC(method, "throttled", 0)
			return ec.mapRPCError(ctx, method, err)
		}
	}
	start := time.Now()
	rpcErr := ec.rpc.CallRPC(ctx, result, method, params...)
	if rpcErr != nil {
		ec.metrics.ObserveRPC(method, "error", time.Since(start))
		return rpcErr
	}
	ec.metrics.ObserveRPC(method, "success", time.Since(start))
	return nil
}

// mapRPCError classifies by what actually failed: the transport, the JSON/RPC code,
// then the node's message for the few conditions nodes only report as text.
// Nothing here maps to NotFound. Only a contract getter's revert can mean that.
func (ec *ethClient) mapRPCError(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return nxerrors.New(ctx, nxerrors.Cancelled, msgs.MsgEthClientCancelled, method)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nxerrors.New(ctx, nxerrors.RpcUnavailable, msgs.MsgEthClientTimeout, method)
	}
	var rpcErr rpcclient.ErrorRPC
	if errors.As(err, &rpcErr) {
		re := rpcErr.RPCError()
		switch {
		case re.TransportFailure(),
			re.Code == int64(rpcclient.RPCCodeMethodNotFound),
			re.Code == int64(rpcclient.RPCCodeLimitExceeded):
			return nxerrors.New(ctx, nxerrors.RpcUnavailable, msgs.MsgEthClientUnavailable, method, err.Error())
		case re.Code == int64(rpcclient.RPCCodeInvalidParams):
			return nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgEthClientRejected, err.Error())
		}
	}
	switch kind := nxerrors.MapError(err); kind {
	case nxerrors.InsufficientFunds:
		return nxerrors.New(ctx, kind, msgs.MsgEthClientInsufficientFunds, err.Error())
	case nxerrors.Reverted:
		reason := reasonFromMessage(err.Error())
		return nxerrors.NewReverted(ctx, reason, msgs.MsgEthClientCallReverted, reason)
	case nxerrors.InvalidArgument:
		return nxerrors.New(ctx, kind, msgs.MsgEthClientRejected, err.Error())
	case nxerrors.RpcUnavailable:
		return nxerrors.New(ctx, kind, msgs.MsgEthClientUnavailable, method, err.Error())
	}
	if method == "eth_sendRawTransaction" {
		return nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgEthClientRejected, err.Error())
	}
	return nxerrors.New(ctx, nxerrors.Unclassified, msgs.MsgEthClientNodeError, method, err.Error())
}

// Nodes that do not return revert data usually put the reason in the message
func reasonFromMessage(msg string) string {
	if idx := strings.Index(msg, "reverted:"); idx >= 0 {
		return strings.TrimSpace(msg[idx+len("reverted:"):])
	}
	return msg
}

func (ec *ethClient) BlockNumber(ctx context.Context) (uint64, error) {
	ctx, cancel := ec.withTimeout(ctx)
	defer cancel()
	var blockNumber ethtypes.HexUint64
	if err := ec.callRPC(ctx, &blockNumber, "eth_blockNumber"); err != nil {
		return 0, ec.mapRPCError(ctx, "eth_blockNumber", err)
	}
	return blockNumber.Uint64(), nil
}

func (ec *ethClient) Call(ctx context.Context, fn *Function, args interface{}, block BlockRef, output interface{}) error {
	ctx, cancel := ec.withTimeout(ctx)
	defer cancel()
	data, err := fn.EncodeCallData(ctx, args)
	if err != nil {
		return err
	}
	tx := &ethsigner.Transaction{
		To:   &fn.Contract.Address,
		Data: data,
	}
	res, err := ec.ethCall(ctx, fn.Contract, tx, block)
	if err != nil {
		return err
	}
	return fn.DecodeOutputs(ctx, res, output)
}

func (ec *ethClient) ethCall(ctx context.Context, contract *Contract, tx *ethsigner.Transaction, block BlockRef) (ethtypes.HexBytes0xPrefix, error) {
	if block == "" {
		block = Latest
	}
	var res ethtypes.HexBytes0xPrefix
	if err := ec.callRPC(ctx, &res, "eth_call", tx, block); err != nil {
		log.L(ctx).Errorf("eth_call to %s failed: %s", contract.Name, err)
		if revertErr := ec.revertFromRPCError(ctx, contract, err); revertErr != nil {
			return nil, revertErr
		}
		return nil, ec.mapRPCError(ctx, "eth_call", err)
	}
	return res, nil
}

// revertFromRPCError returns a Reverted error if the node supplied revert data, or nil
func (ec *ethClient) revertFromRPCError(ctx context.Context, contract *Contract, err error) error {
	var rpcErr rpcclient.ErrorRPC
	if !errors.As(err, &rpcErr) || len(rpcErr.RPCError().Data) == 0 {
		return nil
	}
	var revertData ethtypes.HexBytes0xPrefix
	if json.Unmarshal(rpcErr.RPCError().Data, &revertData) != nil {
		var nested struct {
			Data ethtypes.HexBytes0xPrefix `json:"data"`
		}
		_ = json.Unmarshal(rpcErr.RPCError().Data, &nested)
		revertData = nested.Data
	}
	if len(revertData) == 0 {
		return nil
	}
	log.L(ctx).Debugf("Received revert data from %s: %s", contract.Name, revertData)
	reason := contract.RevertReason(ctx, revertData)
	return nxerrors.NewReverted(ctx, reason, msgs.MsgEthClientCallReverted, reason)
}

func (ec *ethClient) EstimateGas(ctx context.Context, from *nxtypes.EthAddress, fn *Function, args interface{}) (uint64, error) {
	ctx, cancel := ec.withTimeout(ctx)
	defer cancel()
	data, err := fn.EncodeCallData(ctx, args)
	if err != nil {
		return 0, err
	}
	tx := &ethsigner.Transaction{
		To:   &fn.Contract.Address,
		Data: data,
	}
	if from != nil {
		tx.From = json.RawMessage(fmt.Sprintf(`"%s"`, from))
	}
	return ec.estimateGas(ctx, fn.Contract, tx)
}

func (ec *ethClient) estimateGas(ctx context.Context, contract *Contract, tx *ethsigner.Transaction) (uint64, error) {
	var gasLimit ethtypes.HexInteger
	if err := ec.callRPC(ctx, &gasLimit, "eth_estimateGas", tx); err != nil {
		log.L(ctx).Errorf("eth_estimateGas to %s failed: %s", contract.Name, err)
		if revertErr := ec.revertFromRPCError(ctx, contract, err); revertErr != nil {
			return 0, revertErr
		}
		if ctx.Err() != nil {
			return 0, ec.mapRPCError(ctx, "eth_estimateGas", err)
		}
		// Fall back to a call, as some nodes only return revert data from eth_call
		if _, callErr := ec.ethCall(ctx, contract, tx, Latest); callErr != nil {
			return 0, callErr
		}
		return 0, ec.mapRPCError(ctx, "eth_estimateGas", err)
	}
	return gasLimit.BigInt().Uint64(), nil
}
