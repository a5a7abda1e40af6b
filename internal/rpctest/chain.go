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

package rpctest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/rpcclient"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethsigner"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/stretchr/testify/require"
)

// Call is one invocation of a simulated contract function
type Call struct {
	From    string
	Inputs  map[string]interface{}
	Sending bool
	Block   uint64
	node    *Node
	address ethtypes.Address0xHex
}

// FunctionHandler returns the outputs (anything that marshals to a JSON object keyed by
// output name) or a non-empty revert reason
type FunctionHandler func(c *Call) (outputs interface{}, revertReason string)

type simContract struct {
	abi       abi.ABI
	functions map[string]*simFunction
}

type simFunction struct {
	entry   *abi.Entry
	handler FunctionHandler
}

type simLog struct {
	address ethtypes.Address0xHex
	log     map[string]interface{}
	topic0  string
	block   uint64
}

// Deploy makes the node answer eth_call, eth_estimateGas and eth_sendRawTransaction for
// the functions named in handlers, at the given address
func (n *Node) Deploy(address string, a abi.ABI, handlers map[string]FunctionHandler) {
	addr := ethtypes.MustNewAddress(address)
	sc := &simContract{abi: a, functions: map[string]*simFunction{}}
	for name, h := range handlers {
		entry := a.Functions()[name]
		require.NotNil(n.t, entry, name)
		sc.functions[entry.FunctionSelectorBytes().String()] = &simFunction{entry: entry, handler: h}
	}
	n.lock.Lock()
	if n.contracts == nil {
		n.contracts = map[ethtypes.Address0xHex]*simContract{}
		n.handlers["eth_call"] = n.ethCall
		n.handlers["eth_estimateGas"] = n.ethEstimateGas
		n.handlers["eth_sendRawTransaction"] = n.ethSendRawTransaction
		n.handlers["eth_getLogs"] = n.ethGetLogs
	}
	n.contracts[*addr] = sc
	n.lock.Unlock()
}

// Emit appends an event log at the block of the current call
func (c *Call) Emit(ev *abi.Entry, values interface{}) {
	c.node.AddLog(c.address.String(), c.Block, ev, values)
}

// AddLog appends an encoded event log at the given block
func (n *Node) AddLog(address string, block uint64, ev *abi.Entry, values interface{}) {
	valuesJSON, err := json.Marshal(values)
	require.NoError(n.t, err)
	topics, data, err := EncodeLog(ev, valuesJSON)
	require.NoError(n.t, err)

	n.lock.Lock()
	defer n.lock.Unlock()
	logIndex := 0
	for _, l := range n.logs {
		if l.block == block {
			logIndex++
		}
	}
	if block > n.head {
		n.head = block
	}
	addr := ethtypes.MustNewAddress(address)
	n.logs = append(n.logs, &simLog{
		address: *addr,
		topic0:  topics[0].String(),
		block:   block,
		log: map[string]interface{}{
			"address":          addr.String(),
			"blockNumber":      fmt.Sprintf("0x%x", block),
			"transactionIndex": "0x0",
			"logIndex":         fmt.Sprintf("0x%x", logIndex),
			"transactionHash":  fmt.Sprintf("0x%064x", len(n.logs)+1),
			"topics":           topics,
			"data":             data,
			"removed":          false,
		},
	})
}

// EncodeLog produces the topics and data a node would report for ev. Indexed parameters
// must be static types.
func EncodeLog(ev *abi.Entry, valuesJSON []byte) ([]ethtypes.HexBytes0xPrefix, ethtypes.HexBytes0xPrefix, error) {
	var values map[string]json.RawMessage
	if err := json.Unmarshal(valuesJSON, &values); err != nil {
		return nil, nil, err
	}
	topics := []ethtypes.HexBytes0xPrefix{ethtypes.HexBytes0xPrefix(ev.SignatureHashBytes())}
	var nonIndexed abi.ParameterArray
	nonIndexedValues := map[string]json.RawMessage{}
	for _, p := range ev.Inputs {
		if p.Indexed {
			single, _ := json.Marshal(map[string]json.RawMessage{p.Name: values[p.Name]})
			topic, err := abi.ParameterArray{{Name: p.Name, Type: p.Type}}.EncodeABIDataJSON(single)
			if err != nil {
				return nil, nil, err
			}
			topics = append(topics, topic)
		} else {
			nonIndexed = append(nonIndexed, p)
			nonIndexedValues[p.Name] = values[p.Name]
		}
	}
	dataJSON, _ := json.Marshal(nonIndexedValues)
	data, err := nonIndexed.EncodeABIDataJSON(dataJSON)
	return topics, data, err
}

// RevertData is the encoding of revert(reason)
func RevertData(reason string) ethtypes.HexBytes0xPrefix {
	errorEntry := &abi.Entry{Type: abi.Error, Name: "Error", Inputs: abi.ParameterArray{{Name: "reason", Type: "string"}}}
	b, _ := json.Marshal(map[string]string{"reason": reason})
	data, err := errorEntry.Inputs.EncodeABIDataJSON(b)
	if err != nil {
		panic(err)
	}
	return append(ethtypes.HexBytes0xPrefix(errorEntry.FunctionSelectorBytes()), data...)
}

func (n *Node) dispatch(ctx context.Context, tx *ethsigner.Transaction, from string, sending bool) (ethtypes.HexBytes0xPrefix, *rpcclient.RPCError) {
	if tx.To == nil || len(tx.Data) < 4 {
		return nil, &rpcclient.RPCError{Code: -32602, Message: "invalid argument: missing to or data"}
	}
	n.lock.Lock()
	sc := n.contracts[*tx.To]
	n.lock.Unlock()
	if sc == nil {
		// calling an address with no code returns nothing
		return ethtypes.HexBytes0xPrefix{}, nil
	}
	fn := sc.functions[ethtypes.HexBytes0xPrefix(tx.Data[0:4]).String()]
	if fn == nil {
		return nil, &rpcclient.RPCError{Code: 3, Message: "execution reverted", Data: json.RawMessage(`"0x"`)}
	}
	cv, err := fn.entry.DecodeCallDataCtx(ctx, tx.Data)
	var inputs map[string]interface{}
	if err == nil {
		var inputJSON []byte
		inputJSON, err = nxtypes.StandardABISerializer().SerializeJSONCtx(ctx, cv)
		if err == nil {
			err = json.Unmarshal(inputJSON, &inputs)
		}
	}
	if err != nil {
		return nil, &rpcclient.RPCError{Code: -32602, Message: "invalid argument: " + err.Error()}
	}

	n.lock.Lock()
	block := n.head
	if sending {
		n.head++
		block = n.head
	}
	n.lock.Unlock()

	outputs, revert := fn.handler(&Call{From: from, Inputs: inputs, Sending: sending, Block: block, node: n, address: *tx.To})
	if revert != "" {
		revertData, _ := json.Marshal(RevertData(revert))
		return nil, &rpcclient.RPCError{Code: 3, Message: "execution reverted: " + revert, Data: revertData}
	}
	if sending || outputs == nil {
		return ethtypes.HexBytes0xPrefix{}, nil
	}
	outputJSON, err := json.Marshal(outputs)
	if err == nil {
		var encoded []byte
		encoded, err = fn.entry.Outputs.EncodeABIDataJSON(outputJSON)
		if err == nil {
			return encoded, nil
		}
	}
	return nil, &rpcclient.RPCError{Code: -32603, Message: "test handler returned bad outputs: " + err.Error()}
}

func parseTx(params []json.RawMessage) (*ethsigner.Transaction, string, *rpcclient.RPCError) {
	var tx ethsigner.Transaction
	if len(params) == 0 || json.Unmarshal(params[0], &tx) != nil {
		return nil, "", &rpcclient.RPCError{Code: -32602, Message: "invalid argument: bad transaction"}
	}
	var from string
	if len(tx.From) > 0 {
		_ = json.Unmarshal(tx.From, &from)
	}
	return &tx, strings.ToLower(from), nil
}

func (n *Node) ethCall(ctx context.Context, params []json.RawMessage) (interface{}, *rpcclient.RPCError) {
	tx, from, rpcErr := parseTx(params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return n.dispatch(ctx, tx, from, false)
}

func (n *Node) ethEstimateGas(ctx context.Context, params []json.RawMessage) (interface{}, *rpcclient.RPCError) {
	tx, from, rpcErr := parseTx(params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if _, rpcErr := n.dispatch(ctx, tx, from, false); rpcErr != nil {
		return nil, rpcErr
	}
	return "0x5208", nil
}

func (n *Node) ethSendRawTransaction(ctx context.Context, params []json.RawMessage) (interface{}, *rpcclient.RPCError) {
	var raw ethtypes.HexBytes0xPrefix
	if len(params) == 0 || json.Unmarshal(params[0], &raw) != nil {
		return nil, &rpcclient.RPCError{Code: -32602, Message: "invalid argument: bad raw transaction"}
	}
	from, decoded, err := ethsigner.RecoverRawTransaction(ctx, raw, DefaultChainID)
	if err != nil {
		return nil, &rpcclient.RPCError{Code: -32000, Message: "invalid sender: " + err.Error()}
	}
	n.lock.Lock()
	n.rawTransactions = append(n.rawTransactions, raw)
	txCount := len(n.rawTransactions)
	n.lock.Unlock()

	tx := &ethsigner.Transaction{To: decoded.To, Data: decoded.Data}
	// a revert here still leaves the transaction accepted, as it would be mined and fail
	_, _ = n.dispatch(ctx, tx, strings.ToLower(from.String()), true)
	return fmt.Sprintf("0x%064x", txCount), nil
}

type logFilter struct {
	Address   *ethtypes.Address0xHex        `json:"address"`
	Topics    [][]ethtypes.HexBytes0xPrefix `json:"topics"`
	FromBlock ethtypes.HexUint64            `json:"fromBlock"`
	ToBlock   ethtypes.HexUint64            `json:"toBlock"`
}

func (n *Node) ethGetLogs(ctx context.Context, params []json.RawMessage) (interface{}, *rpcclient.RPCError) {
	var filter logFilter
	if len(params) == 0 || json.Unmarshal(params[0], &filter) != nil {
		return nil, &rpcclient.RPCError{Code: -32602, Message: "invalid argument: bad filter"}
	}
	n.lock.Lock()
	defer n.lock.Unlock()
	logs := []map[string]interface{}{}
	for _, l := range n.logs {
		if filter.Address != nil && *filter.Address != l.address {
			continue
		}
		if len(filter.Topics) > 0 && len(filter.Topics[0]) > 0 && filter.Topics[0][0].String() != l.topic0 {
			continue
		}
		if l.block < filter.FromBlock.Uint64() || l.block > filter.ToBlock.Uint64() {
			continue
		}
		logs = append(logs, l.log)
	}
	return logs, nil
}

// RawTransactions returns every raw transaction the node accepted
func (n *Node) RawTransactions() []ethtypes.HexBytes0xPrefix {
	n.lock.Lock()
	defer n.lock.Unlock()
	return append([]ethtypes.HexBytes0xPrefix{}, n.rawTransactions...)
}
