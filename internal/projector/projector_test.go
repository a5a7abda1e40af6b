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

package projector

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/Bigboss298/DataTrust-Nexus/internal/rpctest"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/confutil"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/ethclient"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/rpcclient"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storedABI = `[{"type":"event","name":"Stored","inputs":[
	{"name":"id","type":"string"},
	{"name":"owner","type":"address","indexed":true}
]}]`

const (
	testAddress = "0x5fbdb2315678afecb367f032d93f642f64180aa3"
	ownerA      = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	ownerB      = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

type stored struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
}

func newTestProjector(t *testing.T, incremental bool) (context.Context, *rpctest.Node, Projector, *ethclient.EventDef) {
	ctx := context.Background()
	node := rpctest.NewNode(t)
	chain, err := ethclient.New(ctx, node.Config(), nil)
	require.NoError(t, err)

	var a abi.ABI
	require.NoError(t, json.Unmarshal([]byte(storedABI), &a))
	contract, err := ethclient.NewContract(ctx, "Store", testAddress, a)
	require.NoError(t, err)
	ev, err := contract.Event(ctx, "Stored")
	require.NoError(t, err)
	node.Deploy(testAddress, a, nil)

	p := New(&nxconf.ProjectorConfig{Incremental: confutil.P(incremental)}, chain)
	return ctx, node, p, ev
}

func emit(node *rpctest.Node, ev *ethclient.EventDef, block uint64, id, owner string) {
	node.AddLog(testAddress, block, ev.Entry, map[string]string{"id": id, "owner": owner})
}

func ids(t *testing.T, ctx context.Context, ev *ethclient.EventDef, logs []*ethclient.Log) []string {
	out := []string{}
	for _, l := range logs {
		e, err := Decode[stored](ctx, ev, l)
		require.NoError(t, err)
		out = append(out, e.Data.ID)
	}
	return out
}

func TestProjectDiscoversEverythingInOrder(t *testing.T) {
	for _, incremental := range []bool{false, true} {
		t.Run(fmt.Sprintf("incremental=%t", incremental), func(t *testing.T) {
			ctx, node, p, ev := newTestProjector(t, incremental)
			var expected []string
			for i := 0; i < 12; i++ {
				id := fmt.Sprintf("REC-%d", i)
				emit(node, ev, uint64(i/3+1), id, ownerA)
				expected = append(expected, id)
			}
			logs, err := p.Project(ctx, ev, nil)
			require.NoError(t, err)
			assert.Equal(t, expected, ids(t, ctx, ev, logs))
		})
	}
}

func TestProjectAsFilters(t *testing.T) {
	ctx, node, p, ev := newTestProjector(t, false)
	emit(node, ev, 1, "a", ownerA)
	emit(node, ev, 2, "b", ownerB)
	emit(node, ev, 3, "c", ownerA)

	events, err := ProjectAs(ctx, p, ev, func(e *Event[stored]) bool {
		return e.Data.Owner == ownerA
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].Data.ID)
	assert.Equal(t, "c", events[1].Data.ID)
	assert.Equal(t, uint64(3), events[1].BlockNumber)
}

func TestIncrementalScansOnlyTheDelta(t *testing.T) {
	ctx, node, p, ev := newTestProjector(t, true)
	var fromBlocks []string
	next := node.Handler("eth_getLogs")
	node.On("eth_getLogs", func(ctx context.Context, params []json.RawMessage) (interface{}, *rpcclient.RPCError) {
		var filter struct {
			FromBlock string `json:"fromBlock"`
		}
		_ = json.Unmarshal(params[0], &filter)
		fromBlocks = append(fromBlocks, filter.FromBlock)
		return next(ctx, params)
	})

	emit(node, ev, 1, "a", ownerA)
	emit(node, ev, 2, "b", ownerA)
	logs, err := p.Project(ctx, ev, nil)
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	// no new blocks, no scan
	logs, err = p.Project(ctx, ev, nil)
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	emit(node, ev, 5, "c", ownerA)
	logs, err = p.Project(ctx, ev, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(t, ctx, ev, logs))
	assert.Equal(t, []string{"0x0", "0x3"}, fromBlocks)
}

func TestFailedRefreshKeepsCheckpoint(t *testing.T) {
	ctx, node, p, ev := newTestProjector(t, true)
	emit(node, ev, 1, "a", ownerA)
	_, err := p.Project(ctx, ev, nil)
	require.NoError(t, err)

	emit(node, ev, 2, "b", ownerA)
	next := node.Handler("eth_getLogs")
	node.On("eth_getLogs", rpctest.Error(-32000, "header not found", nil))
	_, err = p.Project(ctx, ev, nil)
	assert.Regexp(t, "ND010600", err)
	assert.Equal(t, nxerrors.RpcUnavailable, nxerrors.KindOf(err))

	node.On("eth_getLogs", next)
	logs, err := p.Project(ctx, ev, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(t, ctx, ev, logs))
}

func TestPartialFetchFailsProjection(t *testing.T) {
	ctx := context.Background()
	node := rpctest.NewNode(t)
	conf := node.Config()
	conf.LogsBlockRange = confutil.P(int64(2))
	chain, err := ethclient.New(ctx, conf, nil)
	require.NoError(t, err)
	var a abi.ABI
	require.NoError(t, json.Unmarshal([]byte(storedABI), &a))
	contract, err := ethclient.NewContract(ctx, "Store", testAddress, a)
	require.NoError(t, err)
	ev, err := contract.Event(ctx, "Stored")
	require.NoError(t, err)
	node.Deploy(testAddress, a, nil)
	emit(node, ev, 1, "a", ownerA)
	emit(node, ev, 6, "b", ownerA)

	calls := 0
	next := node.Handler("eth_getLogs")
	node.On("eth_getLogs", func(ctx context.Context, params []json.RawMessage) (interface{}, *rpcclient.RPCError) {
		calls++
		if calls == 3 {
			return nil, &rpcclient.RPCError{Code: -32603, Message: "timeout"}
		}
		return next(ctx, params)
	})
	p := New(&nxconf.ProjectorConfig{Incremental: confutil.P(false)}, chain)
	logs, err := p.Project(ctx, ev, nil)
	assert.Nil(t, logs)
	assert.Regexp(t, "ND010600", err)
}

func TestCancelledProjection(t *testing.T) {
	_, _, p, ev := newTestProjector(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Project(ctx, ev, nil)
	assert.Regexp(t, "ND010601", err)
	assert.Equal(t, nxerrors.Cancelled, nxerrors.KindOf(err))
}

func TestTailFoldsOnlyNewEvents(t *testing.T) {
	ctx, node, p, ev := newTestProjector(t, true)
	emit(node, ev, 1, "a", ownerA)
	emit(node, ev, 1, "b", ownerB)

	seen := []string{}
	fold := func(l *ethclient.Log) error {
		e, err := Decode[stored](ctx, ev, l)
		seen = append(seen, e.Data.ID)
		return err
	}
	pos, err := p.Tail(ctx, ev, nil, fold)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, seen)

	pos, err = p.Tail(ctx, ev, pos, fold)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, seen)

	emit(node, ev, 2, "c", ownerA)
	_, err = p.Tail(ctx, ev, pos, fold)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, seen)

	_, err = p.Tail(ctx, ev, nil, func(l *ethclient.Log) error { return fmt.Errorf("pop") })
	assert.EqualError(t, err, "pop")
}
