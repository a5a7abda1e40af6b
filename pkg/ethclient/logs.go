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
	"sort"

	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

type logJSONRPC struct {
	Removed          bool                        `json:"removed"`
	LogIndex         ethtypes.HexUint64          `json:"logIndex"`
	TransactionIndex ethtypes.HexUint64          `json:"transactionIndex"`
	BlockNumber      ethtypes.HexUint64          `json:"blockNumber"`
	TransactionHash  ethtypes.HexBytes0xPrefix   `json:"transactionHash"`
	Address          *ethtypes.Address0xHex      `json:"address"`
	Data             ethtypes.HexBytes0xPrefix   `json:"data"`
	Topics           []ethtypes.HexBytes0xPrefix `json:"topics"`
}

type logFilter struct {
	Address   ethtypes.Address0xHex         `json:"address"`
	Topics    [][]ethtypes.HexBytes0xPrefix `json:"topics"`
	FromBlock BlockRef                      `json:"fromBlock"`
	ToBlock   BlockRef                      `json:"toBlock"`
}

// Log is a decoded event, with Data holding the event parameters as a JSON object
type Log struct {
	BlockNumber      uint64           `json:"blockNumber"`
	TransactionIndex uint64           `json:"transactionIndex"`
	LogIndex         uint64           `json:"logIndex"`
	TransactionHash  nxtypes.HexBytes `json:"transactionHash"`
	Data             json.RawMessage  `json:"data"`
}

func (l *Log) Before(o *Log) bool {
	if l.BlockNumber != o.BlockNumber {
		return l.BlockNumber < o.BlockNumber
	}
	if l.TransactionIndex != o.TransactionIndex {
		return l.TransactionIndex < o.TransactionIndex
	}
	return l.LogIndex < o.LogIndex
}

// GetLogs returns every ev in [fromBlock, toBlock] in (block, tx, log) order. A "latest" toBlock
// is pinned to the current head first, so every chunk sees the same range. Any failure
// fails the whole call, so callers never see a truncated history.
// The request timeout applies to each chunk, not the whole scan. A deadline on ctx
// still bounds the scan as a whole.
func (ec *ethClient) GetLogs(ctx context.Context, ev *EventDef, fromBlock uint64, toBlock BlockRef) ([]*Log, error) {
	var to uint64
	if toBlock == "" || toBlock == Latest {
		head, err := ec.BlockNumber(ctx)
		if err != nil {
			return nil, err
		}
		to = head
	} else {
		var pinned ethtypes.HexUint64
		if err := json.Unmarshal([]byte(`"`+toBlock+`"`), &pinned); err != nil {
			return nil, nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgEthClientInvalidBlockRange, AtBlock(fromBlock), toBlock)
		}
		to = pinned.Uint64()
	}

	logs := []*Log{}
	for start := fromBlock; start <= to; start += ec.logsBlockRange {
		end := start + ec.logsBlockRange - 1
		if end > to || end < start /* overflow */ {
			end = to
		}
		chunk, err := ec.getLogsChunk(ctx, ev, start, end)
		if err != nil {
			return nil, err
		}
		logs = append(logs, chunk...)
		if end == to {
			break
		}
	}
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].Before(logs[j]) })
	log.L(ctx).Debugf("Fetched %d %s events from %s in blocks %d-%d", len(logs), ev.Entry.Name, ev.Contract.Name, fromBlock, to)
	return logs, nil
}

func (ec *ethClient) getLogsChunk(ctx context.Context, ev *EventDef, from, to uint64) ([]*Log, error) {
	filter := &logFilter{
		Address:   ev.Contract.Address,
		Topics:    [][]ethtypes.HexBytes0xPrefix{{ev.Topic0}},
		FromBlock: AtBlock(from),
		ToBlock:   AtBlock(to),
	}
	var rawLogs []*logJSONRPC
	rpcCtx, cancel := ec.withTimeout(ctx)
	err := ec.callRPC(rpcCtx, &rawLogs, "eth_getLogs", filter)
	if err != nil {
		err = ec.mapRPCError(rpcCtx, "eth_getLogs", err)
	}
	cancel()
	if err != nil {
		return nil, err
	}
	logs := make([]*Log, 0, len(rawLogs))
	for _, rl := range rawLogs {
		if rl.Removed {
			continue
		}
		cv, err := ev.Entry.DecodeEventDataCtx(ctx, rl.Topics, rl.Data)
		var data []byte
		if err == nil {
			data, err = nxtypes.StandardABISerializer().SerializeJSONCtx(ctx, cv)
		}
		if err != nil {
			return nil, nxerrors.Wrap(ctx, nxerrors.ArtifactMalformed, err, msgs.MsgEthClientLogDecodeFailed,
				rl.BlockNumber.Uint64(), rl.TransactionIndex.Uint64(), rl.LogIndex.Uint64(), ev.Signature)
		}
		logs = append(logs, &Log{
			BlockNumber:      rl.BlockNumber.Uint64(),
			TransactionIndex: rl.TransactionIndex.Uint64(),
			LogIndex:         rl.LogIndex.Uint64(),
			TransactionHash:  nxtypes.HexBytes(rl.TransactionHash),
			Data:             data,
		})
	}
	return logs, nil
}
