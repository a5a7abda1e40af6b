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

// Package projector rebuilds "list all" views from contract event history, as the
// contracts only offer point lookups.
package projector

import (
	"context"
	"encoding/json"

	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/cache"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/confutil"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/ethclient"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
)

type Predicate func(l *ethclient.Log) bool

type Projector interface {
	// Project returns every matching event from genesis to the current head, in
	// (block, transaction, log) order. Any failure fails the whole projection.
	Project(ctx context.Context, ev *ethclient.EventDef, predicate Predicate) ([]*ethclient.Log, error)
	// Tail calls fn for each event after the given position, and returns the position
	// of the last event seen (or after, when there was none)
	Tail(ctx context.Context, ev *ethclient.EventDef, after *Position, fn func(l *ethclient.Log) error) (*Position, error)
}

// Position identifies a log in the history. The zero value is before every log.
type Position struct {
	BlockNumber      uint64
	TransactionIndex uint64
	LogIndex         uint64
	set              bool
}

func PositionOf(l *ethclient.Log) *Position {
	return &Position{BlockNumber: l.BlockNumber, TransactionIndex: l.TransactionIndex, LogIndex: l.LogIndex, set: true}
}

func (p *Position) before(l *ethclient.Log) bool {
	if p == nil || !p.set {
		return true
	}
	return p.asLog().Before(l)
}

func (p *Position) asLog() *ethclient.Log {
	return &ethclient.Log{BlockNumber: p.BlockNumber, TransactionIndex: p.TransactionIndex, LogIndex: p.LogIndex}
}

// checkpoint is immutable once stored, so readers can use the events without locking
type checkpoint struct {
	lastBlock uint64
	events    []*ethclient.Log
}

type projector struct {
	chain       ethclient.ChainClient
	incremental bool
	checkpoints cache.Cache[string, *checkpoint]
}

func New(conf *nxconf.ProjectorConfig, chain ethclient.ChainClient) Projector {
	return &projector{
		chain:       chain,
		incremental: confutil.Bool(conf.Incremental, *nxconf.ProjectorDefaults.Incremental),
		checkpoints: cache.New[string, *checkpoint](&conf.Cache, &nxconf.ProjectorDefaults.Cache),
	}
}

func checkpointKey(ev *ethclient.EventDef) string {
	return ev.Contract.Address.String() + "/" + ev.Signature
}

func (p *projector) Project(ctx context.Context, ev *ethclient.EventDef, predicate Predicate) ([]*ethclient.Log, error) {
	all, err := p.history(ctx, ev)
	if err != nil {
		return nil, err
	}
	matched := make([]*ethclient.Log, 0, len(all))
	for _, l := range all {
		if predicate == nil || predicate(l) {
			matched = append(matched, l)
		}
	}
	return matched, nil
}

func (p *projector) Tail(ctx context.Context, ev *ethclient.EventDef, after *Position, fn func(l *ethclient.Log) error) (*Position, error) {
	all, err := p.history(ctx, ev)
	if err != nil {
		return nil, err
	}
	pos := after
	if pos == nil {
		pos = &Position{}
	}
	for _, l := range all {
		if pos.before(l) {
			if err := fn(l); err != nil {
				return nil, err
			}
			pos = PositionOf(l)
		}
	}
	return pos, nil
}

func (p *projector) history(ctx context.Context, ev *ethclient.EventDef) ([]*ethclient.Log, error) {
	if !p.incremental {
		logs, err := p.chain.GetLogs(ctx, ev, 0, ethclient.Latest)
		if err != nil {
			return nil, p.scanError(ctx, ev, err)
		}
		return logs, nil
	}
	return p.refresh(ctx, ev)
}

// refresh scans only the blocks after the stored checkpoint. The checkpoint is replaced
// only when the whole delta was read, so a failure leaves the previous one intact.
func (p *projector) refresh(ctx context.Context, ev *ethclient.EventDef) ([]*ethclient.Log, error) {
	key := checkpointKey(ev)
	cp, err := p.checkpoints.Update(key, func(cp *checkpoint, ok bool) (*checkpoint, error) {
		head, err := p.chain.BlockNumber(ctx)
		if err != nil {
			return nil, p.scanError(ctx, ev, err)
		}
		fromBlock := uint64(0)
		if ok {
			if head <= cp.lastBlock {
				return cp, nil
			}
			fromBlock = cp.lastBlock + 1
		}
		delta, err := p.chain.GetLogs(ctx, ev, fromBlock, ethclient.AtBlock(head))
		if err != nil {
			return nil, p.scanError(ctx, ev, err)
		}
		next := &checkpoint{lastBlock: head}
		if ok {
			next.events = make([]*ethclient.Log, 0, len(cp.events)+len(delta))
			next.events = append(next.events, cp.events...)
		}
		next.events = append(next.events, delta...)
		log.L(ctx).Debugf("Projection %s advanced to block %d (+%d events, %d total)", key, head, len(delta), len(next.events))
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return cp.events, nil
}

func (p *projector) scanError(ctx context.Context, ev *ethclient.EventDef, err error) error {
	kind := nxerrors.KindOf(err)
	if kind == nxerrors.Cancelled || ctx.Err() == context.Canceled {
		return nxerrors.Wrap(ctx, nxerrors.Cancelled, err, msgs.MsgProjectorCancelled, ev.Entry.Name)
	}
	return nxerrors.Wrap(ctx, kind, err, msgs.MsgProjectorScanFailed, ev.Entry.Name, ev.Contract.Name)
}

// Event is a log with its parameters decoded into T
type Event[T any] struct {
	BlockNumber      uint64
	TransactionIndex uint64
	LogIndex         uint64
	TransactionHash  nxtypes.HexBytes
	Data             T
}

// ProjectAs is Project with each event decoded into T before the predicate runs
func ProjectAs[T any](ctx context.Context, p Projector, ev *ethclient.EventDef, predicate func(e *Event[T]) bool) ([]*Event[T], error) {
	logs, err := p.Project(ctx, ev, nil)
	if err != nil {
		return nil, err
	}
	events := make([]*Event[T], 0, len(logs))
	for _, l := range logs {
		e, err := Decode[T](ctx, ev, l)
		if err != nil {
			return nil, err
		}
		if predicate == nil || predicate(e) {
			events = append(events, e)
		}
	}
	return events, nil
}

func Decode[T any](ctx context.Context, ev *ethclient.EventDef, l *ethclient.Log) (*Event[T], error) {
	e := &Event[T]{
		BlockNumber:      l.BlockNumber,
		TransactionIndex: l.TransactionIndex,
		LogIndex:         l.LogIndex,
		TransactionHash:  l.TransactionHash,
	}
	if err := json.Unmarshal(l.Data, &e.Data); err != nil {
		return nil, nxerrors.Wrap(ctx, nxerrors.ArtifactMalformed, err, msgs.MsgEthClientLogDecodeFailed,
			l.BlockNumber, l.TransactionIndex, l.LogIndex, ev.Signature)
	}
	return e, nil
}
