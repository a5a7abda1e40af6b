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

// Package batch fans per-item contract reads out with bounded concurrency, and pages
// the joined results.
package batch

import (
	"context"
	"errors"

	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/confutil"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"golang.org/x/sync/errgroup"
)

type Reader struct {
	maxConcurrency int
	defaultTake    int
	maxTake        int
}

func NewReader(conf *nxconf.ReaderConfig) *Reader {
	def := nxconf.ReaderDefaults
	return &Reader{
		maxConcurrency: confutil.IntMin(conf.MaxConcurrency, 1, *def.MaxConcurrency),
		defaultTake:    confutil.IntMin(conf.DefaultTake, 1, *def.DefaultTake),
		maxTake:        confutil.IntMin(conf.MaxTake, 1, *def.MaxTake),
	}
}

// Fetch calls fetch for every key with at most maxConcurrency in flight, and returns the
// results in key order once all have finished. A nil result is dropped silently. A failed
// item is logged and dropped, so one bad key never fails the list. Cancellation of ctx
// stops everything and returns an error instead of a partial list: Cancelled, or
// RpcUnavailable when ctx hit its deadline.
func Fetch[K any, V any](ctx context.Context, r *Reader, what string, keys []K, fetch func(ctx context.Context, key K) (*V, error)) ([]*V, error) {
	results := make([]*V, len(keys))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxConcurrency)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			if gCtx.Err() != nil {
				return gCtx.Err()
			}
			v, err := fetch(gCtx, key)
			if err != nil {
				if isCancel(gCtx, err) {
					return err
				}
				log.L(ctx).Warnf("Skipping %s %v: %s", what, key, err)
				return nil
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, aborted(ctx, what, err)
	}
	if ctx.Err() != nil {
		return nil, aborted(ctx, what, ctx.Err())
	}
	out := make([]*V, 0, len(results))
	for _, v := range results {
		if v != nil {
			out = append(out, v)
		}
	}
	return out, nil
}

// aborted reports a read that ran out of time as RpcUnavailable, so it can be retried,
// and anything else as Cancelled
func aborted(ctx context.Context, what string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nxerrors.Wrap(ctx, nxerrors.RpcUnavailable, err, msgs.MsgReadTimedOut, what)
	}
	return nxerrors.Wrap(ctx, nxerrors.Cancelled, err, msgs.MsgReadCancelled, what)
}

func isCancel(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return nxerrors.KindOf(err) == nxerrors.Cancelled || errors.Is(err, context.Canceled)
}

// Page resolves skip/take against the configured defaults: a negative skip is zero, a
// non-positive take is the default, and take never exceeds the maximum.
func (r *Reader) Page(skip, take int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if take <= 0 {
		take = r.defaultTake
	}
	if take > r.maxTake {
		take = r.maxTake
	}
	return skip, take
}

// Paginate returns items[skip:skip+take] clamped to the available count
func Paginate[T any](r *Reader, items []T, skip, take int) []T {
	skip, take = r.Page(skip, take)
	if skip >= len(items) {
		return []T{}
	}
	end := skip + take
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}
