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

package cache

import (
	"sync"

	"github.com/Bigboss298/DataTrust-Nexus/pkg/confutil"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	cacheimpl "github.com/Code-Hex/go-generics-cache"
	"github.com/Code-Hex/go-generics-cache/policy/lru"
)

// Cache is a bounded LRU map safe for concurrent use
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, val V)
	Delete(key K)
	// Update stores what fn returns for the current entry. Updates of one key run one
	// at a time, and an error leaves the entry untouched.
	Update(key K, fn func(current V, ok bool) (V, error)) (V, error)
	Len() int
	Capacity() int
}

type lruCache[K comparable, V any] struct {
	entries  *cacheimpl.Cache[K, V]
	capacity int
	writers  sync.Map // K -> *sync.Mutex
}

func New[K comparable, V any](conf *nxconf.CacheConfig, defs *nxconf.CacheConfig) Cache[K, V] {
	capacity := confutil.IntMin(conf.Capacity, 1, *defs.Capacity)
	return &lruCache[K, V]{
		entries:  cacheimpl.New[K, V](cacheimpl.AsLRU[K, V](lru.WithCapacity(capacity))),
		capacity: capacity,
	}
}

func (c *lruCache[K, V]) Get(key K) (V, bool) {
	return c.entries.Get(key)
}

func (c *lruCache[K, V]) Set(key K, val V) {
	c.entries.Set(key, val)
}

func (c *lruCache[K, V]) Delete(key K) {
	c.entries.Delete(key)
}

func (c *lruCache[K, V]) Update(key K, fn func(current V, ok bool) (V, error)) (V, error) {
	w, _ := c.writers.LoadOrStore(key, &sync.Mutex{})
	lock := w.(*sync.Mutex)
	lock.Lock()
	defer lock.Unlock()

	current, ok := c.entries.Get(key)
	next, err := fn(current, ok)
	if err != nil {
		return current, err
	}
	c.entries.Set(key, next)
	return next, nil
}

func (c *lruCache[K, V]) Len() int {
	return c.entries.Len()
}

func (c *lruCache[K, V]) Capacity() int {
	return c.capacity
}
