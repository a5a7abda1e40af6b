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
	"errors"
	"sync"
	"testing"

	"github.com/Bigboss298/DataTrust-Nexus/pkg/confutil"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheEvictsLeastRecent(t *testing.T) {
	c := New[string, int](&nxconf.CacheConfig{}, &nxconf.CacheConfig{Capacity: confutil.P(2)})

	c.Set("a", 1)
	c.Set("b", 2)
	_, ok := c.Get("a")
	assert.True(t, ok)
	c.Set("c", 3)

	_, ok = c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.Capacity())
}

func TestCacheCapacityFloor(t *testing.T) {
	c := New[string, int](&nxconf.CacheConfig{Capacity: confutil.P(0)}, &nxconf.CacheConfig{Capacity: confutil.P(5)})
	assert.Equal(t, 1, c.Capacity())
}

func TestUpdateSerializesOneKey(t *testing.T) {
	c := New[string, int](&nxconf.CacheConfig{}, &nxconf.CacheConfig{Capacity: confutil.P(4)})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Update("blocks", func(current int, ok bool) (int, error) {
				return current + 1, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	v, ok := c.Get("blocks")
	assert.True(t, ok)
	assert.Equal(t, 50, v)
}

func TestUpdateErrorKeepsEntry(t *testing.T) {
	c := New[string, int](&nxconf.CacheConfig{}, &nxconf.CacheConfig{Capacity: confutil.P(4)})

	_, err := c.Update("blocks", func(current int, ok bool) (int, error) {
		assert.False(t, ok)
		return 7, nil
	})
	require.NoError(t, err)

	v, err := c.Update("blocks", func(current int, ok bool) (int, error) {
		assert.True(t, ok)
		assert.Equal(t, 7, current)
		return 0, errors.New("node went away")
	})
	assert.EqualError(t, err, "node went away")
	assert.Equal(t, 7, v)

	v, ok := c.Get("blocks")
	assert.True(t, ok)
	assert.Equal(t, 7, v)
}
