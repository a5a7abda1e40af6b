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

package abiregistry

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vaultArtifact = `{
	"contractName": "DataVaultContract",
	"abi": [
		{"type":"function","name":"getTotalRecords","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"type":"event","name":"DataUploaded","inputs":[
			{"name":"recordId","type":"string","indexed":false},
			{"name":"owner","type":"address","indexed":true},
			{"name":"fileName","type":"string","indexed":false},
			{"name":"timestamp","type":"uint256","indexed":false}
		]}
	]
}`

func writeArtifacts(t *testing.T, files map[string]string) string {
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), []byte(content), 0644))
	}
	return dir
}

func TestLoadAndCache(t *testing.T) {
	ctx := context.Background()
	dir := writeArtifacts(t, map[string]string{"DataVaultContract": vaultArtifact})
	r := New(dir)

	a, err := r.Load(ctx, "DataVaultContract")
	require.NoError(t, err)
	assert.NotNil(t, a.Functions()["getTotalRecords"])
	assert.NotNil(t, a.Events()["DataUploaded"])

	// cached, so removing the file makes no difference
	require.NoError(t, os.Remove(filepath.Join(dir, "DataVaultContract.json")))
	a2, err := r.Load(ctx, "DataVaultContract")
	require.NoError(t, err)
	assert.Equal(t, a, a2)
}

func TestConcurrentLoad(t *testing.T) {
	ctx := context.Background()
	r := New(writeArtifacts(t, map[string]string{"DataVaultContract": vaultArtifact}))
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Load(ctx, "DataVaultContract")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, r.(*registry).cache, 1)
}

func TestLoadMissing(t *testing.T) {
	_, err := New(t.TempDir()).Load(context.Background(), "Nope")
	assert.Regexp(t, "ND010100", err)
	assert.Equal(t, nxerrors.ArtifactMissing, nxerrors.KindOf(err))
}

func TestLoadMalformed(t *testing.T) {
	ctx := context.Background()
	r := New(writeArtifacts(t, map[string]string{
		"NotJSON":  "{",
		"NoABI":    `{"contractName":"NoABI","bytecode":"0x"}`,
		"EmptyABI": `{"abi":[]}`,
		"BadABI":   `{"abi":{"type":"function"}}`,
	}))
	for name, code := range map[string]string{
		"NotJSON":  "ND010102",
		"NoABI":    "ND010103",
		"EmptyABI": "ND010103",
		"BadABI":   "ND010102",
	} {
		_, err := r.Load(ctx, name)
		assert.Regexp(t, code, err, name)
		assert.Equal(t, nxerrors.ArtifactMalformed, nxerrors.KindOf(err), name)
	}
}

func TestLoadInvalidName(t *testing.T) {
	_, err := New(t.TempDir()).Load(context.Background(), "../etc/passwd")
	assert.Regexp(t, "ND010104", err)
}
