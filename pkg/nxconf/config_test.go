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

package nxconf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
log:
  level: debug
blockchain:
  url: http://localhost:8545
  chainId: 1043
  estimateGasFactor: 1.5
  serverKey: "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
contracts:
  institutionRegistry: "0x1111111111111111111111111111111111111111"
  dataVault: "0x2222222222222222222222222222222222222222"
  accessControl: "0x3333333333333333333333333333333333333333"
  auditTrail: "0x4444444444444444444444444444444444444444"
abis:
  directory: ./abis
reader:
  maxConcurrency: 4
`

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "nexus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadAndParseYAMLFile(t *testing.T) {
	ctx := context.Background()
	var conf NexusConfig
	err := ReadAndParseYAMLFile(ctx, writeConfig(t, sampleConfig), &conf)
	require.NoError(t, err)
	assert.Equal(t, "debug", *conf.Log.Level)
	assert.Equal(t, int64(1043), *conf.Blockchain.ChainID)
	assert.Equal(t, 1.5, *conf.Blockchain.EstimateGasFactor)
	assert.Equal(t, 4, *conf.Reader.MaxConcurrency)
	assert.Nil(t, conf.Reader.MaxTake)
	assert.NoError(t, conf.Validate(ctx))
}

func TestReadAndParseYAMLFileErrors(t *testing.T) {
	ctx := context.Background()
	var conf NexusConfig
	err := ReadAndParseYAMLFile(ctx, filepath.Join(t.TempDir(), "missing.yaml"), &conf)
	assert.Regexp(t, "ND010000", err)

	err = ReadAndParseYAMLFile(ctx, writeConfig(t, "{{{"), &conf)
	assert.Regexp(t, "ND010002", err)
}

func TestValidateMissing(t *testing.T) {
	ctx := context.Background()
	var base NexusConfig
	require.NoError(t, ReadAndParseYAMLFile(ctx, writeConfig(t, sampleConfig), &base))

	conf := base
	conf.Blockchain.URL = ""
	err := conf.Validate(ctx)
	assert.Regexp(t, "ND010003", err)
	assert.Equal(t, nxerrors.ConfigurationMissing, nxerrors.KindOf(err))

	conf = base
	conf.Contracts.AuditTrail = ""
	assert.Regexp(t, "ND010004.*AuditTrailContract", conf.Validate(ctx))

	conf = base
	conf.Contracts.DataVault = "not an address"
	assert.Regexp(t, "ND010007.*DataVaultContract", conf.Validate(ctx))

	conf = base
	conf.Blockchain.ServerKey = ""
	assert.Regexp(t, "ND010005", conf.Validate(ctx))

	conf = base
	conf.ABIs.Directory = ""
	assert.Regexp(t, "ND010006", conf.Validate(ctx))

	conf = base
	txType := "eip4844"
	conf.Blockchain.TransactionType = &txType
	assert.Regexp(t, "ND010008", conf.Validate(ctx))
}

func TestApplyEnv(t *testing.T) {
	ctx := context.Background()
	env := map[string]string{
		EnvRPCURL:                             "http://node:8545",
		EnvChainID:                            "0x413",
		EnvServerKey:                          "0xabcd",
		EnvABIDirectory:                       "/opt/abis",
		"NEXUS_CONTRACT_DATA_VAULT":           "0x5555555555555555555555555555555555555555",
		"NEXUS_CONTRACT_AUDIT_TRAIL":          "",
		"NEXUS_CONTRACT_INSTITUTION_REGISTRY": "0x6666666666666666666666666666666666666666",
	}
	var conf NexusConfig
	conf.Contracts.AuditTrail = "0x4444444444444444444444444444444444444444"
	err := conf.ApplyEnv(ctx, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	require.NoError(t, err)
	assert.Equal(t, "http://node:8545", conf.Blockchain.URL)
	assert.Equal(t, int64(1043), *conf.Blockchain.ChainID)
	assert.Equal(t, "0xabcd", conf.Blockchain.ServerKey)
	assert.Equal(t, "/opt/abis", conf.ABIs.Directory)
	assert.Equal(t, "0x5555555555555555555555555555555555555555", conf.Contracts.DataVault)
	assert.Equal(t, "0x6666666666666666666666666666666666666666", conf.Contracts.InstitutionRegistry)
	assert.Equal(t, "0x4444444444444444444444444444444444444444", conf.Contracts.AuditTrail)

	err = conf.ApplyEnv(ctx, func(k string) (string, bool) {
		if k == EnvChainID {
			return "lots", true
		}
		return "", false
	})
	assert.Regexp(t, "ND010010", err)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer func() { _ = os.Chdir(wd) }()

	conf, err := Load(ctx, writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "./abis", conf.ABIs.Directory)

	_, err = Load(ctx, writeConfig(t, "log: {}"))
	assert.Equal(t, nxerrors.ConfigurationMissing, nxerrors.KindOf(err))

	_, err = Load(ctx, "/does/not/exist.yaml")
	assert.Regexp(t, "ND010000", err)
}

func TestContractsByName(t *testing.T) {
	cc := ContractsConfig{InstitutionRegistry: "a", DataVault: "b", AccessControl: "c", AuditTrail: "d"}
	assert.Equal(t, map[string]string{
		ContractInstitutionRegistry: "a",
		ContractDataVault:           "b",
		ContractAccessControl:       "c",
		ContractAuditTrail:          "d",
	}, cc.ByName())
}
