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
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/confutil"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/joho/godotenv"

	"sigs.k8s.io/yaml" // handles json tags, so the same structs serve JSON and YAML files
)

const (
	ContractInstitutionRegistry = "InstitutionRegistry"
	ContractDataVault           = "DataVaultContract"
	ContractAccessControl       = "AccessControlContract"
	ContractAuditTrail          = "AuditTrailContract"
)

type NexusConfig struct {
	Log         LogConfig           `json:"log"`
	Blockchain  EthClientConfig     `json:"blockchain"`
	Contracts   ContractsConfig     `json:"contracts"`
	ABIs        ABIConfig           `json:"abis"`
	Projector   ProjectorConfig     `json:"projector"`
	Reader      ReaderConfig        `json:"reader"`
	Institution InstitutionConfig   `json:"institution"`
	Explorer    ExplorerConfig      `json:"explorer"`
	API         APIServerConfig     `json:"api"`
	Metrics     MetricsServerConfig `json:"metrics"`
}

type ContractsConfig struct {
	InstitutionRegistry string `json:"institutionRegistry"`
	DataVault           string `json:"dataVault"`
	AccessControl       string `json:"accessControl"`
	AuditTrail          string `json:"auditTrail"`
}

// ByName maps the ABI artifact name of each contract to its configured address
func (cc *ContractsConfig) ByName() map[string]string {
	return map[string]string{
		ContractInstitutionRegistry: cc.InstitutionRegistry,
		ContractDataVault:           cc.DataVault,
		ContractAccessControl:       cc.AccessControl,
		ContractAuditTrail:          cc.AuditTrail,
	}
}

type ABIConfig struct {
	Directory string `json:"directory"`
}

type ProjectorConfig struct {
	Incremental *bool       `json:"incremental"`
	Cache       CacheConfig `json:"cache"`
}

type CacheConfig struct {
	Capacity *int `json:"capacity"`
}

var ProjectorDefaults = &ProjectorConfig{
	Incremental: confutil.P(true),
	Cache: CacheConfig{
		Capacity: confutil.P(64),
	},
}

type ReaderConfig struct {
	MaxConcurrency *int `json:"maxConcurrency"`
	DefaultTake    *int `json:"defaultTake"`
	MaxTake        *int `json:"maxTake"`
}

var ReaderDefaults = &ReaderConfig{
	MaxConcurrency: confutil.P(8),
	DefaultTake:    confutil.P(50),
	MaxTake:        confutil.P(500),
}

type InstitutionConfig struct {
	RequireSignature *bool `json:"requireSignature"`
}

var InstitutionDefaults = &InstitutionConfig{
	RequireSignature: confutil.P(true),
}

type ExplorerConfig struct {
	BaseURL *string `json:"baseURL"`
}

var ExplorerDefaults = &ExplorerConfig{
	BaseURL: confutil.P("https://awakening.bdagscan.com"),
}

const (
	EnvRPCURL         = "NEXUS_RPC_URL"
	EnvChainID        = "NEXUS_CHAIN_ID"
	EnvServerKey      = "NEXUS_SERVER_KEY"
	EnvABIDirectory   = "NEXUS_ABI_DIRECTORY"
	EnvContractPrefix = "NEXUS_CONTRACT_"
)

func ReadAndParseYAMLFile(ctx context.Context, filePath string, config interface{}) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return i18n.NewError(ctx, msgs.MsgConfigFileMissing, filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return i18n.NewError(ctx, msgs.MsgConfigFileReadError, filePath, err.Error())
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return i18n.NewError(ctx, msgs.MsgConfigFileParseError, err.Error())
	}

	return nil
}

// Load reads the config file (when one is supplied), then a .env file from the working
// directory if present, then applies environment overrides and validates the result.
func Load(ctx context.Context, filePath string) (*NexusConfig, error) {
	conf := &NexusConfig{}
	if filePath != "" {
		if err := ReadAndParseYAMLFile(ctx, filePath, conf); err != nil {
			return nil, nxerrors.WithKind(nxerrors.ConfigurationMissing, err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if err := conf.ApplyEnv(ctx, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := conf.Validate(ctx); err != nil {
		return nil, err
	}
	return conf, nil
}

func envContractName(name string) string {
	switch name {
	case ContractInstitutionRegistry:
		return EnvContractPrefix + "INSTITUTION_REGISTRY"
	case ContractDataVault:
		return EnvContractPrefix + "DATA_VAULT"
	case ContractAccessControl:
		return EnvContractPrefix + "ACCESS_CONTROL"
	default:
		return EnvContractPrefix + "AUDIT_TRAIL"
	}
}

// ApplyEnv overlays secrets and endpoints from the environment. The lookup
// function is injectable so tests do not need to mutate the process env.
func (nc *NexusConfig) ApplyEnv(ctx context.Context, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvRPCURL); ok && v != "" {
		nc.Blockchain.URL = v
	}
	if v, ok := lookup(EnvChainID); ok && v != "" {
		chainID, err := strconv.ParseInt(strings.TrimSpace(v), 0, 64)
		if err != nil {
			return nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgConfigInvalidEnv, EnvChainID)
		}
		nc.Blockchain.ChainID = &chainID
	}
	if v, ok := lookup(EnvServerKey); ok && v != "" {
		nc.Blockchain.ServerKey = v
	}
	if v, ok := lookup(EnvABIDirectory); ok && v != "" {
		nc.ABIs.Directory = v
	}
	targets := map[string]*string{
		ContractInstitutionRegistry: &nc.Contracts.InstitutionRegistry,
		ContractDataVault:           &nc.Contracts.DataVault,
		ContractAccessControl:       &nc.Contracts.AccessControl,
		ContractAuditTrail:          &nc.Contracts.AuditTrail,
	}
	for name, target := range targets {
		if v, ok := lookup(envContractName(name)); ok && v != "" {
			*target = v
		}
	}
	return nil
}

// Validate reports the first missing or malformed required value
func (nc *NexusConfig) Validate(ctx context.Context) error {
	if nc.Blockchain.URL == "" {
		return nxerrors.New(ctx, nxerrors.ConfigurationMissing, msgs.MsgConfigMissingRPCURL)
	}
	if nc.ABIs.Directory == "" {
		return nxerrors.New(ctx, nxerrors.ConfigurationMissing, msgs.MsgConfigMissingABIDir)
	}
	for _, name := range []string{ContractInstitutionRegistry, ContractDataVault, ContractAccessControl, ContractAuditTrail} {
		addr := nc.Contracts.ByName()[name]
		if addr == "" {
			return nxerrors.New(ctx, nxerrors.ConfigurationMissing, msgs.MsgConfigMissingContractAddress, name)
		}
		if _, err := ethtypes.NewAddress(addr); err != nil {
			return nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgConfigInvalidContractAddress, name)
		}
	}
	if nc.Blockchain.ServerKey == "" {
		return nxerrors.New(ctx, nxerrors.ConfigurationMissing, msgs.MsgConfigMissingServerKey)
	}
	switch confutil.StringNotEmpty(nc.Blockchain.TransactionType, *EthClientDefaults.TransactionType) {
	case "eip1559", "legacy_eip155", "legacy_original":
	default:
		return nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgConfigInvalidTxType, *nc.Blockchain.TransactionType)
	}
	return nil
}
