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
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/hyperledger/firefly-signer/pkg/abi"
)

// Registry loads contract ABIs from <directory>/<name>.json and caches them for the life of the process
type Registry interface {
	Load(ctx context.Context, name string) (abi.ABI, error)
}

type registry struct {
	dir   string
	lock  sync.RWMutex
	cache map[string]abi.ABI
}

type artifact struct {
	ContractName string          `json:"contractName,omitempty"`
	ABI          json.RawMessage `json:"abi"`
}

func New(dir string) Registry {
	return &registry{
		dir:   dir,
		cache: make(map[string]abi.ABI),
	}
}

func (r *registry) Load(ctx context.Context, name string) (abi.ABI, error) {
	r.lock.RLock()
	a, ok := r.cache[name]
	r.lock.RUnlock()
	if ok {
		return a, nil
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	if a, ok := r.cache[name]; ok {
		return a, nil
	}
	a, err := r.readArtifact(ctx, name)
	if err != nil {
		return nil, err
	}
	r.cache[name] = a
	return a, nil
}

func (r *registry) readArtifact(ctx context.Context, name string) (abi.ABI, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return nil, nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgABIArtifactInvalidName, name)
	}
	path := filepath.Join(r.dir, name+".json")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nxerrors.New(ctx, nxerrors.ArtifactMissing, msgs.MsgABIArtifactNotFound, name, path)
	} else if err != nil {
		return nil, nxerrors.Wrap(ctx, nxerrors.ArtifactMissing, err, msgs.MsgABIArtifactReadFailed, name)
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, nxerrors.Wrap(ctx, nxerrors.ArtifactMalformed, err, msgs.MsgABIArtifactInvalidJSON, name)
	}
	var a abi.ABI
	if len(art.ABI) == 0 || string(art.ABI) == "null" {
		return nil, nxerrors.New(ctx, nxerrors.ArtifactMalformed, msgs.MsgABIArtifactNoABI, name)
	}
	if err := json.Unmarshal(art.ABI, &a); err != nil {
		return nil, nxerrors.Wrap(ctx, nxerrors.ArtifactMalformed, err, msgs.MsgABIArtifactInvalidJSON, name)
	}
	if len(a) == 0 {
		return nil, nxerrors.New(ctx, nxerrors.ArtifactMalformed, msgs.MsgABIArtifactNoABI, name)
	}
	log.L(ctx).Infof("Loaded ABI for %s from %s (%d functions, %d events)", name, path, len(a.Functions()), len(a.Events()))
	return a, nil
}
