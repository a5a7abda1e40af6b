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

// Package contracts holds typed bindings for the four deployed contracts. Every function
// and event used is resolved and checked against the loaded ABI when binding, so a
// changed artifact fails at startup rather than on a request.
package contracts

import (
	"context"
	"reflect"

	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/internal/projector"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/abiregistry"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/ethclient"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
)

type Contracts struct {
	Institutions  InstitutionRegistry
	DataVault     DataVault
	AccessControl AccessControl
	AuditTrail    AuditTrail
}

type functionSpec struct {
	name      string
	signature string
	outputs   []string
}

type eventSpec struct {
	name      string
	signature string
	indexed   []bool
}

type boundContract struct {
	chain     ethclient.ChainClient
	projector projector.Projector
	contract  *ethclient.Contract
}

// single decodes a function with one unnamed output
type single[T any] struct {
	Value T `json:"0"`
}

func Bind(ctx context.Context, conf *nxconf.ContractsConfig, registry abiregistry.Registry, chain ethclient.ChainClient, proj projector.Projector) (*Contracts, error) {
	addresses := conf.ByName()
	bind := func(name string) (*boundContract, error) {
		return bindContract(ctx, registry, chain, proj, name, addresses[name])
	}
	c := &Contracts{}
	bc, err := bind(nxconf.ContractInstitutionRegistry)
	if err == nil {
		c.Institutions, err = newInstitutionRegistry(ctx, bc)
	}
	if err == nil {
		bc, err = bind(nxconf.ContractDataVault)
	}
	if err == nil {
		c.DataVault, err = newDataVault(ctx, bc)
	}
	if err == nil {
		bc, err = bind(nxconf.ContractAccessControl)
	}
	if err == nil {
		c.AccessControl, err = newAccessControl(ctx, bc)
	}
	if err == nil {
		bc, err = bind(nxconf.ContractAuditTrail)
	}
	if err == nil {
		c.AuditTrail, err = newAuditTrail(ctx, bc)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func bindContract(ctx context.Context, registry abiregistry.Registry, chain ethclient.ChainClient, proj projector.Projector, name, address string) (*boundContract, error) {
	a, err := registry.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	contract, err := ethclient.NewContract(ctx, name, address, a)
	if err != nil {
		return nil, err
	}
	log.L(ctx).Infof("Bound contract %s at %s", name, contract.Address)
	return &boundContract{chain: chain, projector: proj, contract: contract}, nil
}

func (bc *boundContract) function(ctx context.Context, spec functionSpec) (*ethclient.Function, error) {
	fn, err := bc.contract.Function(ctx, spec.name)
	if err != nil {
		return nil, err
	}
	if fn.Signature != spec.signature {
		return nil, nxerrors.New(ctx, nxerrors.ArtifactMalformed, msgs.MsgBindingSignatureMismatch, bc.contract.Name, spec.signature, fn.Signature)
	}
	outputs := make([]string, len(fn.Entry.Outputs))
	for i, o := range fn.Entry.Outputs {
		outputs[i] = o.Type
	}
	if !reflect.DeepEqual(outputs, spec.outputs) {
		return nil, nxerrors.New(ctx, nxerrors.ArtifactMalformed, msgs.MsgBindingOutputsMismatch, bc.contract.Name, spec.name, spec.outputs, outputs)
	}
	return fn, nil
}

func (bc *boundContract) event(ctx context.Context, spec eventSpec) (*ethclient.EventDef, error) {
	ev, err := bc.contract.Event(ctx, spec.name)
	if err != nil {
		return nil, err
	}
	if ev.Signature != spec.signature {
		return nil, nxerrors.New(ctx, nxerrors.ArtifactMalformed, msgs.MsgBindingSignatureMismatch, bc.contract.Name, spec.signature, ev.Signature)
	}
	indexed := make([]bool, len(ev.Entry.Inputs))
	for i, in := range ev.Entry.Inputs {
		indexed[i] = in.Indexed
	}
	if !reflect.DeepEqual(indexed, spec.indexed) {
		return nil, nxerrors.New(ctx, nxerrors.ArtifactMalformed, msgs.MsgBindingIndexedMismatch, bc.contract.Name, spec.name, spec.indexed, indexed)
	}
	return ev, nil
}

func (bc *boundContract) call(ctx context.Context, fn *ethclient.Function, args, output interface{}) error {
	return bc.chain.Call(ctx, fn, args, ethclient.Latest, output)
}

func (bc *boundContract) send(ctx context.Context, signerKey string, fn *ethclient.Function, args interface{}) (*ethclient.SendResult, error) {
	return bc.chain.Send(ctx, signerKey, fn, args)
}

type functionBinding struct {
	spec   functionSpec
	target **ethclient.Function
}

type eventBinding struct {
	spec   eventSpec
	target **ethclient.EventDef
}

// bindAll resolves every function and event in order, stopping at the first mismatch
func (bc *boundContract) bindAll(ctx context.Context, functions []functionBinding, events []eventBinding) error {
	for _, f := range functions {
		fn, err := bc.function(ctx, f.spec)
		if err != nil {
			return err
		}
		*f.target = fn
	}
	for _, e := range events {
		ev, err := bc.event(ctx, e.spec)
		if err != nil {
			return err
		}
		*e.target = ev
	}
	return nil
}

func projectEvents[T any](ctx context.Context, bc *boundContract, ev *ethclient.EventDef, predicate func(e *projector.Event[T]) bool) ([]*projector.Event[T], error) {
	return projector.ProjectAs(ctx, bc.projector, ev, predicate)
}
