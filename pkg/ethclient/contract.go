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
	"bytes"
	"context"
	"encoding/json"

	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

var (
	// revert("reason") and require(cond, "reason") encode as Error(string)
	defaultError = &abi.Entry{
		Type: abi.Error,
		Name: "Error",
		Inputs: abi.ParameterArray{
			{Type: "string"},
		},
	}
	defaultErrorID = defaultError.FunctionSelectorBytes()
)

// Contract is a deployed contract: its ABI and where it lives
type Contract struct {
	Name    string
	Address ethtypes.Address0xHex
	ABI     abi.ABI
}

// Function is a contract function resolved once, at bind time
type Function struct {
	Contract  *Contract
	Entry     *abi.Entry
	Signature string
	selector  []byte
	inputs    abi.TypeComponent
	outputs   abi.TypeComponent
}

// EventDef is a contract event resolved once, at bind time
type EventDef struct {
	Contract  *Contract
	Entry     *abi.Entry
	Signature string
	Topic0    ethtypes.HexBytes0xPrefix
}

func NewContract(ctx context.Context, name, address string, a abi.ABI) (*Contract, error) {
	addr, err := ethtypes.NewAddress(address)
	if err != nil {
		return nil, nxerrors.Wrap(ctx, nxerrors.InvalidArgument, err, msgs.MsgConfigInvalidContractAddress, name)
	}
	return &Contract{Name: name, Address: *addr, ABI: a}, nil
}

func (c *Contract) Function(ctx context.Context, name string) (*Function, error) {
	entry := c.ABI.Functions()[name]
	if entry == nil {
		return nil, nxerrors.New(ctx, nxerrors.ArtifactMalformed, msgs.MsgBindingFunctionMissing, c.Name, name)
	}
	f := &Function{Contract: c, Entry: entry}
	var err error
	f.Signature, err = entry.SignatureCtx(ctx)
	if err == nil {
		f.selector, err = entry.GenerateFunctionSelectorCtx(ctx)
	}
	if err == nil {
		f.inputs, err = entry.Inputs.TypeComponentTreeCtx(ctx)
	}
	if err == nil {
		f.outputs, err = entry.Outputs.TypeComponentTreeCtx(ctx)
	}
	if err != nil {
		return nil, nxerrors.WithKind(nxerrors.ArtifactMalformed, err)
	}
	return f, nil
}

func (c *Contract) Event(ctx context.Context, name string) (*EventDef, error) {
	entry := c.ABI.Events()[name]
	if entry == nil {
		return nil, nxerrors.New(ctx, nxerrors.ArtifactMalformed, msgs.MsgBindingEventMissing, c.Name, name)
	}
	sig, err := entry.SignatureCtx(ctx)
	if err != nil {
		return nil, nxerrors.WithKind(nxerrors.ArtifactMalformed, err)
	}
	return &EventDef{
		Contract:  c,
		Entry:     entry,
		Signature: sig,
		Topic0:    ethtypes.HexBytes0xPrefix(entry.SignatureHashBytes()),
	}, nil
}

// EncodeCallData builds selector+arguments. args is anything that marshals to a JSON
// object keyed by the ABI parameter names.
func (f *Function) EncodeCallData(ctx context.Context, args interface{}) (ethtypes.HexBytes0xPrefix, error) {
	encoded := []byte{}
	if len(f.Entry.Inputs) > 0 {
		inputMap := map[string]interface{}{}
		b, err := json.Marshal(args)
		if err == nil {
			d := json.NewDecoder(bytes.NewReader(b))
			d.UseNumber()
			err = d.Decode(&inputMap)
		}
		var cv *abi.ComponentValue
		if err == nil {
			cv, err = f.inputs.ParseExternalCtx(ctx, inputMap)
		}
		if err == nil {
			encoded, err = cv.EncodeABIDataCtx(ctx)
		}
		if err != nil {
			return nil, nxerrors.Wrap(ctx, nxerrors.InvalidArgument, err, msgs.MsgEthClientInvalidInput, f.Signature)
		}
	}
	data := make([]byte, 0, len(f.selector)+len(encoded))
	data = append(data, f.selector...)
	return append(data, encoded...), nil
}

// DecodeOutputs unmarshals eth_call return data onto output
func (f *Function) DecodeOutputs(ctx context.Context, data []byte, output interface{}) error {
	cv, err := f.outputs.DecodeABIDataCtx(ctx, data, 0)
	if err == nil {
		err = nxtypes.DecodeInto(ctx, cv, output)
	}
	if err != nil {
		return nxerrors.Wrap(ctx, nxerrors.InvalidArgument, err, msgs.MsgEthClientDecodeOutputFailed, f.Signature)
	}
	return nil
}

// RevertReason renders revert data as the plain Error(string) reason, a custom error
// from the contract ABI, or hex when neither matches.
func (c *Contract) RevertReason(ctx context.Context, data []byte) string {
	if len(data) >= 4 && bytes.Equal(data[:4], defaultErrorID) {
		cv, err := defaultError.Inputs.DecodeABIDataCtx(ctx, data[4:], 0)
		if err == nil && len(cv.Children) == 1 {
			if reason, ok := cv.Children[0].Value.(string); ok {
				return reason
			}
		}
	}
	if errString, ok := c.ABI.ErrorStringCtx(ctx, data); ok {
		return errString
	}
	return ethtypes.HexBytes0xPrefix(data).String()
}
