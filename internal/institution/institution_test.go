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

package institution

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Bigboss298/DataTrust-Nexus/internal/contracts"
	"github.com/Bigboss298/DataTrust-Nexus/internal/domain"
	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/internal/projector"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/confutil"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/ethclient"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testServerKey = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

type sentTx struct {
	function  string
	signerKey string
	input     interface{}
}

type fakeRegistry struct {
	mu           sync.Mutex
	institutions map[nxtypes.EthAddress]*contracts.InstitutionState
	events       []*projector.Event[contracts.InstitutionRegisteredEvent]
	getErrors    map[nxtypes.EthAddress]error
	eventsErr    error
	sendErr      error
	sent         []*sentTx
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		institutions: map[nxtypes.EthAddress]*contracts.InstitutionState{},
		getErrors:    map[nxtypes.EthAddress]error{},
	}
}

func (f *fakeRegistry) add(wallet *nxtypes.EthAddress, name string, active bool) {
	f.institutions[*wallet] = &contracts.InstitutionState{
		Name:            name,
		InstitutionType: "University",
		WalletAddress:   *wallet,
		RegisteredAt:    *nxtypes.NewUint256(1700000000),
		IsActive:        active,
	}
	f.events = append(f.events, &projector.Event[contracts.InstitutionRegisteredEvent]{
		BlockNumber: uint64(len(f.events) + 1),
		Data:        contracts.InstitutionRegisteredEvent{WalletAddress: *wallet, Name: name},
	})
}

func (f *fakeRegistry) send(function, signerKey string, input interface{}) (*ethclient.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return &ethclient.SendResult{Stage: ethclient.StageRejected}, f.sendErr
	}
	f.sent = append(f.sent, &sentTx{function: function, signerKey: signerKey, input: input})
	return &ethclient.SendResult{
		TxHash: nxtypes.DataHashToBytes32(fmt.Sprintf("%064x", len(f.sent))),
		Stage:  ethclient.StageAccepted,
	}, nil
}

func (f *fakeRegistry) RegisterInstitution(ctx context.Context, signerKey string, in *contracts.RegisterInstitutionInput) (*ethclient.SendResult, error) {
	return f.send("registerInstitution", signerKey, in)
}

func (f *fakeRegistry) UpdateInstitution(ctx context.Context, signerKey string, in *contracts.UpdateInstitutionInput) (*ethclient.SendResult, error) {
	return f.send("updateInstitution", signerKey, in)
}

func (f *fakeRegistry) DeactivateInstitution(ctx context.Context, signerKey string, wallet nxtypes.EthAddress) (*ethclient.SendResult, error) {
	return f.send("deactivateInstitution", signerKey, wallet)
}

func (f *fakeRegistry) GetInstitution(ctx context.Context, wallet nxtypes.EthAddress) (*contracts.InstitutionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErrors[wallet]; err != nil {
		return nil, err
	}
	if state := f.institutions[wallet]; state != nil {
		copied := *state
		return &copied, nil
	}
	return &contracts.InstitutionState{}, nil
}

func (f *fakeRegistry) GetTotalInstitutions(ctx context.Context) (*nxtypes.Uint256, error) {
	return nxtypes.NewUint256(int64(len(f.institutions))), nil
}

func (f *fakeRegistry) GetInstitutionByIndex(ctx context.Context, index int) (*nxtypes.EthAddress, error) {
	return &f.events[index].Data.WalletAddress, nil
}

func (f *fakeRegistry) VerifyInstitution(ctx context.Context, wallet nxtypes.EthAddress) (bool, error) {
	state := f.institutions[wallet]
	return state != nil && state.IsActive, nil
}

func (f *fakeRegistry) InstitutionRegistered(ctx context.Context, predicate func(e *projector.Event[contracts.InstitutionRegisteredEvent]) bool) ([]*projector.Event[contracts.InstitutionRegisteredEvent], error) {
	if f.eventsErr != nil {
		return nil, f.eventsErr
	}
	var out []*projector.Event[contracts.InstitutionRegisteredEvent]
	for _, e := range f.events {
		if predicate == nil || predicate(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func newTestService(t *testing.T, conf *nxconf.InstitutionConfig) (context.Context, *fakeRegistry, Service) {
	registry := newFakeRegistry()
	svc := New(conf, registry, 1337, testServerKey, domain.NewToolkit(&nxconf.NexusConfig{}))
	return context.Background(), registry, svc
}

func walletSign(t *testing.T, kp *secp256k1.KeyPair, message string) string {
	sig, err := kp.SignDirect(personalSignHash(message))
	require.NoError(t, err)
	rsv := sig.CompactRSV()
	if rsv[64] < 27 {
		rsv[64] += 27
	}
	return "0x" + hex.EncodeToString(rsv)
}

func newRegisterRequest(t *testing.T, kp *secp256k1.KeyPair) *RegisterRequest {
	wallet := strings.ToLower(nxtypes.EthAddress(kp.Address).String())
	req := &RegisterRequest{
		Name:               "Lagos University",
		InstitutionType:    "University",
		RegistrationNumber: "RC-1234",
		MetadataURI:        "ipfs://meta",
		WalletAddress:      wallet,
	}
	req.Signature = walletSign(t, kp, RegistrationMessage(req.Name, req.InstitutionType, req.RegistrationNumber, wallet))
	return req
}

func TestRegisterWithWalletSignature(t *testing.T) {
	ctx, registry, svc := newTestService(t, &nxconf.InstitutionConfig{})
	kp, err := secp256k1.GenerateSecp256k1KeyPair()
	require.NoError(t, err)

	res, err := svc.Register(ctx, newRegisterRequest(t, kp))
	require.NoError(t, err)
	assert.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000000001", res.TransactionHash)
	assert.Equal(t, "https://awakening.bdagscan.com/tx/"+res.TransactionHash, res.ExplorerURL)

	require.Len(t, registry.sent, 1)
	assert.Equal(t, "registerInstitution", registry.sent[0].function)
	assert.Equal(t, testServerKey, registry.sent[0].signerKey)
	assert.Equal(t, &contracts.RegisterInstitutionInput{
		Name:               "Lagos University",
		InstitutionType:    "University",
		RegistrationNumber: "RC-1234",
		MetadataURI:        "ipfs://meta",
	}, registry.sent[0].input)
}

func TestRegisterRejectsSignatureFromAnotherWallet(t *testing.T) {
	ctx, registry, svc := newTestService(t, &nxconf.InstitutionConfig{})
	kp, err := secp256k1.GenerateSecp256k1KeyPair()
	require.NoError(t, err)
	other, err := secp256k1.GenerateSecp256k1KeyPair()
	require.NoError(t, err)

	req := newRegisterRequest(t, kp)
	req.Signature = walletSign(t, other, RegistrationMessage(req.Name, req.InstitutionType, req.RegistrationNumber, req.WalletAddress))
	_, err = svc.Register(ctx, req)
	assert.Regexp(t, "ND010705", err)
	assert.Equal(t, nxerrors.InvalidArgument, nxerrors.KindOf(err))
	assert.Empty(t, registry.sent)

	// signed the right wallet but a different name
	req = newRegisterRequest(t, kp)
	req.Name = "Somebody Else"
	_, err = svc.Register(ctx, req)
	assert.Regexp(t, "ND010705", err)
	assert.Empty(t, registry.sent)
}

func TestRegisterSignatureChecks(t *testing.T) {
	ctx, registry, svc := newTestService(t, &nxconf.InstitutionConfig{})
	kp, err := secp256k1.GenerateSecp256k1KeyPair()
	require.NoError(t, err)

	req := newRegisterRequest(t, kp)
	req.Signature = ""
	_, err = svc.Register(ctx, req)
	assert.Regexp(t, "ND010707", err)

	req.Signature = "0x1234"
	_, err = svc.Register(ctx, req)
	assert.Regexp(t, "ND010706", err)

	req.Signature = "not hex at all"
	_, err = svc.Register(ctx, req)
	assert.Regexp(t, "ND010706", err)
	assert.Empty(t, registry.sent)

	_, registry, svc = newTestService(t, &nxconf.InstitutionConfig{RequireSignature: confutil.P(false)})
	req.Signature = ""
	_, err = svc.Register(ctx, req)
	require.NoError(t, err)
	assert.Len(t, registry.sent, 1)
}

func TestRegisterValidation(t *testing.T) {
	ctx, registry, svc := newTestService(t, &nxconf.InstitutionConfig{})
	_, err := svc.Register(ctx, &RegisterRequest{Name: " ", WalletAddress: "0x12"})
	assert.Regexp(t, "ND010700.*name failed notblank.*institutionType failed notblank.*walletAddress failed ethaddr", err)
	assert.Empty(t, registry.sent)
}

func TestRegisterPropagatesRevert(t *testing.T) {
	ctx, registry, svc := newTestService(t, &nxconf.InstitutionConfig{RequireSignature: confutil.P(false)})
	registry.sendErr = nxerrors.NewReverted(ctx, "already registered", msgs.MsgEthClientCallReverted, "already registered")
	_, err := svc.Register(ctx, &RegisterRequest{
		Name:            "Dup",
		InstitutionType: "Bank",
		WalletAddress:   "0x1111111111111111111111111111111111111111",
	})
	assert.Equal(t, nxerrors.Reverted, nxerrors.KindOf(err))
	assert.Equal(t, "already registered", nxerrors.ReasonOf(err))
}

func TestUpdateAndDeactivateUseCallerKey(t *testing.T) {
	ctx, registry, svc := newTestService(t, &nxconf.InstitutionConfig{})
	wallet := "0x1111111111111111111111111111111111111111"

	_, err := svc.Update(ctx, &UpdateRequest{WalletAddress: wallet, Name: "New Name", MetadataURI: "ipfs://2", PrivateKey: "0xkey"})
	require.NoError(t, err)
	_, err = svc.Deactivate(ctx, &DeactivateRequest{WalletAddress: wallet, PrivateKey: "0xkey"})
	require.NoError(t, err)

	require.Len(t, registry.sent, 2)
	assert.Equal(t, "updateInstitution", registry.sent[0].function)
	assert.Equal(t, "0xkey", registry.sent[0].signerKey)
	assert.Equal(t, &contracts.UpdateInstitutionInput{Name: "New Name", MetadataURI: "ipfs://2"}, registry.sent[0].input)
	assert.Equal(t, "deactivateInstitution", registry.sent[1].function)
	assert.Equal(t, *nxtypes.MustEthAddress(wallet), registry.sent[1].input)

	_, err = svc.Deactivate(ctx, &DeactivateRequest{WalletAddress: wallet})
	assert.Regexp(t, "ND010700.*privateKey failed required", err)
	assert.NotContains(t, err.Error(), "0xkey")
}

func TestGet(t *testing.T) {
	ctx, registry, svc := newTestService(t, &nxconf.InstitutionConfig{})
	wallet := nxtypes.MustEthAddress("0x1111111111111111111111111111111111111111")
	registry.add(wallet, "Lagos University", true)

	inst, err := svc.Get(ctx, "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.Equal(t, "Lagos University", inst.Name)
	assert.Equal(t, int64(1700000000), inst.RegisteredAt)
	assert.Equal(t, "2023-11-14 22:13:20 UTC", inst.RegisteredAtFormatted)
	assert.True(t, inst.IsActive)

	again, err := svc.Get(ctx, "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.Equal(t, inst, again)

	_, err = svc.Get(ctx, "0x2222222222222222222222222222222222222222")
	assert.Equal(t, nxerrors.NotFound, nxerrors.KindOf(err))

	registry.getErrors[*wallet] = nxerrors.NewReverted(ctx, "not registered", msgs.MsgEthClientCallReverted, "not registered")
	_, err = svc.Get(ctx, "0x1111111111111111111111111111111111111111")
	assert.Regexp(t, "ND010701", err)
	assert.Equal(t, nxerrors.NotFound, nxerrors.KindOf(err))

	registry.getErrors[*wallet] = nxerrors.New(ctx, nxerrors.RpcUnavailable, msgs.MsgEthClientTimeout, "eth_call")
	_, err = svc.Get(ctx, "0x1111111111111111111111111111111111111111")
	assert.Equal(t, nxerrors.RpcUnavailable, nxerrors.KindOf(err))

	_, err = svc.Get(ctx, "nope")
	assert.Regexp(t, "ND010709", err)
}

func TestListDedupesAndSkipsFailures(t *testing.T) {
	ctx, registry, svc := newTestService(t, &nxconf.InstitutionConfig{})
	for i := 1; i <= 4; i++ {
		registry.add(nxtypes.MustEthAddress(fmt.Sprintf("0x%040x", i)), fmt.Sprintf("inst-%d", i), i != 2)
	}
	// registered again after deactivation
	registry.add(nxtypes.MustEthAddress(fmt.Sprintf("0x%040x", 2)), "inst-2", true)
	registry.getErrors[*nxtypes.MustEthAddress(fmt.Sprintf("0x%040x", 3))] = nxerrors.New(ctx, nxerrors.RpcUnavailable, msgs.MsgEthClientTimeout, "eth_call")

	list, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "inst-1", list[0].Name)
	assert.Equal(t, "inst-2", list[1].Name)
	assert.Equal(t, "inst-4", list[2].Name)

	page, err := svc.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "inst-2", page[0].Name)

	registry.eventsErr = nxerrors.New(ctx, nxerrors.RpcUnavailable, msgs.MsgProjectorScanFailed, "InstitutionRegistered", "InstitutionRegistry")
	_, err = svc.List(ctx, 0, 0)
	assert.Regexp(t, "ND010600", err)
}

func TestIsVerifiedAndCount(t *testing.T) {
	ctx, registry, svc := newTestService(t, &nxconf.InstitutionConfig{})
	registry.add(nxtypes.MustEthAddress("0x1111111111111111111111111111111111111111"), "a", true)
	registry.add(nxtypes.MustEthAddress("0x2222222222222222222222222222222222222222"), "b", false)

	verified, err := svc.IsVerified(ctx, "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.True(t, verified)
	verified, err = svc.IsVerified(ctx, "0x2222222222222222222222222222222222222222")
	require.NoError(t, err)
	assert.False(t, verified)
	_, err = svc.IsVerified(ctx, "0x22")
	assert.Regexp(t, "ND010709", err)

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRecoverPersonalSignerAcceptsBothVForms(t *testing.T) {
	ctx := context.Background()
	kp, err := secp256k1.GenerateSecp256k1KeyPair()
	require.NoError(t, err)
	sig, err := kp.SignDirect(personalSignHash("hello"))
	require.NoError(t, err)
	rsv := sig.CompactRSV()

	for _, v := range []byte{rsv[64] % 27, rsv[64]%27 + 27} {
		rsv[64] = v
		addr, err := recoverPersonalSigner(ctx, "hello", hex.EncodeToString(rsv), 1337)
		require.NoError(t, err)
		assert.Equal(t, nxtypes.EthAddress(kp.Address), *addr)
	}
}
