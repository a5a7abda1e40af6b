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
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
	"github.com/hyperledger/firefly-signer/pkg/ethsigner"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"golang.org/x/crypto/sha3"
)

type TxStage string

const (
	StageBuilding     TxStage = "building"
	StageGasEstimated TxStage = "gas_estimated"
	StageSigned       TxStage = "signed"
	StageSubmitted    TxStage = "submitted"
	StageAccepted     TxStage = "accepted"
	StageRejected     TxStage = "rejected"
)

// SendResult is returned on success and failure alike. On failure Stage is
// StageRejected and FailedAt is the last stage that was reached.
type SendResult struct {
	TxHash   nxtypes.Bytes32
	From     nxtypes.EthAddress
	Stage    TxStage
	FailedAt TxStage
}

func (sr *SendResult) reject() {
	sr.FailedAt = sr.Stage
	sr.Stage = StageRejected
}

// parseSigningKey never includes the key, or any fragment of it, in an error or log
func parseSigningKey(ctx context.Context, signerKey string) (*secp256k1.KeyPair, error) {
	keyBytes, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(signerKey), "0x"))
	defer zero(keyBytes)
	if err != nil || len(keyBytes) != 32 {
		return nil, nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgEthClientInvalidSigningKey)
	}
	kp, err := secp256k1.NewSecp256k1KeyPair(keyBytes)
	if err != nil {
		return nil, nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgEthClientInvalidSigningKey)
	}
	return kp, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func (ec *ethClient) SenderAddress(ctx context.Context, signerKey string) (*nxtypes.EthAddress, error) {
	kp, err := parseSigningKey(ctx, signerKey)
	if err != nil {
		return nil, err
	}
	defer kp.PrivateKey.Zero()
	addr := nxtypes.EthAddress(kp.Address)
	return &addr, nil
}

func (ec *ethClient) Send(ctx context.Context, signerKey string, fn *Function, args interface{}) (res *SendResult, err error) {
	ctx, cancel := ec.withTimeout(ctx)
	defer cancel()

	res = &SendResult{Stage: StageBuilding}
	defer func() {
		if err != nil {
			res.reject()
			log.L(ctx).Errorf("Transaction %s rejected at stage %s: %s", fn.Signature, res.FailedAt, err)
		}
		ec.metrics.TransactionFinished(fn.Signature, res)
	}()

	kp, err := parseSigningKey(ctx, signerKey)
	if err != nil {
		return res, err
	}
	defer kp.PrivateKey.Zero()
	res.From = nxtypes.EthAddress(kp.Address)

	data, err := fn.EncodeCallData(ctx, args)
	if err != nil {
		return res, err
	}
	tx := &ethsigner.Transaction{
		From: json.RawMessage(fmt.Sprintf(`"%s"`, res.From)),
		To:   &fn.Contract.Address,
		Data: data,
	}

	// Nothing is signed or sent unless estimation succeeds, so a call that will revert
	// fails here without costing gas
	gasEstimate, err := ec.estimateGas(ctx, fn.Contract, tx)
	if err != nil {
		return res, err
	}
	tx.GasLimit = (*ethtypes.HexInteger)(big.NewInt(int64(float64(gasEstimate) * ec.gasEstimateFactor)))
	res.Stage = StageGasEstimated

	if err = ec.fillNonceAndPrice(ctx, tx, res.From); err != nil {
		return res, err
	}
	rawTX, err := ec.signTransaction(ctx, kp, tx)
	if err != nil {
		return res, err
	}
	res.Stage = StageSigned

	// A failure from here on means the node refused the signed transaction
	res.Stage = StageSubmitted
	var txHash ethtypes.HexBytes0xPrefix
	if err = ec.callRPC(ctx, &txHash, "eth_sendRawTransaction", ethtypes.HexBytes0xPrefix(rawTX)); err != nil {
		return res, ec.mapRPCError(ctx, "eth_sendRawTransaction", err)
	}
	copy(res.TxHash[:], txHash)
	res.Stage = StageAccepted
	log.L(ctx).Infof("Transaction %s accepted by node (from=%s nonce=%s gas=%s): %s", fn.Signature, res.From, tx.Nonce, tx.GasLimit, res.TxHash)
	return res, nil
}

func (ec *ethClient) fillNonceAndPrice(ctx context.Context, tx *ethsigner.Transaction, from nxtypes.EthAddress) error {
	var nonce ethtypes.HexInteger
	if err := ec.callRPC(ctx, &nonce, "eth_getTransactionCount", from.String(), "pending"); err != nil {
		return ec.mapRPCError(ctx, "eth_getTransactionCount", err)
	}
	tx.Nonce = &nonce

	gasPrice := ec.gasPrice
	if gasPrice == nil {
		var nodePrice ethtypes.HexInteger
		if err := ec.callRPC(ctx, &nodePrice, "eth_gasPrice"); err != nil {
			return ec.mapRPCError(ctx, "eth_gasPrice", err)
		}
		gasPrice = nodePrice.BigInt()
	}
	if ec.txVersion == EIP1559 {
		tx.MaxFeePerGas = (*ethtypes.HexInteger)(new(big.Int).Set(gasPrice))
		tx.MaxPriorityFeePerGas = (*ethtypes.HexInteger)(new(big.Int).Set(gasPrice))
	} else {
		tx.GasPrice = (*ethtypes.HexInteger)(new(big.Int).Set(gasPrice))
	}
	return nil
}

func (ec *ethClient) signTransaction(ctx context.Context, kp *secp256k1.KeyPair, tx *ethsigner.Transaction) ([]byte, error) {
	var sigPayload *ethsigner.TransactionSignaturePayload
	switch ec.txVersion {
	case EIP1559:
		sigPayload = tx.SignaturePayloadEIP1559(ec.chainID)
	case LEGACY_EIP155:
		sigPayload = tx.SignaturePayloadLegacyEIP155(ec.chainID)
	default:
		sigPayload = tx.SignaturePayloadLegacyOriginal()
	}
	hash := sha3.NewLegacyKeccak256()
	_, _ = hash.Write(sigPayload.Bytes())

	// SignDirect gives V as 27/28, which each Finalize adjusts for its own encoding
	sig, err := kp.SignDirect(hash.Sum(nil))
	var rawTX []byte
	if err == nil {
		switch ec.txVersion {
		case EIP1559:
			rawTX, err = tx.FinalizeEIP1559WithSignature(sigPayload, sig)
		case LEGACY_EIP155:
			rawTX, err = tx.FinalizeLegacyEIP155WithSignature(sigPayload, sig, ec.chainID)
		default:
			rawTX, err = tx.FinalizeLegacyOriginalWithSignature(sigPayload, sig)
		}
	}
	if err != nil {
		return nil, nxerrors.Wrap(ctx, nxerrors.InvalidArgument, err, msgs.MsgEthClientSigningFailed)
	}
	return rawTX, nil
}
