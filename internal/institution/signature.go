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

	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxtypes"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"golang.org/x/crypto/sha3"
)

// RegistrationMessage is the text the institution wallet signs to consent to registration.
// The wallet is included exactly as the caller supplied it.
func RegistrationMessage(name, institutionType, registrationNumber, wallet string) string {
	return fmt.Sprintf("Register Institution: %s|%s|%s|%s", name, institutionType, registrationNumber, wallet)
}

// personalSignHash is the EIP-191 version 0x45 hash that wallets sign for personal_sign
func personalSignHash(message string) []byte {
	hash := sha3.NewLegacyKeccak256()
	_, _ = hash.Write([]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)))
	return hash.Sum(nil)
}

// recoverPersonalSigner returns the address that produced a 65 byte R,S,V personal_sign
// signature over message. Wallets report V as 27/28, which is normalized to 0/1.
func recoverPersonalSigner(ctx context.Context, message, signature string, chainID int64) (*nxtypes.EthAddress, error) {
	sigBytes, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(signature), "0x"))
	if err != nil || len(sigBytes) != 65 {
		return nil, nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgSignatureMalformed)
	}
	sig, err := secp256k1.DecodeCompactRSV(ctx, sigBytes)
	if err != nil {
		return nil, nxerrors.Wrap(ctx, nxerrors.InvalidArgument, err, msgs.MsgSignatureMalformed)
	}
	if sig.V.Int64() >= 27 {
		sig.V.SetInt64(sig.V.Int64() - 27)
	}
	addr, err := sig.RecoverDirect(personalSignHash(message), chainID)
	if err != nil {
		return nil, nxerrors.Wrap(ctx, nxerrors.InvalidArgument, err, msgs.MsgSignatureMalformed)
	}
	return (*nxtypes.EthAddress)(addr), nil
}

func (w *writer) verifyRegistrationSignature(ctx context.Context, req *RegisterRequest, wallet nxtypes.EthAddress) error {
	if req.Signature == "" {
		if w.requireSignature {
			return nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgSignatureRequired)
		}
		return nil
	}
	message := RegistrationMessage(req.Name, req.InstitutionType, req.RegistrationNumber, req.WalletAddress)
	signer, err := recoverPersonalSigner(ctx, message, req.Signature, w.chainID)
	if err != nil {
		return err
	}
	if !signer.Equals(&wallet) {
		return nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgSignatureInvalid, wallet)
	}
	return nil
}
