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

package msgs

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"golang.org/x/text/language"
)

const nexusPrefix = "ND01"

var registered sync.Once
var ffe = func(key, translation string, statusHint ...int) i18n.ErrorMessageKey {
	registered.Do(func() {
		i18n.RegisterPrefix(nexusPrefix, "DataTrust Nexus")
	})
	if !strings.HasPrefix(key, nexusPrefix) {
		panic(fmt.Errorf("must have prefix '%s': %s", nexusPrefix, key))
	}
	return i18n.FFE(language.AmericanEnglish, key, translation, statusHint...)
}

var (
	// Config ND0100XX
	MsgConfigFileMissing            = ffe("ND010000", "Config file not found at path: %s")
	MsgConfigFileReadError          = ffe("ND010001", "Failed to read config file %s: %s")
	MsgConfigFileParseError         = ffe("ND010002", "Failed to parse config file: %s")
	MsgConfigMissingRPCURL          = ffe("ND010003", "Blockchain RPC URL must be configured")
	MsgConfigMissingContractAddress = ffe("ND010004", "Address for contract '%s' must be configured")
	MsgConfigMissingServerKey       = ffe("ND010005", "Server signing key must be configured")
	MsgConfigMissingABIDir          = ffe("ND010006", "ABI artifact directory must be configured")
	MsgConfigInvalidContractAddress = ffe("ND010007", "Invalid address configured for contract '%s'")
	MsgConfigInvalidTxType          = ffe("ND010008", "Invalid transaction type '%s'")
	MsgConfigChainIDMismatch        = ffe("ND010009", "Node reported chain ID %d but %d is configured")
	MsgConfigInvalidEnv             = ffe("ND010010", "Invalid value for environment variable %s")

	// ABI artifacts ND0101XX
	MsgABIArtifactNotFound    = ffe("ND010100", "No ABI artifact found for contract '%s' at %s", http.StatusNotFound)
	MsgABIArtifactReadFailed  = ffe("ND010101", "Failed to read ABI artifact for contract '%s'")
	MsgABIArtifactInvalidJSON = ffe("ND010102", "ABI artifact for contract '%s' is not valid JSON")
	MsgABIArtifactNoABI       = ffe("ND010103", "ABI artifact for contract '%s' has no 'abi' section")
	MsgABIArtifactInvalidName = ffe("ND010104", "Invalid contract name '%s'")

	// Contract bindings ND0102XX
	MsgBindingFunctionMissing   = ffe("ND010200", "Contract '%s' ABI has no function '%s'")
	MsgBindingEventMissing      = ffe("ND010201", "Contract '%s' ABI has no event '%s'")
	MsgBindingSignatureMismatch = ffe("ND010202", "Contract '%s' signature has changed: expected '%s' got '%s'")
	MsgBindingOutputsMismatch   = ffe("ND010203", "Contract '%s' function '%s' outputs have changed: expected %v got %v")
	MsgBindingIndexedMismatch   = ffe("ND010204", "Contract '%s' event '%s' indexed parameters have changed: expected %v got %v")

	// JSON/RPC client ND0103XX
	MsgRPCClientInvalidHTTPURL    = ffe("ND010300", "Invalid HTTP URL: '%s'")
	MsgRPCClientRequestFailed     = ffe("ND010301", "Backend RPC request failed: %s")
	MsgRPCClientResultParseFailed = ffe("ND010302", "Failed to parse result (expected=%T): %s")
	MsgRPCClientInvalidParam      = ffe("ND010303", "Invalid parameter at position %d for method %s: %s")

	// Chain client ND0104XX
	MsgEthClientChainIDFailed      = ffe("ND010400", "Failed to query chain ID")
	MsgEthClientCallReverted       = ffe("ND010401", "Execution reverted: %s")
	MsgEthClientInvalidInput       = ffe("ND010402", "Unable to encode inputs for function '%s'", http.StatusBadRequest)
	MsgEthClientDecodeOutputFailed = ffe("ND010403", "Unable to decode outputs of function '%s'")
	MsgEthClientNotFunction        = ffe("ND010404", "ABI entry '%s' is not a function")
	MsgEthClientNotEvent           = ffe("ND010405", "ABI entry '%s' is not an event")
	MsgEthClientInvalidSigningKey  = ffe("ND010406", "Invalid signing key supplied", http.StatusBadRequest)
	MsgEthClientSigningFailed      = ffe("ND010407", "Failed to sign transaction")
	MsgEthClientInvalidTXVersion   = ffe("ND010408", "Unsupported transaction type: %s")
	MsgEthClientTimeout            = ffe("ND010409", "Request to node timed out calling %s")
	MsgEthClientCancelled          = ffe("ND010410", "Request to node cancelled calling %s")
	MsgEthClientUnavailable        = ffe("ND010411", "Node unavailable calling %s: %s")
	MsgEthClientInsufficientFunds  = ffe("ND010412", "Insufficient funds: %s")
	MsgEthClientRejected           = ffe("ND010413", "Transaction rejected by node: %s")
	MsgEthClientLogDecodeFailed    = ffe("ND010414", "Failed to decode log %d/%d/%d as event %s")
	MsgEthClientInvalidBlockRange  = ffe("ND010415", "Invalid block range %s-%s")
	MsgEthClientGasPriceFailed     = ffe("ND010416", "Failed to determine gas price")
	MsgEthClientNodeError          = ffe("ND010417", "Node returned an error calling %s: %s")

	// Types ND0105XX
	MsgTypesInvalidHex     = ffe("ND010500", "Invalid hex: %s", http.StatusBadRequest)
	MsgTypesInvalidAddress = ffe("ND010501", "Invalid address '%s'", http.StatusBadRequest)
	MsgTypesInvalidUint256 = ffe("ND010502", "Invalid integer '%s'", http.StatusBadRequest)
	MsgTypesInvalidBytes32 = ffe("ND010503", "Value is not 32 bytes (length=%d)", http.StatusBadRequest)

	// Projection ND0106XX
	MsgProjectorScanFailed = ffe("ND010600", "Failed to project %s events from contract %s")
	MsgProjectorCancelled  = ffe("ND010601", "Projection of %s events cancelled")

	// Domain services ND0107XX
	MsgInvalidParameters   = ffe("ND010700", "Invalid parameters: %s", http.StatusBadRequest)
	MsgInstitutionNotFound = ffe("ND010701", "Institution %s not found", http.StatusNotFound)
	MsgDataRecordNotFound  = ffe("ND010702", "Data record '%s' not found", http.StatusNotFound)
	MsgPermissionNotFound  = ffe("ND010703", "No permission for %s on record '%s'", http.StatusNotFound)
	MsgAuditLogNotFound    = ffe("ND010704", "Audit log %d not found", http.StatusNotFound)
	MsgSignatureInvalid    = ffe("ND010705", "Signature does not match wallet %s", http.StatusBadRequest)
	MsgSignatureMalformed  = ffe("ND010706", "Signature is malformed", http.StatusBadRequest)
	MsgSignatureRequired   = ffe("ND010707", "A registration signature from the institution wallet is required", http.StatusBadRequest)
	MsgInvalidActionType   = ffe("ND010708", "Invalid audit action type %d", http.StatusBadRequest)
	MsgInvalidWallet       = ffe("ND010709", "Invalid wallet address '%s'", http.StatusBadRequest)
	MsgReadCancelled       = ffe("ND010710", "Read cancelled: %s")
	MsgReadTimedOut        = ffe("ND010711", "Read timed out: %s")

	// Access requests ND0108XX
	MsgAccessRequestNotFound      = ffe("ND010800", "Access request '%s' not found", http.StatusNotFound)
	MsgAccessRequestNotOwner      = ffe("ND010801", "Only the record owner can respond to access request '%s'", http.StatusForbidden)
	MsgAccessRequestNotPending    = ffe("ND010802", "Access request '%s' is already %s", http.StatusConflict)
	MsgAccessRequestInvalidAction = ffe("ND010803", "Invalid response action '%s' (expected approve or deny)", http.StatusBadRequest)
	MsgAccessRequestDuplicate     = ffe("ND010804", "A pending request already exists for record '%s' from %s", http.StatusConflict)

	// HTTP ND0109XX
	MsgHTTPServerMissingPort = ffe("ND010900", "HTTP server port must be specified for '%s'")
	MsgHTTPServerStartFailed = ffe("ND010901", "Failed to start server on '%s'")
	MsgAPIInvalidBody        = ffe("ND010902", "Invalid request body", http.StatusBadRequest)
	MsgAPIMissingWallet      = ffe("ND010903", "Missing X-Wallet-Address header", http.StatusBadRequest)
	MsgAPIInvalidQuery       = ffe("ND010904", "Invalid query parameter '%s'", http.StatusBadRequest)

	// Components ND0110XX
	MsgComponentInitFailed = ffe("ND011000", "Error initializing %s")
)
