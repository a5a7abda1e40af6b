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

package nxerrors

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// Kind classifies a failure so callers can decide between "retry later", "fix the input"
// and "this will never succeed as written".
type Kind string

const (
	Unclassified         Kind = ""
	RpcUnavailable       Kind = "RpcUnavailable"
	Reverted             Kind = "Reverted"
	InvalidArgument      Kind = "InvalidArgument"
	InsufficientFunds    Kind = "InsufficientFunds"
	NotFound             Kind = "NotFound"
	ConfigurationMissing Kind = "ConfigurationMissing"
	ArtifactMissing      Kind = "ArtifactMissing"
	ArtifactMalformed    Kind = "ArtifactMalformed"
	Cancelled            Kind = "Cancelled"
)

// Retryable is true only for transient failures, where the same request may succeed later
func (k Kind) Retryable() bool {
	return k == RpcUnavailable
}

type KindError struct {
	kind   Kind
	reason string
	err    error
	cause  error
}

func (e *KindError) Error() string {
	return e.err.Error()
}

// Unwrap exposes both the coded message and the error it wrapped. The i18n error
// does not unwrap to its cause, so the cause is held here as well.
func (e *KindError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.err}
	}
	return []error{e.err, e.cause}
}

func (e *KindError) Kind() Kind {
	return e.kind
}

// Reason is the contract supplied revert reason, when the kind is Reverted
func (e *KindError) Reason() string {
	return e.reason
}

func New(ctx context.Context, kind Kind, key i18n.ErrorMessageKey, inserts ...interface{}) error {
	return &KindError{kind: kind, err: i18n.NewError(ctx, key, inserts...)}
}

// Wrap classifies err under a new message. A revert reason anywhere in err is kept.
func Wrap(ctx context.Context, kind Kind, err error, key i18n.ErrorMessageKey, inserts ...interface{}) error {
	return &KindError{kind: kind, reason: ReasonOf(err), err: i18n.WrapError(ctx, err, key, inserts...), cause: err}
}

// WithKind tags an existing error, keeping its message untouched
func WithKind(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &KindError{kind: kind, reason: ReasonOf(err), err: err}
}

func NewReverted(ctx context.Context, reason string, key i18n.ErrorMessageKey, inserts ...interface{}) error {
	return &KindError{kind: Reverted, reason: reason, err: i18n.NewError(ctx, key, inserts...)}
}

// KindOf returns the outermost classification found in the chain, falling back to
// matching well known node error strings.
func KindOf(err error) Kind {
	if err == nil {
		return Unclassified
	}
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	if errors.Is(err, context.Canceled) {
		return Cancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return RpcUnavailable
	}
	return MapError(err)
}

func ReasonOf(err error) string {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.reason
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MapError classifies the free-text errors returned by Ethereum nodes
func MapError(err error) Kind {
	errString := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errString, "insufficient funds"):
		return InsufficientFunds
	case strings.Contains(errString, "reverted"),
		strings.Contains(errString, "revert"):
		return Reverted
	case strings.Contains(errString, "nonce too low"),
		strings.Contains(errString, "transaction underpriced"),
		strings.Contains(errString, "known transaction"),
		strings.Contains(errString, "already known"),
		strings.Contains(errString, "invalid argument"),
		strings.Contains(errString, "invalid sender"):
		return InvalidArgument
	case strings.Contains(errString, "connection refused"),
		strings.Contains(errString, "connection reset"),
		strings.Contains(errString, "timeout"),
		strings.Contains(errString, "eof"),
		strings.Contains(errString, "no such host"),
		strings.Contains(errString, "header not found"),
		strings.Contains(errString, "503"),
		strings.Contains(errString, "502"),
		strings.Contains(errString, "429"):
		return RpcUnavailable
	default:
		return Unclassified
	}
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case NotFound:
		return http.StatusNotFound
	case InvalidArgument:
		return http.StatusBadRequest
	case RpcUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
