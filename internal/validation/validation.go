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

package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxerrors"
	"github.com/go-playground/validator/v10"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

// Validator checks writer inputs before anything is encoded or sent
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := &Validator{validate: validator.New()}
	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	// ethaddr accepts any case, where the builtin eth_addr insists on a valid checksum for mixed case
	_ = v.validate.RegisterValidation("ethaddr", func(fl validator.FieldLevel) bool {
		_, err := ethtypes.NewAddress(fl.Field().String())
		return err == nil
	})
	_ = v.validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Struct returns an InvalidArgument error naming every failed field
func (v *Validator) Struct(ctx context.Context, s interface{}) error {
	err := v.validate.StructCtx(ctx, s)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return nxerrors.Wrap(ctx, nxerrors.InvalidArgument, err, msgs.MsgInvalidParameters, err.Error())
	}
	problems := make([]string, len(fieldErrors))
	for i, fe := range fieldErrors {
		if fe.Param() != "" {
			problems[i] = fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
		} else {
			problems[i] = fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
		}
	}
	return nxerrors.New(ctx, nxerrors.InvalidArgument, msgs.MsgInvalidParameters, strings.Join(problems, ", "))
}
