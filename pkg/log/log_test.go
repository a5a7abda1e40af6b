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

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Bigboss298/DataTrust-Nexus/pkg/confutil"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetLogging() {
	InitConfig(&nxconf.LogConfig{})
}

func TestFieldsAndTruncation(t *testing.T) {
	ctx := WithLogField(context.Background(), "record", "REC-1")
	ctx = WithComponent(ctx, "projector")
	assert.Equal(t, "REC-1", L(ctx).Data["record"])
	assert.Equal(t, "projector", L(ctx).Data["role"])

	ctx = WithLogField(context.Background(), "long", "0123456789012345678901234567890123456789012345678901234567890123456789")
	assert.Equal(t, "0123456789012345678901234567890123456789012345678901234567890...", L(ctx).Data["long"])

	assert.Equal(t, rootLogger, L(context.Background()))
}

func TestLevels(t *testing.T) {
	defer resetLogging()
	for in, out := range map[string]string{
		"eRrOr":   "error",
		"WARNING": "warn",
		"debug":   "debug",
		"trace":   "trace",
		"info":    "info",
		"rubbish": "info",
	} {
		SetLevel(in)
		assert.Equal(t, out, GetLevel(), in)
	}
	SetLevel("trace")
	assert.True(t, IsDebugEnabled())
	assert.True(t, IsTraceEnabled())
}

func TestJSONFormatUTC(t *testing.T) {
	defer resetLogging()
	InitConfig(&nxconf.LogConfig{
		Format: confutil.P("json"),
		UTC:    confutil.P(true),
		JSON: nxconf.LogJSONConfig{
			MessageField: confutil.P("msg"),
		},
	})
	buf := new(bytes.Buffer)
	logrus.SetOutput(buf)
	L(context.Background()).Info("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Regexp(t, "Z$", entry["@timestamp"])
}

func TestOutputs(t *testing.T) {
	defer resetLogging()
	InitConfig(&nxconf.LogConfig{Output: confutil.P("stdout"), Format: confutil.P("detailed")})
	L(context.Background()).Info("detailed to stdout")
	InitConfig(&nxconf.LogConfig{Output: confutil.P("stderr")})
	L(context.Background()).Info("simple to stderr")
}

func TestFileOutput(t *testing.T) {
	defer resetLogging()
	logFile := filepath.Join(t.TempDir(), "nexus.log")
	InitConfig(&nxconf.LogConfig{
		Output: confutil.P("file"),
		File: nxconf.LogFileConfig{
			Filename: confutil.P(logFile),
			MaxSize:  confutil.P("1Mb"),
		},
	})
	L(context.Background()).Info("to file")

	fi, err := os.Stat(logFile)
	require.NoError(t, err)
	assert.False(t, fi.IsDir())
}
