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
	"context"
	"io"
	"math"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Bigboss298/DataTrust-Nexus/pkg/confutil"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const maxFieldLen = 61

var (
	rootLogger = logrus.NewEntry(logrus.StandardLogger())

	// L returns the logger carried by the context, or the root logger
	L = fromContext

	initialized atomic.Bool
)

type ctxLogKey struct{}

func InitConfig(conf *nxconf.LogConfig) {
	initialized.Store(true)
	def := nxconf.LogDefaults

	SetLevel(confutil.StringNotEmpty(conf.Level, *def.Level))
	if out := outputFor(conf); out != nil {
		logrus.SetOutput(out)
	}

	logrus.SetReportCaller(false)
	logrus.SetFormatter(formatterFor(conf))
}

func outputFor(conf *nxconf.LogConfig) io.Writer {
	def := nxconf.LogDefaults
	switch confutil.StringNotEmpty(conf.Output, *def.Output) {
	case "file":
		filename := confutil.StringNotEmpty(conf.File.Filename, *def.File.Filename)
		rootLogger.Infof("Logs diverted to %s", filename)
		maxSize := confutil.ByteSize(conf.File.MaxSize, 0, *def.File.MaxSize)
		maxAge := confutil.DurationMin(conf.File.MaxAge, 0, *def.File.MaxAge)
		return &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    int(math.Ceil(float64(maxSize) / (1024 * 1024))), // megabytes
			MaxBackups: confutil.IntMin(conf.File.MaxBackups, 0, *def.File.MaxBackups),
			MaxAge:     int(math.Ceil(float64(maxAge) / float64(24*time.Hour))), // days
			Compress:   confutil.Bool(conf.File.Compress, *def.File.Compress),
		}
	case "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	default:
		return nil
	}
}

type utcFormatter struct {
	logrus.Formatter
}

func (u utcFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.UTC()
	return u.Formatter.Format(e)
}

func formatterFor(conf *nxconf.LogConfig) logrus.Formatter {
	def := nxconf.LogDefaults
	timeFormat := confutil.StringNotEmpty(conf.TimeFormat, *def.TimeFormat)
	disableColor := confutil.Bool(conf.DisableColor, *def.DisableColor)
	forceColor := confutil.Bool(conf.ForceColor, *def.ForceColor)

	var f logrus.Formatter
	switch confutil.StringNotEmpty(conf.Format, *def.Format) {
	case "json":
		f = &logrus.JSONFormatter{
			TimestampFormat: timeFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  confutil.StringNotEmpty(conf.JSON.TimestampField, *def.JSON.TimestampField),
				logrus.FieldKeyLevel: confutil.StringNotEmpty(conf.JSON.LevelField, *def.JSON.LevelField),
				logrus.FieldKeyMsg:   confutil.StringNotEmpty(conf.JSON.MessageField, *def.JSON.MessageField),
				logrus.FieldKeyFunc:  confutil.StringNotEmpty(conf.JSON.FuncField, *def.JSON.FuncField),
				logrus.FieldKeyFile:  confutil.StringNotEmpty(conf.JSON.FileField, *def.JSON.FileField),
			},
		}
	case "detailed":
		logrus.SetReportCaller(true)
		f = &logrus.TextFormatter{
			DisableColors:   disableColor,
			ForceColors:     forceColor,
			TimestampFormat: timeFormat,
			FullTimestamp:   true,
		}
	default:
		f = &prefixed.TextFormatter{
			DisableColors:   disableColor,
			ForceColors:     forceColor,
			TimestampFormat: timeFormat,
			ForceFormatting: true,
			FullTimestamp:   true,
		}
	}
	if confutil.Bool(conf.UTC, *def.UTC) {
		return utcFormatter{f}
	}
	return f
}

// EnsureInit applies default config if nothing has initialized logging yet (unit tests mainly)
func EnsureInit() {
	if !initialized.Load() {
		InitConfig(&nxconf.LogConfig{})
	}
}

func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	EnsureInit()
	return context.WithValue(ctx, ctxLogKey{}, logger)
}

// WithLogField returns a context whose logger carries the field. Long values are truncated.
func WithLogField(ctx context.Context, key, value string) context.Context {
	if len(value) > maxFieldLen {
		value = value[:maxFieldLen] + "..."
	}
	return WithLogger(ctx, fromContext(ctx).WithField(key, value))
}

// WithComponent tags all logging under the context with the "role" used by the prefixed formatter
func WithComponent(ctx context.Context, component string) context.Context {
	return WithLogField(ctx, "role", component)
}

func fromContext(ctx context.Context) *logrus.Entry {
	if logger, ok := ctx.Value(ctxLogKey{}).(*logrus.Entry); ok {
		return logger
	}
	return rootLogger
}

func IsDebugEnabled() bool {
	return logrus.IsLevelEnabled(logrus.DebugLevel)
}

func IsTraceEnabled() bool {
	return logrus.IsLevelEnabled(logrus.TraceLevel)
}

func GetLevel() string {
	switch logrus.GetLevel() {
	case logrus.ErrorLevel:
		return "error"
	case logrus.WarnLevel:
		return "warn"
	case logrus.DebugLevel:
		return "debug"
	case logrus.TraceLevel:
		return "trace"
	default:
		return "info"
	}
}

func SetLevel(level string) {
	switch strings.ToLower(level) {
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	case "warn", "warning":
		logrus.SetLevel(logrus.WarnLevel)
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "trace":
		logrus.SetLevel(logrus.TraceLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}
