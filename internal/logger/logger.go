// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger provides the diff engine's structured logging, wired to
// the teacher's own log format rather than slog's stock handlers: a
// time="..." severity=LEVEL message="..." text form and a nested-object
// JSON form, both filtered by a runtime-adjustable severity level.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/lcfs-project/lcfs/cfg"
	"gopkg.in/natefinch/lumberjack.v2"
)

const asyncBufferSize = 1000

var (
	mu                   sync.Mutex
	defaultLoggerFactory *loggerFactory
	defaultLogger        *slog.Logger
	programLevel         = new(slog.LevelVar)
)

func init() {
	defaultLoggerFactory = &loggerFactory{format: "text", level: cfg.INFO}
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(os.Stderr, programLevel, ""))
}

// loggerFactory owns the sink a logger writes to and the settings needed
// to rebuild its handler when the format or level changes.
type loggerFactory struct {
	file            *os.File
	asyncLogger     *AsyncLogger
	format          string
	level           string
	logRotateConfig cfg.LogRotateConfig
}

// createJsonOrTextHandler builds a slog.Handler in this factory's
// configured format, every record prefixed by prefix.
func (f *loggerFactory) createJsonOrTextHandler(w io.Writer, level *slog.LevelVar, prefix string) slog.Handler {
	if strings.EqualFold(f.format, "json") {
		return &recordHandler{w: w, level: level, prefix: prefix, json: true}
	}
	return &recordHandler{w: w, level: level, prefix: prefix, json: false}
}

// recordHandler is a minimal slog.Handler: WithAttrs/WithGroup are no-ops
// and every record is rendered as a flat timestamp/severity/message
// triple, so any attributes on a record (such as the "layer" attribute
// diff.Engine logs with) are dropped.
type recordHandler struct {
	mu     sync.Mutex
	w      io.Writer
	level  *slog.LevelVar
	prefix string
	json   bool
}

func (h *recordHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *recordHandler) Handle(_ context.Context, r slog.Record) error {
	severity := levelName(r.Level)
	message := h.prefix + r.Message

	var line string
	if h.json {
		line = fmt.Sprintf(`{"timestamp":{"seconds":%d,"nanos":%d},"severity":%q,"message":%q}`,
			r.Time.Unix(), r.Time.Nanosecond(), severity, message)
	} else {
		line = fmt.Sprintf(`time=%q severity=%s message=%q`,
			r.Time.Format("2006/01/02 15:04:05.000000"), severity, message)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.w, line)
	return err
}

func (h *recordHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *recordHandler) WithGroup(_ string) slog.Handler      { return h }

// InitLogFile points the default logger at the given configuration's
// file, format and severity, wiring log rotation through lumberjack and
// an AsyncLogger when a file path is configured.
func InitLogFile(config cfg.LoggingConfig) error {
	mu.Lock()
	defer mu.Unlock()

	if defaultLoggerFactory.asyncLogger != nil {
		_ = defaultLoggerFactory.asyncLogger.Close()
		defaultLoggerFactory.asyncLogger = nil
	}

	factory := &loggerFactory{
		format:          config.Format,
		level:           string(config.Severity),
		logRotateConfig: config.LogRotate,
	}

	var w io.Writer = os.Stderr
	if config.FilePath != "" {
		lj := &lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    config.LogRotate.MaxFileSizeMB,
			MaxBackups: config.LogRotate.BackupFileCount,
			Compress:   config.LogRotate.Compress,
		}
		factory.asyncLogger = NewAsyncLogger(lj, asyncBufferSize)
		w = factory.asyncLogger
	}

	setLoggingLevel(factory.level, programLevel)
	defaultLoggerFactory = factory
	defaultLogger = slog.New(factory.createJsonOrTextHandler(w, programLevel, ""))
	return nil
}

// SetLogFormat switches the default logger's rendering without touching
// its destination or level. An empty format means JSON, matching the
// teacher's default.
func SetLogFormat(format string) {
	mu.Lock()
	defer mu.Unlock()

	if format == "" {
		format = "json"
	}
	defaultLoggerFactory.format = format

	var w io.Writer = os.Stderr
	if defaultLoggerFactory.asyncLogger != nil {
		w = defaultLoggerFactory.asyncLogger
	}
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(w, programLevel, ""))
}

func setLoggingLevel(level string, levelVar *slog.LevelVar) {
	levelVar.Set(severityToLevel(level))
}

func Tracef(format string, args ...any) { defaultLogger.Log(context.Background(), LevelTrace, fmt.Sprintf(format, args...)) }
func Debugf(format string, args ...any) { defaultLogger.Debug(fmt.Sprintf(format, args...)) }
func Infof(format string, args ...any)  { defaultLogger.Info(fmt.Sprintf(format, args...)) }
func Warnf(format string, args ...any)  { defaultLogger.Warn(fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...any) { defaultLogger.Error(fmt.Sprintf(format, args...)) }
