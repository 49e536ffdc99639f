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

package logger

import (
	"log/slog"

	"github.com/lcfs-project/lcfs/cfg"
)

// Custom levels, spaced out like slog's built-ins so a handler's Enabled
// check is a plain numeric comparison. slog.LevelInfo/Warn/Error already
// cover INFO/WARNING/ERROR; TRACE sits below slog.LevelDebug and OFF sits
// above everything any caller will ever log.
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelOff   = slog.Level(16)
)

// levelName renders the custom level names this package's handler emits
// instead of slog's default "DEBUG+4"-style strings.
func levelName(level slog.Level) string {
	switch {
	case level < LevelDebug:
		return cfg.TRACE
	case level < slog.LevelInfo:
		return cfg.DEBUG
	case level < LevelWarn:
		return cfg.INFO
	case level < LevelError:
		return cfg.WARNING
	default:
		return cfg.ERROR
	}
}

// severityToLevel maps a configured severity to the slog.Level a
// programLevel var should be set to so records below it are filtered.
func severityToLevel(severity string) slog.Level {
	switch severity {
	case cfg.TRACE:
		return LevelTrace
	case cfg.DEBUG:
		return LevelDebug
	case cfg.INFO:
		return slog.LevelInfo
	case cfg.WARNING:
		return LevelWarn
	case cfg.ERROR:
		return LevelError
	case cfg.OFF:
		return LevelOff
	default:
		return slog.LevelInfo
	}
}
