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
	"bytes"
	"context"
	"log/slog"
	"regexp"
	"testing"

	"github.com/lcfs-project/lcfs/cfg"
	"github.com/stretchr/testify/assert"
)

func newBufferedLogger(t *testing.T, format string) (*bytes.Buffer, *slog.Logger) {
	t.Helper()
	buf := &bytes.Buffer{}
	factory := &loggerFactory{format: format}
	level := new(slog.LevelVar)
	level.Set(LevelTrace)
	return buf, slog.New(factory.createJsonOrTextHandler(buf, level, "TestLogs: "))
}

func TestTextFormatMatchesExpectedShape(t *testing.T) {
	buf, l := newBufferedLogger(t, "text")
	l.Log(context.Background(), LevelTrace, "www.traceExample.com")

	pattern := `^time="\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}\.\d{6}" severity=TRACE message="TestLogs: www.traceExample.com"\n$`
	assert.Regexp(t, regexp.MustCompile(pattern), buf.String())
}

func TestJsonFormatMatchesExpectedShape(t *testing.T) {
	buf, l := newBufferedLogger(t, "json")
	l.Info("www.infoExample.com")

	pattern := `^{"timestamp":{"seconds":\d{10},"nanos":\d{1,10}},"severity":"INFO","message":"TestLogs: www.infoExample.com"}\n$`
	assert.Regexp(t, regexp.MustCompile(pattern), buf.String())
}

func TestSeverityFiltering(t *testing.T) {
	cases := []struct {
		severity string
		wantLogs int
	}{
		{cfg.OFF, 0},
		{cfg.ERROR, 1},
		{cfg.WARNING, 2},
		{cfg.INFO, 3},
		{cfg.DEBUG, 4},
		{cfg.TRACE, 5},
	}

	for _, c := range cases {
		buf := &bytes.Buffer{}
		factory := &loggerFactory{format: "text"}
		level := new(slog.LevelVar)
		level.Set(severityToLevel(c.severity))
		l := slog.New(factory.createJsonOrTextHandler(buf, level, ""))

		l.Log(context.Background(), LevelTrace, "trace")
		l.Debug("debug")
		l.Info("info")
		l.Warn("warn")
		l.Error("error")

		got := 0
		for _, line := range bytes.Split(bytes.TrimRight(buf.Bytes(), "\n"), []byte("\n")) {
			if len(line) > 0 {
				got++
			}
		}
		assert.Equal(t, c.wantLogs, got, "severity %s", c.severity)
	}
}

func TestSetLogFormatDefaultsToJson(t *testing.T) {
	SetLogFormat("")
	assert.Equal(t, "json", defaultLoggerFactory.format)
}
