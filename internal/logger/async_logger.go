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
	"fmt"
	"io"
	"os"
)

// AsyncLogger buffers writes to an underlying io.WriteCloser (typically a
// *lumberjack.Logger performing rotation) on a dedicated goroutine, so a
// slow or blocked disk never stalls the diff engine's hot path. When the
// buffer is full, writes are dropped rather than blocking the caller.
type AsyncLogger struct {
	out    io.WriteCloser
	buffer chan []byte
	done   chan struct{}
}

// NewAsyncLogger starts the background writer goroutine and returns the
// logger. bufferSize is the number of pending writes it will hold before
// it starts dropping messages.
func NewAsyncLogger(out io.WriteCloser, bufferSize int) *AsyncLogger {
	l := &AsyncLogger{
		out:    out,
		buffer: make(chan []byte, bufferSize),
		done:   make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *AsyncLogger) run() {
	defer close(l.done)
	for msg := range l.buffer {
		if _, err := l.out.Write(msg); err != nil {
			fmt.Fprintf(os.Stderr, "asynclogger: write failed: %v\n", err)
		}
	}
}

// Write implements io.Writer. p is copied before being queued since the
// caller may reuse its backing array.
func (l *AsyncLogger) Write(p []byte) (int, error) {
	msg := make([]byte, len(p))
	copy(msg, p)

	select {
	case l.buffer <- msg:
	default:
		fmt.Fprintln(os.Stderr, "asynclogger: log buffer is full, dropping message.")
	}
	return len(p), nil
}

// Close drains the pending buffer and closes the underlying writer.
func (l *AsyncLogger) Close() error {
	close(l.buffer)
	<-l.done
	return l.out.Close()
}
