// Copyright 2024 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package logger provides structured logging for the mdast command.
package logger

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"zombiezen.com/go/mdast"
)

// Logger wraps charm/log for structured logging.
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output.
func New(w io.Writer) *Logger {
	return NewWithLevel(w, log.InfoLevel)
}

// NewWithLevel creates a logger with a specific level.
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// Discard returns a logger that discards all output.
func Discard() *Logger {
	return New(io.Discard)
}

// ConfigLoaded logs successful config loading.
func (l *Logger) ConfigLoaded(path string, found bool) {
	l.Debug("config loaded",
		"path", path,
		"found", found)
}

// ParseCompleted logs the result of parsing a document.
func (l *Logger) ParseCompleted(file string, doc *mdast.Document, duration time.Duration) {
	l.Info("parse completed",
		"file", file,
		"blocks", len(doc.Blocks),
		"diagrams", len(doc.Diagrams()),
		"diagnostics", len(doc.Diagnostics),
		"duration", duration.Round(time.Microsecond))
}

// Diagnostic logs a problem found while parsing.
// Warnings are logged at the warn level and everything else at the error level.
func (l *Logger) Diagnostic(file string, d mdast.Diagnostic) {
	kv := []any{
		"file", file,
		"kind", d.Kind,
		"line", d.Line,
	}
	if d.Column > 0 {
		kv = append(kv, "column", d.Column)
	}
	if d.Kind.IsWarning() {
		l.Warn(d.Message, kv...)
	} else {
		l.Error(d.Message, kv...)
	}
}

// OutputWritten logs a file written by the parse command.
func (l *Logger) OutputWritten(path, size string) {
	l.Info("output written",
		"path", path,
		"size", size)
}
