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

package mdast

import (
	"fmt"
	"strconv"
)

// Diagnostic is a non-fatal problem found while parsing a document.
// Diagnostics never stop a parse:
// the construct that caused one is emitted on a best-effort basis.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Message string         `json:"message"`
	// Line is the 1-based source line the problem was found on.
	Line int `json:"line"`
	// Column is the 1-based column or zero if unknown.
	Column int `json:"column,omitempty"`
}

// Error formats the diagnostic like "line 3: unterminated code fence".
func (d Diagnostic) Error() string {
	if d.Column > 0 {
		return fmt.Sprintf("line %d:%d: %s", d.Line, d.Column, d.Message)
	}
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// DiagnosticKind is an enumeration of problems that can be reported
// in a [Diagnostic].
type DiagnosticKind uint8

const (
	// UnterminatedFence means the input ended inside a fenced block.
	UnterminatedFence DiagnosticKind = 1 + iota
	// MalformedTableRow means a table row had a different number of cells
	// than the table's alignment row.
	MalformedTableRow
	// UnresolvedReference means a reference link named an undefined label.
	UnresolvedReference
	// InvalidHeadingLevel means a heading used more markers than allowed.
	InvalidHeadingLevel
	// InvalidDiagram means a diagram block failed validation.
	InvalidDiagram
	// DiagramWarning is a suspicious but accepted diagram construct.
	DiagramWarning
	// DuplicateReference means a reference label was defined more than once.
	DuplicateReference
)

var diagnosticKindNames = [...]string{
	UnterminatedFence:   "unterminated_fence",
	MalformedTableRow:   "malformed_table_row",
	UnresolvedReference: "unresolved_reference",
	InvalidHeadingLevel: "invalid_heading_level",
	InvalidDiagram:      "invalid_diagram",
	DiagramWarning:      "diagram_warning",
	DuplicateReference:  "duplicate_reference",
}

// String returns the kind's serialized name, like "unterminated_fence".
func (kind DiagnosticKind) String() string {
	if int(kind) < len(diagnosticKindNames) && diagnosticKindNames[kind] != "" {
		return diagnosticKindNames[kind]
	}
	return "DiagnosticKind(" + strconv.Itoa(int(kind)) + ")"
}

// IsWarning reports whether the kind describes something
// that is likely intentional and does not affect the document's structure.
func (kind DiagnosticKind) IsWarning() bool {
	return kind == DiagramWarning || kind == DuplicateReference
}

// MarshalText implements [encoding.TextMarshaler].
func (kind DiagnosticKind) MarshalText() ([]byte, error) {
	return []byte(kind.String()), nil
}

// diagnostics accumulates [Diagnostic] values during a parse.
type diagnostics []Diagnostic

func (ds *diagnostics) add(kind DiagnosticKind, line, col int, format string, args ...any) {
	*ds = append(*ds, Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  col,
	})
}
