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
	"errors"
	"sort"
)

// Document is the result of parsing a Markdown document.
// Documents are never partially constructed:
// even malformed input produces a Document,
// with any problems listed in Diagnostics.
type Document struct {
	Blocks []Block `json:"blocks"`
	// References holds every reference definition in the document,
	// keyed by normalized label.
	References ReferenceTable `json:"references,omitempty"`
	// Diagnostics is sorted by line number.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// assemble finalizes the parsed blocks into a Document.
func assemble(blocks []Block, refs ReferenceTable, diags diagnostics) *Document {
	doc := &Document{
		Blocks:     blocks,
		References: refs,
	}
	if len(diags) > 0 {
		doc.Diagnostics = append([]Diagnostic(nil), diags...)
		sort.SliceStable(doc.Diagnostics, func(i, j int) bool {
			return doc.Diagnostics[i].Line < doc.Diagnostics[j].Line
		})
	}
	return doc
}

// Err returns the document's diagnostics joined into a single error,
// or nil if there are none.
func (doc *Document) Err() error {
	if doc == nil || len(doc.Diagnostics) == 0 {
		return nil
	}
	errs := make([]error, len(doc.Diagnostics))
	for i, d := range doc.Diagnostics {
		errs[i] = d
	}
	return errors.Join(errs...)
}

// HasErrors reports whether the document has any diagnostics
// that are not warnings.
func (doc *Document) HasErrors() bool {
	for _, d := range doc.Diagnostics {
		if !d.Kind.IsWarning() {
			return true
		}
	}
	return false
}

// Diagrams returns every diagram in the document in source order.
func (doc *Document) Diagrams() []*Diagram {
	var diagrams []*Diagram
	for _, b := range doc.Blocks {
		Walk(b, &WalkOptions{
			Pre: func(c *Cursor) bool {
				if d, ok := c.Node().(*Diagram); ok {
					diagrams = append(diagrams, d)
				}
				_, isBlock := c.Node().(Block)
				return isBlock
			},
		})
	}
	return diagrams
}
