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
	"sort"
	"strings"
	"unicode/utf8"
)

// Span is the location of a node in its source document.
// Lines and columns are 1-based; columns count runes.
// The zero Span means the node has no recorded position.
type Span struct {
	Line    int `json:"line"`
	Column  int `json:"column,omitempty"`
	EndLine int `json:"end_line,omitempty"`
}

// SourceSpan returns span.
// It exists so that node types embedding a Span implement [Node].
func (span Span) SourceSpan() Span {
	return span
}

// IsValid reports whether span has a line number.
func (span Span) IsValid() bool {
	return span.Line > 0
}

// Start returns the position of the first byte covered by span.
func (span Span) Start() Position {
	return Position{Line: span.Line, Column: span.Column}
}

// String formats the span as "line:col" or "line-endline".
func (span Span) String() string {
	switch {
	case !span.IsValid():
		return "-"
	case span.EndLine > span.Line:
		return fmt.Sprintf("%d-%d", span.Line, span.EndLine)
	case span.Column > 0:
		return fmt.Sprintf("%d:%d", span.Line, span.Column)
	default:
		return fmt.Sprintf("%d", span.Line)
	}
}

// Position is a single point in a source document.
type Position struct {
	Line   int
	Column int
}

// Less reports whether pos comes before other.
func (pos Position) Less(other Position) bool {
	if pos.Line != other.Line {
		return pos.Line < other.Line
	}
	return pos.Column < other.Column
}

// lineMap translates byte offsets in text joined from several source lines
// back to source positions.
//
// Lines are accumulated with add and the joined text
// becomes available in text once freeze is called.
type lineMap struct {
	buf  strings.Builder
	text string
	segs []lineSegment

	// Most recent pos result, used as a starting point
	// for counting runes in the next call.
	lastSeg    int
	lastOffset int
	lastColumn int
}

// lineSegment is a contiguous run of joined text that came from one source line.
type lineSegment struct {
	offset int // in lineMap.text
	line   int
	column int // of the segment's first byte
}

// add appends s to the joined text.
// If the map is non-empty, sep is written first
// and attributed to the end of the previous segment.
func (m *lineMap) add(sep string, s string, line, column int) {
	if len(m.segs) > 0 {
		m.buf.WriteString(sep)
	}
	m.segs = append(m.segs, lineSegment{
		offset: m.buf.Len(),
		line:   line,
		column: column,
	})
	m.buf.WriteString(s)
}

// freeze makes the joined text available in m.text.
func (m *lineMap) freeze() {
	m.text = m.buf.String()
	m.lastSeg = -1
}

// pos returns the source position of the byte at offset i.
// Offsets inside a multi-byte rune map to the rune's column.
func (m *lineMap) pos(i int) Position {
	if len(m.segs) == 0 {
		return Position{}
	}
	n := sort.Search(len(m.segs), func(j int) bool {
		return m.segs[j].offset > i
	})
	if n > 0 {
		n--
	}
	seg := m.segs[n]
	if i < seg.offset {
		return Position{Line: seg.line, Column: seg.column}
	}
	if i > len(m.text) {
		i = len(m.text)
	}
	for i > seg.offset && i < len(m.text) && !utf8.RuneStart(m.text[i]) {
		i--
	}
	var col int
	switch {
	case n == m.lastSeg && i >= m.lastOffset:
		col = m.lastColumn + utf8.RuneCountInString(m.text[m.lastOffset:i])
	case n == m.lastSeg && i-seg.offset > m.lastOffset-i:
		col = m.lastColumn - utf8.RuneCountInString(m.text[i:m.lastOffset])
	default:
		col = seg.column + utf8.RuneCountInString(m.text[seg.offset:i])
	}
	m.lastSeg = n
	m.lastOffset = i
	m.lastColumn = col
	return Position{Line: seg.line, Column: col}
}

// span returns the span of the bytes in [start, end).
func (m *lineMap) span(start, end int) Span {
	p := m.pos(start)
	span := Span{Line: p.Line, Column: p.Column}
	if end > start {
		if last := m.pos(end - 1); last.Line > p.Line {
			span.EndLine = last.Line
		}
	}
	return span
}
