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
	"strings"

	"golang.org/x/text/cases"
)

// maxLabelLength is the longest reference label, in bytes, that is recognized.
const maxLabelLength = 999

// ReferenceDefinition is the data of a reference definition line
// like `[label]: https://example.com "Title"`.
type ReferenceDefinition struct {
	// Label is the label as written in the source.
	Label       string `json:"label"`
	Destination string `json:"destination"`
	Title       string `json:"title,omitempty"`
	// Line is the 1-based source line of the definition.
	Line int `json:"line"`
}

// ReferenceTable maps [normalized labels] to reference definitions.
//
// [normalized labels]: NormalizeLabel
type ReferenceTable map[string]ReferenceDefinition

// Lookup returns the definition for the given label,
// which need not be normalized.
func (t ReferenceTable) Lookup(label string) (ReferenceDefinition, bool) {
	key := NormalizeLabel(label)
	if key == "" {
		return ReferenceDefinition{}, false
	}
	def, ok := t[key]
	return def, ok
}

// define adds def to the table, replacing any previous definition.
func (t ReferenceTable) define(def ReferenceDefinition) {
	t[NormalizeLabel(def.Label)] = def
}

// NormalizeLabel returns the lookup key for a reference label.
// Labels match case-insensitively
// and runs of internal whitespace count as a single space.
func NormalizeLabel(s string) string {
	s = strings.Trim(s, " \t\n")
	var b strings.Builder
	b.Grow(len(s))
	space := false
	hi := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case ' ', '\t', '\n':
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c >= 0x80 {
			hi = true
		}
		b.WriteByte(c)
	}
	s = b.String()
	if hi {
		s = cases.Fold().String(s)
	}
	return s
}

// parseReferenceDefinition attempts to parse line as a reference definition.
// Up to three spaces of indentation are permitted.
func parseReferenceDefinition(line string) (def ReferenceDefinition, ok bool) {
	i := 0
	for i < len(line) && i < 3 && line[i] == ' ' {
		i++
	}
	if i >= len(line) || line[i] != '[' {
		return ReferenceDefinition{}, false
	}
	labelStart := i + 1
	labelEnd := -1
	for j := labelStart; j < len(line); j++ {
		if line[j] == '\\' && j+1 < len(line) {
			j++
			continue
		}
		if line[j] == '[' {
			return ReferenceDefinition{}, false
		}
		if line[j] == ']' {
			labelEnd = j
			break
		}
	}
	if labelEnd < 0 || labelEnd-labelStart > maxLabelLength {
		return ReferenceDefinition{}, false
	}
	label := line[labelStart:labelEnd]
	if strings.TrimSpace(label) == "" {
		return ReferenceDefinition{}, false
	}
	i = labelEnd + 1
	if i >= len(line) || line[i] != ':' {
		return ReferenceDefinition{}, false
	}
	i = skipSpaces(line, i+1)
	if i >= len(line) {
		return ReferenceDefinition{}, false
	}

	dest, i, ok := parseLinkDestination(line, i, len(line))
	if !ok || (dest == "" && line[i-1] != '>') {
		return ReferenceDefinition{}, false
	}
	def = ReferenceDefinition{
		Label:       label,
		Destination: dest,
	}
	afterDest := i
	i = skipSpaces(line, i)
	if i >= len(line) {
		return def, true
	}
	if i == afterDest {
		return ReferenceDefinition{}, false
	}
	title, i, ok := parseLinkTitle(line, i, len(line))
	if !ok || skipSpaces(line, i) < len(line) {
		return ReferenceDefinition{}, false
	}
	def.Title = title
	return def, true
}

// parseLinkDestination parses a link destination starting at s[start].
// A destination is either enclosed in angle brackets
// or is a run of non-space characters with balanced parentheses.
// The returned destination has backslash escapes removed.
func parseLinkDestination(s string, start, end int) (dest string, next int, ok bool) {
	if start < end && s[start] == '<' {
		for i := start + 1; i < end; i++ {
			switch s[i] {
			case '\\':
				i++
			case '<':
				return "", start, false
			case '>':
				return unescapePunctuation(s[start+1 : i]), i + 1, true
			}
		}
		return "", start, false
	}
	depth := 0
	i := start
scan:
	for ; i < end; i++ {
		switch c := s[i]; {
		case c == '\\' && i+1 < end && isASCIIPunctuation(s[i+1]):
			i++
		case c == '(':
			depth++
		case c == ')':
			if depth == 0 {
				break scan
			}
			depth--
		case c == ' ' || c == '\t' || c < 0x20:
			break scan
		}
	}
	if depth != 0 {
		return "", start, false
	}
	return unescapePunctuation(s[start:i]), i, true
}

// parseLinkTitle parses a title quoted with '"', '\'', or parentheses
// starting at s[start].
func parseLinkTitle(s string, start, end int) (title string, next int, ok bool) {
	if start >= end {
		return "", start, false
	}
	var closer byte
	switch s[start] {
	case '"':
		closer = '"'
	case '\'':
		closer = '\''
	case '(':
		closer = ')'
	default:
		return "", start, false
	}
	for i := start + 1; i < end; i++ {
		switch s[i] {
		case '\\':
			i++
		case closer:
			return unescapePunctuation(s[start+1 : i]), i + 1, true
		case '(':
			if closer == ')' {
				return "", start, false
			}
		}
	}
	return "", start, false
}

// unescapePunctuation removes backslashes in front of ASCII punctuation.
func unescapePunctuation(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && isASCIIPunctuation(s[i+1]) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}
