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

// Package mdast parses Markdown documents into a typed syntax tree.
//
// Parsing never fails.
// Malformed input such as an unclosed code fence or a ragged table
// is parsed on a best-effort basis
// and the problem is recorded as a [Diagnostic] on the [Document].
// Fenced blocks tagged with the diagram language (by default "mermaid")
// become [Diagram] nodes, which carry their merged configuration
// and the result of a syntax check.
package mdast

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Parser holds the options for parsing.
// The zero value parses with the default [Config].
// A Parser may be used by multiple goroutines simultaneously.
type Parser struct {
	Config Config
}

// Parse parses source with the default configuration.
func Parse(source []byte) *Document {
	return new(Parser).Parse(source)
}

// ParseReader reads all of r and parses it with the default configuration.
// The only errors returned are from reading r.
func ParseReader(r io.Reader) (*Document, error) {
	source, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("parse markdown: %w", err)
	}
	return Parse(source), nil
}

// Parse parses a Markdown document.
// Each call is independent:
// no state is shared between calls.
func (p *Parser) Parse(source []byte) *Document {
	if bytes.IndexByte(source, 0) >= 0 {
		// Contains one or more NUL bytes.
		// Replace with Unicode replacement character.
		source = bytes.ReplaceAll(source, []byte{0}, []byte("\ufffd"))
	}
	cfg := p.Config
	cfg.applyDefaults()
	ps := &parseState{
		cfg:  &cfg,
		refs: make(ReferenceTable),
	}
	lines := splitLines(string(source))
	ps.collectReferences(lines)
	blocks := ps.parseBlocks(lines, true)
	return assemble(blocks, ps.refs, ps.diags)
}

// parseState is the state shared by every stage of a single parse.
type parseState struct {
	cfg   *Config
	refs  ReferenceTable
	diags diagnostics
}

// inlines resolves the inline content of a block.
func (ps *parseState) inlines(m *lineMap) []Inline {
	m.freeze()
	p := &inlineParser{
		m:     m,
		refs:  ps.refs,
		diags: &ps.diags,
	}
	return p.resolve(0, len(m.text))
}

// sourceLine is a line of input without its line ending.
type sourceLine struct {
	text string
	num  int // 1-based
	col  int // 1-based column of text[0] in the original line

	// definition is true if the line is a reference definition.
	definition bool
}

// column returns the column in the original line of text[i].
func (line sourceLine) column(i int) int {
	if i > len(line.text) {
		i = len(line.text)
	}
	return line.col + utf8.RuneCountInString(line.text[:i])
}

// slice returns the line with the first i bytes removed.
func (line sourceLine) slice(i int) sourceLine {
	line.col = line.column(i)
	line.text = line.text[i:]
	return line
}

// splitLines splits text on "\n", "\r\n", or "\r".
// A line ending at the very end of text does not start a new line.
func splitLines(text string) []sourceLine {
	var lines []sourceLine
	for len(text) > 0 {
		i := strings.IndexAny(text, "\r\n")
		if i < 0 {
			lines = append(lines, sourceLine{text: text, num: len(lines) + 1, col: 1})
			break
		}
		lines = append(lines, sourceLine{text: text[:i], num: len(lines) + 1, col: 1})
		if text[i] == '\r' && i+1 < len(text) && text[i+1] == '\n' {
			i++
		}
		text = text[i+1:]
	}
	return lines
}

// collectReferences is the pre-pass that finds reference definitions
// outside of fenced blocks, including inside blockquotes.
// Definition lines are marked so that block parsing skips them.
// When a label is defined more than once, the last definition wins.
func (ps *parseState) collectReferences(lines []sourceLine) {
	inFence := false
	for i := range lines {
		line := stripQuoteMarkers(lines[i]).sourceLine
		if inFence {
			if isClosingFence(line.text, ps.cfg) {
				inFence = false
			}
			continue
		}
		if _, ok := parseFence(line.text, ps.cfg); ok {
			inFence = true
			continue
		}
		def, ok := parseReferenceDefinition(line.text)
		if !ok {
			continue
		}
		def.Line = line.num
		if prev, dup := ps.refs.Lookup(def.Label); dup {
			ps.diags.add(DuplicateReference, line.num, 0,
				"reference %q redefined (previous definition on line %d)", def.Label, prev.Line)
		}
		ps.refs.define(def)
		lines[i].definition = true
	}
}
