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
	"unicode"
	"unicode/utf8"
)

// ParseInline resolves the inline formatting in a single run of text.
// Reference links are resolved against refs, which may be nil.
// Positions in the returned nodes are relative to a document
// in which text is the first line.
func ParseInline(text string, refs ReferenceTable) ([]Inline, []Diagnostic) {
	m := new(lineMap)
	m.add("", text, 1, 1)
	m.freeze()
	var diags diagnostics
	p := &inlineParser{m: m, refs: refs, diags: &diags}
	return p.resolve(0, len(text)), diags
}

// inlineParser resolves inline formatting in the joined text of one block.
//
// Resolution is by earliest match:
// at each offset, the patterns are tried in a fixed priority order
// (image, link, reference link, code, strikethrough, bold, italic)
// and the first that matches wins.
// The content of a matched span is resolved recursively.
type inlineParser struct {
	m     *lineMap
	refs  ReferenceTable
	diags *diagnostics

	// labelEnds caches linkLabelEnd results
	// by span end and then by opening bracket offset.
	labelEnds map[int]map[int]int
	// noCloser holds the offsets from which a search
	// for a closing delimiter is known to fail.
	noCloser map[closerKey]map[int]bool
}

// closerKey identifies a closing delimiter search.
// The path of a search depends only on the delimiter and the span end,
// so a search that reaches an offset in noCloser can stop early.
type closerKey struct {
	delim  byte
	double bool
	end    int
}

// recordFailedCloser marks the offsets visited by a failed search.
func (p *inlineParser) recordFailedCloser(k closerKey, visited []int) {
	if len(visited) == 0 {
		return
	}
	if p.noCloser == nil {
		p.noCloser = make(map[closerKey]map[int]bool)
	}
	dead := p.noCloser[k]
	if dead == nil {
		dead = make(map[int]bool, len(visited))
		p.noCloser[k] = dead
	}
	for _, j := range visited {
		dead[j] = true
	}
}

// inlineMatch is the result of trying the inline patterns at an offset.
type inlineMatch struct {
	// node is nil if the matched text is literal.
	node Inline
	end  int
}

// resolve converts p.m.text[start:end] into a sequence of inlines.
func (p *inlineParser) resolve(start, end int) []Inline {
	text := p.m.text
	var result []Inline
	var pending []byte
	pendingStart := -1
	addText := func(s string, at int) {
		if pendingStart < 0 {
			pendingStart = at
		}
		pending = append(pending, s...)
	}
	flush := func(at int) {
		if pendingStart < 0 {
			return
		}
		result = append(result, &Text{
			Value: string(pending),
			Span:  p.m.span(pendingStart, at),
		})
		pending = pending[:0]
		pendingStart = -1
	}

	for i := start; i < end; {
		c := text[i]
		if c == '\\' && i+1 < end && isASCIIPunctuation(text[i+1]) {
			addText(text[i+1:i+2], i)
			i += 2
			continue
		}
		if m, ok := p.match(i, end); ok {
			if m.node == nil {
				addText(text[i:m.end], i)
			} else {
				flush(i)
				result = append(result, m.node)
			}
			i = m.end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:end])
		addText(text[i:i+size], i)
		i += size
	}
	flush(end)
	return result
}

// match tries every inline pattern at text[i] in priority order.
func (p *inlineParser) match(i, end int) (inlineMatch, bool) {
	text := p.m.text
	switch text[i] {
	case '!':
		if i+1 < end && text[i+1] == '[' {
			return p.image(i, end)
		}
	case '[':
		if m, ok := p.link(i, end); ok {
			return m, true
		}
		return p.referenceLink(i, end)
	case '`':
		return p.codeSpan(i, end)
	case '~':
		return p.strikethrough(i, end)
	case '*', '_':
		if m, ok := p.bold(i, end); ok {
			return m, true
		}
		return p.italic(i, end)
	}
	return inlineMatch{}, false
}

func (p *inlineParser) image(i, end int) (inlineMatch, bool) {
	labelEnd := p.linkLabelEnd(i+1, end)
	if labelEnd < 0 {
		return inlineMatch{}, false
	}
	dest, title, next, ok := p.inlineDestination(labelEnd+1, end)
	if !ok {
		return inlineMatch{}, false
	}
	return inlineMatch{
		node: &Image{
			Alt:         PlainText(p.resolve(i+2, labelEnd)),
			Destination: dest,
			Title:       title,
			Span:        p.m.span(i, next),
		},
		end: next,
	}, true
}

func (p *inlineParser) link(i, end int) (inlineMatch, bool) {
	labelEnd := p.linkLabelEnd(i, end)
	if labelEnd < 0 {
		return inlineMatch{}, false
	}
	dest, title, next, ok := p.inlineDestination(labelEnd+1, end)
	if !ok {
		return inlineMatch{}, false
	}
	return inlineMatch{
		node: &Link{
			Text:        p.resolve(i+1, labelEnd),
			Destination: dest,
			Title:       title,
			Span:        p.m.span(i, next),
		},
		end: next,
	}, true
}

// referenceLink matches the full ([text][label]), collapsed ([text][]),
// and shortcut ([text]) reference link forms.
// Full and collapsed references to undefined labels match as literal text;
// shortcut references to undefined labels do not match at all.
func (p *inlineParser) referenceLink(i, end int) (inlineMatch, bool) {
	text := p.m.text
	textEnd := p.linkLabelEnd(i, end)
	if textEnd < 0 {
		return inlineMatch{}, false
	}
	label := text[i+1 : textEnd]
	next := textEnd + 1
	shortcut := true
	if next < end && text[next] == '[' {
		if labelEnd := referenceLabelEnd(text, next, end); labelEnd >= 0 {
			shortcut = false
			if labelEnd > next+1 {
				label = text[next+1 : labelEnd]
			}
			next = labelEnd + 1
		}
	}
	if len(label) > maxLabelLength {
		return inlineMatch{}, false
	}
	def, found := p.refs.Lookup(label)
	if !found {
		if shortcut {
			return inlineMatch{}, false
		}
		pos := p.m.pos(i)
		p.diags.add(UnresolvedReference, pos.Line, pos.Column, "undefined reference %q", label)
		return inlineMatch{end: next}, true
	}
	return inlineMatch{
		node: &ReferenceLink{
			Text:        p.resolve(i+1, textEnd),
			Label:       label,
			Destination: def.Destination,
			Title:       def.Title,
			Span:        p.m.span(i, next),
		},
		end: next,
	}, true
}

// linkLabelEnd returns the offset of the ']' that matches the '[' at text[i]
// or -1 if there isn't one.
// Brackets inside the label must be balanced unless escaped.
// Every bracket opened during the scan has its result cached,
// since a scan starting there would follow the same path.
func (p *inlineParser) linkLabelEnd(i, end int) int {
	ends := p.labelEnds[end]
	if j, ok := ends[i]; ok {
		return j
	}
	if ends == nil {
		if p.labelEnds == nil {
			p.labelEnds = make(map[int]map[int]int)
		}
		ends = make(map[int]int)
		p.labelEnds[end] = ends
	}
	text := p.m.text
	var open []int
	for j := i; j < end; j++ {
		switch text[j] {
		case '\\':
			j++
		case '`':
			j = skipCodeSpan(text, j, end) - 1
		case '[':
			open = append(open, j)
		case ']':
			if len(open) == 0 {
				continue
			}
			ends[open[len(open)-1]] = j
			open = open[:len(open)-1]
			if len(open) == 0 {
				return j
			}
		}
	}
	for _, o := range open {
		ends[o] = -1
	}
	ends[i] = -1
	return -1
}

// referenceLabelEnd returns the offset of the ']' closing the label
// that starts with '[' at s[i].
// Labels may not contain unescaped brackets.
func referenceLabelEnd(s string, i, end int) int {
	for j := i + 1; j < end; j++ {
		switch s[j] {
		case '\\':
			j++
		case '[':
			return -1
		case ']':
			return j
		}
	}
	return -1
}

// inlineDestination parses `(destination "title")` starting at text[i].
func (p *inlineParser) inlineDestination(i, end int) (dest, title string, next int, ok bool) {
	text := p.m.text
	if i >= end || text[i] != '(' {
		return "", "", i, false
	}
	j := skipSpaces(text[:end], i+1)
	dest, j, ok = parseLinkDestination(text, j, end)
	if !ok {
		return "", "", i, false
	}
	afterDest := j
	j = skipSpaces(text[:end], j)
	if j < end && j > afterDest && text[j] != ')' {
		title, j, ok = parseLinkTitle(text, j, end)
		if !ok {
			return "", "", i, false
		}
		j = skipSpaces(text[:end], j)
	}
	if j >= end || text[j] != ')' {
		return "", "", i, false
	}
	return dest, title, j + 1, true
}

// codeSpan matches a backtick code span.
// A backtick run with no closing run of the same length
// is literal text in its entirety.
func (p *inlineParser) codeSpan(i, end int) (inlineMatch, bool) {
	text := p.m.text
	cs, ok := findCodeSpan(text, i, end)
	if !ok {
		return inlineMatch{end: cs.end}, true
	}
	value := text[cs.contentStart:cs.contentEnd]
	if len(value) >= 2 && value[0] == ' ' && value[len(value)-1] == ' ' && !isOnlySpaces(value) {
		value = value[1 : len(value)-1]
	}
	return inlineMatch{
		node: &Code{
			Value: value,
			Span:  p.m.span(i, cs.end),
		},
		end: cs.end,
	}, true
}

type codeSpan struct {
	contentStart int
	contentEnd   int
	end          int
}

// findCodeSpan finds the end of the code span
// whose opening backtick run starts at s[start].
// If there is no closing run, ok is false
// and end is the offset after the opening run.
func findCodeSpan(s string, start, end int) (cs codeSpan, ok bool) {
	cs.contentStart = start
	for cs.contentStart < end && s[cs.contentStart] == '`' {
		cs.contentStart++
	}
	n := cs.contentStart - start
	for j := cs.contentStart; j < end; {
		if s[j] != '`' {
			j++
			continue
		}
		k := j
		for k < end && s[k] == '`' {
			k++
		}
		if k-j == n {
			cs.contentEnd = j
			cs.end = k
			return cs, true
		}
		j = k
	}
	return codeSpan{end: cs.contentStart}, false
}

func (p *inlineParser) strikethrough(i, end int) (inlineMatch, bool) {
	text := p.m.text
	if i+2 >= end || text[i+1] != '~' || isSpaceByte(text[i+2]) {
		return inlineMatch{}, false
	}
	key := closerKey{delim: '~', double: true, end: end}
	dead := p.noCloser[key]
	var visited []int
	for j := i + 3; j+1 < end; {
		if dead[j] {
			break
		}
		visited = append(visited, j)
		switch text[j] {
		case '\\':
			j += 2
		case '`':
			j = skipCodeSpan(text, j, end)
		case '~':
			if text[j+1] == '~' && !isSpaceByte(text[j-1]) {
				return inlineMatch{
					node: &Strikethrough{
						Content: p.resolve(i+2, j),
						Span:    p.m.span(i, j+2),
					},
					end: j + 2,
				}, true
			}
			j++
		default:
			j++
		}
	}
	p.recordFailedCloser(key, visited)
	return inlineMatch{}, false
}

// bold matches a double delimiter ("**" or "__") at text[i].
// If the closing delimiter is part of a longer run,
// the last two characters of the run close the span.
func (p *inlineParser) bold(i, end int) (inlineMatch, bool) {
	text := p.m.text
	d := text[i]
	if i+1 >= end || text[i+1] != d || !canOpenEmphasis(text, i, i+2) {
		return inlineMatch{}, false
	}
	key := closerKey{delim: d, double: true, end: end}
	dead := p.noCloser[key]
	var visited []int
	for j := i + 2; j < end; {
		if j > i+2 {
			// Past the first run, no candidate depends on i.
			if dead[j] {
				break
			}
			visited = append(visited, j)
		}
		switch text[j] {
		case '\\':
			j += 2
		case '`':
			j = skipCodeSpan(text, j, end)
		case d:
			k := j
			for k < end && text[k] == d {
				k++
			}
			if closeAt := k - 2; k-j >= 2 && closeAt > i+2 && canCloseEmphasis(text, closeAt, k) {
				return inlineMatch{
					node: &Bold{
						Content: p.resolve(i+2, closeAt),
						Span:    p.m.span(i, k),
					},
					end: k,
				}, true
			}
			j = k
		default:
			j++
		}
	}
	p.recordFailedCloser(key, visited)
	return inlineMatch{}, false
}

// italic matches a single delimiter ("*" or "_") at text[i].
// Delimiter runs of even length inside the span are skipped,
// since they pair up as bold.
func (p *inlineParser) italic(i, end int) (inlineMatch, bool) {
	text := p.m.text
	d := text[i]
	if i+1 >= end || text[i+1] == d || !canOpenEmphasis(text, i, i+1) {
		return inlineMatch{}, false
	}
	key := closerKey{delim: d, end: end}
	dead := p.noCloser[key]
	var visited []int
	for j := i + 1; j < end; {
		if j > i+1 {
			if dead[j] {
				break
			}
			visited = append(visited, j)
		}
		switch text[j] {
		case '\\':
			j += 2
		case '`':
			j = skipCodeSpan(text, j, end)
		case d:
			k := j
			for k < end && text[k] == d {
				k++
			}
			if closeAt := k - 1; (k-j)%2 == 1 && closeAt > i+1 && canCloseEmphasis(text, closeAt, k) {
				return inlineMatch{
					node: &Italic{
						Content: p.resolve(i+1, closeAt),
						Span:    p.m.span(i, k),
					},
					end: k,
				}, true
			}
			j = k
		default:
			j++
		}
	}
	p.recordFailedCloser(key, visited)
	return inlineMatch{}, false
}

// skipCodeSpan returns the offset after the code span starting at s[i],
// or after the backtick run if the span is not closed.
func skipCodeSpan(s string, i, end int) int {
	cs, _ := findCodeSpan(s, i, end)
	return cs.end
}

// canOpenEmphasis reports whether the delimiter run s[start:end]
// is left-flanking and, for underscores, not inside a word.
func canOpenEmphasis(s string, start, end int) bool {
	left, right, prev, _ := flanking(s, start, end)
	if s[start] == '_' {
		return left && (!right || isUnicodePunctuation(prev))
	}
	return left
}

// canCloseEmphasis reports whether the delimiter run s[start:end]
// is right-flanking and, for underscores, not inside a word.
func canCloseEmphasis(s string, start, end int) bool {
	left, right, _, next := flanking(s, start, end)
	if s[start] == '_' {
		return right && (!left || isUnicodePunctuation(next))
	}
	return right
}

// flanking determines whether a delimiter run is
// [left-flanking] and/or [right-flanking].
//
// [left-flanking]: https://spec.commonmark.org/0.30/#left-flanking-delimiter-run
// [right-flanking]: https://spec.commonmark.org/0.30/#right-flanking-delimiter-run
func flanking(s string, start, end int) (left, right bool, prev, next rune) {
	prev = ' '
	if start > 0 {
		prev, _ = utf8.DecodeLastRuneInString(s[:start])
	}
	next = ' '
	if end < len(s) {
		next, _ = utf8.DecodeRuneInString(s[end:])
	}
	left = !isUnicodeWhitespace(next) &&
		(!isUnicodePunctuation(next) || isUnicodeWhitespace(prev) || isUnicodePunctuation(prev))
	right = !isUnicodeWhitespace(prev) &&
		(!isUnicodePunctuation(prev) || isUnicodeWhitespace(next) || isUnicodePunctuation(next))
	return left, right, prev, next
}

func isOnlySpaces(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' {
			return false
		}
	}
	return true
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t'
}

func isUnicodeWhitespace(c rune) bool {
	return c == '\t' || c == '\n' || c == '\f' || c == '\r' || unicode.Is(unicode.Zs, c)
}

func isUnicodePunctuation(c rune) bool {
	return unicode.In(c, unicode.P, unicode.S)
}

func isASCIIPunctuation(c byte) bool {
	return '!' <= c && c <= '/' ||
		':' <= c && c <= '@' ||
		'[' <= c && c <= '`' ||
		'{' <= c && c <= '~'
}
