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
	"strconv"
	"strings"
)

// tabStopSize is the multiple of columns that a [tab] advances to.
//
// [tab]: https://spec.commonmark.org/0.30/#tabs
const tabStopSize = 4

// blockParser is the block state machine for one sequence of lines.
// At most one construct is open at a time:
// a paragraph or a list (with its stack of nested levels).
// Fenced blocks, tables, and blockquotes are consumed in full
// as soon as they start.
type blockParser struct {
	*parseState
	lines  []sourceLine
	blocks []Block
	// final is true if lines run to the end of the input.
	final bool

	para []sourceLine

	root   *List
	levels []listLevel
	items  []*pendingItem
}

// listLevel is an open list in the list stack.
type listLevel struct {
	list    *List
	indent  int
	ordered bool
	marker  byte
}

// pendingItem is a list item whose text is still being collected.
type pendingItem struct {
	item *ListItem
	text lineMap
}

// parseBlocks runs the block state machine over lines.
// final reports whether lines run to the end of the input.
func (ps *parseState) parseBlocks(lines []sourceLine, final bool) []Block {
	p := &blockParser{parseState: ps, lines: lines, final: final}
	for i := 0; i < len(lines); {
		i = p.step(i)
	}
	p.closeAll()
	return p.blocks
}

// step classifies p.lines[i] and returns the index of the next line to process.
// Patterns are tried in order of precedence.
func (p *blockParser) step(i int) int {
	line := p.lines[i]
	if line.definition {
		p.closeAll()
		return i + 1
	}
	if f, ok := p.parseFence(line.text); ok {
		p.closeAll()
		return p.fencedBlock(i, f)
	}
	if n := len(p.para); n > 0 && hasUnescapedPipe(p.para[n-1].text) {
		if align, ok := parseTableSeparator(line.text); ok {
			header := p.para[n-1]
			p.para = p.para[:n-1]
			p.closeParagraph()
			return p.table(header, align, i)
		}
	}
	if isHorizontalRule(line.text) {
		p.closeAll()
		p.blocks = append(p.blocks, &HorizontalRule{
			Span: Span{Line: line.num, Column: line.column(leadingSpace(line.text))},
		})
		return i + 1
	}
	if h, ok := parseHeading(line.text); ok {
		p.closeAll()
		p.heading(line, h)
		return i + 1
	}
	if isBlockquoteLine(line.text) {
		p.closeAll()
		return p.blockquote(i)
	}
	if item, ok := parseListItem(line.text); ok {
		p.closeParagraph()
		p.listItem(line, item)
		return i + 1
	}
	if isBlankLine(line.text) {
		p.closeParagraph()
		if p.root != nil && !p.nextIsListItem(i+1) {
			p.closeList()
		}
		return i + 1
	}
	if p.root != nil {
		if w, _ := indentWidth(line.text); w > 0 {
			p.continueItem(line)
			return i + 1
		}
		p.closeList()
	}
	p.para = append(p.para, line)
	return i + 1
}

func (p *blockParser) closeAll() {
	p.closeParagraph()
	p.closeList()
}

func (p *blockParser) closeParagraph() {
	if len(p.para) == 0 {
		return
	}
	m := new(lineMap)
	for _, line := range p.para {
		lead := leadingSpace(line.text)
		m.add(" ", strings.TrimRight(line.text[lead:], " \t"), line.num, line.column(lead))
	}
	first := p.para[0]
	para := &Paragraph{
		Span: Span{Line: first.num, Column: first.column(leadingSpace(first.text))},
	}
	setEnd(&para.Span, p.para[len(p.para)-1].num)
	para.Content = p.inlines(m)
	p.blocks = append(p.blocks, para)
	p.para = p.para[:0]
}

// nextIsListItem reports whether the next non-blank line at or after i
// starts a list item.
func (p *blockParser) nextIsListItem(i int) bool {
	for ; i < len(p.lines); i++ {
		line := p.lines[i]
		if isBlankLine(line.text) {
			continue
		}
		if line.definition || isHorizontalRule(line.text) {
			return false
		}
		if _, ok := p.parseFence(line.text); ok {
			return false
		}
		_, ok := parseListItem(line.text)
		return ok
	}
	return false
}

// heading emits a heading block.
func (p *blockParser) heading(line sourceLine, h atxHeading) {
	level := h.level
	if level > p.cfg.MaxHeadingLevel {
		p.diags.add(InvalidHeadingLevel, line.num, line.column(h.markerStart),
			"heading level %d exceeds maximum of %d", level, p.cfg.MaxHeadingLevel)
	}
	if level > 6 {
		level = 6
	}
	m := new(lineMap)
	m.add("", line.text[h.contentStart:h.contentEnd], line.num, line.column(h.contentStart))
	p.blocks = append(p.blocks, &Heading{
		Level:   level,
		Content: p.inlines(m),
		Span:    Span{Line: line.num, Column: line.column(h.markerStart)},
	})
}

// fence is an opening fence line.
type fence struct {
	indent   int // in bytes of leading spaces
	column   int // byte offset of the first fence character
	language string
}

// parseFence attempts to parse s as an opening fence.
func (p *blockParser) parseFence(s string) (fence, bool) {
	return parseFence(s, p.cfg)
}

func parseFence(s string, cfg *Config) (fence, bool) {
	start := leadingSpace(s)
	fc := cfg.FenceChar[0]
	n := 0
	for start+n < len(s) && s[start+n] == fc {
		n++
	}
	if n < cfg.FenceLength {
		return fence{}, false
	}
	info := strings.TrimSpace(s[start+n:])
	if fc == '`' && strings.Contains(info, "`") {
		return fence{}, false
	}
	f := fence{indent: start, column: start}
	if i := strings.IndexAny(info, " \t"); i >= 0 {
		info = info[:i]
	}
	f.language = unescapePunctuation(info)
	return f, true
}

// isClosingFence reports whether s consists only of enough fence characters.
func isClosingFence(s string, cfg *Config) bool {
	s = strings.TrimSpace(s)
	if len(s) < cfg.FenceLength {
		return false
	}
	fc := cfg.FenceChar[0]
	for i := 0; i < len(s); i++ {
		if s[i] != fc {
			return false
		}
	}
	return true
}

// fencedBlock consumes the fenced block starting at p.lines[i].
// If the input ends before a closing fence,
// the block is closed at the end of input and a diagnostic is recorded.
// A fence in a blockquote that ends before the input does
// is closed along with the quote.
func (p *blockParser) fencedBlock(i int, f fence) int {
	open := p.lines[i]
	var body []string
	j := i + 1
	terminated := false
	for ; j < len(p.lines); j++ {
		if isClosingFence(p.lines[j].text, p.cfg) {
			terminated = true
			break
		}
		body = append(body, trimIndentBytes(p.lines[j].text, f.indent))
	}
	span := Span{Line: open.num, Column: open.column(f.column)}
	end := j
	if !terminated {
		end = len(p.lines) - 1
		if p.final {
			p.diags.add(UnterminatedFence, open.num, 0, "unterminated code fence")
		} else {
			terminated = true
		}
	}
	setEnd(&span, p.lines[end].num)

	if f.language != "" && strings.EqualFold(f.language, p.cfg.DiagramLanguage) {
		p.blocks = append(p.blocks, p.diagram(strings.Join(body, "\n"), terminated, span))
	} else {
		p.blocks = append(p.blocks, &CodeBlock{
			Language:   f.language,
			Lines:      body,
			Terminated: terminated,
			Span:       span,
		})
	}
	if j >= len(p.lines) {
		return len(p.lines)
	}
	return j + 1
}

// diagram validates a diagram body and reports its problems
// at the diagram's opening fence.
func (p *blockParser) diagram(raw string, terminated bool, span Span) *Diagram {
	r := validateDiagram(raw, p.cfg.Diagram)
	for _, msg := range r.status.Errors {
		p.diags.add(InvalidDiagram, span.Line, 0, "invalid diagram: %s", msg)
	}
	for _, msg := range r.warnings {
		p.diags.add(DiagramWarning, span.Line, 0, "diagram: %s", msg)
	}
	return &Diagram{
		Raw:        raw,
		Source:     r.source,
		Config:     r.config,
		Status:     r.status,
		Warnings:   r.warnings,
		Terminated: terminated,
		Span:       span,
	}
}

// table consumes a table whose separator row is p.lines[i].
func (p *blockParser) table(header sourceLine, align []Alignment, i int) int {
	t := &Table{
		Alignment: align,
		Span:      Span{Line: header.num, Column: header.column(leadingSpace(header.text))},
	}
	t.Header = p.tableRow(header, len(align))
	end := p.lines[i].num
	j := i + 1
	for ; j < len(p.lines); j++ {
		line := p.lines[j]
		if line.definition || isBlankLine(line.text) || !hasUnescapedPipe(line.text) {
			break
		}
		if _, ok := p.parseFence(line.text); ok {
			break
		}
		t.Rows = append(t.Rows, p.tableRow(line, len(align)))
		end = line.num
	}
	setEnd(&t.Span, end)
	p.blocks = append(p.blocks, t)
	return j
}

// tableRow splits line into exactly n cells,
// padding or truncating with a diagnostic if necessary.
func (p *blockParser) tableRow(line sourceLine, n int) [][]Inline {
	cells := splitTableRow(line.text)
	if len(cells) != n {
		p.diags.add(MalformedTableRow, line.num, 0,
			"table row has %d cells; expected %d", len(cells), n)
		if len(cells) > n {
			cells = cells[:n]
		}
	}
	row := make([][]Inline, n)
	for k, cell := range cells {
		m := new(lineMap)
		m.add("", line.text[cell.start:cell.end], line.num, line.column(cell.start))
		row[k] = p.inlines(m)
	}
	for k := len(cells); k < n; k++ {
		row[k] = []Inline{}
	}
	return row
}

// blockquote consumes the run of quote lines starting at p.lines[i].
func (p *blockParser) blockquote(i int) int {
	var quoted []quoteLine
	j := i
	for ; j < len(p.lines) && isBlockquoteLine(p.lines[j].text); j++ {
		quoted = append(quoted, stripQuoteMarkers(p.lines[j]))
	}
	p.blocks = append(p.blocks, p.buildQuote(quoted, 1, p.final && j == len(p.lines)))
	return j
}

// buildQuote builds the blockquote at the given depth.
// Every line in quoted has at least depth markers.
// Runs of lines with exactly depth markers are parsed as the quote's own blocks;
// runs of deeper lines become nested quotes.
// final reports whether the last line of quoted is the last line of input.
func (p *blockParser) buildQuote(quoted []quoteLine, depth int, final bool) *Blockquote {
	bq := &Blockquote{
		Depth: depth,
		Span:  Span{Line: quoted[0].num, Column: quoted[0].markers[depth-1]},
	}
	setEnd(&bq.Span, quoted[len(quoted)-1].num)
	for k := 0; k < len(quoted); {
		e := k
		if quoted[k].depth() > depth {
			for e < len(quoted) && quoted[e].depth() > depth {
				e++
			}
			bq.Content = append(bq.Content, p.buildQuote(quoted[k:e], depth+1, final && e == len(quoted)))
			k = e
			continue
		}
		var lines []sourceLine
		for e < len(quoted) && quoted[e].depth() == depth {
			lines = append(lines, quoted[e].sourceLine)
			e++
		}
		bq.Content = append(bq.Content, p.parseState.parseBlocks(lines, final && e == len(quoted))...)
		k = e
	}
	return bq
}

// quoteLine is a line with its blockquote markers removed.
type quoteLine struct {
	sourceLine
	// markers holds the column of each '>' marker.
	markers []int
}

func (ql quoteLine) depth() int {
	return len(ql.markers)
}

// isBlockquoteLine reports whether s starts with a blockquote marker.
func isBlockquoteLine(s string) bool {
	i := leadingSpace(s)
	return i < len(s) && s[i] == '>'
}

// stripQuoteMarkers removes all leading [block quote markers] from line.
// Markers may be separated by spaces, as in "> > text".
//
// [block quote markers]: https://spec.commonmark.org/0.30/#block-quote-marker
func stripQuoteMarkers(line sourceLine) quoteLine {
	var ql quoteLine
	i := leadingSpace(line.text)
	for i < len(line.text) && line.text[i] == '>' {
		ql.markers = append(ql.markers, line.column(i))
		i++
		if i < len(line.text) && line.text[i] == ' ' {
			i++
		}
		if j := leadingSpace(line.text[i:]); i+j < len(line.text) && line.text[i+j] == '>' {
			i += j
		}
	}
	ql.sourceLine = line.slice(i)
	return ql
}

// listItemLine is a parsed list item marker line.
type listItemLine struct {
	indent       int // in columns
	markerStart  int
	ordered      bool
	marker       byte // bullet character or ordered delimiter
	number       int
	task         TaskState
	contentStart int
}

// parseListItem attempts to parse s as a list item line:
// a bullet ("-", "*", or "+") or an ordered marker ("1." or "1)")
// followed by whitespace or the end of the line.
func parseListItem(s string) (listItemLine, bool) {
	var item listItemLine
	var start int
	item.indent, start = indentWidth(s)
	item.markerStart = start
	if start >= len(s) {
		return listItemLine{}, false
	}
	i := start
	switch c := s[i]; {
	case c == '-' || c == '*' || c == '+':
		item.marker = c
		i++
	case isASCIIDigit(c):
		for i < len(s) && i-start < 9 && isASCIIDigit(s[i]) {
			i++
		}
		if i >= len(s) || (s[i] != '.' && s[i] != ')') {
			return listItemLine{}, false
		}
		item.ordered = true
		item.number, _ = strconv.Atoi(s[start:i])
		item.marker = s[i]
		i++
	default:
		return listItemLine{}, false
	}
	if i < len(s) && s[i] != ' ' && s[i] != '\t' {
		return listItemLine{}, false
	}
	i = skipSpaces(s, i)
	item.task, i = parseTaskMarker(s, i)
	item.contentStart = i
	return item, true
}

// parseTaskMarker parses a "[ ]" or "[x]" marker at s[i].
// The marker must be followed by whitespace or the end of the line.
func parseTaskMarker(s string, i int) (TaskState, int) {
	if i+3 > len(s) || s[i] != '[' || s[i+2] != ']' {
		return NoTask, i
	}
	if i+3 < len(s) && s[i+3] != ' ' && s[i+3] != '\t' {
		return NoTask, i
	}
	var state TaskState
	switch s[i+1] {
	case ' ':
		state = TaskUnchecked
	case 'x', 'X':
		state = TaskChecked
	default:
		return NoTask, i
	}
	return state, skipSpaces(s, i+3)
}

// listItem adds an item to the open list stack,
// starting, nesting, or ending lists as the item's indentation requires.
func (p *blockParser) listItem(line sourceLine, it listItemLine) {
	for len(p.levels) > 0 && it.indent < p.levels[len(p.levels)-1].indent {
		p.levels = p.levels[:len(p.levels)-1]
	}
	switch {
	case len(p.levels) == 0:
		p.closeList()
		p.pushList(line, it, nil)
	case it.indent == p.levels[len(p.levels)-1].indent:
		top := p.levels[len(p.levels)-1]
		if top.ordered == it.ordered && top.marker == it.marker {
			p.addItem(top.list, line, it)
			break
		}
		// A different marker starts a new list at the same level.
		p.levels = p.levels[:len(p.levels)-1]
		if len(p.levels) == 0 {
			p.closeList()
			p.pushList(line, it, nil)
			break
		}
		p.pushList(line, it, lastItem(p.levels[len(p.levels)-1].list))
	default:
		p.pushList(line, it, lastItem(p.levels[len(p.levels)-1].list))
	}
	p.extendList(line.num)
}

// pushList opens a new list with it as its first item.
// If parent is nil, the list becomes the root of the list stack.
func (p *blockParser) pushList(line sourceLine, it listItemLine, parent *ListItem) {
	list := &List{
		Ordered: it.ordered,
		Marker:  string(it.marker),
		Span:    Span{Line: line.num, Column: line.column(it.markerStart)},
	}
	if it.ordered {
		list.Start = it.number
	}
	if parent == nil {
		p.root = list
	} else {
		parent.Children = append(parent.Children, list)
	}
	p.levels = append(p.levels, listLevel{
		list:    list,
		indent:  it.indent,
		ordered: it.ordered,
		marker:  it.marker,
	})
	p.addItem(list, line, it)
}

func (p *blockParser) addItem(list *List, line sourceLine, it listItemLine) {
	pi := &pendingItem{
		item: &ListItem{
			Task: it.task,
			Span: Span{Line: line.num, Column: line.column(it.markerStart)},
		},
	}
	if content := strings.TrimRight(line.text[it.contentStart:], " \t"); content != "" {
		pi.text.add(" ", content, line.num, line.column(it.contentStart))
	}
	list.Items = append(list.Items, pi.item)
	p.items = append(p.items, pi)
}

// continueItem appends an indented continuation line to the most recent item.
func (p *blockParser) continueItem(line sourceLine) {
	pi := p.items[len(p.items)-1]
	lead := leadingSpace(line.text)
	pi.text.add(" ", strings.TrimRight(line.text[lead:], " \t"), line.num, line.column(lead))
	p.extendList(line.num)
}

// extendList records that the open lists and their last items
// extend to the given line.
func (p *blockParser) extendList(num int) {
	for _, lv := range p.levels {
		setEnd(&lv.list.Span, num)
		setEnd(&lastItem(lv.list).Span, num)
	}
}

// closeList emits the root of the list stack, if any.
func (p *blockParser) closeList() {
	if p.root == nil {
		return
	}
	for _, pi := range p.items {
		pi.item.Content = p.inlines(&pi.text)
	}
	p.blocks = append(p.blocks, p.root)
	p.root = nil
	p.levels = p.levels[:0]
	p.items = p.items[:0]
}

func lastItem(list *List) *ListItem {
	return list.Items[len(list.Items)-1]
}

// atxHeading is the result of [parseHeading].
type atxHeading struct {
	level        int // number of markers, possibly more than 6
	markerStart  int
	contentStart int
	contentEnd   int
}

// parseHeading attempts to parse s as an ATX heading:
// a run of '#' characters followed by content.
// An optional closing sequence of '#' characters is removed.
// Lines with no content after the markers are not headings.
func parseHeading(s string) (atxHeading, bool) {
	var h atxHeading
	h.markerStart = leadingSpace(s)
	i := h.markerStart
	for i < len(s) && s[i] == '#' {
		i++
	}
	h.level = i - h.markerStart
	if h.level == 0 {
		return atxHeading{}, false
	}
	h.contentStart = skipSpaces(s, i)
	h.contentEnd = len(s)
	for h.contentEnd > h.contentStart && isSpaceByte(s[h.contentEnd-1]) {
		h.contentEnd--
	}

	// Strip a closing sequence if it is preceded by whitespace.
	j := h.contentEnd
	for j > h.contentStart && s[j-1] == '#' {
		j--
	}
	if j < h.contentEnd && !isEndEscaped(s[:j]) {
		if j == h.contentStart {
			h.contentEnd = j
		} else if isSpaceByte(s[j-1]) {
			h.contentEnd = j
			for h.contentEnd > h.contentStart && isSpaceByte(s[h.contentEnd-1]) {
				h.contentEnd--
			}
		}
	}
	if h.contentStart >= h.contentEnd {
		return atxHeading{}, false
	}
	return h, true
}

// isHorizontalRule reports whether s is a run of three or more
// '-' or '*' characters (all the same), optionally separated by spaces.
func isHorizontalRule(s string) bool {
	n := 0
	var want byte
	for i := 0; i < len(s); i++ {
		switch b := s[i]; b {
		case '-', '*':
			if n == 0 {
				want = b
			} else if b != want {
				return false
			}
			n++
		case ' ', '\t':
			// Ignore
		default:
			return false
		}
	}
	return n >= 3
}

// parseTableSeparator attempts to parse s as a table alignment row like
// "| :--- | :---: | ---: |".
func parseTableSeparator(s string) ([]Alignment, bool) {
	if !strings.Contains(s, "|") {
		return nil, false
	}
	cells := splitTableRow(s)
	if len(cells) == 0 {
		return nil, false
	}
	align := make([]Alignment, 0, len(cells))
	for _, cell := range cells {
		c := s[cell.start:cell.end]
		left := strings.HasPrefix(c, ":")
		right := strings.HasSuffix(c, ":") && len(c) > 1
		dashes := strings.TrimSuffix(strings.TrimPrefix(c, ":"), ":")
		if dashes == "" || strings.Trim(dashes, "-") != "" {
			return nil, false
		}
		switch {
		case left && right:
			align = append(align, AlignCenter)
		case left:
			align = append(align, AlignLeft)
		case right:
			align = append(align, AlignRight)
		default:
			align = append(align, AlignNone)
		}
	}
	return align, true
}

// tableCell is the byte range of a cell's trimmed content within a row.
type tableCell struct {
	start, end int
}

// splitTableRow splits a table row on unescaped pipes.
// Leading and trailing pipes are optional.
func splitTableRow(s string) []tableCell {
	start := leadingSpace(s)
	end := len(s)
	for end > start && isSpaceByte(s[end-1]) {
		end--
	}
	if start < end && s[start] == '|' {
		start++
	}
	if end > start && s[end-1] == '|' && !isEndEscaped(s[start:end-1]) {
		end--
	}
	if start >= end {
		return nil
	}
	var cells []tableCell
	cellStart := start
	for i := start; i <= end; i++ {
		if i+1 < end && s[i] == '\\' {
			i++
			continue
		}
		if i == end || s[i] == '|' {
			cs, ce := cellStart, i
			for cs < ce && isSpaceByte(s[cs]) {
				cs++
			}
			for ce > cs && isSpaceByte(s[ce-1]) {
				ce--
			}
			cells = append(cells, tableCell{start: cs, end: ce})
			cellStart = i + 1
		}
	}
	return cells
}

// hasUnescapedPipe reports whether s contains a '|' not preceded by a backslash.
func hasUnescapedPipe(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '|':
			return true
		}
	}
	return false
}

// indentWidth returns the width in columns of the whitespace at the start of s
// and the number of bytes it occupies.
func indentWidth(s string) (width, n int) {
	for ; n < len(s); n++ {
		switch s[n] {
		case ' ':
			width++
		case '\t':
			width += tabStopSize - width%tabStopSize
		default:
			return width, n
		}
	}
	return width, n
}

// leadingSpace returns the number of space and tab bytes at the start of s.
func leadingSpace(s string) int {
	_, n := indentWidth(s)
	return n
}

// trimIndentBytes removes up to n leading spaces from s.
func trimIndentBytes(s string, n int) string {
	i := 0
	for i < n && i < len(s) && s[i] == ' ' {
		i++
	}
	return s[i:]
}

func isBlankLine(s string) bool {
	for i := 0; i < len(s); i++ {
		if b := s[i]; !(b == ' ' || b == '\t') {
			return false
		}
	}
	return true
}

// isEndEscaped reports whether s ends with an odd number of backslashes.
func isEndEscaped(s string) bool {
	n := 0
	for ; n < len(s); n++ {
		if s[len(s)-n-1] != '\\' {
			break
		}
	}
	return n%2 == 1
}

func isASCIIDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// setEnd sets span's end line if line is past its start.
func setEnd(span *Span, line int) {
	if line > span.Line {
		span.EndLine = line
	}
}
