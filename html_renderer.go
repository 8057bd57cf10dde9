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
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/atom"
)

// An HTMLRenderer converts a parsed [Document] into HTML.
//
// Diagrams are rendered as <pre class="mermaid"> elements
// containing the diagram source,
// with the merged configuration in data-mermaid-* attributes
// so that a client-side diagram library can render them.
type HTMLRenderer struct {
	// DiagramClass is the class attribute of diagram elements.
	// If empty, "mermaid" is used.
	DiagramClass string
	// If OmitDiagramComments is true,
	// diagram validation errors and warnings are not written
	// as HTML comments in front of the diagram.
	OmitDiagramComments bool
}

// RenderHTML writes the blocks of doc to w as HTML
// using the default options for [HTMLRenderer].
// It will return the first error encountered, if any.
func RenderHTML(w io.Writer, doc *Document) error {
	return new(HTMLRenderer).Render(w, doc)
}

// Render writes the blocks of doc to w as HTML.
// It will return the first error encountered, if any.
func (r *HTMLRenderer) Render(w io.Writer, doc *Document) error {
	var buf []byte
	for i, b := range doc.Blocks {
		buf = buf[:0]
		if i > 0 {
			buf = append(buf, '\n')
		}
		buf = r.AppendBlock(buf, b)
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("render markdown to html: %w", err)
		}
	}
	if len(doc.Blocks) > 0 {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return fmt.Errorf("render markdown to html: %w", err)
		}
	}
	return nil
}

// AppendBlock appends the rendered HTML of a block to dst
// and returns the resulting byte slice.
func (r *HTMLRenderer) AppendBlock(dst []byte, block Block) []byte {
	state := &renderState{
		HTMLRenderer: r,
		dst:          dst,
	}
	state.block(block)
	return state.dst
}

type renderState struct {
	*HTMLRenderer
	dst []byte
}

func (r *renderState) openTagAttr(name atom.Atom) {
	r.dst = append(r.dst, '<')
	r.dst = append(r.dst, name.String()...)
}

func (r *renderState) openTag(name atom.Atom) {
	r.openTagAttr(name)
	r.dst = append(r.dst, '>')
}

func (r *renderState) closeTag(name atom.Atom) {
	r.dst = append(r.dst, "</"...)
	r.dst = append(r.dst, name.String()...)
	r.dst = append(r.dst, '>')
}

func (r *renderState) attr(name, value string) {
	r.dst = append(r.dst, ' ')
	r.dst = append(r.dst, name...)
	r.dst = append(r.dst, `="`...)
	r.dst = escapeHTML(r.dst, value)
	r.dst = append(r.dst, '"')
}

var headingTags = [...]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

func (r *renderState) block(block Block) {
	switch block := block.(type) {
	case *Paragraph:
		r.openTag(atom.P)
		r.inlines(block.Content)
		r.closeTag(atom.P)
	case *HorizontalRule:
		r.openTag(atom.Hr)
	case *Heading:
		tagName := headingTags[max(1, min(block.Level, 6))-1]
		r.openTag(tagName)
		r.inlines(block.Content)
		r.closeTag(tagName)
	case *CodeBlock:
		r.openTag(atom.Pre)
		r.openTagAttr(atom.Code)
		if block.Language != "" {
			r.attr("class", "language-"+block.Language)
		}
		r.dst = append(r.dst, '>')
		for _, line := range block.Lines {
			r.dst = escapeHTML(r.dst, line)
			r.dst = append(r.dst, '\n')
		}
		r.closeTag(atom.Code)
		r.closeTag(atom.Pre)
	case *Diagram:
		r.diagram(block)
	case *Table:
		r.table(block)
	case *Blockquote:
		r.openTag(atom.Blockquote)
		r.dst = append(r.dst, '\n')
		for _, c := range block.Content {
			r.block(c)
			r.dst = append(r.dst, '\n')
		}
		r.closeTag(atom.Blockquote)
	case *List:
		r.list(block)
	case *ListItem:
		r.listItem(block)
	}
}

func (r *renderState) list(list *List) {
	tagName := atom.Ul
	if list.Ordered {
		tagName = atom.Ol
		r.openTagAttr(tagName)
		if list.Start != 1 {
			r.dst = append(r.dst, ` start="`...)
			r.dst = strconv.AppendInt(r.dst, int64(list.Start), 10)
			r.dst = append(r.dst, '"')
		}
		r.dst = append(r.dst, '>')
	} else {
		r.openTag(tagName)
	}
	r.dst = append(r.dst, '\n')
	for _, item := range list.Items {
		r.listItem(item)
		r.dst = append(r.dst, '\n')
	}
	r.closeTag(tagName)
}

func (r *renderState) listItem(item *ListItem) {
	r.openTag(atom.Li)
	if item.Task != NoTask {
		r.openTagAttr(atom.Input)
		r.attr("type", "checkbox")
		r.dst = append(r.dst, " disabled"...)
		if item.Task == TaskChecked {
			r.dst = append(r.dst, " checked"...)
		}
		r.dst = append(r.dst, "> "...)
	}
	r.inlines(item.Content)
	for _, child := range item.Children {
		r.dst = append(r.dst, '\n')
		r.list(child)
		r.dst = append(r.dst, '\n')
	}
	r.closeTag(atom.Li)
}

func (r *renderState) table(t *Table) {
	cell := func(tagName atom.Atom, i int, content []Inline) {
		r.openTagAttr(tagName)
		if i < len(t.Alignment) && t.Alignment[i] != AlignNone {
			r.attr("style", "text-align: "+t.Alignment[i].String()+";")
		}
		r.dst = append(r.dst, '>')
		r.inlines(content)
		r.closeTag(tagName)
	}

	r.openTag(atom.Table)
	r.dst = append(r.dst, '\n')
	r.openTag(atom.Thead)
	r.dst = append(r.dst, '\n')
	r.openTag(atom.Tr)
	for i, c := range t.Header {
		cell(atom.Th, i, c)
	}
	r.closeTag(atom.Tr)
	r.dst = append(r.dst, '\n')
	r.closeTag(atom.Thead)
	r.dst = append(r.dst, '\n')
	if len(t.Rows) > 0 {
		r.openTag(atom.Tbody)
		r.dst = append(r.dst, '\n')
		for _, row := range t.Rows {
			r.openTag(atom.Tr)
			for i, c := range row {
				cell(atom.Td, i, c)
			}
			r.closeTag(atom.Tr)
			r.dst = append(r.dst, '\n')
		}
		r.closeTag(atom.Tbody)
		r.dst = append(r.dst, '\n')
	}
	r.closeTag(atom.Table)
}

func (r *renderState) diagram(d *Diagram) {
	if !r.OmitDiagramComments {
		r.comment("diagram errors", d.Status.Errors)
		r.comment("diagram warnings", d.Warnings)
	}
	class := r.DiagramClass
	if class == "" {
		class = DefaultDiagramLanguage
	}
	r.openTagAttr(atom.Pre)
	r.attr("class", class)
	if cfg, err := diagramConfigJSON(d.Config); err == nil {
		r.attr("data-mermaid-config", cfg)
	}
	if d.Config.Theme != "" {
		r.attr("data-mermaid-theme", d.Config.Theme)
	}
	if d.Config.FontSize != "" {
		r.attr("data-mermaid-font-size", d.Config.FontSize)
	}
	if d.Config.FontFamily != "" {
		r.attr("data-mermaid-font-family", d.Config.FontFamily)
	}
	switch d.Status.State {
	case Valid:
		r.attr("data-mermaid-valid", "true")
	case Invalid:
		r.attr("data-mermaid-valid", "false")
	}
	r.dst = append(r.dst, '>')
	r.dst = escapeHTML(r.dst, d.Source)
	r.closeTag(atom.Pre)
}

// diagramConfigJSON formats a diagram's configuration
// with the keys that the Mermaid initialize function expects.
func diagramConfigJSON(cfg DiagramConfig) (string, error) {
	m := make(map[string]any, len(cfg.Options)+4)
	for k, v := range cfg.Options {
		m[k] = v
	}
	m["theme"] = cfg.Theme
	vars := make(map[string]string, len(cfg.ThemeVariables)+2)
	for k, v := range cfg.ThemeVariables {
		vars[k] = v
	}
	vars["fontSize"] = cfg.FontSize
	vars["fontFamily"] = cfg.FontFamily
	m["themeVariables"] = vars
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// comment writes an HTML comment listing messages.
// Nothing is written if messages is empty.
func (r *renderState) comment(title string, messages []string) {
	if len(messages) == 0 {
		return
	}
	r.dst = append(r.dst, "<!-- "...)
	r.dst = append(r.dst, title...)
	r.dst = append(r.dst, ":\n"...)
	for _, msg := range messages {
		r.dst = append(r.dst, "  - "...)
		r.dst = append(r.dst, strings.ReplaceAll(msg, "--", "- -")...)
		r.dst = append(r.dst, '\n')
	}
	r.dst = append(r.dst, "-->\n"...)
}

func (r *renderState) inlines(seq []Inline) {
	for _, in := range seq {
		r.inline(in)
	}
}

func (r *renderState) inline(inline Inline) {
	switch inline := inline.(type) {
	case *Text:
		r.dst = escapeHTML(r.dst, inline.Value)
	case *Italic:
		r.openTag(atom.Em)
		r.inlines(inline.Content)
		r.closeTag(atom.Em)
	case *Bold:
		r.openTag(atom.Strong)
		r.inlines(inline.Content)
		r.closeTag(atom.Strong)
	case *Strikethrough:
		r.openTag(atom.Del)
		r.inlines(inline.Content)
		r.closeTag(atom.Del)
	case *Code:
		r.openTag(atom.Code)
		r.dst = escapeHTML(r.dst, inline.Value)
		r.closeTag(atom.Code)
	case *Link:
		r.link(inline.Destination, inline.Title, inline.Text)
	case *ReferenceLink:
		r.link(inline.Destination, inline.Title, inline.Text)
	case *Image:
		r.openTagAttr(atom.Img)
		r.attr("src", NormalizeURI(inline.Destination))
		r.attr("alt", inline.Alt)
		if inline.Title != "" {
			r.attr("title", inline.Title)
		}
		r.dst = append(r.dst, '>')
	}
}

func (r *renderState) link(dest, title string, content []Inline) {
	r.openTagAttr(atom.A)
	r.attr("href", NormalizeURI(dest))
	if title != "" {
		r.attr("title", title)
	}
	r.dst = append(r.dst, '>')
	r.inlines(content)
	r.closeTag(atom.A)
}

// escapeHTML appends the HTML-escaped version of a string to a byte slice.
func escapeHTML(dst []byte, src string) []byte {
	verbatimStart := 0
	for i := 0; i < len(src); i++ {
		var esc string
		switch src[i] {
		case '&':
			esc = "&amp;"
		case '\'':
			// "&#39;" is shorter than "&apos;" and apos was not in HTML until HTML5.
			esc = "&#39;"
		case '<':
			esc = "&lt;"
		case '>':
			esc = "&gt;"
		case '"':
			esc = "&quot;"
		default:
			continue
		}
		dst = append(dst, src[verbatimStart:i]...)
		dst = append(dst, esc...)
		verbatimStart = i + 1
	}
	return append(dst, src[verbatimStart:]...)
}

// NormalizeURI percent-encodes any characters in a string
// that are not reserved or unreserved URI characters.
// This is commonly used for transforming link destinations
// into strings suitable for href or src attributes.
func NormalizeURI(s string) string {
	// RFC 3986 reserved and unreserved characters.
	const safeSet = `;/?:@&=+$,-_.!~*'()#`

	sb := new(strings.Builder)
	sb.Grow(len(s))
	skip := 0
	var buf [utf8.UTFMax]byte
	for i, c := range s {
		if skip > 0 {
			skip--
			sb.WriteRune(c)
			continue
		}
		switch {
		case c == '%':
			if i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
				skip = 2
				sb.WriteByte('%')
			} else {
				sb.WriteString("%25")
			}
		case (c < 0x80 && (isASCIILetter(byte(c)) || isASCIIDigit(byte(c)))) || strings.ContainsRune(safeSet, c):
			sb.WriteRune(c)
		default:
			n := utf8.EncodeRune(buf[:], c)
			for _, b := range buf[:n] {
				sb.WriteByte('%')
				sb.WriteByte(urlHexDigit(b >> 4))
				sb.WriteByte(urlHexDigit(b & 0x0f))
			}
		}
	}
	return sb.String()
}

func isHex(c byte) bool {
	return 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F' || isASCIIDigit(c)
}

func isASCIILetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func urlHexDigit(x byte) byte {
	switch {
	case x < 0xa:
		return '0' + x
	case x < 0x10:
		return 'A' + x - 0xa
	default:
		panic("out of bounds")
	}
}
