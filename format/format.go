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

// Package format provides a function to format a Markdown document
// that is equivalent to the original Markdown.
package format

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"zombiezen.com/go/mdast"
)

// Format writes the given document as normalized Markdown to the given writer.
// Blocks are separated by blank lines,
// emphasis uses asterisks,
// shortcut reference links are rewritten as collapsed reference links,
// and reference definitions are collected at the end of the document.
// Fenced blocks are always closed.
func Format(w io.Writer, doc *mdast.Document) error {
	ww := &errWriter{w: w}
	for _, b := range doc.Blocks {
		if ww.hasWritten {
			ww.WriteString("\n")
		}
		for _, line := range formatBlock(b) {
			ww.WriteString(line)
			ww.WriteString("\n")
		}
	}
	defs := make([]mdast.ReferenceDefinition, 0, len(doc.References))
	for _, def := range doc.References {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Line < defs[j].Line
	})
	for i, def := range defs {
		if i == 0 && ww.hasWritten {
			ww.WriteString("\n")
		}
		ww.WriteString(formatDefinition(def))
		ww.WriteString("\n")
	}
	return ww.err
}

// formatBlock returns the lines of a block without line endings.
func formatBlock(b mdast.Block) []string {
	switch b := b.(type) {
	case *mdast.Heading:
		content := formatInlines(b.Content)
		if strings.HasSuffix(content, "#") {
			// A trailing run of '#' would be taken as a closing sequence.
			content = content[:len(content)-1] + `\#`
		}
		return []string{strings.Repeat("#", b.Level) + " " + content}
	case *mdast.Paragraph:
		return []string{escapeLineStart(formatInlines(b.Content))}
	case *mdast.HorizontalRule:
		return []string{"---"}
	case *mdast.CodeBlock:
		lines := make([]string, 0, len(b.Lines)+2)
		lines = append(lines, "```"+b.Language)
		lines = append(lines, b.Lines...)
		return append(lines, "```")
	case *mdast.Diagram:
		lines := []string{"```" + mdast.DefaultDiagramLanguage}
		if b.Raw != "" {
			lines = append(lines, strings.Split(b.Raw, "\n")...)
		}
		return append(lines, "```")
	case *mdast.Table:
		return formatTable(b)
	case *mdast.Blockquote:
		var lines []string
		for i, c := range b.Content {
			if i > 0 {
				lines = append(lines, ">")
			}
			for _, line := range formatBlock(c) {
				if line == "" {
					lines = append(lines, ">")
				} else {
					lines = append(lines, "> "+line)
				}
			}
		}
		return lines
	case *mdast.List:
		return formatList(b)
	case *mdast.ListItem:
		return formatListItem(b, "-")
	default:
		return nil
	}
}

func formatList(list *mdast.List) []string {
	var lines []string
	n := list.Start
	for _, item := range list.Items {
		marker := list.Marker
		if list.Ordered {
			marker = strconv.Itoa(n) + list.Marker
			if n < 999999999 {
				n++
			}
		}
		lines = append(lines, formatListItem(item, marker)...)
	}
	return lines
}

func formatListItem(item *mdast.ListItem, marker string) []string {
	first := marker
	switch item.Task {
	case mdast.TaskUnchecked:
		first += " [ ]"
	case mdast.TaskChecked:
		first += " [x]"
	}
	if content := formatInlines(item.Content); content != "" {
		first += " " + content
	}
	lines := []string{first}
	indent := strings.Repeat(" ", len(marker)+1)
	for _, child := range item.Children {
		for _, line := range formatList(child) {
			lines = append(lines, indent+line)
		}
	}
	return lines
}

func formatTable(t *mdast.Table) []string {
	lines := make([]string, 0, len(t.Rows)+2)
	lines = append(lines, formatTableRow(t.Header))
	sep := make([]string, len(t.Alignment))
	for i, a := range t.Alignment {
		switch a {
		case mdast.AlignLeft:
			sep[i] = ":--"
		case mdast.AlignCenter:
			sep[i] = ":-:"
		case mdast.AlignRight:
			sep[i] = "--:"
		default:
			sep[i] = "---"
		}
	}
	lines = append(lines, "| "+strings.Join(sep, " | ")+" |")
	for _, row := range t.Rows {
		lines = append(lines, formatTableRow(row))
	}
	return lines
}

func formatTableRow(cells [][]mdast.Inline) string {
	sb := new(strings.Builder)
	sb.WriteString("|")
	for _, cell := range cells {
		sb.WriteString(" ")
		sb.WriteString(formatInlines(cell))
		sb.WriteString(" |")
	}
	return sb.String()
}

func formatDefinition(def mdast.ReferenceDefinition) string {
	sb := new(strings.Builder)
	sb.WriteString("[")
	sb.WriteString(def.Label)
	sb.WriteString("]: ")
	writeDestination(sb, def.Destination, true)
	if def.Title != "" {
		sb.WriteString(" ")
		writeTitle(sb, def.Title)
	}
	return sb.String()
}

// escapeLineStart escapes the first character of a paragraph line
// if it would otherwise start a different block.
func escapeLineStart(line string) string {
	if line == "" {
		return line
	}
	switch c := line[0]; {
	case c == '#' || c == '>':
		return `\` + line
	case c == '+' && (len(line) == 1 || line[1] == ' ' || line[1] == '\t'):
		return `\` + line
	case c == '-' && (len(line) == 1 || line[1] == ' ' || line[1] == '\t' || strings.Trim(line, "- \t") == ""):
		return `\` + line
	case '0' <= c && c <= '9':
		i := 1
		for i < len(line) && i < 10 && '0' <= line[i] && line[i] <= '9' {
			i++
		}
		if i < len(line) && (line[i] == '.' || line[i] == ')') &&
			(i+1 == len(line) || line[i+1] == ' ' || line[i+1] == '\t') {
			return line[:i] + `\` + line[i:]
		}
	}
	return line
}

func formatInlines(seq []mdast.Inline) string {
	sb := new(strings.Builder)
	writeInlines(sb, seq)
	return sb.String()
}

func writeInlines(sb *strings.Builder, seq []mdast.Inline) {
	for i, in := range seq {
		text, isText := in.(*mdast.Text)
		if !isText {
			writeInline(sb, in)
			continue
		}
		s := escapeText(text.Value)
		if strings.HasSuffix(s, "!") && i+1 < len(seq) {
			// Keep a following link from turning into an image.
			switch seq[i+1].(type) {
			case *mdast.Link, *mdast.ReferenceLink:
				s = s[:len(s)-1] + `\!`
			}
		}
		sb.WriteString(s)
	}
}

func writeInline(sb *strings.Builder, in mdast.Inline) {
	switch in := in.(type) {
	case *mdast.Text:
		sb.WriteString(escapeText(in.Value))
	case *mdast.Bold:
		sb.WriteString("**")
		writeInlines(sb, in.Content)
		sb.WriteString("**")
	case *mdast.Italic:
		sb.WriteString("*")
		writeInlines(sb, in.Content)
		sb.WriteString("*")
	case *mdast.Strikethrough:
		sb.WriteString("~~")
		writeInlines(sb, in.Content)
		sb.WriteString("~~")
	case *mdast.Code:
		writeCode(sb, in.Value)
	case *mdast.Link:
		sb.WriteString("[")
		writeInlines(sb, in.Text)
		sb.WriteString("](")
		writeDestination(sb, in.Destination, false)
		if in.Title != "" {
			sb.WriteString(" ")
			writeTitle(sb, in.Title)
		}
		sb.WriteString(")")
	case *mdast.Image:
		sb.WriteString("![")
		sb.WriteString(escapeText(in.Alt))
		sb.WriteString("](")
		writeDestination(sb, in.Destination, false)
		if in.Title != "" {
			sb.WriteString(" ")
			writeTitle(sb, in.Title)
		}
		sb.WriteString(")")
	case *mdast.ReferenceLink:
		text := formatInlines(in.Text)
		sb.WriteString("[")
		sb.WriteString(text)
		sb.WriteString("]")
		if text == in.Label {
			sb.WriteString("[]")
		} else {
			sb.WriteString("[")
			sb.WriteString(in.Label)
			sb.WriteString("]")
		}
	}
}

// writeCode writes a code span using a backtick run
// that does not appear in value.
func writeCode(sb *strings.Builder, value string) {
	n := 1
	for containsRun(value, '`', n) {
		n++
	}
	fence := strings.Repeat("`", n)
	pad := strings.HasPrefix(value, "`") || strings.HasSuffix(value, "`") ||
		(len(value) >= 2 && value[0] == ' ' && value[len(value)-1] == ' ' && strings.Trim(value, " ") != "")
	sb.WriteString(fence)
	if pad {
		sb.WriteString(" ")
	}
	sb.WriteString(value)
	if pad {
		sb.WriteString(" ")
	}
	sb.WriteString(fence)
}

// containsRun reports whether s contains a run of exactly n c bytes.
func containsRun(s string, c byte, n int) bool {
	for i := 0; i < len(s); {
		if s[i] != c {
			i++
			continue
		}
		j := i
		for j < len(s) && s[j] == c {
			j++
		}
		if j-i == n {
			return true
		}
		i = j
	}
	return false
}

// writeDestination writes a link destination,
// using the angle bracket form if the bare form would not round-trip.
func writeDestination(sb *strings.Builder, dest string, definition bool) {
	if dest == "" {
		if definition {
			sb.WriteString("<>")
		}
		return
	}
	if !needsAngleBrackets(dest) {
		sb.WriteString(dest)
		return
	}
	sb.WriteString("<")
	for i := 0; i < len(dest); i++ {
		switch c := dest[i]; c {
		case '\\', '<', '>':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteString(">")
}

func needsAngleBrackets(dest string) bool {
	depth := 0
	for i := 0; i < len(dest); i++ {
		switch c := dest[i]; {
		case c <= ' ' || c == '\\' || c == '<' || c == '>':
			return true
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return true
			}
		}
	}
	return depth != 0
}

func writeTitle(sb *strings.Builder, title string) {
	sb.WriteString(`"`)
	for i := 0; i < len(title); i++ {
		switch c := title[i]; c {
		case '\\', '"':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteString(`"`)
}

// textSpecials is the set of characters that are escaped in text
// so that they are not taken as inline syntax.
const textSpecials = "\\*_~`[]|"

func escapeText(s string) string {
	if !strings.ContainsAny(s, textSpecials) {
		return s
	}
	sb := new(strings.Builder)
	sb.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(textSpecials, s[i]) >= 0 {
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

type errWriter struct {
	w          io.Writer
	hasWritten bool
	err        error
}

func (w *errWriter) WriteString(s string) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	n, w.err = io.WriteString(w.w, s)
	w.hasWritten = w.hasWritten || n > 0
	return n, w.err
}
