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

import "fmt"

// Node is a [Block] or an [Inline].
type Node interface {
	// SourceSpan returns the location of the node in the parsed document.
	SourceSpan() Span
}

// A Block is a structural element in a Markdown document.
// The set of blocks is closed:
// every Block is one of
// [*Heading], [*Paragraph], [*List], [*ListItem], [*CodeBlock],
// [*Diagram], [*Table], [*Blockquote], or [*HorizontalRule].
type Block interface {
	Node
	Kind() BlockKind
	isBlock()
}

// BlockKind is an enumeration of values returned by [Block.Kind].
type BlockKind uint16

const (
	HeadingKind BlockKind = 1 + iota
	ParagraphKind
	ListKind
	ListItemKind
	CodeBlockKind
	DiagramKind
	TableKind
	BlockquoteKind
	HorizontalRuleKind
)

// String returns the kind's serialized name, like "heading".
func (kind BlockKind) String() string {
	switch kind {
	case HeadingKind:
		return "heading"
	case ParagraphKind:
		return "paragraph"
	case ListKind:
		return "list"
	case ListItemKind:
		return "list_item"
	case CodeBlockKind:
		return "code_block"
	case DiagramKind:
		return "diagram"
	case TableKind:
		return "table"
	case BlockquoteKind:
		return "blockquote"
	case HorizontalRuleKind:
		return "horizontal_rule"
	default:
		return fmt.Sprintf("BlockKind(%d)", uint16(kind))
	}
}

// Heading is an ATX-style heading like "## Title".
type Heading struct {
	// Level is in the range [1, 6].
	Level   int      `json:"level"`
	Content []Inline `json:"content"`
	Span
}

// Paragraph is a run of text lines not claimed by any other block.
type Paragraph struct {
	Content []Inline `json:"content"`
	Span
}

// List is a sequence of list items sharing a marker.
type List struct {
	Ordered bool `json:"ordered"`
	// Start is the number of the first item of an ordered list.
	Start int `json:"start,omitempty"`
	// Marker is the bullet character ("-", "*", or "+")
	// or, for ordered lists, the delimiter after the number ("." or ")").
	Marker string      `json:"marker"`
	Items  []*ListItem `json:"items"`
	Span
}

// ListItem is a single item of a [List].
type ListItem struct {
	Content  []Inline  `json:"content"`
	Task     TaskState `json:"task,omitempty"`
	Children []*List   `json:"children,omitempty"`
	Span
}

// TaskState is the checkbox state of a task list item.
type TaskState uint8

const (
	NoTask TaskState = iota
	TaskUnchecked
	TaskChecked
)

// String returns "unchecked", "checked", or the empty string.
func (ts TaskState) String() string {
	switch ts {
	case NoTask:
		return ""
	case TaskUnchecked:
		return "unchecked"
	case TaskChecked:
		return "checked"
	default:
		return fmt.Sprintf("TaskState(%d)", uint8(ts))
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (ts TaskState) MarshalText() ([]byte, error) {
	return []byte(ts.String()), nil
}

// CodeBlock is a fenced block of literal text.
type CodeBlock struct {
	// Language is the first word of the fence's info string.
	Language string   `json:"language,omitempty"`
	Lines    []string `json:"lines"`
	// Terminated is false if the input ended before a closing fence.
	Terminated bool `json:"terminated"`
	Span
}

// Text returns the block's lines joined by newlines.
func (cb *CodeBlock) Text() string {
	n := 0
	for _, line := range cb.Lines {
		n += len(line) + 1
	}
	buf := make([]byte, 0, n)
	for i, line := range cb.Lines {
		if i > 0 {
			buf = append(buf, '\n')
		}
		buf = append(buf, line...)
	}
	return string(buf)
}

// Diagram is a fenced block tagged with the diagram language.
type Diagram struct {
	// Raw is the fenced body exactly as it appeared in the source.
	Raw string `json:"raw"`
	// Source is Raw with any frontmatter directive removed.
	Source   string           `json:"source"`
	Config   DiagramConfig    `json:"config"`
	Status   ValidationStatus `json:"status"`
	Warnings []string         `json:"warnings,omitempty"`
	// Terminated is false if the input ended before a closing fence.
	Terminated bool `json:"terminated"`
	Span
}

// Table is a pipe table with a header row.
type Table struct {
	Alignment []Alignment  `json:"alignment"`
	Header    [][]Inline   `json:"header"`
	Rows      [][][]Inline `json:"rows"`
	Span
}

// Alignment is the alignment of a table column.
type Alignment uint8

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// String returns "left", "center", "right", or the empty string.
func (a Alignment) String() string {
	switch a {
	case AlignNone:
		return ""
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return fmt.Sprintf("Alignment(%d)", uint8(a))
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (a Alignment) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Blockquote is a run of lines prefixed with '>'.
type Blockquote struct {
	// Depth is the number of '>' markers in front of the quote's own lines.
	Depth   int     `json:"depth"`
	Content []Block `json:"content"`
	Span
}

// HorizontalRule is a thematic break like "---".
type HorizontalRule struct {
	Span
}

func (*Heading) Kind() BlockKind        { return HeadingKind }
func (*Paragraph) Kind() BlockKind      { return ParagraphKind }
func (*List) Kind() BlockKind           { return ListKind }
func (*ListItem) Kind() BlockKind       { return ListItemKind }
func (*CodeBlock) Kind() BlockKind      { return CodeBlockKind }
func (*Diagram) Kind() BlockKind        { return DiagramKind }
func (*Table) Kind() BlockKind          { return TableKind }
func (*Blockquote) Kind() BlockKind     { return BlockquoteKind }
func (*HorizontalRule) Kind() BlockKind { return HorizontalRuleKind }

func (*Heading) isBlock()        {}
func (*Paragraph) isBlock()      {}
func (*List) isBlock()           {}
func (*ListItem) isBlock()       {}
func (*CodeBlock) isBlock()      {}
func (*Diagram) isBlock()        {}
func (*Table) isBlock()          {}
func (*Blockquote) isBlock()     {}
func (*HorizontalRule) isBlock() {}

// Inline represents content elements like text, links, or emphasis.
// The set of inlines is closed:
// every Inline is one of
// [*Text], [*Bold], [*Italic], [*Strikethrough], [*Code],
// [*Link], [*Image], or [*ReferenceLink].
type Inline interface {
	Node
	Kind() InlineKind
	isInline()
}

// InlineKind is an enumeration of values returned by [Inline.Kind].
type InlineKind uint16

const (
	TextKind InlineKind = 1 + iota
	BoldKind
	ItalicKind
	StrikethroughKind
	CodeKind
	LinkKind
	ImageKind
	ReferenceLinkKind
)

// String returns the kind's serialized name, like "bold".
func (kind InlineKind) String() string {
	switch kind {
	case TextKind:
		return "text"
	case BoldKind:
		return "bold"
	case ItalicKind:
		return "italic"
	case StrikethroughKind:
		return "strikethrough"
	case CodeKind:
		return "code"
	case LinkKind:
		return "link"
	case ImageKind:
		return "image"
	case ReferenceLinkKind:
		return "reference_link"
	default:
		return fmt.Sprintf("InlineKind(%d)", uint16(kind))
	}
}

// Text is literal text.
type Text struct {
	Value string `json:"value"`
	Span
}

// Bold is strong emphasis: **text** or __text__.
type Bold struct {
	Content []Inline `json:"content"`
	Span
}

// Italic is emphasis: *text* or _text_.
type Italic struct {
	Content []Inline `json:"content"`
	Span
}

// Strikethrough is deleted text: ~~text~~.
type Strikethrough struct {
	Content []Inline `json:"content"`
	Span
}

// Code is an inline code span.
type Code struct {
	Value string `json:"value"`
	Span
}

// Link is an inline link: [text](destination "title").
type Link struct {
	Text        []Inline `json:"text"`
	Destination string   `json:"destination"`
	Title       string   `json:"title,omitempty"`
	Span
}

// Image is an inline image: ![alt](destination "title").
type Image struct {
	Alt         string `json:"alt"`
	Destination string `json:"destination"`
	Title       string `json:"title,omitempty"`
	Span
}

// ReferenceLink is a link whose destination comes from
// a reference definition elsewhere in the document.
// Destination and Title are copied from the definition
// that Label resolved to.
type ReferenceLink struct {
	Text        []Inline `json:"text"`
	Label       string   `json:"label"`
	Destination string   `json:"destination"`
	Title       string   `json:"title,omitempty"`
	Span
}

func (*Text) Kind() InlineKind          { return TextKind }
func (*Bold) Kind() InlineKind          { return BoldKind }
func (*Italic) Kind() InlineKind        { return ItalicKind }
func (*Strikethrough) Kind() InlineKind { return StrikethroughKind }
func (*Code) Kind() InlineKind          { return CodeKind }
func (*Link) Kind() InlineKind          { return LinkKind }
func (*Image) Kind() InlineKind         { return ImageKind }
func (*ReferenceLink) Kind() InlineKind { return ReferenceLinkKind }

func (*Text) isInline()          {}
func (*Bold) isInline()          {}
func (*Italic) isInline()        {}
func (*Strikethrough) isInline() {}
func (*Code) isInline()          {}
func (*Link) isInline()          {}
func (*Image) isInline()         {}
func (*ReferenceLink) isInline() {}

// PlainText returns the concatenated text of a sequence of inlines
// with all formatting removed.
func PlainText(seq []Inline) string {
	var buf []byte
	var visit func([]Inline)
	visit = func(seq []Inline) {
		for _, in := range seq {
			switch in := in.(type) {
			case *Text:
				buf = append(buf, in.Value...)
			case *Code:
				buf = append(buf, in.Value...)
			case *Bold:
				visit(in.Content)
			case *Italic:
				visit(in.Content)
			case *Strikethrough:
				visit(in.Content)
			case *Link:
				visit(in.Text)
			case *ReferenceLink:
				visit(in.Text)
			case *Image:
				buf = append(buf, in.Alt...)
			}
		}
	}
	visit(seq)
	return string(buf)
}
