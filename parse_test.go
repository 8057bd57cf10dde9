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
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// ignoreSpans compares trees without their source positions.
var ignoreSpans = cmp.Options{
	cmpopts.IgnoreTypes(Span{}),
	cmpopts.EquateEmpty(),
}

func TestInsecureCharacters(t *testing.T) {
	const input = "Hello,\x00World"
	want := []Block{
		&Paragraph{Content: []Inline{&Text{Value: "Hello,\ufffdWorld"}}},
	}
	doc := Parse([]byte(input))
	if diff := cmp.Diff(want, doc.Blocks, ignoreSpans); diff != "" {
		t.Errorf("Parse(%q) blocks (-want +got):\n%s", input, diff)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      []Block
		wantDiags []DiagnosticKind
	}{
		{
			name:  "Empty",
			input: "",
			want:  nil,
		},
		{
			name:  "Heading",
			input: "# Hello",
			want: []Block{
				&Heading{Level: 1, Content: []Inline{&Text{Value: "Hello"}}},
			},
		},
		{
			name:  "HeadingWithoutSpace",
			input: "##Hello",
			want: []Block{
				&Heading{Level: 2, Content: []Inline{&Text{Value: "Hello"}}},
			},
		},
		{
			name:  "HeadingClosingSequence",
			input: "## Title ##",
			want: []Block{
				&Heading{Level: 2, Content: []Inline{&Text{Value: "Title"}}},
			},
		},
		{
			name:  "HeadingOnlyMarkers",
			input: "#",
			want: []Block{
				&Paragraph{Content: []Inline{&Text{Value: "#"}}},
			},
		},
		{
			name:  "HeadingTooDeep",
			input: "####### Deep",
			want: []Block{
				&Heading{Level: 6, Content: []Inline{&Text{Value: "Deep"}}},
			},
			wantDiags: []DiagnosticKind{InvalidHeadingLevel},
		},
		{
			name:  "ParagraphLines",
			input: "a\nb\n\nc",
			want: []Block{
				&Paragraph{Content: []Inline{&Text{Value: "a b"}}},
				&Paragraph{Content: []Inline{&Text{Value: "c"}}},
			},
		},
		{
			name:  "CRLF",
			input: "a\r\nb\r\n\r\nc\r",
			want: []Block{
				&Paragraph{Content: []Inline{&Text{Value: "a b"}}},
				&Paragraph{Content: []Inline{&Text{Value: "c"}}},
			},
		},
		{
			name:  "HorizontalRule",
			input: "a\n---\n* * *\nb",
			want: []Block{
				&Paragraph{Content: []Inline{&Text{Value: "a"}}},
				&HorizontalRule{},
				&HorizontalRule{},
				&Paragraph{Content: []Inline{&Text{Value: "b"}}},
			},
		},
		{
			name:  "CodeBlock",
			input: "```go\nfmt.Println(\"*hi*\")\n\n```",
			want: []Block{
				&CodeBlock{
					Language:   "go",
					Lines:      []string{`fmt.Println("*hi*")`, ""},
					Terminated: true,
				},
			},
		},
		{
			name:  "CodeBlockIndented",
			input: "  ```\n  a\n    b\n```",
			want: []Block{
				&CodeBlock{
					Lines:      []string{"a", "  b"},
					Terminated: true,
				},
			},
		},
		{
			name:  "UnterminatedFence",
			input: "```\na\n# b",
			want: []Block{
				&CodeBlock{
					Lines:      []string{"a", "# b"},
					Terminated: false,
				},
			},
			wantDiags: []DiagnosticKind{UnterminatedFence},
		},
		{
			name:  "LongerClosingFence",
			input: "```\na\n`````\nb",
			want: []Block{
				&CodeBlock{Lines: []string{"a"}, Terminated: true},
				&Paragraph{Content: []Inline{&Text{Value: "b"}}},
			},
		},
		{
			name:  "BulletList",
			input: "- a\n- b",
			want: []Block{
				&List{Marker: "-", Items: []*ListItem{
					{Content: []Inline{&Text{Value: "a"}}},
					{Content: []Inline{&Text{Value: "b"}}},
				}},
			},
		},
		{
			name:  "OrderedList",
			input: "3. a\n4. b",
			want: []Block{
				&List{Ordered: true, Start: 3, Marker: ".", Items: []*ListItem{
					{Content: []Inline{&Text{Value: "a"}}},
					{Content: []Inline{&Text{Value: "b"}}},
				}},
			},
		},
		{
			name:  "NestedList",
			input: "- a\n  - b\n  - c\n- d",
			want: []Block{
				&List{Marker: "-", Items: []*ListItem{
					{
						Content: []Inline{&Text{Value: "a"}},
						Children: []*List{
							{Marker: "-", Items: []*ListItem{
								{Content: []Inline{&Text{Value: "b"}}},
								{Content: []Inline{&Text{Value: "c"}}},
							}},
						},
					},
					{Content: []Inline{&Text{Value: "d"}}},
				}},
			},
		},
		{
			name:  "ListReindentation",
			input: "- a\n  - b\n* c",
			want: []Block{
				&List{Marker: "-", Items: []*ListItem{
					{
						Content: []Inline{&Text{Value: "a"}},
						Children: []*List{
							{Marker: "-", Items: []*ListItem{
								{Content: []Inline{&Text{Value: "b"}}},
							}},
						},
					},
				}},
				&List{Marker: "*", Items: []*ListItem{
					{Content: []Inline{&Text{Value: "c"}}},
				}},
			},
		},
		{
			name:  "ListContinuation",
			input: "- a\n  continued\nafter",
			want: []Block{
				&List{Marker: "-", Items: []*ListItem{
					{Content: []Inline{&Text{Value: "a continued"}}},
				}},
				&Paragraph{Content: []Inline{&Text{Value: "after"}}},
			},
		},
		{
			name:  "LooseList",
			input: "- a\n\n- b\n\nc",
			want: []Block{
				&List{Marker: "-", Items: []*ListItem{
					{Content: []Inline{&Text{Value: "a"}}},
					{Content: []Inline{&Text{Value: "b"}}},
				}},
				&Paragraph{Content: []Inline{&Text{Value: "c"}}},
			},
		},
		{
			name:  "TaskList",
			input: "- [ ] todo\n- [x] done\n- [y] neither",
			want: []Block{
				&List{Marker: "-", Items: []*ListItem{
					{Task: TaskUnchecked, Content: []Inline{&Text{Value: "todo"}}},
					{Task: TaskChecked, Content: []Inline{&Text{Value: "done"}}},
					{Content: []Inline{&Text{Value: "[y] neither"}}},
				}},
			},
		},
		{
			name:  "Table",
			input: "| a | *b* |\n|:--|--:|\n| 1 | 2 |",
			want: []Block{
				&Table{
					Alignment: []Alignment{AlignLeft, AlignRight},
					Header: [][]Inline{
						{&Text{Value: "a"}},
						{&Italic{Content: []Inline{&Text{Value: "b"}}}},
					},
					Rows: [][][]Inline{
						{{&Text{Value: "1"}}, {&Text{Value: "2"}}},
					},
				},
			},
		},
		{
			name:  "TablePadding",
			input: "| a | b |\n| --- | :-: |\n| 1 |\n| 2 | 3 | 4 |",
			want: []Block{
				&Table{
					Alignment: []Alignment{AlignNone, AlignCenter},
					Header: [][]Inline{
						{&Text{Value: "a"}},
						{&Text{Value: "b"}},
					},
					Rows: [][][]Inline{
						{{&Text{Value: "1"}}, {}},
						{{&Text{Value: "2"}}, {&Text{Value: "3"}}},
					},
				},
			},
			wantDiags: []DiagnosticKind{MalformedTableRow, MalformedTableRow},
		},
		{
			name:  "TableEscapedPipe",
			input: "a | b\n--|--\nx \\| y | z",
			want: []Block{
				&Table{
					Alignment: []Alignment{AlignNone, AlignNone},
					Header: [][]Inline{
						{&Text{Value: "a"}},
						{&Text{Value: "b"}},
					},
					Rows: [][][]Inline{
						{{&Text{Value: "x | y"}}, {&Text{Value: "z"}}},
					},
				},
			},
		},
		{
			name:  "Blockquote",
			input: "> a\n> > b\n> c",
			want: []Block{
				&Blockquote{Depth: 1, Content: []Block{
					&Paragraph{Content: []Inline{&Text{Value: "a"}}},
					&Blockquote{Depth: 2, Content: []Block{
						&Paragraph{Content: []Inline{&Text{Value: "b"}}},
					}},
					&Paragraph{Content: []Inline{&Text{Value: "c"}}},
				}},
			},
		},
		{
			name:  "BlockquoteWithList",
			input: "> - a\n> - b\n\nc",
			want: []Block{
				&Blockquote{Depth: 1, Content: []Block{
					&List{Marker: "-", Items: []*ListItem{
						{Content: []Inline{&Text{Value: "a"}}},
						{Content: []Inline{&Text{Value: "b"}}},
					}},
				}},
				&Paragraph{Content: []Inline{&Text{Value: "c"}}},
			},
		},
		{
			name:  "EmptyDiagram",
			input: "```mermaid\n```",
			want: []Block{
				&Diagram{
					Config: DiagramConfig{
						Theme:      DefaultDiagramTheme,
						FontSize:   DefaultDiagramFontSize,
						FontFamily: DefaultDiagramFontFamily,
					},
					Status: ValidationStatus{
						State:  Invalid,
						Errors: []string{"diagram is empty"},
					},
					Terminated: true,
				},
			},
			wantDiags: []DiagnosticKind{InvalidDiagram},
		},
		{
			name:  "Diagram",
			input: "```Mermaid\ngraph TD\n  A --> B\n```",
			want: []Block{
				&Diagram{
					Raw:    "graph TD\n  A --> B",
					Source: "graph TD\n  A --> B",
					Config: DiagramConfig{
						Theme:      DefaultDiagramTheme,
						FontSize:   DefaultDiagramFontSize,
						FontFamily: DefaultDiagramFontFamily,
					},
					Status:     ValidationStatus{State: Valid},
					Terminated: true,
				},
			},
		},
		{
			name:  "ReferenceDefinition",
			input: "[x]: https://example.com \"Title\"\n\nSee [x].",
			want: []Block{
				&Paragraph{Content: []Inline{
					&Text{Value: "See "},
					&ReferenceLink{
						Text:        []Inline{&Text{Value: "x"}},
						Label:       "x",
						Destination: "https://example.com",
						Title:       "Title",
					},
					&Text{Value: "."},
				}},
			},
		},
		{
			name:  "DefinitionInsideFence",
			input: "```\n[x]: /url\n```\n[x]",
			want: []Block{
				&CodeBlock{Lines: []string{"[x]: /url"}, Terminated: true},
				&Paragraph{Content: []Inline{&Text{Value: "[x]"}}},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := Parse([]byte(test.input))
			if diff := cmp.Diff(test.want, doc.Blocks, ignoreSpans); diff != "" {
				t.Errorf("Parse(%q) blocks (-want +got):\n%s", test.input, diff)
			}
			var gotDiags []DiagnosticKind
			for _, d := range doc.Diagnostics {
				gotDiags = append(gotDiags, d.Kind)
			}
			if diff := cmp.Diff(test.wantDiags, gotDiags, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Parse(%q) diagnostic kinds (-want +got):\n%s", test.input, diff)
			}
		})
	}
}

func TestParseSpans(t *testing.T) {
	const input = "# Title\n\nsome *text*\nand `more`\n\n```\ncode\n```"
	doc := Parse([]byte(input))
	want := []Block{
		&Heading{
			Level:   1,
			Content: []Inline{&Text{Value: "Title", Span: Span{Line: 1, Column: 3}}},
			Span:    Span{Line: 1, Column: 1},
		},
		&Paragraph{
			Content: []Inline{
				&Text{Value: "some ", Span: Span{Line: 3, Column: 1}},
				&Italic{
					Content: []Inline{&Text{Value: "text", Span: Span{Line: 3, Column: 7}}},
					Span:    Span{Line: 3, Column: 6},
				},
				&Text{Value: " and ", Span: Span{Line: 3, Column: 12, EndLine: 4}},
				&Code{Value: "more", Span: Span{Line: 4, Column: 5}},
			},
			Span: Span{Line: 3, Column: 1, EndLine: 4},
		},
		&CodeBlock{
			Lines:      []string{"code"},
			Terminated: true,
			Span:       Span{Line: 6, Column: 1, EndLine: 8},
		},
	}
	if diff := cmp.Diff(want, doc.Blocks); diff != "" {
		t.Errorf("Parse(%q) blocks (-want +got):\n%s", input, diff)
	}
}

func TestParseIdempotent(t *testing.T) {
	const input = "# Doc\n\n" +
		"> quote with [link](/x)\n\n" +
		"- [x] item\n  - nested **bold**\n\n" +
		"| a | b |\n|---|---|\n| 1 |\n\n" +
		"```mermaid\ngraph TD\n  A -->\n```\n\n" +
		"[ref]: /ref\n"
	doc1 := Parse([]byte(input))
	doc2 := Parse([]byte(input))
	if diff := cmp.Diff(doc1, doc2); diff != "" {
		t.Errorf("Parse(%q) differs between calls (-first +second):\n%s", input, diff)
	}
}

func TestUnterminatedFence(t *testing.T) {
	const input = "intro\n\n```python\nprint(1)\n"
	doc := Parse([]byte(input))
	if len(doc.Blocks) != 2 {
		t.Fatalf("len(Parse(%q).Blocks) = %d; want 2", input, len(doc.Blocks))
	}
	cb, ok := doc.Blocks[1].(*CodeBlock)
	if !ok {
		t.Fatalf("Parse(%q).Blocks[1] = %T; want *CodeBlock", input, doc.Blocks[1])
	}
	if cb.Terminated {
		t.Error("CodeBlock.Terminated = true; want false")
	}
	want := []Diagnostic{{
		Kind:    UnterminatedFence,
		Message: "unterminated code fence",
		Line:    3,
	}}
	if diff := cmp.Diff(want, doc.Diagnostics); diff != "" {
		t.Errorf("Parse(%q).Diagnostics (-want +got):\n%s", input, diff)
	}
}

func TestQuotedFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Block
		diags []Diagnostic
	}{
		{
			name:  "ClosedByQuoteEnd",
			input: "> ```\n> code\n\nafter\n\n```go\nx\n```\n",
			want: []Block{
				&Blockquote{
					Depth: 1,
					Content: []Block{
						&CodeBlock{Lines: []string{"code"}, Terminated: true},
					},
				},
				&Paragraph{Content: []Inline{&Text{Value: "after"}}},
				&CodeBlock{Language: "go", Lines: []string{"x"}, Terminated: true},
			},
		},
		{
			name:  "ClosedInsideQuote",
			input: "> ```\n> code\n> ```\n> after\n",
			want: []Block{
				&Blockquote{
					Depth: 1,
					Content: []Block{
						&CodeBlock{Lines: []string{"code"}, Terminated: true},
						&Paragraph{Content: []Inline{&Text{Value: "after"}}},
					},
				},
			},
		},
		{
			name:  "QuoteEndsInput",
			input: "intro\n\n> ```\n> code\n",
			want: []Block{
				&Paragraph{Content: []Inline{&Text{Value: "intro"}}},
				&Blockquote{
					Depth: 1,
					Content: []Block{
						&CodeBlock{Lines: []string{"code"}},
					},
				},
			},
			diags: []Diagnostic{{
				Kind:    UnterminatedFence,
				Message: "unterminated code fence",
				Line:    3,
			}},
		},
		{
			name:  "DeeperQuoteFollows",
			input: "> ```\n> > nested\n",
			want: []Block{
				&Blockquote{
					Depth: 1,
					Content: []Block{
						&CodeBlock{Terminated: true},
						&Blockquote{
							Depth: 2,
							Content: []Block{
								&Paragraph{Content: []Inline{&Text{Value: "nested"}}},
							},
						},
					},
				},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := Parse([]byte(test.input))
			if diff := cmp.Diff(test.want, doc.Blocks, ignoreSpans); diff != "" {
				t.Errorf("Parse(%q).Blocks (-want +got):\n%s", test.input, diff)
			}
			if diff := cmp.Diff(test.diags, doc.Diagnostics, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Parse(%q).Diagnostics (-want +got):\n%s", test.input, diff)
			}
		})
	}
}

// TestUnterminatedFenceIsLast checks that only the final fenced block
// in a document may be unterminated, wherever the fences appear.
func TestUnterminatedFenceIsLast(t *testing.T) {
	tests := []string{
		"```\nopen\n",
		"> ```\n> code\n\nafter\n\n```go\nx\n```\n",
		"> ```\n> code\n\n```\nstill open\n",
		"> > ```\n> > deep\n> shallow\n\n```\nx\n```\n",
		"> ```\n> > nested\n> ```\n",
		"- item\n  ```\n  code\n",
		"- item\n\n> ```mermaid\n> graph TD\n\n```mermaid\ngraph TD\n",
		"> ```\n> a\n",
		"```\n> a\n```\n> ```\n",
	}
	for _, input := range tests {
		doc := Parse([]byte(input))
		var fences []Node
		for _, b := range doc.Blocks {
			Walk(b, &WalkOptions{
				Pre: func(c *Cursor) bool {
					switch c.Node().(type) {
					case *CodeBlock, *Diagram:
						fences = append(fences, c.Node())
					}
					return true
				},
			})
		}
		unterminated := 0
		for i, n := range fences {
			var terminated bool
			switch n := n.(type) {
			case *CodeBlock:
				terminated = n.Terminated
			case *Diagram:
				terminated = n.Terminated
			}
			if !terminated {
				unterminated++
				if i != len(fences)-1 {
					t.Errorf("Parse(%q): fenced block %d of %d at %v is unterminated", input, i+1, len(fences), n.SourceSpan())
				}
			}
		}
		reported := 0
		for _, d := range doc.Diagnostics {
			if d.Kind == UnterminatedFence {
				reported++
			}
		}
		if reported != unterminated {
			t.Errorf("Parse(%q) reported %d unterminated fences; found %d in tree", input, reported, unterminated)
		}
	}
}

func TestReferences(t *testing.T) {
	const input = "[a][b]\n\n[Foo Bar]: /first\n[foo  bar]: /second 'Second'\n"
	doc := Parse([]byte(input))

	wantRefs := ReferenceTable{
		"foo bar": {Label: "foo  bar", Destination: "/second", Title: "Second", Line: 4},
	}
	if diff := cmp.Diff(wantRefs, doc.References); diff != "" {
		t.Errorf("Parse(%q).References (-want +got):\n%s", input, diff)
	}
	wantDiags := []Diagnostic{
		{Kind: UnresolvedReference, Message: `undefined reference "b"`, Line: 1, Column: 1},
		{Kind: DuplicateReference, Message: `reference "foo  bar" redefined (previous definition on line 3)`, Line: 4},
	}
	if diff := cmp.Diff(wantDiags, doc.Diagnostics); diff != "" {
		t.Errorf("Parse(%q).Diagnostics (-want +got):\n%s", input, diff)
	}
}

func TestParserConfig(t *testing.T) {
	p := &Parser{Config: Config{
		MaxHeadingLevel: 3,
		FenceChar:       "~",
		DiagramLanguage: "diagram",
		Diagram: DiagramOptions{
			Theme:          "dark",
			SkipValidation: true,
		},
	}}
	const input = "#### Deep\n\n~~~\n```\n~~~\n\n~~~diagram\nnot checked\n~~~"
	doc := p.Parse([]byte(input))
	want := []Block{
		&Heading{Level: 4, Content: []Inline{&Text{Value: "Deep"}}},
		&CodeBlock{Lines: []string{"```"}, Terminated: true},
		&Diagram{
			Raw:    "not checked",
			Source: "not checked",
			Config: DiagramConfig{
				Theme:      "dark",
				FontSize:   DefaultDiagramFontSize,
				FontFamily: DefaultDiagramFontFamily,
			},
			Status:     ValidationStatus{State: NotValidated},
			Terminated: true,
		},
	}
	if diff := cmp.Diff(want, doc.Blocks, ignoreSpans); diff != "" {
		t.Errorf("Parse(%q) blocks (-want +got):\n%s", input, diff)
	}
	if len(doc.Diagnostics) != 1 || doc.Diagnostics[0].Kind != InvalidHeadingLevel {
		t.Errorf("Parse(%q).Diagnostics = %v; want one %v", input, doc.Diagnostics, InvalidHeadingLevel)
	}
}

func TestParseReader(t *testing.T) {
	doc, err := ParseReader(strings.NewReader("*hi*"))
	if err != nil {
		t.Fatal(err)
	}
	want := []Block{
		&Paragraph{Content: []Inline{&Italic{Content: []Inline{&Text{Value: "hi"}}}}},
	}
	if diff := cmp.Diff(want, doc.Blocks, ignoreSpans); diff != "" {
		t.Errorf("blocks (-want +got):\n%s", diff)
	}
}

func FuzzParse(f *testing.F) {
	f.Add("# Hello\n\nWorld")
	f.Add("- a\n  - b\n* c\n")
	f.Add("> a\n> > b\n>\n> c")
	f.Add("| a | b |\n|:-|-:|\n| 1 |\n")
	f.Add("```mermaid\n%%{init: {\"theme\": \"dark\"}}%%\ngraph TD\n  A --> B(\n```")
	f.Add("[x]: /url\n\n[x] and [y][] and ![i](/i.png)")
	f.Add("**a *b* c** ~~d~~ `e`")
	f.Add("```\nunterminated")

	f.Fuzz(func(t *testing.T, source string) {
		if !utf8.ValidString(source) {
			t.Skip("Invalid UTF-8")
		}
		doc := Parse([]byte(source))
		for _, b := range doc.Blocks {
			verifySpansDontExceedParents(t, b, Span{})
		}
		for i := 1; i < len(doc.Diagnostics); i++ {
			if doc.Diagnostics[i].Line < doc.Diagnostics[i-1].Line {
				t.Errorf("Diagnostics[%d].Line = %d < Diagnostics[%d].Line = %d",
					i, doc.Diagnostics[i].Line, i-1, doc.Diagnostics[i-1].Line)
			}
		}
	})
}

// verifySpansDontExceedParents checks that every node in the tree rooted at n
// has a position and that it starts within its parent's lines.
func verifySpansDontExceedParents(tb testing.TB, n Node, parentSpan Span) {
	tb.Helper()
	span := n.SourceSpan()
	if !span.IsValid() {
		tb.Errorf("%T has no position", n)
		return
	}
	if span.Column < 1 {
		tb.Errorf("%T at %v has column %d", n, span, span.Column)
	}
	if span.EndLine != 0 && span.EndLine < span.Line {
		tb.Errorf("%T at %v ends before it starts", n, span)
	}
	if parentSpan.IsValid() {
		last := max(parentSpan.Line, parentSpan.EndLine)
		if span.Line < parentSpan.Line || span.Line > last {
			tb.Errorf("%T at %v is outside parent %v", n, span, parentSpan)
		}
	}
	for _, c := range Children(n) {
		verifySpansDontExceedParents(tb, c, span)
	}
}
