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

// Package normhtml provides a function for normalizing HTML
// which ignores insignificant output differences,
// based on the [CommonMark spec test normalization].
// It is used to compare renderer output in tests.
//
// [CommonMark spec test normalization]: https://github.com/commonmark/commonmark-spec/blob/0.30.0/test/normalize.py
package normhtml

import (
	"bytes"
	"regexp"
	"sort"
	"unicode"

	"go4.org/bytereplacer"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Options is the set of parameters to [Options.Normalize].
type Options struct {
	// If StripComments is true, HTML comments are removed from the output.
	StripComments bool
}

// NormalizeHTML strips insignificant output differences from HTML
// using the zero Options.
func NormalizeHTML(b []byte) []byte {
	return Options{}.Normalize(b)
}

var whitespaceRE = regexp.MustCompile(`\s+`)

var textEscaper = bytereplacer.New(
	"&", "&amp;",
	`'`, "&apos;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

// Normalize strips insignificant output differences from HTML:
// whitespace around block elements is removed,
// runs of whitespace outside <pre> collapse to a single space,
// attributes are sorted,
// and character references are written in a canonical form.
func (opts Options) Normalize(b []byte) []byte {
	n := &normalizer{
		opts: opts,
		tok:  html.NewTokenizerFragment(bytes.NewReader(b), "div"),
		last: html.StartTagToken,
	}
	for {
		tt := n.tok.Next()
		switch tt {
		case html.ErrorToken:
			return n.out
		case html.TextToken:
			n.text(n.tok.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			n.startTag()
		case html.EndTagToken:
			n.endTag()
		case html.CommentToken:
			if !opts.StripComments {
				n.out = append(n.out, n.tok.Raw()...)
			}
		}
		n.last = tt
		if tt == html.SelfClosingTagToken {
			n.last = html.EndTagToken
		}
	}
}

type normalizer struct {
	opts    Options
	tok     *html.Tokenizer
	out     []byte
	last    html.TokenType
	lastTag atom.Atom
	inPre   bool
}

func (n *normalizer) text(data []byte) {
	afterTag := n.last == html.EndTagToken || n.last == html.StartTagToken
	if afterTag && n.lastTag == atom.Br {
		data = bytes.TrimLeft(data, "\n")
	}
	if !n.inPre {
		data = whitespaceRE.ReplaceAll(data, []byte(" "))
		if afterTag && blockTags[n.lastTag] {
			if n.last == html.StartTagToken {
				data = bytes.TrimLeftFunc(data, unicode.IsSpace)
			} else {
				data = bytes.TrimSpace(data)
			}
		}
	}
	n.out = append(n.out, textEscaper.Replace(bytes.Clone(data))...)
}

func (n *normalizer) startTag() {
	name, hasAttr := n.tok.TagName()
	tag := atom.Lookup(name)
	if tag == atom.Pre {
		n.inPre = true
	}
	if blockTags[tag] {
		n.out = bytes.TrimRightFunc(n.out, unicode.IsSpace)
	}
	n.out = append(n.out, '<')
	n.out = append(n.out, name...)
	if hasAttr {
		n.attrs()
	}
	n.out = append(n.out, '>')
	n.lastTag = tag
}

func (n *normalizer) attrs() {
	type attribute struct {
		key   string
		value string
	}
	var attrs []attribute
	for more := true; more; {
		var k, v []byte
		k, v, more = n.tok.TagAttr()
		attrs = append(attrs, attribute{string(k), string(v)})
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].key < attrs[j].key
	})
	for _, attr := range attrs {
		n.out = append(n.out, ' ')
		n.out = append(n.out, attr.key...)
		if attr.value != "" {
			n.out = append(n.out, `="`...)
			n.out = append(n.out, html.EscapeString(attr.value)...)
			n.out = append(n.out, '"')
		}
	}
}

func (n *normalizer) endTag() {
	name, _ := n.tok.TagName()
	tag := atom.Lookup(name)
	if tag == atom.Pre {
		n.inPre = false
	} else if blockTags[tag] {
		n.out = bytes.TrimRightFunc(n.out, unicode.IsSpace)
	}
	n.out = append(n.out, "</"...)
	n.out = append(n.out, name...)
	n.out = append(n.out, '>')
	n.lastTag = tag
}

// blockTags is the set of elements around which whitespace is insignificant.
var blockTags = map[atom.Atom]bool{
	atom.Article:    true,
	atom.Aside:      true,
	atom.Blockquote: true,
	atom.Body:       true,
	atom.Div:        true,
	atom.Footer:     true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Header:     true,
	atom.Hr:         true,
	atom.Li:         true,
	atom.Main:       true,
	atom.Nav:        true,
	atom.Ol:         true,
	atom.P:          true,
	atom.Pre:        true,
	atom.Section:    true,
	atom.Table:      true,
	atom.Tbody:      true,
	atom.Td:         true,
	atom.Th:         true,
	atom.Thead:      true,
	atom.Tr:         true,
	atom.Ul:         true,
}
