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

package mdast_test

import (
	"fmt"
	"os"

	"zombiezen.com/go/mdast"
)

func Example() {
	// Convert Markdown to a syntax tree.
	doc := mdast.Parse([]byte("Hello, **World**!\n"))
	// Render syntax tree to HTML.
	mdast.RenderHTML(os.Stdout, doc)
	// Output:
	// <p>Hello, <strong>World</strong>!</p>
}

func Example_references() {
	doc := mdast.Parse([]byte(
		"Hello, [World][]!\n" +
			"\n" +
			"[World]: https://www.example.com/\n",
	))
	mdast.RenderHTML(os.Stdout, doc)
	// Output:
	// <p>Hello, <a href="https://www.example.com/">World</a>!</p>
}

func ExampleDocument_diagnostics() {
	doc := mdast.Parse([]byte("####### Too deep\n\n```\nunclosed\n"))
	for _, d := range doc.Diagnostics {
		fmt.Println(d)
	}
	// Output:
	// line 1:1: heading level 7 exceeds maximum of 6
	// line 3: unterminated code fence
}

func ExampleParseInline() {
	inlines, _ := mdast.ParseInline("**a *b* c**", nil)
	for _, in := range inlines {
		fmt.Println(in.Kind())
	}
	fmt.Println(mdast.PlainText(inlines))
	// Output:
	// bold
	// a b c
}

func ExampleValidateDiagram() {
	const raw = `%%{init: {"theme": "dark"}}%%` + "\n" +
		"graph TD\n" +
		"  A --> B(\n"
	config, status := mdast.ValidateDiagram(raw, mdast.DiagramOptions{})
	fmt.Println(config.Theme)
	fmt.Println(status.State)
	for _, msg := range status.Errors {
		fmt.Println(msg)
	}
	// Output:
	// dark
	// invalid
	// 1 unmatched opening parenthesis(es)
}

func ExampleWalk() {
	doc := mdast.Parse([]byte("[a](/a) and [b](/b)\n\n- [c](/c)\n"))
	for _, b := range doc.Blocks {
		mdast.Walk(b, &mdast.WalkOptions{
			Pre: func(c *mdast.Cursor) bool {
				if link, ok := c.Node().(*mdast.Link); ok {
					fmt.Println(link.Destination)
				}
				return true
			},
		})
	}
	// Output:
	// /a
	// /b
	// /c
}
