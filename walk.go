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

// A Cursor describes a [Node] encountered during [Walk].
type Cursor struct {
	node   Node
	parent Node
}

// Node returns the current [Node].
func (c *Cursor) Node() Node {
	return c.node
}

// Parent returns the parent of the current [Node]
// (as returned by [*Cursor.Node])
// or nil if the current node is the root.
func (c *Cursor) Parent() Node {
	return c.parent
}

// WalkOptions is the set of parameters to [Walk].
type WalkOptions struct {
	// If Pre is not nil, it is called for each node before the node's children are traversed (pre-order).
	// If Pre returns false, no children are traversed, and Post is not called for that node.
	Pre func(c *Cursor) bool
	// If Post is not nil, it is called for each node after the node's children are traversed (post-order).
	// If Post returns false, traversal is terminated and Walk returns immediately.
	Post func(c *Cursor) bool
}

// Walk traverses a [Node] recursively, starting with root,
// and calling [WalkOptions.Pre] and [WalkOptions.Post].
// Children are visited in the order returned by [Children].
func Walk(root Node, opts *WalkOptions) {
	type walkFrame struct {
		node   Node
		parent Node
		post   bool
	}

	stack := []walkFrame{{node: root}}
	cursor := new(Cursor)
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if curr.post {
			if opts.Post != nil {
				cursor.node = curr.node
				cursor.parent = curr.parent
				if !opts.Post(cursor) {
					break
				}
			}
			continue
		}

		if opts.Pre != nil {
			cursor.node = curr.node
			cursor.parent = curr.parent
			if !opts.Pre(cursor) {
				continue
			}
		}
		curr.post = true
		stack = append(stack, curr)
		children := Children(curr.node)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, walkFrame{
				parent: curr.node,
				node:   children[i],
			})
		}
	}
}

// Children returns the direct children of n in source order.
// Table cells are flattened: the header cells' inlines come first,
// followed by each row's cells' inlines.
// A list item's inline content comes before its nested lists.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Heading:
		return inlineNodes(nil, n.Content)
	case *Paragraph:
		return inlineNodes(nil, n.Content)
	case *List:
		nodes := make([]Node, 0, len(n.Items))
		for _, item := range n.Items {
			nodes = append(nodes, item)
		}
		return nodes
	case *ListItem:
		nodes := inlineNodes(nil, n.Content)
		for _, child := range n.Children {
			nodes = append(nodes, child)
		}
		return nodes
	case *Table:
		var nodes []Node
		for _, cell := range n.Header {
			nodes = inlineNodes(nodes, cell)
		}
		for _, row := range n.Rows {
			for _, cell := range row {
				nodes = inlineNodes(nodes, cell)
			}
		}
		return nodes
	case *Blockquote:
		nodes := make([]Node, 0, len(n.Content))
		for _, b := range n.Content {
			nodes = append(nodes, b)
		}
		return nodes
	case *Bold:
		return inlineNodes(nil, n.Content)
	case *Italic:
		return inlineNodes(nil, n.Content)
	case *Strikethrough:
		return inlineNodes(nil, n.Content)
	case *Link:
		return inlineNodes(nil, n.Text)
	case *ReferenceLink:
		return inlineNodes(nil, n.Text)
	default:
		return nil
	}
}

func inlineNodes(dst []Node, seq []Inline) []Node {
	for _, in := range seq {
		dst = append(dst, in)
	}
	return dst
}
