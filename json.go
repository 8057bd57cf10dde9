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

import "encoding/json"

// Every node marshals to a JSON object
// whose "type" field is the node's kind, like {"type":"heading",...}.

// MarshalJSON implements [json.Marshaler].
func (h *Heading) MarshalJSON() ([]byte, error) {
	type headingJSON Heading
	return json.Marshal(struct {
		Type string `json:"type"`
		*headingJSON
	}{HeadingKind.String(), (*headingJSON)(h)})
}

// MarshalJSON implements [json.Marshaler].
func (p *Paragraph) MarshalJSON() ([]byte, error) {
	type paragraphJSON Paragraph
	return json.Marshal(struct {
		Type string `json:"type"`
		*paragraphJSON
	}{ParagraphKind.String(), (*paragraphJSON)(p)})
}

// MarshalJSON implements [json.Marshaler].
func (l *List) MarshalJSON() ([]byte, error) {
	type listJSON List
	return json.Marshal(struct {
		Type string `json:"type"`
		*listJSON
	}{ListKind.String(), (*listJSON)(l)})
}

// MarshalJSON implements [json.Marshaler].
func (l *ListItem) MarshalJSON() ([]byte, error) {
	type listItemJSON ListItem
	return json.Marshal(struct {
		Type string `json:"type"`
		*listItemJSON
	}{ListItemKind.String(), (*listItemJSON)(l)})
}

// MarshalJSON implements [json.Marshaler].
func (c *CodeBlock) MarshalJSON() ([]byte, error) {
	type codeBlockJSON CodeBlock
	return json.Marshal(struct {
		Type string `json:"type"`
		*codeBlockJSON
	}{CodeBlockKind.String(), (*codeBlockJSON)(c)})
}

// MarshalJSON implements [json.Marshaler].
func (d *Diagram) MarshalJSON() ([]byte, error) {
	type diagramJSON Diagram
	return json.Marshal(struct {
		Type string `json:"type"`
		*diagramJSON
	}{DiagramKind.String(), (*diagramJSON)(d)})
}

// MarshalJSON implements [json.Marshaler].
func (t *Table) MarshalJSON() ([]byte, error) {
	type tableJSON Table
	return json.Marshal(struct {
		Type string `json:"type"`
		*tableJSON
	}{TableKind.String(), (*tableJSON)(t)})
}

// MarshalJSON implements [json.Marshaler].
func (b *Blockquote) MarshalJSON() ([]byte, error) {
	type blockquoteJSON Blockquote
	return json.Marshal(struct {
		Type string `json:"type"`
		*blockquoteJSON
	}{BlockquoteKind.String(), (*blockquoteJSON)(b)})
}

// MarshalJSON implements [json.Marshaler].
func (h *HorizontalRule) MarshalJSON() ([]byte, error) {
	type horizontalRuleJSON HorizontalRule
	return json.Marshal(struct {
		Type string `json:"type"`
		*horizontalRuleJSON
	}{HorizontalRuleKind.String(), (*horizontalRuleJSON)(h)})
}

// MarshalJSON implements [json.Marshaler].
func (t *Text) MarshalJSON() ([]byte, error) {
	type textJSON Text
	return json.Marshal(struct {
		Type string `json:"type"`
		*textJSON
	}{TextKind.String(), (*textJSON)(t)})
}

// MarshalJSON implements [json.Marshaler].
func (b *Bold) MarshalJSON() ([]byte, error) {
	type boldJSON Bold
	return json.Marshal(struct {
		Type string `json:"type"`
		*boldJSON
	}{BoldKind.String(), (*boldJSON)(b)})
}

// MarshalJSON implements [json.Marshaler].
func (i *Italic) MarshalJSON() ([]byte, error) {
	type italicJSON Italic
	return json.Marshal(struct {
		Type string `json:"type"`
		*italicJSON
	}{ItalicKind.String(), (*italicJSON)(i)})
}

// MarshalJSON implements [json.Marshaler].
func (s *Strikethrough) MarshalJSON() ([]byte, error) {
	type strikethroughJSON Strikethrough
	return json.Marshal(struct {
		Type string `json:"type"`
		*strikethroughJSON
	}{StrikethroughKind.String(), (*strikethroughJSON)(s)})
}

// MarshalJSON implements [json.Marshaler].
func (c *Code) MarshalJSON() ([]byte, error) {
	type codeJSON Code
	return json.Marshal(struct {
		Type string `json:"type"`
		*codeJSON
	}{CodeKind.String(), (*codeJSON)(c)})
}

// MarshalJSON implements [json.Marshaler].
func (l *Link) MarshalJSON() ([]byte, error) {
	type linkJSON Link
	return json.Marshal(struct {
		Type string `json:"type"`
		*linkJSON
	}{LinkKind.String(), (*linkJSON)(l)})
}

// MarshalJSON implements [json.Marshaler].
func (i *Image) MarshalJSON() ([]byte, error) {
	type imageJSON Image
	return json.Marshal(struct {
		Type string `json:"type"`
		*imageJSON
	}{ImageKind.String(), (*imageJSON)(i)})
}

// MarshalJSON implements [json.Marshaler].
func (r *ReferenceLink) MarshalJSON() ([]byte, error) {
	type referenceLinkJSON ReferenceLink
	return json.Marshal(struct {
		Type string `json:"type"`
		*referenceLinkJSON
	}{ReferenceLinkKind.String(), (*referenceLinkJSON)(r)})
}
