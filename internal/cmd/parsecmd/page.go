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

package parsecmd

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/net/html"
	"zombiezen.com/go/mdast"
	"zombiezen.com/go/mdast/internal/config"
)

const mermaidScript = `<script type="module">
import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.esm.min.mjs";
mermaid.initialize({ startOnLoad: true });
</script>
`

// page holds the fragments that wrap a rendered document.
// A nil fragment uses the built-in default.
type page struct {
	header    []byte
	bodyStart []byte
	footer    []byte
	styles    []byte
}

// loadPage reads the fragment files named in cfg.
func loadPage(cfg config.RendererConfig) (*page, error) {
	p := new(page)
	files := []struct {
		path string
		dst  *[]byte
	}{
		{cfg.HeaderPath, &p.header},
		{cfg.BodyStartPath, &p.bodyStart},
		{cfg.FooterPath, &p.footer},
		{cfg.StylesPath, &p.styles},
	}
	for _, f := range files {
		if f.path == "" {
			continue
		}
		data, err := os.ReadFile(f.path)
		if err != nil {
			return nil, fmt.Errorf("load html template: %w", err)
		}
		*f.dst = data
	}
	return p, nil
}

// render renders doc as a complete HTML page.
func (p *page) render(doc *mdast.Document) ([]byte, error) {
	buf := new(bytes.Buffer)
	if p.header != nil {
		buf.Write(p.header)
	} else {
		buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
		fmt.Fprintf(buf, "<title>%s</title>\n", html.EscapeString(title(doc)))
		if p.styles != nil {
			buf.WriteString("<style>\n")
			buf.Write(p.styles)
			buf.WriteString("\n</style>\n")
		}
		if len(doc.Diagrams()) > 0 {
			buf.WriteString(mermaidScript)
		}
		buf.WriteString("</head>\n")
	}
	if p.bodyStart != nil {
		buf.Write(p.bodyStart)
	} else {
		buf.WriteString("<body>\n")
	}
	if err := mdast.RenderHTML(buf, doc); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	if p.footer != nil {
		buf.Write(p.footer)
	} else {
		buf.WriteString("</body>\n</html>\n")
	}
	return buf.Bytes(), nil
}

// title returns the plain text of the document's first heading.
func title(doc *mdast.Document) string {
	for _, b := range doc.Blocks {
		if h, ok := b.(*mdast.Heading); ok {
			return mdast.PlainText(h.Content)
		}
	}
	return "Document"
}
