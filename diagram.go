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
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DiagramConfig is the rendering configuration of a [Diagram]:
// the parser's [DiagramOptions] merged with any directive in the diagram body.
type DiagramConfig struct {
	Theme          string            `json:"theme"`
	FontSize       string            `json:"font_size"`
	FontFamily     string            `json:"font_family"`
	ThemeVariables map[string]string `json:"theme_variables,omitempty"`
	// Title is set by a YAML frontmatter block's title key.
	Title string `json:"title,omitempty"`
	// Options holds any other configuration keys from the directive.
	Options map[string]any `json:"options,omitempty"`
}

// ValidationState is the result of checking a diagram's syntax.
type ValidationState uint8

const (
	NotValidated ValidationState = iota
	Valid
	Invalid
)

// String returns "not_validated", "valid", or "invalid".
func (s ValidationState) String() string {
	switch s {
	case NotValidated:
		return "not_validated"
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return fmt.Sprintf("ValidationState(%d)", uint8(s))
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (s ValidationState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ValidationStatus is the outcome of validating a diagram.
// Errors is non-empty if and only if State is [Invalid].
type ValidationStatus struct {
	State  ValidationState `json:"state"`
	Errors []string        `json:"errors,omitempty"`
}

// IsValid reports whether the diagram passed validation.
func (status ValidationStatus) IsValid() bool {
	return status.State == Valid
}

// diagramTypes is the set of keywords that can begin a diagram.
var diagramTypes = []string{
	"graph",
	"flowchart",
	"sequenceDiagram",
	"classDiagram",
	"stateDiagram",
	"stateDiagram-v2",
	"erDiagram",
	"journey",
	"gantt",
	"pie",
	"requirementDiagram",
	"gitGraph",
	"mindmap",
	"timeline",
	"quadrantChart",
	"xychart-beta",
	"sankey-beta",
	"block-beta",
	"C4Context",
	"C4Container",
	"C4Component",
	"C4Dynamic",
	"C4Deployment",
}

// diagramArrows are the edge tokens that need a node on both sides.
var diagramArrows = []string{"-->", "==>", "---"}

// diagramResult is the outcome of [validateDiagram].
type diagramResult struct {
	config   DiagramConfig
	source   string
	status   ValidationStatus
	warnings []string
}

// ValidateDiagram parses any configuration directive at the start of raw,
// merges it over opts, and checks the diagram's syntax.
// Validation is heuristic:
// it catches unknown diagram types and unbalanced brackets,
// not every error a diagram renderer would report.
func ValidateDiagram(raw string, opts DiagramOptions) (DiagramConfig, ValidationStatus) {
	opts.applyDefaults()
	r := validateDiagram(raw, opts)
	return r.config, r.status
}

func validateDiagram(raw string, opts DiagramOptions) diagramResult {
	r := diagramResult{
		config: DiagramConfig{
			Theme:      opts.Theme,
			FontSize:   opts.FontSize,
			FontFamily: opts.FontFamily,
		},
		source: raw,
	}
	var errs []string
	source, directive, err := splitDiagramDirective(raw)
	if err != nil {
		errs = append(errs, err.Error())
	} else {
		r.source = source
		if directive != nil {
			r.config.merge(directive)
		}
	}

	if opts.SkipValidation {
		r.status = ValidationStatus{State: NotValidated}
		if len(errs) > 0 {
			r.status = ValidationStatus{State: Invalid, Errors: errs}
		}
		return r
	}
	syntaxErrs, warnings := checkDiagramSyntax(r.source)
	errs = append(errs, syntaxErrs...)
	if opts.Strict {
		errs = append(errs, warnings...)
	} else {
		r.warnings = warnings
	}
	if len(errs) > 0 {
		r.status = ValidationStatus{State: Invalid, Errors: errs}
	} else {
		r.status = ValidationStatus{State: Valid}
	}
	return r
}

// diagramDirective is the configuration parsed out of a diagram body.
type diagramDirective struct {
	title  string
	config map[string]any
}

// splitDiagramDirective removes a leading configuration directive from raw.
// Two forms are recognized:
// an init directive like `%%{init: {"theme": "dark"}}%%`
// on the first or second line,
// and a YAML frontmatter block delimited by "---" lines.
// If raw has no directive, splitDiagramDirective returns raw unchanged
// and a nil directive.
func splitDiagramDirective(raw string) (source string, d *diagramDirective, err error) {
	lines := strings.Split(raw, "\n")
	first := 0
	for first < len(lines) && strings.TrimSpace(lines[first]) == "" {
		first++
	}
	if first < len(lines) && strings.TrimSpace(lines[first]) == "---" {
		end := -1
		for i := first + 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == "---" {
				end = i
				break
			}
		}
		if end < 0 {
			return raw, nil, fmt.Errorf("frontmatter starting on line %d is not closed", first+1)
		}
		var fm struct {
			Title  string         `yaml:"title"`
			Config map[string]any `yaml:"config"`
		}
		if err := yaml.Unmarshal([]byte(strings.Join(lines[first+1:end], "\n")), &fm); err != nil {
			return raw, nil, fmt.Errorf("parse frontmatter: %v", err)
		}
		rest := strings.TrimSpace(strings.Join(lines[end+1:], "\n"))
		return rest, &diagramDirective{title: fm.Title, config: fm.Config}, nil
	}

	for i := 0; i < len(lines) && i < 2; i++ {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "%%{") {
			continue
		}
		end := strings.Index(line, "}%%")
		if end < 0 {
			continue
		}
		body := strings.TrimSpace(line[len("%%{"):end])
		key, _, ok := strings.Cut(body, ":")
		key = strings.TrimSpace(key)
		if !ok || (key != "init" && key != "initialize") {
			continue
		}
		var payload map[string]any
		if err := yaml.Unmarshal([]byte(body), &payload); err != nil {
			return raw, nil, fmt.Errorf("parse %s directive: %v", key, err)
		}
		config, ok := payload[key].(map[string]any)
		if !ok {
			return raw, nil, fmt.Errorf("%s directive is not a mapping", key)
		}
		rest := append(lines[:i:i], lines[i+1:]...)
		return strings.TrimSpace(strings.Join(rest, "\n")), &diagramDirective{config: config}, nil
	}
	return raw, nil, nil
}

// merge overwrites fields of c with values from the directive.
// Top-level fontSize and fontFamily keys take precedence
// over the same keys in themeVariables.
func (c *DiagramConfig) merge(d *diagramDirective) {
	if d.title != "" {
		c.Title = d.title
	}
	var fontSizeSet, fontFamilySet bool
	for k, v := range d.config {
		switch k {
		case "theme":
			c.Theme = fmt.Sprint(v)
		case "fontSize":
			c.FontSize = fmt.Sprint(v)
			fontSizeSet = true
		case "fontFamily":
			c.FontFamily = fmt.Sprint(v)
			fontFamilySet = true
		case "themeVariables":
			vars, ok := v.(map[string]any)
			if !ok {
				continue
			}
			c.ThemeVariables = make(map[string]string, len(vars))
			for vk, vv := range vars {
				c.ThemeVariables[vk] = fmt.Sprint(vv)
			}
		default:
			if c.Options == nil {
				c.Options = make(map[string]any)
			}
			c.Options[k] = v
		}
	}
	if fs, ok := c.ThemeVariables["fontSize"]; ok && !fontSizeSet {
		c.FontSize = fs
	}
	if ff, ok := c.ThemeVariables["fontFamily"]; ok && !fontFamilySet {
		c.FontFamily = ff
	}
}

// checkDiagramSyntax returns the errors and warnings found in a diagram body.
func checkDiagramSyntax(source string) (errs, warnings []string) {
	if strings.TrimSpace(source) == "" {
		return []string{"diagram is empty"}, nil
	}
	lines := strings.Split(source, "\n")

	var header string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "%%") {
			header = line
			break
		}
	}
	if !isDiagramType(header) {
		errs = append(errs, fmt.Sprintf(
			"invalid or missing diagram type; expected one of: %s",
			strings.Join(diagramTypes, ", ")))
	}

	errs = append(errs, checkBrackets(lines)...)

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "%%") {
			continue
		}
		for _, arrow := range diagramArrows {
			if line == arrow || strings.HasPrefix(line, arrow) || strings.HasSuffix(line, arrow) {
				warnings = append(warnings, fmt.Sprintf("line %d: arrow may be missing node on one side", i+1))
				break
			}
		}
	}
	return errs, warnings
}

// isDiagramType reports whether the first word of line is a diagram keyword.
func isDiagramType(line string) bool {
	word := line
	if i := strings.IndexAny(word, " \t;"); i >= 0 {
		word = word[:i]
	}
	for _, t := range diagramTypes {
		if strings.EqualFold(word, t) {
			return true
		}
	}
	return false
}

// checkBrackets reports unbalanced parentheses, brackets, and braces
// outside of double-quoted labels and comment lines.
func checkBrackets(lines []string) []string {
	type pair struct {
		open, close byte
		name        string
		plural      string
	}
	pairs := []pair{
		{'(', ')', "parenthesis", "parenthesis(es)"},
		{'[', ']', "bracket", "bracket(s)"},
		{'{', '}', "brace", "brace(s)"},
	}
	counts := make([]int, len(pairs))
	var errs []string
	for lineno, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "%%") {
			continue
		}
		inQuote := false
		for i := 0; i < len(line); i++ {
			c := line[i]
			if c == '"' {
				inQuote = !inQuote
				continue
			}
			if inQuote {
				continue
			}
			for j, p := range pairs {
				switch c {
				case p.open:
					counts[j]++
				case p.close:
					counts[j]--
					if counts[j] < 0 {
						errs = append(errs, fmt.Sprintf("line %d: unmatched closing %s", lineno+1, p.name))
						counts[j] = 0
					}
				}
			}
		}
	}
	for j, p := range pairs {
		if counts[j] > 0 {
			errs = append(errs, fmt.Sprintf("%d unmatched opening %s", counts[j], p.plural))
		}
	}
	return errs
}
