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
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Default values used in place of zero [Config] fields.
const (
	DefaultMaxHeadingLevel = 6
	DefaultFenceChar       = "`"
	DefaultFenceLength     = 3
	DefaultDiagramLanguage = "mermaid"

	DefaultDiagramTheme      = "default"
	DefaultDiagramFontSize   = "16px"
	DefaultDiagramFontFamily = "trebuchet ms, verdana, arial"
)

// Config is the set of options for a [Parser].
// The zero value uses the defaults for every field.
type Config struct {
	// MaxHeadingLevel is the largest number of '#' markers
	// a heading may use without a diagnostic.
	// Zero means 6.
	MaxHeadingLevel int `yaml:"max_heading_level" json:"max_heading_level"`
	// FenceChar is the character that opens and closes fenced blocks.
	// Empty means "`".
	FenceChar string `yaml:"fence_char" json:"fence_char"`
	// FenceLength is the minimum length of a fence.
	// Zero means 3.
	FenceLength int `yaml:"fence_length" json:"fence_length"`
	// DiagramLanguage is the info string language that marks a fenced block
	// as a diagram.
	// It is compared case-insensitively.
	// Empty means "mermaid".
	DiagramLanguage string `yaml:"diagram_language" json:"diagram_language"`

	Diagram DiagramOptions `yaml:"diagram" json:"diagram"`
}

// DiagramOptions holds the defaults and checks applied to diagram blocks.
type DiagramOptions struct {
	Theme      string `yaml:"theme" json:"theme"`
	FontSize   string `yaml:"font_size" json:"font_size"`
	FontFamily string `yaml:"font_family" json:"font_family"`
	// SkipValidation disables syntax checks.
	// Diagrams are reported as [NotValidated].
	SkipValidation bool `yaml:"skip_validation" json:"skip_validation"`
	// Strict treats diagram warnings as errors.
	Strict bool `yaml:"strict" json:"strict"`
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() Config {
	var c Config
	c.applyDefaults()
	return c
}

// applyDefaults fills zero or out-of-range fields with defaults.
func (c *Config) applyDefaults() {
	if c.MaxHeadingLevel <= 0 || c.MaxHeadingLevel > 6 {
		c.MaxHeadingLevel = DefaultMaxHeadingLevel
	}
	if utf8.RuneCountInString(c.FenceChar) != 1 || !isFenceRune(c.fenceRune()) {
		c.FenceChar = DefaultFenceChar
	}
	if c.FenceLength <= 0 {
		c.FenceLength = DefaultFenceLength
	}
	if strings.TrimSpace(c.DiagramLanguage) == "" {
		c.DiagramLanguage = DefaultDiagramLanguage
	}
	c.Diagram.applyDefaults()
}

func (o *DiagramOptions) applyDefaults() {
	if o.Theme == "" {
		o.Theme = DefaultDiagramTheme
	}
	if o.FontSize == "" {
		o.FontSize = DefaultDiagramFontSize
	}
	if o.FontFamily == "" {
		o.FontFamily = DefaultDiagramFontFamily
	}
}

func (c *Config) fenceRune() rune {
	r, _ := utf8.DecodeRuneInString(c.FenceChar)
	return r
}

// isFenceRune reports whether c can be used as a fence character.
// Characters that start other constructs would make fences ambiguous.
func isFenceRune(c rune) bool {
	return c == '`' || c == '~'
}

// Validate reports any fields that are set to an unusable value.
// Zero fields are valid, since they select the defaults.
// [Parser.Parse] never fails:
// it replaces invalid values with defaults.
func (c Config) Validate() error {
	var errs []error
	if c.MaxHeadingLevel < 0 || c.MaxHeadingLevel > 6 {
		errs = append(errs, fmt.Errorf("max heading level %d out of range [1, 6]", c.MaxHeadingLevel))
	}
	if c.FenceChar != "" && (utf8.RuneCountInString(c.FenceChar) != 1 || !isFenceRune(c.fenceRune())) {
		errs = append(errs, fmt.Errorf("fence char %q must be \"`\" or \"~\"", c.FenceChar))
	}
	if c.FenceLength < 0 {
		errs = append(errs, fmt.Errorf("fence length %d must be at least 1", c.FenceLength))
	}
	if strings.ContainsAny(c.DiagramLanguage, " \t") {
		errs = append(errs, fmt.Errorf("diagram language %q contains whitespace", c.DiagramLanguage))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid parser config: %w", err)
	}
	return nil
}
