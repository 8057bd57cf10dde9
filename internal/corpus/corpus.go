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

// Package corpus provides a set of Markdown documents
// paired with their expected HTML rendering.
package corpus

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

// Example is a single document in the corpus.
type Example struct {
	Name     string
	Section  string
	Markdown string
	HTML     string
}

//go:embed corpus.json
var corpusData []byte

// Load returns the examples in the corpus.
func Load() ([]Example, error) {
	var examples []Example
	if err := json.Unmarshal(corpusData, &examples); err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	return examples, nil
}

// Sections returns the distinct section names of examples
// in order of first appearance.
func Sections(examples []Example) []string {
	var sections []string
	seen := make(map[string]bool)
	for _, ex := range examples {
		if !seen[ex.Section] {
			seen[ex.Section] = true
			sections = append(sections, ex.Section)
		}
	}
	return sections
}
