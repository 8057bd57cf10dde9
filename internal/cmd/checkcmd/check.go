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

// Package checkcmd provides the check command.
package checkcmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"zombiezen.com/go/mdast"
	"zombiezen.com/go/mdast/internal/cmd/cmdutil"
)

// NewCmdCheck creates the check command.
func NewCmdCheck() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Report problems in Markdown files",
		Long: `Parse Markdown files and print their diagnostics:
unterminated fences, malformed table rows, unresolved references,
invalid headings, and diagram validation errors.

The command exits with a non-zero status if any problems are found.
Use "-" to read from standard input.`,
		Example: `  # Check every Markdown file in the docs directory
  mdast check docs/*.md`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args, cmdutil.FromCommand(cmd))
		},
	}
	return cmd
}

// summary counts the diagnostics found across all files.
type summary struct {
	files    int
	errors   int
	warnings int
}

func runCheck(names []string, opts *cmdutil.Options) error {
	opts.ApplyColor()
	cfg, err := opts.Config(opts.Logger())
	if err != nil {
		return err
	}
	parser := &mdast.Parser{Config: cfg.Parser}
	var sum summary
	for _, name := range names {
		source, err := opts.ReadSource(name)
		if err != nil {
			return err
		}
		doc := parser.Parse(source)
		sum.files++
		for _, d := range doc.Diagnostics {
			if d.Kind.IsWarning() {
				sum.warnings++
			} else {
				sum.errors++
			}
			printDiagnostic(opts.Stdout, cmdutil.DisplayName(name), d)
		}
	}
	printSummary(opts.Stdout, sum)
	if sum.errors+sum.warnings > 0 {
		return cmdutil.ErrProblemsFound
	}
	return nil
}

// printDiagnostic prints d in the conventional file:line:column form.
func printDiagnostic(w io.Writer, file string, d mdast.Diagnostic) {
	bold := color.New(color.Bold)
	pos := fmt.Sprintf("%s:%d:", file, d.Line)
	if d.Column > 0 {
		pos += fmt.Sprintf("%d:", d.Column)
	}
	_, _ = bold.Fprint(w, pos)
	if d.Kind.IsWarning() {
		_, _ = color.New(color.FgYellow).Fprint(w, " warning")
	} else {
		_, _ = color.New(color.FgRed).Fprint(w, " error")
	}
	fmt.Fprintf(w, ": %s ", d.Message)
	_, _ = color.New(color.Faint).Fprintf(w, "[%v]\n", d.Kind)
}

func printSummary(w io.Writer, sum summary) {
	if sum.errors+sum.warnings == 0 {
		_, _ = color.New(color.FgGreen).Fprintf(w, "✓ %s clean\n", plural(sum.files, "file"))
		return
	}
	fmt.Fprintf(w, "\n%s, %s in %s\n",
		plural(sum.errors, "error"), plural(sum.warnings, "warning"), plural(sum.files, "file"))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
