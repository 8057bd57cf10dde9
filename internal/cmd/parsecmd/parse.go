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

// Package parsecmd provides the parse command.
package parsecmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"zombiezen.com/go/mdast"
	"zombiezen.com/go/mdast/internal/cmd/cmdutil"
	"zombiezen.com/go/mdast/internal/config"
	"zombiezen.com/go/mdast/internal/logger"
)

// Output formats accepted by the --print flag.
const (
	PrintJSON  = "json"
	PrintHTML  = "html"
	PrintDebug = "debug"
)

type parseOptions struct {
	*cmdutil.Options
	print string
}

// NewCmdParse creates the parse command.
func NewCmdParse() *cobra.Command {
	opts := &parseOptions{}

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a Markdown file and write its syntax tree",
		Long: `Parse a Markdown file and write the enabled outputs
(JSON syntax tree, HTML page, debug dump) to the output directory.

Use "-" to read from standard input.`,
		Example: `  # Write ast.json, ast.txt, and output.html to ./output
  mdast parse README.md

  # Print the JSON syntax tree instead of writing files
  mdast parse --print json README.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Options = cmdutil.FromCommand(cmd)
			return runParse(args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.print, "print", "p", "", "print one output (json, html, debug) to stdout instead of writing files")

	return cmd
}

func runParse(name string, opts *parseOptions) error {
	opts.ApplyColor()
	log := opts.Logger()
	cfg, err := opts.Config(log)
	if err != nil {
		return err
	}
	switch opts.print {
	case "", PrintJSON, PrintHTML, PrintDebug:
	default:
		return fmt.Errorf("invalid --print value %q (must be %s, %s, or %s)", opts.print, PrintJSON, PrintHTML, PrintDebug)
	}

	source, err := opts.ReadSource(name)
	if err != nil {
		return err
	}
	start := time.Now()
	doc := (&mdast.Parser{Config: cfg.Parser}).Parse(source)
	log.ParseCompleted(cmdutil.DisplayName(name), doc, time.Since(start))
	for _, d := range doc.Diagnostics {
		log.Diagnostic(cmdutil.DisplayName(name), d)
	}

	if opts.print != "" {
		data, err := encode(opts.print, doc, cfg)
		if err != nil {
			return err
		}
		if _, err := opts.Stdout.Write(data); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}
	return writeOutputs(opts, doc, cfg, log)
}

// writeOutputs writes every enabled output to the output directory
// and reports the written files on stdout.
func writeOutputs(opts *parseOptions, doc *mdast.Document, cfg *config.Config, log *logger.Logger) error {
	outputs := []struct {
		enabled  bool
		format   string
		filename string
	}{
		{cfg.Output.EnableASTJSON, PrintJSON, cfg.Output.ASTJSONFilename},
		{cfg.Output.EnableASTDebug, PrintDebug, cfg.Output.ASTDebugFilename},
		{cfg.Output.EnableHTML, PrintHTML, cfg.Output.HTMLFilename},
	}
	if err := os.MkdirAll(cfg.Output.Directory, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	green := color.New(color.FgGreen)
	for _, out := range outputs {
		if !out.enabled {
			continue
		}
		data, err := encode(out.format, doc, cfg)
		if err != nil {
			return err
		}
		path := filepath.Join(cfg.Output.Directory, out.filename)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s output: %w", out.format, err)
		}
		size := humanize.Bytes(uint64(len(data)))
		log.OutputWritten(path, size)
		_, _ = green.Fprint(opts.Stdout, "✓ ")
		fmt.Fprintf(opts.Stdout, "%s (%s)\n", path, size)
	}
	return nil
}

// encode serializes doc in the given output format.
func encode(format string, doc *mdast.Document, cfg *config.Config) ([]byte, error) {
	switch format {
	case PrintJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal syntax tree: %w", err)
		}
		return append(data, '\n'), nil
	case PrintDebug:
		return []byte(debugDump(doc)), nil
	case PrintHTML:
		page, err := loadPage(cfg.Renderer)
		if err != nil {
			return nil, err
		}
		return page.render(doc)
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// debugDump pretty-prints each top-level block without color.
func debugDump(doc *mdast.Document) string {
	printer := pp.New()
	printer.SetColoringEnabled(false)
	var buf []byte
	for i, b := range doc.Blocks {
		buf = fmt.Appendf(buf, "%d: %s\n", i, printer.Sprint(b))
	}
	if len(doc.References) > 0 {
		buf = fmt.Appendf(buf, "references: %s\n", printer.Sprint(doc.References))
	}
	for _, d := range doc.Diagnostics {
		buf = fmt.Appendf(buf, "diagnostic: %v\n", d)
	}
	return string(buf)
}
