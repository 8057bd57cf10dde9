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

// Package fmtcmd provides the fmt command.
package fmtcmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"zombiezen.com/go/mdast"
	"zombiezen.com/go/mdast/format"
	"zombiezen.com/go/mdast/internal/cmd/cmdutil"
)

type fmtOptions struct {
	*cmdutil.Options
	write bool
}

// NewCmdFmt creates the fmt command.
func NewCmdFmt() *cobra.Command {
	opts := &fmtOptions{}

	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Reformat a Markdown file",
		Long: `Parse a Markdown file and print it in normalized form.

Use "-" to read from standard input.`,
		Example: `  # Rewrite a file in place
  mdast fmt -w README.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Options = cmdutil.FromCommand(cmd)
			return runFmt(args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "write result to the source file instead of stdout")

	return cmd
}

func runFmt(name string, opts *fmtOptions) error {
	if opts.write && name == cmdutil.StdinName {
		return errors.New("cannot use --write with standard input")
	}
	log := opts.Logger()
	cfg, err := opts.Config(log)
	if err != nil {
		return err
	}
	source, err := opts.ReadSource(name)
	if err != nil {
		return err
	}
	doc := (&mdast.Parser{Config: cfg.Parser}).Parse(source)
	for _, d := range doc.Diagnostics {
		log.Diagnostic(cmdutil.DisplayName(name), d)
	}
	buf := new(bytes.Buffer)
	if err := format.Format(buf, doc); err != nil {
		return fmt.Errorf("format %s: %w", cmdutil.DisplayName(name), err)
	}
	if !opts.write {
		if _, err := opts.Stdout.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("format %s: %w", cmdutil.DisplayName(name), err)
		}
		return nil
	}
	if bytes.Equal(buf.Bytes(), source) {
		return nil
	}
	info, err := os.Stat(name)
	if err != nil {
		return fmt.Errorf("format %s: %w", name, err)
	}
	if err := os.WriteFile(name, buf.Bytes(), info.Mode().Perm()); err != nil {
		return fmt.Errorf("format %s: %w", name, err)
	}
	return nil
}
