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

package configcmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"zombiezen.com/go/mdast/internal/cmd/cmdutil"
	"zombiezen.com/go/mdast/internal/config"
)

type initOptions struct {
	*cmdutil.Options
	force bool
}

// NewCmdInit creates the config init command.
func NewCmdInit() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default settings",
		Example: `  # Create ~/.config/mdast/config.yml
  mdast config init`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Options = cmdutil.FromCommand(cmd)
			return runInit(opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "overwrite an existing config file")

	return cmd
}

func runInit(opts *initOptions) error {
	opts.ApplyColor()
	path := opts.ResolvedConfigPath()
	if !opts.force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("check config file: %w", err)
		}
	}
	if err := config.Default().Save(path); err != nil {
		return err
	}
	_, _ = color.New(color.FgGreen).Fprint(opts.Stdout, "✓ ")
	fmt.Fprintf(opts.Stdout, "Wrote %s\n", path)
	return nil
}
