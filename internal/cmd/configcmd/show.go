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
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"zombiezen.com/go/mdast/internal/cmd/cmdutil"
	"zombiezen.com/go/mdast/internal/config"
)

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the configuration in effect as YAML,
after applying environment variable and flag overrides.`,
		Example: `  # Show current config
  mdast config show`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShow(cmdutil.FromCommand(cmd))
		},
	}

	return cmd
}

func runShow(opts *cmdutil.Options) error {
	opts.ApplyColor()
	cfg, err := opts.Config(nil)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	path := opts.ResolvedConfigPath()
	dim := color.New(color.Faint)
	_, _ = dim.Fprintf(opts.Stdout, "# Config file: %s", path)
	if _, err := os.Stat(path); err != nil {
		_, _ = dim.Fprint(opts.Stdout, " (not found)")
	}
	fmt.Fprintln(opts.Stdout)
	for _, env := range []string{config.EnvOutputDir, config.EnvDiagramTheme, config.EnvStrict} {
		if v := os.Getenv(env); v != "" {
			_, _ = dim.Fprintf(opts.Stdout, "# %s=%s\n", env, v)
		}
	}
	_, err = opts.Stdout.Write(data)
	return err
}
