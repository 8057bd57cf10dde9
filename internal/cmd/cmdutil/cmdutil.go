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

// Package cmdutil holds the state shared by the mdast subcommands.
package cmdutil

import (
	"errors"
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"zombiezen.com/go/mdast/internal/config"
	"zombiezen.com/go/mdast/internal/logger"
)

// ErrProblemsFound is returned by commands that have already reported
// problems to the user and only need to exit with a failure status.
var ErrProblemsFound = errors.New("problems found")

// StdinName is the file argument that reads standard input.
const StdinName = "-"

// Options holds the global flags and I/O streams for a command.
type Options struct {
	ConfigPath string
	OutputDir  string
	NoColor    bool
	Verbose    bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// AddPersistentFlags registers the global flags on the root command.
func AddPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default: "+config.DefaultPath()+")")
	cmd.PersistentFlags().StringP("output", "o", "", "output directory (overrides config)")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

// FromCommand reads the global flags and streams of cmd.
func FromCommand(cmd *cobra.Command) *Options {
	opts := &Options{
		Stdin:  cmd.InOrStdin(),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	}
	opts.ConfigPath, _ = cmd.Flags().GetString("config")
	opts.OutputDir, _ = cmd.Flags().GetString("output")
	opts.NoColor, _ = cmd.Flags().GetBool("no-color")
	opts.Verbose, _ = cmd.Flags().GetBool("verbose")
	return opts
}

// ApplyColor disables colored output if requested.
func (opts *Options) ApplyColor() {
	if opts.NoColor {
		color.NoColor = true
	}
}

// ResolvedConfigPath returns the config file path in effect.
func (opts *Options) ResolvedConfigPath() string {
	if opts.ConfigPath != "" {
		return opts.ConfigPath
	}
	return config.DefaultPath()
}

// Config loads and validates the configuration,
// applying environment and flag overrides.
func (opts *Options) Config(log *logger.Logger) (*config.Config, error) {
	path := opts.ResolvedConfigPath()
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.OutputDir != "" {
		cfg.Output.Directory = opts.OutputDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if log != nil {
		_, statErr := os.Stat(path)
		log.ConfigLoaded(path, statErr == nil)
	}
	return cfg, nil
}

// Logger returns a logger that writes to the command's standard error.
func (opts *Options) Logger() *logger.Logger {
	level := charmlog.InfoLevel
	if opts.Verbose {
		level = charmlog.DebugLevel
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	return logger.NewWithLevel(stderr, level)
}

// ReadSource reads the named file, or standard input if name is [StdinName].
func (opts *Options) ReadSource(name string) ([]byte, error) {
	if name == StdinName {
		stdin := opts.Stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read standard input: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}
	return data, nil
}

// DisplayName returns the name used for a file argument in messages.
func DisplayName(name string) string {
	if name == StdinName {
		return "<stdin>"
	}
	return name
}
