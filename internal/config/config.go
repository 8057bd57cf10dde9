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

// Package config provides the configuration file for the mdast command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
	"zombiezen.com/go/mdast"
)

// Config holds the mdast command configuration.
type Config struct {
	Parser   mdast.Config   `yaml:"parser"`
	Renderer RendererConfig `yaml:"renderer"`
	Output   OutputConfig   `yaml:"output"`
}

// RendererConfig holds the paths of the fragments
// that wrap the rendered HTML page.
// An empty path uses the built-in fragment.
type RendererConfig struct {
	HeaderPath    string `yaml:"html_header_path,omitempty"`
	BodyStartPath string `yaml:"html_body_start_path,omitempty"`
	FooterPath    string `yaml:"html_footer_path,omitempty"`
	StylesPath    string `yaml:"styles_css_path,omitempty"`
}

// OutputConfig selects which files the parse command writes.
type OutputConfig struct {
	Directory        string `yaml:"directory"`
	ASTDebugFilename string `yaml:"ast_debug_filename"`
	ASTJSONFilename  string `yaml:"ast_json_filename"`
	HTMLFilename     string `yaml:"html_filename"`
	EnableASTDebug   bool   `yaml:"enable_ast_debug"`
	EnableASTJSON    bool   `yaml:"enable_ast_json"`
	EnableHTML       bool   `yaml:"enable_html"`
}

// Environment variables that override values from the configuration file.
const (
	EnvOutputDir    = "MDAST_OUTPUT_DIR"
	EnvDiagramTheme = "MDAST_DIAGRAM_THEME"
	EnvStrict       = "MDAST_STRICT"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Parser: mdast.DefaultConfig(),
		Output: OutputConfig{
			Directory:        "output",
			ASTDebugFilename: "ast.txt",
			ASTJSONFilename:  "ast.json",
			HTMLFilename:     "output.html",
			EnableASTDebug:   true,
			EnableASTJSON:    true,
			EnableHTML:       true,
		},
	}
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "mdast", "config.yml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".mdast", "config.yml")
	}
	return filepath.Join(home, ".config", "mdast", "config.yml")
}

// Load reads the configuration from the given path.
// Fields absent from the file keep their default values.
// If the file does not exist, Load returns the default configuration.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadWithEnv loads the configuration from the given path
// and applies any environment variable overrides.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv overrides configuration values from environment variables
// that are set and non-empty.
func (c *Config) LoadFromEnv() error {
	if dir := os.Getenv(EnvOutputDir); dir != "" {
		c.Output.Directory = dir
	}
	if theme := os.Getenv(EnvDiagramTheme); theme != "" {
		c.Parser.Diagram.Theme = theme
	}
	if s := os.Getenv(EnvStrict); s != "" {
		strict, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvStrict, err)
		}
		c.Parser.Diagram.Strict = strict
	}
	return nil
}

// Validate checks that the configuration can be used.
func (c *Config) Validate() error {
	if err := c.Parser.Validate(); err != nil {
		return err
	}
	if c.Output.Directory == "" {
		return errors.New("output.directory is required")
	}
	files := []struct {
		name    string
		value   string
		enabled bool
	}{
		{"output.ast_debug_filename", c.Output.ASTDebugFilename, c.Output.EnableASTDebug},
		{"output.ast_json_filename", c.Output.ASTJSONFilename, c.Output.EnableASTJSON},
		{"output.html_filename", c.Output.HTMLFilename, c.Output.EnableHTML},
	}
	for _, f := range files {
		if !f.enabled {
			continue
		}
		if f.value == "" {
			return fmt.Errorf("%s is required", f.name)
		}
		if filepath.Base(f.value) != f.value {
			return fmt.Errorf("%s must be a file name, not a path", f.name)
		}
	}
	return nil
}

// Save writes the configuration to the given path,
// creating its directory if necessary.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
