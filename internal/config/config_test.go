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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zombiezen.com/go/mdast"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, mdast.DefaultConfig(), cfg.Parser)
	assert.Equal(t, "output", cfg.Output.Directory)
	assert.Equal(t, "ast.json", cfg.Output.ASTJSONFilename)
	assert.Equal(t, "ast.txt", cfg.Output.ASTDebugFilename)
	assert.Equal(t, "output.html", cfg.Output.HTMLFilename)
	assert.True(t, cfg.Output.EnableASTJSON)
	assert.True(t, cfg.Output.EnableASTDebug)
	assert.True(t, cfg.Output.EnableHTML)
	assert.Empty(t, cfg.Renderer.HeaderPath)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{
			name:   "valid config",
			modify: func(*Config) {},
		},
		{
			name:   "bad heading level",
			modify: func(c *Config) { c.Parser.MaxHeadingLevel = 9 },
			errMsg: "invalid parser config",
		},
		{
			name:   "bad fence char",
			modify: func(c *Config) { c.Parser.FenceChar = "#" },
			errMsg: "fence char",
		},
		{
			name:   "missing output directory",
			modify: func(c *Config) { c.Output.Directory = "" },
			errMsg: "output.directory is required",
		},
		{
			name:   "missing html filename",
			modify: func(c *Config) { c.Output.HTMLFilename = "" },
			errMsg: "output.html_filename is required",
		},
		{
			name: "disabled output needs no filename",
			modify: func(c *Config) {
				c.Output.HTMLFilename = ""
				c.Output.EnableHTML = false
			},
		},
		{
			name:   "filename with directory",
			modify: func(c *Config) { c.Output.ASTJSONFilename = "sub/ast.json" },
			errMsg: "output.ast_json_filename must be a file name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := `parser:
  max_heading_level: 3
  diagram:
    theme: dark
output:
  directory: build
  enable_ast_debug: false
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Parser.MaxHeadingLevel)
	assert.Equal(t, "dark", cfg.Parser.Diagram.Theme)
	assert.Equal(t, mdast.DefaultDiagramFontSize, cfg.Parser.Diagram.FontSize)
	assert.Equal(t, mdast.DefaultDiagramLanguage, cfg.Parser.DiagramLanguage)
	assert.Equal(t, "build", cfg.Output.Directory)
	assert.False(t, cfg.Output.EnableASTDebug)
	assert.True(t, cfg.Output.EnableHTML)
	assert.Equal(t, "output.html", cfg.Output.HTMLFilename)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("parser: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yml")
	cfg := Default()
	cfg.Parser.FenceChar = "~"
	cfg.Parser.Diagram.Strict = true
	cfg.Renderer.StylesPath = "assets/styles.css"
	cfg.Output.EnableHTML = false

	require.NoError(t, cfg.Save(path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv(EnvOutputDir, "/tmp/out")
	t.Setenv(EnvDiagramTheme, "forest")
	t.Setenv(EnvStrict, "true")

	cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out", cfg.Output.Directory)
	assert.Equal(t, "forest", cfg.Parser.Diagram.Theme)
	assert.True(t, cfg.Parser.Diagram.Strict)
}

func TestLoadWithEnv_BadStrict(t *testing.T) {
	t.Setenv(EnvStrict, "sometimes")

	_, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvStrict)
}

func TestLoadFromEnv_EmptyKeepsValues(t *testing.T) {
	t.Setenv(EnvOutputDir, "")
	t.Setenv(EnvDiagramTheme, "")
	t.Setenv(EnvStrict, "")

	cfg := Default()
	require.NoError(t, cfg.LoadFromEnv())
	assert.Equal(t, Default(), cfg)
}

func TestDefaultPath(t *testing.T) {
	t.Run("XDG", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", dir)
		assert.Equal(t, filepath.Join(dir, "mdast", "config.yml"), DefaultPath())
	})

	t.Run("Home", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skip("no home directory:", err)
		}
		assert.Equal(t, filepath.Join(home, ".config", "mdast", "config.yml"), DefaultPath())
	})
}
