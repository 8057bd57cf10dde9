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

package fmtcmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zombiezen.com/go/mdast/internal/cmd/cmdutil"
	"zombiezen.com/go/mdast/internal/config"
)

func newTestOptions(t *testing.T, stdin string) (*fmtOptions, *bytes.Buffer) {
	t.Helper()
	t.Setenv(config.EnvOutputDir, "")
	t.Setenv(config.EnvDiagramTheme, "")
	t.Setenv(config.EnvStrict, "")
	stdout := new(bytes.Buffer)
	return &fmtOptions{
		Options: &cmdutil.Options{
			ConfigPath: filepath.Join(t.TempDir(), "missing.yml"),
			NoColor:    true,
			Stdin:      strings.NewReader(stdin),
			Stdout:     stdout,
			Stderr:     new(bytes.Buffer),
		},
	}, stdout
}

func TestRunFmt_Stdout(t *testing.T) {
	opts, stdout := newTestOptions(t, "#Title\n__bold__\ntext\n* item\n")

	require.NoError(t, runFmt(cmdutil.StdinName, opts))
	assert.Equal(t, "# Title\n\n**bold** text\n\n* item\n", stdout.String())
}

func TestRunFmt_Write(t *testing.T) {
	opts, stdout := newTestOptions(t, "")
	opts.write = true
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("_a_\n***\n"), 0o600))

	require.NoError(t, runFmt(path, opts))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "*a*\n\n---\n", string(got))
	assert.Empty(t, stdout.String())
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRunFmt_WriteStdin(t *testing.T) {
	opts, _ := newTestOptions(t, "x\n")
	opts.write = true

	err := runFmt(cmdutil.StdinName, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "standard input")
}
