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

package checkcmd

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

func newTestOptions(t *testing.T, stdin string) (*cmdutil.Options, *bytes.Buffer) {
	t.Helper()
	t.Setenv(config.EnvOutputDir, "")
	t.Setenv(config.EnvDiagramTheme, "")
	t.Setenv(config.EnvStrict, "")
	stdout := new(bytes.Buffer)
	return &cmdutil.Options{
		ConfigPath: filepath.Join(t.TempDir(), "missing.yml"),
		NoColor:    true,
		Stdin:      strings.NewReader(stdin),
		Stdout:     stdout,
		Stderr:     new(bytes.Buffer),
	}, stdout
}

func TestRunCheck_Clean(t *testing.T) {
	opts, stdout := newTestOptions(t, "# ok\n\nfine\n")

	require.NoError(t, runCheck([]string{"-"}, opts))
	assert.Equal(t, "✓ 1 file clean\n", stdout.String())
}

func TestRunCheck_Errors(t *testing.T) {
	opts, stdout := newTestOptions(t, "####### Seven\n\n```\nx\n")

	err := runCheck([]string{"-"}, opts)
	require.ErrorIs(t, err, cmdutil.ErrProblemsFound)
	want := "<stdin>:1:1: error: heading level 7 exceeds maximum of 6 [invalid_heading_level]\n" +
		"<stdin>:3: error: unterminated code fence [unterminated_fence]\n" +
		"\n2 errors, 0 warnings in 1 file\n"
	assert.Equal(t, want, stdout.String())
}

func TestRunCheck_Warning(t *testing.T) {
	opts, stdout := newTestOptions(t, "[a]: /x\n[a]: /y\n\n[a]\n")

	err := runCheck([]string{"-"}, opts)
	require.ErrorIs(t, err, cmdutil.ErrProblemsFound)
	out := stdout.String()
	assert.Contains(t, out, "<stdin>:2: warning: reference \"a\" redefined (previous definition on line 1) [duplicate_reference]")
	assert.Contains(t, out, "0 errors, 1 warning in 1 file")
}

func TestRunCheck_MultipleFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.md")
	bad := filepath.Join(dir, "bad.md")
	require.NoError(t, os.WriteFile(good, []byte("# Good\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("```mermaid\n```\n"), 0o644))
	opts, stdout := newTestOptions(t, "")

	err := runCheck([]string{good, bad}, opts)
	require.ErrorIs(t, err, cmdutil.ErrProblemsFound)
	out := stdout.String()
	assert.NotContains(t, out, good+":")
	assert.Contains(t, out, bad+":1")
	assert.Contains(t, out, "[invalid_diagram]")
	assert.Contains(t, out, "in 2 files")
}

func TestRunCheck_StrictFromEnv(t *testing.T) {
	opts, stdout := newTestOptions(t, "```mermaid\ngraph TD\n  A -->\n```\n")
	t.Setenv(config.EnvStrict, "true")

	err := runCheck([]string{"-"}, opts)
	require.ErrorIs(t, err, cmdutil.ErrProblemsFound)
	assert.Contains(t, stdout.String(), "[invalid_diagram]")
}

func TestRunCheck_MissingFile(t *testing.T) {
	opts, _ := newTestOptions(t, "")

	err := runCheck([]string{filepath.Join(t.TempDir(), "nope.md")}, opts)
	require.Error(t, err)
	assert.NotErrorIs(t, err, cmdutil.ErrProblemsFound)
	assert.Contains(t, err.Error(), "read markdown")
}
