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

// Package root provides the root command for the mdast CLI.
package root

import (
	"github.com/spf13/cobra"
	"zombiezen.com/go/mdast/internal/cmd/checkcmd"
	"zombiezen.com/go/mdast/internal/cmd/cmdutil"
	"zombiezen.com/go/mdast/internal/cmd/configcmd"
	"zombiezen.com/go/mdast/internal/cmd/fmtcmd"
	"zombiezen.com/go/mdast/internal/cmd/parsecmd"
	"zombiezen.com/go/mdast/internal/version"
)

// NewCmdRoot creates the root command for mdast.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mdast",
		Short: "Parse Markdown into a syntax tree",
		Long: `mdast parses Markdown documents into a typed syntax tree.

It writes the tree as JSON, renders HTML pages with Mermaid diagrams,
reports problems such as unterminated fences and invalid diagrams,
and reformats documents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	cmdutil.AddPersistentFlags(cmd)

	cmd.SetVersionTemplate("mdast version {{.Version}} (commit: " + version.Commit + ", built: " + version.Date + ")\n")

	cmd.AddCommand(parsecmd.NewCmdParse())
	cmd.AddCommand(checkcmd.NewCmdCheck())
	cmd.AddCommand(fmtcmd.NewCmdFmt())
	cmd.AddCommand(configcmd.NewCmdConfig())

	return cmd
}
