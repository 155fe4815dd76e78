// Package cmd implements the mdembed command-line interface.
package cmd

import (
	"github.com/spf13/cobra"

	"mdembed/internal/version"
)

var rootCmd = &cobra.Command{
	Use:     "mdembed",
	Short:   "Keep generated blocks in markdown documents up to date",
	Version: version.GetVersion(),
	Long: `mdembed locates directive blocks embedded as comments inside markdown
documents, computes dynamic content for each block by running a command or
reading a file, and rewrites the document so each block reflects that
content.

Blocks are delimited by marker pairs in HTML or JSX comment syntax:

  <!-- MDEMBED:START { "type": "command", "value": "echo hi" } -->
  <!-- MDEMBED:END -->

Running mdembed again on its own output produces no further changes.`,
}

// Execute runs the root command.
func Execute() error {
	// Enable version flag
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	return rootCmd.Execute()
}
