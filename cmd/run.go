package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	runConfigFile     string
	runPattern        string
	runMarker         string
	runQuiet          bool
	runForwardEnv     bool
	runFollowSymlinks bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <input-path>",
	Short: "Update generated blocks in place",
	Long: `Discover documents beneath the input path, resolve each directive block's
content and rewrite every document whose blocks are out of date.

Input can be either a single document or a directory. Directories are
searched with the configured glob pattern (default "**/*.md"). A document
is written at most once and only when its content actually changed.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := executeUpdateDocs(args[0], runConfigFile, runPattern, runMarker, runQuiet, runForwardEnv, runFollowSymlinks, false); err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Setup flags for run command
	runCmd.Flags().StringVarP(&runConfigFile, "config", "c", "", "Configuration file (default: mdembed.yaml if present)")
	runCmd.Flags().StringVarP(&runPattern, "pattern", "p", "", "Glob pattern for document discovery (default: **/*.md)")
	runCmd.Flags().StringVar(&runMarker, "marker", "", "Block marker keyword prefix (default: MDEMBED)")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Suppress per-document progress output")
	runCmd.Flags().BoolVar(&runForwardEnv, "forward-env", false, "Forward the process environment to block commands")
	runCmd.Flags().BoolVar(&runFollowSymlinks, "follow-symlinks", false, "Follow symbolic links during discovery")
}
