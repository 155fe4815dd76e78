package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	planConfigFile     string
	planPattern        string
	planMarker         string
	planQuiet          bool
	planForwardEnv     bool
	planFollowSymlinks bool
)

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan <input-path>",
	Short: "Show which documents would change without writing anything",
	Long: `Run the full block pipeline — including block commands — but write
nothing. Reports every document whose generated blocks are out of date.

This is equivalent to 'run' as a dry run.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := executeUpdateDocs(args[0], planConfigFile, planPattern, planMarker, planQuiet, planForwardEnv, planFollowSymlinks, true); err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(planCmd)

	// Setup flags for plan command (same as run)
	planCmd.Flags().StringVarP(&planConfigFile, "config", "c", "", "Configuration file (default: mdembed.yaml if present)")
	planCmd.Flags().StringVarP(&planPattern, "pattern", "p", "", "Glob pattern for document discovery (default: **/*.md)")
	planCmd.Flags().StringVar(&planMarker, "marker", "", "Block marker keyword prefix (default: MDEMBED)")
	planCmd.Flags().BoolVarP(&planQuiet, "quiet", "q", false, "Suppress per-document progress output")
	planCmd.Flags().BoolVar(&planForwardEnv, "forward-env", false, "Forward the process environment to block commands")
	planCmd.Flags().BoolVar(&planFollowSymlinks, "follow-symlinks", false, "Follow symbolic links during discovery")
}
