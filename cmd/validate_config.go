package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mdembed/internal/config"
	"mdembed/internal/validation"
)

// validateConfigCmd represents the validate-config command
var validateConfigCmd = &cobra.Command{
	Use:   "validate-config <config-file>",
	Short: "Validate configuration file",
	Long: `Validate the syntax and content of an mdembed configuration file.

This command checks:
- YAML syntax
- Unknown fields
- Marker and pattern validity
- Exclude file pattern validity

If the configuration is valid, a summary of the configuration will be displayed.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidateConfig(args[0]); err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Configuration validation failed: %v", err)))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateConfigCmd)
}

func runValidateConfig(configPath string) error {
	// Basic path validation
	if err := validation.ValidateConfigPath(configPath); err != nil {
		return err
	}

	fmt.Printf("Validating configuration file: %s\n", configPath)

	// Load and validate configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Display configuration summary
	printConfigSummary(cfg)

	fmt.Println(successStyle.Render("Configuration is valid"))
	return nil
}

func printConfigSummary(cfg *config.Config) {
	fmt.Println("\nConfiguration Summary:")
	fmt.Printf("  Marker: %s\n", cfg.EffectiveMarker())
	fmt.Printf("  Pattern: %s\n", cfg.EffectivePattern())
	fmt.Printf("  Follow symlinks: %t\n", cfg.FollowSymlinks)
	fmt.Printf("  Forward environment: %t\n", cfg.ForwardEnv)
	if cfg.CommandTimeout > 0 {
		fmt.Printf("  Command timeout: %ds\n", cfg.CommandTimeout)
	}

	if len(cfg.ExcludeFiles) > 0 {
		fmt.Println("\nExclude File Patterns:")
		for i, pattern := range cfg.ExcludeFiles {
			fmt.Printf("  %d. %s\n", i+1, pattern)
		}
	}
}
