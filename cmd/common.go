package cmd

import (
	"context"

	"github.com/charmbracelet/lipgloss"

	"mdembed/internal/usecase"
	"mdembed/internal/validation"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// executeUpdateDocs validates inputs and executes the update docs usecase
func executeUpdateDocs(inputPath, configFile, pattern, marker string, quiet, forwardEnv, followSymlinks, dryRun bool) error {
	// Validate all inputs first
	if err := validation.ValidateInputPath(inputPath); err != nil {
		return err
	}

	if err := validation.ValidateConfigPath(configFile); err != nil {
		return err
	}

	// Create usecase request
	req := &usecase.UpdateDocsRequest{
		InputPath:      inputPath,
		ConfigFile:     configFile,
		Pattern:        pattern,
		Marker:         marker,
		Quiet:          quiet,
		ForwardEnv:     forwardEnv,
		FollowSymlinks: followSymlinks,
		DryRun:         dryRun,
	}

	// Execute usecase
	uc := usecase.NewUpdateDocsUsecase()
	_, err := uc.Execute(context.Background(), req)
	if err != nil {
		return err
	}

	return nil
}
