// Package config provides run-level configuration management for mdembed.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

// DefaultMarker is the block-marker keyword prefix used when none is configured.
const DefaultMarker = "MDEMBED"

// DefaultPattern is the document discovery glob used when none is configured.
const DefaultPattern = "**/*.md"

// Config is the run-level configuration consumed by the usecase.
type Config struct {
	Marker         string   `yaml:"marker"`
	Pattern        string   `yaml:"pattern"`
	FollowSymlinks bool     `yaml:"follow_symlinks"`
	Quiet          bool     `yaml:"quiet"`
	ForwardEnv     bool     `yaml:"forward_env"`
	CommandTimeout int      `yaml:"command_timeout"` // seconds, 0 disables the timeout
	ExcludeFiles   []string `yaml:"exclude_files"`
}

// EffectiveMarker returns the configured marker prefix or the default.
func (c *Config) EffectiveMarker() string {
	if c.Marker == "" {
		return DefaultMarker
	}
	return c.Marker
}

// EffectivePattern returns the configured glob pattern or the default.
func (c *Config) EffectivePattern() string {
	if c.Pattern == "" {
		return DefaultPattern
	}
	return c.Pattern
}

// LoadConfig reads and validates a YAML configuration file. An empty path
// yields an empty config with defaults applied through the accessors.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}

	if !filepath.IsAbs(configPath) {
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
		configPath = abs
	}

	stat, err := os.Stat(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access config file: %w", err)
	}

	const maxConfigSize = 1024 * 1024 // 1MB limit to prevent DoS
	if stat.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large (max %d bytes): %d bytes", maxConfigSize, stat.Size())
	}

	if !stat.Mode().IsRegular() {
		return nil, fmt.Errorf("config path must be a regular file: %s", configPath)
	}

	data, err := os.ReadFile(configPath) //nolint:gosec // configPath is validated for safety
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := validateConfigFields(data); err != nil {
		return nil, fmt.Errorf("invalid configuration fields: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// ValidateConfig checks field values beyond YAML syntax.
func ValidateConfig(cfg *Config) error {
	if cfg.Marker != "" {
		if strings.ContainsAny(cfg.Marker, " \t\n\r") {
			return fmt.Errorf("marker cannot contain whitespace: %q", cfg.Marker)
		}
		if strings.ContainsAny(cfg.Marker, "<>{}*") {
			return fmt.Errorf("marker cannot contain comment delimiter characters: %q", cfg.Marker)
		}
	}

	if cfg.Pattern != "" && !isValidPattern(cfg.Pattern) {
		return fmt.Errorf("pattern contains invalid characters: %q", cfg.Pattern)
	}

	if cfg.CommandTimeout < 0 {
		return fmt.Errorf("command_timeout cannot be negative: %d", cfg.CommandTimeout)
	}

	for i, pattern := range cfg.ExcludeFiles {
		if pattern == "" {
			return fmt.Errorf("exclude file pattern %d is empty", i+1)
		}
		if !isValidPattern(pattern) {
			return fmt.Errorf("exclude file pattern %d (%q) contains invalid characters", i+1, pattern)
		}
		if len(pattern) > 100 {
			return fmt.Errorf("exclude file pattern %d: pattern too long (max 100 chars)", i+1)
		}
	}

	return nil
}

func isValidPattern(pattern string) bool {
	invalidChars := []string{"\x00", "\n", "\r", "\t"}
	for _, char := range invalidChars {
		if strings.Contains(pattern, char) {
			return false
		}
	}
	return true
}

// IsFileExcluded reports whether a discovered path matches an exclude pattern.
func (c *Config) IsFileExcluded(filename string) bool {
	for _, pattern := range c.ExcludeFiles {
		if c.matchPattern(pattern, filename) {
			return true
		}
	}
	return false
}

func (c *Config) matchPattern(pattern, text string) bool {
	if strings.Contains(pattern, "*") || strings.Contains(pattern, "?") {
		return matchWithWildcards(pattern, text)
	}
	return pattern == text
}

// matchWithWildcards processes patterns with multiple wildcards
func matchWithWildcards(pattern, text string) bool {
	if pattern == "*" {
		return true
	}

	patternIndex := 0
	textIndex := 0
	starIdx := -1
	match := 0

	for textIndex < len(text) {
		if patternIndex < len(pattern) && (pattern[patternIndex] == text[textIndex] || pattern[patternIndex] == '?') {
			patternIndex++
			textIndex++
		} else if patternIndex < len(pattern) && pattern[patternIndex] == '*' {
			starIdx = patternIndex
			match = textIndex
			patternIndex++
		} else if starIdx != -1 {
			patternIndex = starIdx + 1
			match++
			textIndex = match
		} else {
			return false
		}
	}

	for patternIndex < len(pattern) && pattern[patternIndex] == '*' {
		patternIndex++
	}

	return patternIndex == len(pattern)
}

func validateConfigFields(data []byte) error {
	var rawConfig map[string]any
	if err := yaml.Unmarshal(data, &rawConfig); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	validTopLevelFields := map[string]bool{
		"marker":          true,
		"pattern":         true,
		"follow_symlinks": true,
		"quiet":           true,
		"forward_env":     true,
		"command_timeout": true,
		"exclude_files":   true,
	}

	var invalidFields []string
	for field := range rawConfig {
		if !validTopLevelFields[field] {
			invalidFields = append(invalidFields, fmt.Sprintf("'%s'", field))
		}
	}

	if len(invalidFields) > 0 {
		return fmt.Errorf("unknown fields found: %s", strings.Join(invalidFields, ", "))
	}

	return nil
}
