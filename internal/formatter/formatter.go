// Package formatter builds the canonical replacement body for a block interior.
package formatter

import (
	"path/filepath"
	"strings"

	"mdembed/pkg/types"
)

// fence is wide enough that triple-backtick or triple-tilde fences inside the
// injected content can never terminate it.
const fence = "~~~~~~~~~~"

// suppressionText is the formatter directive that keeps downstream document
// formatters from reflowing the generated fenced block.
const suppressionText = "prettier-ignore"

// defaultLanguage is used when nothing better can be inferred.
const defaultLanguage = "bash"

// languageByExtension maps file extensions to fence languages for file-type
// blocks without an explicit language.
var languageByExtension = map[string]string{
	".c":    "c",
	".cpp":  "cpp",
	".css":  "css",
	".go":   "go",
	".html": "html",
	".java": "java",
	".js":   "javascript",
	".json": "json",
	".jsx":  "jsx",
	".md":   "markdown",
	".py":   "python",
	".rb":   "ruby",
	".rs":   "rust",
	".sh":   "bash",
	".sql":  "sql",
	".tf":   "hcl",
	".toml": "toml",
	".ts":   "typescript",
	".tsx":  "tsx",
	".txt":  "text",
	".xml":  "xml",
	".yaml": "yaml",
	".yml":  "yaml",
}

// Format constructs the canonical interior text for a block from its
// configuration and normalized content. It is a pure function of its inputs.
func Format(cfg *types.BlockConfig, content string, dialect types.Dialect) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dialect.Comment(suppressionText))
	b.WriteString("\n")
	b.WriteString(fence)
	b.WriteString(Language(cfg))
	b.WriteString("\n")

	if !cfg.HideValue {
		b.WriteString(header(cfg))
		b.WriteString("\n\n")
	}

	b.WriteString(content)
	if !strings.HasSuffix(content, "\n") {
		b.WriteString("\n")
	}

	b.WriteString(fence)
	b.WriteString("\n")

	return b.String()
}

// Language resolves the fence language: the explicit field first, then the
// value's file extension for file blocks, then the default.
func Language(cfg *types.BlockConfig) string {
	if cfg.Language != "" {
		return cfg.Language
	}
	if cfg.Type == types.BlockTypeFile {
		ext := strings.ToLower(filepath.Ext(cfg.Value))
		if lang, ok := languageByExtension[ext]; ok {
			return lang
		}
	}
	return defaultLanguage
}

func header(cfg *types.BlockConfig) string {
	if cfg.Type == types.BlockTypeCommand {
		return "$ " + cfg.Value
	}
	return "File: " + cfg.Value
}
