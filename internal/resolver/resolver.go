// Package resolver obtains the raw content backing a block and normalizes it.
package resolver

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"mdembed/pkg/types"
)

// Executor runs a command string with a fully constructed environment and
// returns its captured standard output.
type Executor interface {
	Run(ctx context.Context, command string, env map[string]string) (string, error)
}

// FileReader reads a file's full contents by path.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// Resolver turns a validated block configuration into normalized content.
// The process environment is captured once at construction so resolution
// never reads ambient global state.
type Resolver struct {
	exec       Executor
	reader     FileReader
	forwardEnv bool
	environ    map[string]string
}

// New creates a Resolver over the current process environment.
func New(exec Executor, reader FileReader, forwardEnv bool) *Resolver {
	return NewWithEnviron(exec, reader, forwardEnv, os.Environ())
}

// NewWithEnviron creates a Resolver with an explicit process environment,
// given as KEY=value pairs.
func NewWithEnviron(exec Executor, reader FileReader, forwardEnv bool, environ []string) *Resolver {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}
	return &Resolver{
		exec:       exec,
		reader:     reader,
		forwardEnv: forwardEnv,
		environ:    env,
	}
}

// Resolve produces the normalized content for a block. File paths are
// resolved relative to the directory containing the owning document.
func (r *Resolver) Resolve(ctx context.Context, cfg *types.BlockConfig, docPath string) (string, error) {
	var content string

	switch cfg.Type {
	case types.BlockTypeFile:
		path := cfg.Value
		if !filepath.IsAbs(path) {
			path = filepath.Join(filepath.Dir(docPath), path)
		}
		data, err := r.reader.ReadFile(path)
		if err != nil {
			return "", &types.ActionExecutionError{Type: cfg.Type, Value: cfg.Value, Err: err}
		}
		content = string(data)

	case types.BlockTypeCommand:
		out, err := r.exec.Run(ctx, cfg.Value, r.buildEnv(cfg))
		if err != nil {
			return "", &types.ActionExecutionError{Type: cfg.Type, Value: cfg.Value, Err: err}
		}
		content = ansi.Strip(out)
	}

	if cfg.TrimEnabled() {
		content = trimContent(content)
	}

	if strings.TrimSpace(content) == "" {
		return "", &types.EmptyContentError{Value: cfg.Value}
	}

	return content, nil
}

// buildEnv layers the execution environment in increasing precedence:
// inherited process environment (when forwarded), FORCE_COLOR=0, then the
// block's configured entries with $NAME substitution applied.
func (r *Resolver) buildEnv(cfg *types.BlockConfig) map[string]string {
	env := make(map[string]string)
	if r.forwardEnv {
		for name, value := range r.environ {
			env[name] = value
		}
	}

	// サブプロセスの ANSI 装飾を抑制する。ブロック側の設定で上書き可能。
	env["FORCE_COLOR"] = "0"

	for name, value := range cfg.Environment {
		env[name] = r.substitute(value)
	}

	return env
}

// substitute replaces each $NAME token whose name exists in the process
// environment with its value. This is literal token substitution, not shell
// expansion: unknown names stay as written.
func (r *Resolver) substitute(value string) string {
	var b strings.Builder
	for i := 0; i < len(value); {
		if value[i] != '$' {
			b.WriteByte(value[i])
			i++
			continue
		}

		j := i + 1
		for j < len(value) && isNameChar(value[j], j == i+1) {
			j++
		}
		name := value[i+1 : j]
		if resolved, ok := r.environ[name]; ok && name != "" {
			b.WriteString(resolved)
		} else {
			b.WriteString(value[i:j])
		}
		i = j
	}
	return b.String()
}

func isNameChar(c byte, first bool) bool {
	if c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
		return true
	}
	return !first && c >= '0' && c <= '9'
}

// trimContent collapses leading and trailing blank lines down to at most one
// blank line of padding on each side of the non-blank payload.
func trimContent(content string) string {
	lines := strings.Split(content, "\n")

	first, last := -1, -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return ""
	}

	var out []string
	if first > 0 {
		out = append(out, "")
	}
	out = append(out, lines[first:last+1]...)
	if last < len(lines)-1 {
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}
