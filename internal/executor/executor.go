// Package executor runs block commands as subprocesses and captures their output.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"
)

// ShellExecutor executes command strings through the system shell with a
// fully constructed environment. The environment passed to Run replaces the
// process environment entirely; callers own the layering.
type ShellExecutor struct {
	timeout time.Duration // 0 disables the timeout
}

// New creates a ShellExecutor. A zero timeout never cancels a command.
func New(timeout time.Duration) *ShellExecutor {
	return &ShellExecutor{timeout: timeout}
}

// Run executes command with env and returns its captured standard output.
// stderr is folded into the error on failure so the cause reaches the report.
func (e *ShellExecutor) Run(ctx context.Context, command string, env map[string]string) (string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command) //nolint:gosec // executing configured commands is the point
	cmd.Env = flattenEnv(env)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("command timed out after %s: %s", e.timeout, command)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}

	return stdout.String(), nil
}

// flattenEnv converts the environment map to the KEY=value slice os/exec
// expects, sorted for deterministic subprocess environments.
func flattenEnv(env map[string]string) []string {
	entries := make([]string, 0, len(env))
	for name, value := range env {
		entries = append(entries, name+"="+value)
	}
	sort.Strings(entries)
	return entries
}
