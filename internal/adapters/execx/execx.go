// Package execx runs analyzer binaries and captures their output.
package execx

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/openaudit/auditengine/internal/adapter"
)

// Command describes one analyzer invocation.
type Command struct {
	Tool      string // adapter name, used in errors
	Operation string // "analyze", "run_tests", "fuzz"
	Binary    string
	Args      []string
	Dir       string
	Env       []string
}

// Result holds the captured output of a finished process.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Run executes c and returns its output. A non-zero exit is not an error:
// many analyzers exit non-zero when they report issues, so callers decide
// from the output. Errors are *adapter.Error values with code
// BINARY_NOT_FOUND, TIMEOUT or EXECUTION_FAILED.
func Run(ctx context.Context, c Command) (Result, error) {
	path, err := exec.LookPath(c.Binary)
	if err != nil {
		return Result{}, adapter.NewError(c.Tool, c.Operation, adapter.CodeBinaryNotFound,
			c.Binary+" not found in PATH").WithCause(err)
	}

	cmd := exec.CommandContext(ctx, path, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		code := adapter.CodeExecutionFailed
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			code = adapter.CodeTimeout
		}
		return res, adapter.NewError(c.Tool, c.Operation, code, "process interrupted").WithCause(ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, adapter.NewError(c.Tool, c.Operation, adapter.CodeExecutionFailed,
		"starting "+c.Binary).WithCause(err)
}

// Tail returns the last line of stderr, trimmed, for use in error messages.
func (r Result) Tail() string {
	s := strings.TrimSpace(string(r.Stderr))
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	const max = 300
	if len(s) > max {
		s = s[len(s)-max:]
	}
	return s
}

// ExpandTarget replaces every "{target}" placeholder in args.
func ExpandTarget(args []string, target string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = strings.ReplaceAll(a, "{target}", target)
	}
	return out
}
