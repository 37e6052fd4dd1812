package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result is the outcome of one external tool invocation.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   string
}

// Runner starts an external command and waits for it to exit.
// A non-zero exit is reported through Result, not through the error;
// the error is reserved for failing to start the process at all.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = nil
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("running %s: %w", name, err)
	}
	return res, nil
}

// ToolError reports a non-zero exit from an external media tool.
type ToolError struct {
	Tool     string
	Step     string
	ExitCode int
	Stderr   string
}

func (e *ToolError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s %s failed (exit status %d)", e.Tool, e.Step, e.ExitCode)
	}
	return fmt.Sprintf("%s %s failed (exit status %d): %s", e.Tool, e.Step, e.ExitCode, msg)
}

var lookPath = exec.LookPath

// Locate resolves the ffmpeg binary. An explicit path is returned as is.
func Locate(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	path, err := lookPath("ffmpeg")
	if err != nil {
		return "", ErrNotFound
	}
	return path, nil
}

// ErrNotFound is returned when no ffmpeg binary is available.
var ErrNotFound = errors.New("ffmpeg not found")

// run invokes name and converts a non-zero exit into a ToolError.
func run(ctx context.Context, r Runner, step, name string, args ...string) (Result, error) {
	res, err := r.Run(ctx, name, args...)
	if err != nil {
		return res, err
	}
	if res.ExitCode != 0 {
		return res, &ToolError{Tool: toolName(name), Step: step, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	return res, nil
}

func toolName(path string) string {
	base := path
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, ".exe")
}
