package executor

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/instctl/instctl/pkg/errors"
)

// Command describes a single subprocess invocation.
type Command struct {
	Binary string
	Args   []string

	// Stdin is piped to the subprocess when non-nil.
	Stdin io.Reader

	// Dir sets the working directory; empty means the current directory.
	Dir string

	// Redact lists argument values masked in log output (passwords, tokens).
	Redact []string
}

// String renders the command for logging, with redacted values masked.
func (c Command) String() string {
	parts := append([]string{c.Binary}, c.Args...)
	for i, part := range parts {
		for _, secret := range c.Redact {
			if secret != "" && part == secret {
				parts[i] = "****"
			}
		}
	}
	return strings.Join(parts, " ")
}

// Runner executes subprocesses. Tests substitute a recording fake.
type Runner interface {
	// Run executes the command, blocking until it exits or ctx is done, and
	// returns the combined stdout/stderr output.
	Run(ctx context.Context, cmd Command) (string, error)
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct {
	Log zerolog.Logger
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (string, error) {
	r.Log.Debug().Str("cmd", cmd.String()).Msg("exec")

	proc := exec.CommandContext(ctx, cmd.Binary, cmd.Args...)
	proc.Stdin = cmd.Stdin
	proc.Dir = cmd.Dir

	var buf bytes.Buffer
	proc.Stdout = &buf
	proc.Stderr = &buf

	err := proc.Run()
	output := buf.String()

	if ctx.Err() == context.DeadlineExceeded {
		return output, errors.Wrap(errors.ErrCodeTimeout, cmd.Binary+" timed out", ctx.Err())
	}
	return output, err
}

// Preflight verifies that every required binary is reachable in PATH. A
// missing binary is fatal before any node runs.
func Preflight(binaries ...string) error {
	for _, binary := range binaries {
		if _, err := exec.LookPath(binary); err != nil {
			return errors.ToolchainError(binary, err)
		}
	}
	return nil
}
