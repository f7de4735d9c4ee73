// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"mrp-cli/internal/transport"
)

// ShellAdapter runs runtime.script with the built-in POSIX shell
// interpreter, so shell-driven models work without /bin/sh on the host.
// The run document arrives on the script's stdin like it does for the
// process adapter.
type ShellAdapter struct{}

// NewShellAdapter creates a shell adapter.
func NewShellAdapter() *ShellAdapter {
	return &ShellAdapter{}
}

// Name returns the adapter type.
func (a *ShellAdapter) Name() AdapterType { return AdapterTypeShell }

// Available returns whether this adapter is available. The interpreter
// is built-in, so it always is.
func (a *ShellAdapter) Available() bool { return true }

// Validate checks that the dispatch config carries a syntactically valid script.
func (a *ShellAdapter) Validate(dispatch *transport.DispatchConfig) error {
	if dispatch.Script == "" {
		return fmt.Errorf("the shell adapter requires runtime.script")
	}

	if _, err := syntax.NewParser().Parse(strings.NewReader(dispatch.Script), "script"); err != nil {
		return fmt.Errorf("script syntax error: %w", err)
	}

	return nil
}

// Execute runs the script and captures its output.
func (a *ShellAdapter) Execute(ectx *ExecutionContext) (*Result, error) {
	payload, err := ectx.Document.JSON()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize run document: %w", err)
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(ectx.Dispatch.Script), "script")
	if err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	var stdout, stderr bytes.Buffer

	runner, err := interp.New(
		interp.Dir(ectx.Dispatch.WorkDir),
		interp.Env(expand.ListEnviron(ectx.Environ...)),
		interp.StdIO(bytes.NewReader(payload), &stdout, &stderr),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create interpreter: %w", err)
	}

	ctx := ectx.Context
	if ectx.Dispatch.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ectx.Dispatch.Timeout)
		defer cancel()
	}

	start := time.Now()
	runErr := runner.Run(ctx, prog)
	duration := time.Since(start)

	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: duration,
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) && ectx.Context.Err() == nil {
		result.ExitCode = ExitCodeTimeout
		return result, nil
	}

	if runErr != nil {
		var exitStatus interp.ExitStatus
		if errors.As(runErr, &exitStatus) {
			result.ExitCode = ExitCode(exitStatus)
			return result, nil
		}
		result.ExitCode = ExitCodeFailure
		fmt.Fprintf(&stderr, "script execution failed: %v\n", runErr)
		result.Stderr = stderr.Bytes()
		return result, nil
	}

	result.ExitCode = ExitCodeSuccess
	return result, nil
}
