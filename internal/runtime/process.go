// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"mrp-cli/internal/transport"
)

// ProcessAdapter runs the model as a child process. The run document is
// serialized to JSON and delivered on the child's stdin; stdout and
// stderr are captured into the result.
type ProcessAdapter struct{}

// NewProcessAdapter creates a process adapter.
func NewProcessAdapter() *ProcessAdapter {
	return &ProcessAdapter{}
}

// Name returns the adapter type.
func (a *ProcessAdapter) Name() AdapterType { return AdapterTypeProcess }

// Available reports whether the adapter can run. Spawning child
// processes needs no external tooling.
func (a *ProcessAdapter) Available() bool { return true }

// Validate checks that the dispatch config names a command.
func (a *ProcessAdapter) Validate(dispatch *transport.DispatchConfig) error {
	if dispatch.Command == "" {
		return fmt.Errorf("the process adapter requires runtime.command")
	}
	if _, err := exec.LookPath(dispatch.Command); err != nil {
		return fmt.Errorf("command %q not found in PATH: %w", dispatch.Command, err)
	}
	return nil
}

// Execute spawns the model process and waits for it to finish. A model
// that runs and fails is reported through the Result's exit code; an
// error return means the process could not be started.
func (a *ProcessAdapter) Execute(ectx *ExecutionContext) (*Result, error) {
	payload, err := ectx.Document.JSON()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize run document: %w", err)
	}

	ctx := ectx.Context
	if ectx.Dispatch.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ectx.Dispatch.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, ectx.Dispatch.Command, ectx.Dispatch.Args...)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Dir = ectx.Dispatch.WorkDir
	cmd.Env = ectx.Environ

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: duration,
	}

	// A deadline kill surfaces as an ExitError with code -1, so the
	// timeout check comes first.
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && ectx.Context.Err() == nil {
		result.ExitCode = ExitCodeTimeout
		return result, nil
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = ExitCode(exitErr.ExitCode())
			return result, nil
		}
		return nil, fmt.Errorf("failed to start %q: %w", ectx.Dispatch.Command, runErr)
	}

	result.ExitCode = ExitCodeSuccess
	return result, nil
}
