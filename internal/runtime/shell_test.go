// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"strings"
	"testing"
	"time"

	"mrp-cli/internal/transport"
)

func TestShellAdapterRunsScript(t *testing.T) {
	a := NewShellAdapter()
	dispatch := &transport.DispatchConfig{
		Adapter: "shell",
		Script:  `echo "hello from $MRP_TEST_VAR"`,
		Env:     map[string]string{"MRP_TEST_VAR": "shell"},
	}
	if err := a.Validate(dispatch); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	ectx := NewExecutionContext(context.Background(), testDocument(), dispatch)

	result, err := a.Execute(ectx)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.Success() {
		t.Fatalf("exit code = %s, want success (stderr: %s)", result.ExitCode, result.Stderr)
	}
	if !strings.Contains(string(result.Stdout), "hello from shell") {
		t.Errorf("stdout = %q, want interpolated output", result.Stdout)
	}
}

func TestShellAdapterDocumentOnStdin(t *testing.T) {
	a := NewShellAdapter()
	dispatch := &transport.DispatchConfig{Adapter: "shell", Script: "cat"}

	result, err := a.Execute(NewExecutionContext(context.Background(), testDocument(), dispatch))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(string(result.Stdout), `"input_hash"`) {
		t.Errorf("stdout = %q, want the serialized document", result.Stdout)
	}
}

func TestShellAdapterExitStatus(t *testing.T) {
	a := NewShellAdapter()
	dispatch := &transport.DispatchConfig{Adapter: "shell", Script: "exit 7"}

	result, err := a.Execute(NewExecutionContext(context.Background(), testDocument(), dispatch))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.ExitCode != 7 {
		t.Errorf("exit code = %s, want 7", result.ExitCode)
	}
}

func TestShellAdapterTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping slow test in short mode")
	}

	a := NewShellAdapter()
	dispatch := &transport.DispatchConfig{
		Adapter: "shell",
		Script:  "sleep 5",
		Timeout: time.Second,
	}

	result, err := a.Execute(NewExecutionContext(context.Background(), testDocument(), dispatch))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.ExitCode != ExitCodeTimeout {
		t.Errorf("exit code = %s, want %s", result.ExitCode, ExitCodeTimeout)
	}
}

func TestShellAdapterValidateSyntax(t *testing.T) {
	a := NewShellAdapter()

	if err := a.Validate(&transport.DispatchConfig{Adapter: "shell"}); err == nil {
		t.Fatal("Validate() should require runtime.script")
	}
	if err := a.Validate(&transport.DispatchConfig{Adapter: "shell", Script: "if then fi"}); err == nil {
		t.Fatal("Validate() should reject invalid syntax")
	}
}
