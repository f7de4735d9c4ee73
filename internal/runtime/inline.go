// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"mrp-cli/internal/transport"
)

type (
	// Callable is an in-process model function. It receives the run
	// document and writers standing in for the process streams. A nil
	// return means exit code zero; return an ExitStatusError to report
	// a specific code.
	Callable func(doc *transport.RunDocument, stdout, stderr io.Writer) error

	// ExitStatusError lets a callable report a specific exit code.
	ExitStatusError struct {
		Code ExitCode
	}

	// CallableRegistry maps callable names to functions.
	CallableRegistry struct {
		mu        sync.RWMutex
		callables map[string]Callable
	}

	// InlineAdapter runs a registered callable in-process. Failures are
	// contained: a panicking or erroring callable yields a failed
	// Result, never a crashed host.
	InlineAdapter struct {
		callables *CallableRegistry
	}
)

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("exit status %s", e.Code)
}

// NewCallableRegistry creates an empty callable registry.
func NewCallableRegistry() *CallableRegistry {
	return &CallableRegistry{callables: make(map[string]Callable)}
}

var defaultCallables = NewCallableRegistry()

// DefaultCallables returns the package-level callable registry used by
// NewDefaultRegistry.
func DefaultCallables() *CallableRegistry {
	return defaultCallables
}

// Register adds a callable under the given name.
func (r *CallableRegistry) Register(name string, fn Callable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callables[name] = fn
}

// Get returns a callable by name.
func (r *CallableRegistry) Get(name string) (Callable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.callables[name]
	return fn, ok
}

// Names returns the registered callable names in sorted order.
func (r *CallableRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.callables))
	for name := range r.callables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewInlineAdapter creates an inline adapter backed by the given registry.
func NewInlineAdapter(callables *CallableRegistry) *InlineAdapter {
	return &InlineAdapter{callables: callables}
}

// Name returns the adapter type.
func (a *InlineAdapter) Name() AdapterType { return AdapterTypeInline }

// Available returns whether this adapter is available.
func (a *InlineAdapter) Available() bool { return true }

// Validate checks that the dispatch config names a registered callable.
func (a *InlineAdapter) Validate(dispatch *transport.DispatchConfig) error {
	if dispatch.Callable == "" {
		return fmt.Errorf("the inline adapter requires runtime.callable")
	}
	if _, ok := a.callables.Get(dispatch.Callable); !ok {
		return fmt.Errorf("callable %q not registered (available: %s)",
			dispatch.Callable, strings.Join(a.callables.Names(), ", "))
	}
	return nil
}

// Execute invokes the callable and captures its output.
func (a *InlineAdapter) Execute(ectx *ExecutionContext) (*Result, error) {
	fn, ok := a.callables.Get(ectx.Dispatch.Callable)
	if !ok {
		return nil, fmt.Errorf("callable %q not registered", ectx.Dispatch.Callable)
	}

	var stdout, stderr bytes.Buffer

	start := time.Now()
	code := a.invoke(fn, ectx.Document, &stdout, &stderr)
	duration := time.Since(start)

	return &Result{
		ExitCode: code,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: duration,
	}, nil
}

// invoke runs the callable with panic containment so a misbehaving model
// cannot take down the pipeline.
func (a *InlineAdapter) invoke(fn Callable, doc *transport.RunDocument, stdout, stderr io.Writer) (code ExitCode) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stderr, "model panicked: %v\n", r)
			code = ExitCodeFailure
		}
	}()

	err := fn(doc, stdout, stderr)
	if err == nil {
		return ExitCodeSuccess
	}

	var status *ExitStatusError
	if errors.As(err, &status) {
		return status.Code
	}

	fmt.Fprintf(stderr, "model failed: %v\n", err)
	return ExitCodeFailure
}
