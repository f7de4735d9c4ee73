// SPDX-License-Identifier: MPL-2.0

// Package runtime provides the model execution adapter interface and
// implementations.
package runtime

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"mrp-cli/internal/transport"
)

// Adapter type constants for the built-in execution strategies.
const (
	AdapterTypeProcess AdapterType = "process"
	AdapterTypeInline  AdapterType = "inline"
	AdapterTypeShell   AdapterType = "shell"
)

type (
	// AdapterType identifies a runtime adapter.
	AdapterType string

	// ExecutionContext contains all information needed to run a model.
	ExecutionContext struct {
		// Context is the Go context for cancellation
		Context context.Context
		// Document is the validated run document delivered to the model
		Document *transport.RunDocument
		// Dispatch describes how to launch the model
		Dispatch *transport.DispatchConfig
		// Environ is the environment for the launched model
		Environ []string
		// ExecutionID is a unique identifier for this run
		ExecutionID string
	}

	// Adapter defines the interface for model execution strategies.
	Adapter interface {
		// Name returns the adapter type
		Name() AdapterType
		// Available returns whether this adapter can run on the current system
		Available() bool
		// Validate checks whether the dispatch config is runnable by this adapter
		Validate(dispatch *transport.DispatchConfig) error
		// Execute runs the model. A non-nil Result reports the model's
		// outcome (exit code plus captured output); a non-nil error means
		// the adapter could not launch the model at all.
		Execute(ectx *ExecutionContext) (*Result, error)
	}

	// UnknownAdapterError reports a dispatch naming an unregistered adapter.
	UnknownAdapterError struct {
		Name      AdapterType
		Available []AdapterType
	}

	// Registry holds all available adapters.
	Registry struct {
		mu       sync.RWMutex
		adapters map[AdapterType]Adapter
	}
)

func (e *UnknownAdapterError) Error() string {
	names := make([]string, len(e.Available))
	for i, t := range e.Available {
		names[i] = string(t)
	}
	return fmt.Sprintf("adapter %q not registered (available: %s)", e.Name, strings.Join(names, ", "))
}

// NewExecutionContext creates an execution context with a fresh id and a
// snapshot of the current process environment. Dispatch env entries are
// appended after the snapshot so they win over inherited variables.
func NewExecutionContext(ctx context.Context, doc *transport.RunDocument, dispatch *transport.DispatchConfig) *ExecutionContext {
	environ := os.Environ()
	if len(dispatch.Env) > 0 {
		environ = append(environ, EnvToSlice(dispatch.Env)...)
	}

	return &ExecutionContext{
		Context:     ctx,
		Document:    doc,
		Dispatch:    dispatch,
		Environ:     environ,
		ExecutionID: uuid.NewString(),
	}
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[AdapterType]Adapter)}
}

// NewDefaultRegistry creates a registry with the built-in adapters. The
// inline adapter is wired to the package-level callable registry.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewProcessAdapter())
	r.Register(NewShellAdapter())
	r.Register(NewInlineAdapter(DefaultCallables()))
	return r
}

// Register adds an adapter to the registry, replacing any adapter of the
// same type.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Name()] = a
}

// Get returns an adapter by type.
func (r *Registry) Get(typ AdapterType) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[typ]
	if !ok {
		return nil, &UnknownAdapterError{Name: typ, Available: r.typesLocked()}
	}
	return a, nil
}

// Types returns the registered adapter types in sorted order.
func (r *Registry) Types() []AdapterType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.typesLocked()
}

func (r *Registry) typesLocked() []AdapterType {
	types := make([]AdapterType, 0, len(r.adapters))
	for typ := range r.adapters {
		types = append(types, typ)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// EnvToSlice converts a map of environment variables to a slice.
func EnvToSlice(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, k+"="+v)
	}
	return result
}
