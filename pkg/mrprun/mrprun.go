// SPDX-License-Identifier: MPL-2.0

// Package mrprun is the programmatic entry point to the run pipeline.
// It drives the same orchestration the CLI does, so embedding a model
// run in a Go program takes a config and a handful of options:
//
//	outcome, err := mrprun.Run(ctx, "model.mrp.toml",
//		mrprun.WithOverrides("input.seed=42"),
//		mrprun.WithOutputDir("results"))
package mrprun

import (
	"context"
	"fmt"

	"mrp-cli/internal/app/execute"
	"mrp-cli/internal/config"
	"mrp-cli/internal/runtime"
	"mrp-cli/internal/transport"
)

type (
	// Outcome re-exports the orchestrator's result bundle.
	Outcome = execute.Outcome

	// Callable re-exports the inline model function type.
	Callable = runtime.Callable

	options struct {
		overrides    []string
		values       map[string]any
		build        transport.BuildOptions
		orchestrator execute.Orchestrator
		registry     *runtime.Registry
	}

	// Option adjusts a Run call.
	Option func(*options)
)

// WithOverrides adds dotted-path overrides ("section.key=value")
// layered over the base config.
func WithOverrides(pairs ...string) Option {
	return func(o *options) { o.overrides = append(o.overrides, pairs...) }
}

// WithValues layers a programmatic config tree over everything else;
// its values take the highest precedence.
func WithValues(values map[string]any) Option {
	return func(o *options) { o.values = values }
}

// WithOutputDir overrides output.dir for filesystem output.
func WithOutputDir(dir string) Option {
	return func(o *options) { o.build.OutputDir = dir }
}

// WithRuntimeProfile selects a runtime section profile.
func WithRuntimeProfile(name string) Option {
	return func(o *options) { o.build.RuntimeProfile = name }
}

// WithOutputProfile selects an output section profile.
func WithOutputProfile(name string) Option {
	return func(o *options) { o.build.OutputProfile = name }
}

// WithDefaultAdapter sets the adapter used when runtime.spec is absent.
func WithDefaultAdapter(name string) Option {
	return func(o *options) { o.build.DefaultAdapter = name }
}

// WithRegistry replaces the adapter registry, letting callers add their
// own adapters or a private inline callable registry.
func WithRegistry(r *runtime.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithOrchestrator replaces the whole orchestrator. Mostly useful in
// tests.
func WithOrchestrator(orc execute.Orchestrator) Option {
	return func(o *options) { o.orchestrator = orc }
}

// RegisterCallable adds an inline model to the shared callable registry
// used by the default adapter set.
func RegisterCallable(name string, fn Callable) {
	runtime.DefaultCallables().Register(name, fn)
}

// Run executes one model run. The cfg argument is either a path to a
// config file or an in-memory config tree (map[string]any).
func Run(ctx context.Context, cfg any, opts ...Option) (*Outcome, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	base, err := baseSource(cfg)
	if err != nil {
		return nil, err
	}

	// Precedence, lowest to highest: the base config, dotted-path
	// overrides, programmatic values.
	sources := []config.Source{base}
	if len(o.overrides) > 0 {
		sources = append(sources, config.NewOverridesSource(o.overrides))
	}
	if o.values != nil {
		sources = append(sources, config.NewValuesSource("values", o.values))
	}

	orc := o.orchestrator
	if orc == nil {
		var orcOpts []execute.Option
		if o.registry != nil {
			orcOpts = append(orcOpts, execute.WithRegistry(o.registry))
		}
		orc = execute.NewOrchestrator(orcOpts...)
	}

	return orc.Run(ctx, execute.Request{Sources: sources, Build: o.build})
}

func baseSource(cfg any) (config.Source, error) {
	switch c := cfg.(type) {
	case string:
		return config.NewFileSource(c), nil
	case map[string]any:
		return config.NewValuesSource("config", c), nil
	default:
		return nil, fmt.Errorf("config must be a file path or map[string]any, got %T", cfg)
	}
}
