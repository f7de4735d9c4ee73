// SPDX-License-Identifier: MPL-2.0

// Package execute coordinates a model run from configuration sources to
// a finished result.
package execute

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"mrp-cli/internal/config"
	"mrp-cli/internal/issue"
	"mrp-cli/internal/runtime"
	"mrp-cli/internal/stage"
	"mrp-cli/internal/transport"
)

// Phase identifies where a run is in its lifecycle. Phases are logged,
// not persisted: a run is short-lived and single-shot.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseResolving Phase = "resolving"
	PhaseStaging   Phase = "staging"
	PhaseDispatch  Phase = "dispatched"
	PhaseRunning   Phase = "running"
	PhaseCompleted Phase = "completed"
	PhaseFailed    Phase = "failed"
)

type (
	// Request describes one model run.
	Request struct {
		// Sources are the configuration layers in precedence order.
		Sources []config.Source
		// Build adjusts document construction (profiles, output dir).
		Build transport.BuildOptions
	}

	// Outcome bundles what a finished run produced.
	Outcome struct {
		// Document is the run document the model received.
		Document *transport.RunDocument
		// Result is the model's exit code and captured output.
		Result *runtime.Result
	}

	// Orchestrator drives a run end to end.
	Orchestrator interface {
		Run(ctx context.Context, req Request) (*Outcome, error)
	}

	// DefaultOrchestrator merges configuration, stages files, builds and
	// validates the run document, and dispatches to an adapter. There is
	// no retry: a failed run is reported, not repeated.
	DefaultOrchestrator struct {
		registry *runtime.Registry
		stager   *stage.Stager
		logger   *log.Logger
	}

	// Option configures a DefaultOrchestrator.
	Option func(*DefaultOrchestrator)
)

// WithRegistry replaces the adapter registry.
func WithRegistry(r *runtime.Registry) Option {
	return func(o *DefaultOrchestrator) { o.registry = r }
}

// WithStager replaces the file stager.
func WithStager(s *stage.Stager) Option {
	return func(o *DefaultOrchestrator) { o.stager = s }
}

// WithLogger replaces the orchestrator's logger.
func WithLogger(l *log.Logger) Option {
	return func(o *DefaultOrchestrator) { o.logger = l }
}

// NewOrchestrator creates an orchestrator with the default adapter
// registry and stager unless configured otherwise.
func NewOrchestrator(opts ...Option) *DefaultOrchestrator {
	o := &DefaultOrchestrator{
		registry: runtime.NewDefaultRegistry(),
		stager:   stage.New(),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one model run. Failures before dispatch return a nil
// Outcome and an error describing what the host got wrong; once the
// model has been dispatched its failures are data, reported through the
// Outcome's Result.
func (o *DefaultOrchestrator) Run(ctx context.Context, req Request) (*Outcome, error) {
	o.setPhase(PhaseResolving)

	merged, err := config.Merge(req.Sources...)
	if err != nil {
		o.setPhase(PhaseFailed)
		return nil, issue.NewErrorContext().
			WithOperation("merge configuration").
			Wrap(err).
			BuildError()
	}

	refs, err := transport.FileRefs(merged)
	if err != nil {
		o.setPhase(PhaseFailed)
		return nil, issue.NewErrorContext().
			WithOperation("read file references").
			Wrap(err).
			BuildError()
	}

	o.setPhase(PhaseStaging)

	staged, err := o.stager.Stage(ctx, refs)
	if err != nil {
		o.setPhase(PhaseFailed)
		return nil, issue.NewErrorContext().
			WithOperation("stage files").
			Wrap(err).
			BuildError()
	}
	defer func() {
		if err := o.stager.Cleanup(); err != nil {
			o.logger.Warn("failed to clean staging directory", "err", err)
		}
	}()

	doc, dispatch, err := transport.Build(merged, staged, req.Build)
	if err != nil {
		o.setPhase(PhaseFailed)
		return nil, issue.NewErrorContext().
			WithOperation("build run document").
			Wrap(err).
			BuildError()
	}

	if err := transport.Validate(doc); err != nil {
		o.setPhase(PhaseFailed)
		return nil, issue.NewErrorContext().
			WithOperation("validate run document").
			Wrap(err).
			BuildError()
	}

	adapter, err := o.registry.Get(runtime.AdapterType(dispatch.Adapter))
	if err != nil {
		o.setPhase(PhaseFailed)
		return nil, err
	}
	if !adapter.Available() {
		o.setPhase(PhaseFailed)
		return nil, fmt.Errorf("adapter %q is not available on this system", adapter.Name())
	}
	if err := adapter.Validate(dispatch); err != nil {
		o.setPhase(PhaseFailed)
		return nil, issue.NewErrorContext().
			WithOperation("validate dispatch").
			WithResource(string(adapter.Name())).
			Wrap(err).
			BuildError()
	}

	if err := prepareOutputDir(doc); err != nil {
		o.setPhase(PhaseFailed)
		return nil, issue.NewErrorContext().
			WithOperation("prepare output directory").
			Wrap(err).
			BuildError()
	}

	o.setPhase(PhaseDispatch)

	ectx := runtime.NewExecutionContext(ctx, doc, dispatch)
	o.logger.Debug("dispatching model",
		"adapter", dispatch.Adapter,
		"execution_id", ectx.ExecutionID,
		"input_hash", doc.Protocol.InputHash)

	o.setPhase(PhaseRunning)

	result, err := adapter.Execute(ectx)
	if err != nil {
		o.setPhase(PhaseFailed)
		return nil, issue.NewErrorContext().
			WithOperation("launch model").
			WithResource(string(adapter.Name())).
			Wrap(err).
			BuildError()
	}

	if result.Success() {
		o.setPhase(PhaseCompleted)
	} else {
		o.setPhase(PhaseFailed)
	}
	o.logger.Debug("model finished",
		"exit_code", result.ExitCode,
		"duration", result.Duration)

	return &Outcome{Document: doc, Result: result}, nil
}

func (o *DefaultOrchestrator) setPhase(p Phase) {
	o.logger.Debug("run phase", "phase", p)
}

// prepareOutputDir creates the output directory for filesystem output so
// the model can write into it immediately.
func prepareOutputDir(doc *transport.RunDocument) error {
	if doc.Output[transport.OutputSpecKey] != transport.OutputSpecFilesystem {
		return nil
	}
	dir, ok := doc.Output[transport.OutputDirKey].(string)
	if !ok || dir == "" {
		return fmt.Errorf("output.spec is %q but output.dir is not set", transport.OutputSpecFilesystem)
	}
	return os.MkdirAll(dir, 0o755)
}
