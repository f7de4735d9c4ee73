// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"encoding/json"
	"fmt"
	"time"

	"mrp-cli/internal/config"
)

// ProtocolVersion identifies the run document format.
const ProtocolVersion = "0.0.1"

// Section names of the run document.
const (
	SectionProtocol = "mrp"
	SectionRuntime  = "runtime"
	SectionModel    = "model"
	SectionInput    = "input"
	SectionOutput   = "output"
)

// Output section well-known keys and values.
const (
	OutputSpecKey        = "spec"
	OutputDirKey         = "dir"
	OutputSpecStdout     = "stdout"
	OutputSpecFilesystem = "filesystem"
)

// FilesKey is the model section key holding file references.
const FilesKey = "files"

type (
	// Protocol is the generated metadata section.
	Protocol struct {
		// Version is the run document format version.
		Version string `json:"version"`
		// InputHash is a deterministic digest of the logical run input.
		InputHash string `json:"input_hash"`
	}

	// RunDocument is the canonical document delivered to the model.
	RunDocument struct {
		Protocol Protocol       `json:"mrp"`
		Runtime  map[string]any `json:"runtime"`
		Model    map[string]any `json:"model"`
		Input    map[string]any `json:"input"`
		Output   map[string]any `json:"output"`
	}

	// DispatchConfig carries everything needed to launch the model that
	// must never reach the run document.
	DispatchConfig struct {
		// Adapter names the runtime adapter (runtime.spec).
		Adapter string
		// Command and Args describe the child process for the process adapter.
		Command string
		Args    []string
		// Script is the shell adapter's program text.
		Script string
		// Callable names the inline adapter's registered function.
		Callable string
		// WorkDir is the working directory for the launched model.
		WorkDir string
		// Env holds extra environment variables for the launched model,
		// layered over the host environment.
		Env map[string]string
		// Timeout bounds the model run. Zero means no limit.
		Timeout time.Duration
	}

	// BuildOptions adjust document construction.
	BuildOptions struct {
		// OutputDir overrides output.dir when the resolved output spec
		// is "filesystem".
		OutputDir string
		// RuntimeProfile and OutputProfile select named profiles within
		// their sections.
		RuntimeProfile string
		OutputProfile  string
		// DefaultAdapter is used when runtime.spec is absent.
		DefaultAdapter string
	}
)

// dispatchKeys are runtime section keys that describe how to launch the
// model rather than how it should behave. They are moved to the
// DispatchConfig and stripped from the document.
var dispatchKeys = []string{"command", "args", "script", "callable", "workdir", "env"}

// JSON serializes the document for transport.
func (d *RunDocument) JSON() ([]byte, error) {
	return json.Marshal(d)
}

// FileRefs extracts the model.files reference map from a merged config
// so the stager can resolve it before the document is built.
func FileRefs(merged map[string]any) (map[string]string, error) {
	model, ok := merged[SectionModel].(map[string]any)
	if !ok {
		return map[string]string{}, nil
	}
	raw, ok := model[FilesKey]
	if !ok {
		return map[string]string{}, nil
	}

	files, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("model.%s must be a table of name to URI", FilesKey)
	}

	refs := make(map[string]string, len(files))
	for name, uri := range files {
		s, ok := uri.(string)
		if !ok {
			return nil, fmt.Errorf("model.%s.%s must be a string URI, got %T", FilesKey, name, uri)
		}
		refs[name] = s
	}
	return refs, nil
}

// Build constructs the run document and dispatch config from a merged
// configuration. Profiles are resolved, dispatch keys extracted, the
// input hash computed over the logical document (original file URIs),
// and finally staged paths substituted into model.files.
func Build(merged map[string]any, staged map[string]string, opts BuildOptions) (*RunDocument, *DispatchConfig, error) {
	if err := checkSections(merged); err != nil {
		return nil, nil, err
	}

	runtime, err := resolvedSection(merged, SectionRuntime, opts.RuntimeProfile)
	if err != nil {
		return nil, nil, err
	}
	output, err := resolvedSection(merged, SectionOutput, opts.OutputProfile)
	if err != nil {
		return nil, nil, err
	}
	model, err := resolvedSection(merged, SectionModel, "")
	if err != nil {
		return nil, nil, err
	}
	input, err := resolvedSection(merged, SectionInput, "")
	if err != nil {
		return nil, nil, err
	}

	dispatch, err := extractDispatch(runtime, opts.DefaultAdapter)
	if err != nil {
		return nil, nil, err
	}

	if len(output) == 0 {
		output = map[string]any{OutputSpecKey: OutputSpecStdout}
	}
	if opts.OutputDir != "" && output[OutputSpecKey] == OutputSpecFilesystem {
		output[OutputDirKey] = opts.OutputDir
	}

	doc := &RunDocument{
		Runtime: runtime,
		Model:   model,
		Input:   input,
		Output:  output,
	}

	hash, err := InputHash(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute input hash: %w", err)
	}
	doc.Protocol = Protocol{Version: ProtocolVersion, InputHash: hash}

	if len(staged) > 0 {
		files := make(map[string]any, len(staged))
		for name, path := range staged {
			files[name] = path
		}
		doc.Model[FilesKey] = files
	}

	return doc, dispatch, nil
}

func checkSections(merged map[string]any) error {
	for name := range merged {
		switch name {
		case SectionRuntime, SectionModel, SectionInput, SectionOutput:
		case SectionProtocol:
			return &ReservedSectionError{Name: name}
		default:
			return &UnknownSectionError{Name: name}
		}
	}
	return nil
}

// resolvedSection pulls a section out of the merged config, resolves its
// profile table, and returns a copy safe to mutate.
func resolvedSection(merged map[string]any, name, profile string) (map[string]any, error) {
	raw, ok := merged[name]
	if !ok {
		return map[string]any{}, nil
	}
	section, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("section %q must be a table, got %T", name, raw)
	}

	resolved, err := config.ResolveSection(name, section, profile)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(resolved))
	for k, v := range resolved {
		out[k] = v
	}
	return out, nil
}

func extractDispatch(runtime map[string]any, defaultAdapter string) (*DispatchConfig, error) {
	d := &DispatchConfig{Adapter: defaultAdapter}

	if spec, ok := runtime["spec"]; ok {
		s, ok := spec.(string)
		if !ok {
			return nil, fmt.Errorf("runtime.spec must be a string, got %T", spec)
		}
		d.Adapter = s
	} else if defaultAdapter != "" {
		runtime["spec"] = defaultAdapter
	}
	if d.Adapter == "" {
		return nil, fmt.Errorf("runtime.spec is required and no default adapter is configured")
	}

	if v, ok := runtime["command"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("runtime.command must be a string, got %T", v)
		}
		d.Command = s
	}
	if v, ok := runtime["args"]; ok {
		args, err := toStringSlice(v)
		if err != nil {
			return nil, fmt.Errorf("runtime.args: %w", err)
		}
		d.Args = args
	}
	if v, ok := runtime["script"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("runtime.script must be a string, got %T", v)
		}
		d.Script = s
	}
	if v, ok := runtime["callable"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("runtime.callable must be a string, got %T", v)
		}
		d.Callable = s
	}
	if v, ok := runtime["workdir"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("runtime.workdir must be a string, got %T", v)
		}
		d.WorkDir = s
	}
	if v, ok := runtime["env"]; ok {
		env, err := toStringMap(v)
		if err != nil {
			return nil, fmt.Errorf("runtime.env: %w", err)
		}
		d.Env = env
	}

	// Timeout stays in the document so the model can see its budget.
	if v, ok := runtime["timeout"]; ok {
		secs, err := toSeconds(v)
		if err != nil {
			return nil, fmt.Errorf("runtime.timeout: %w", err)
		}
		if secs < 0 {
			return nil, fmt.Errorf("runtime.timeout must not be negative")
		}
		d.Timeout = secs
	}

	for _, key := range dispatchKeys {
		delete(runtime, key)
	}

	return d, nil
}

func toStringSlice(v any) ([]string, error) {
	switch vals := v.(type) {
	case []string:
		return vals, nil
	case []any:
		out := make([]string, len(vals))
		for i, item := range vals {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %d must be a string, got %T", i, item)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("must be an array of strings, got %T", v)
	}
}

func toStringMap(v any) (map[string]string, error) {
	vals, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("must be a table of string values, got %T", v)
	}
	out := make(map[string]string, len(vals))
	for k, item := range vals {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be a string, got %T", k, item)
		}
		out[k] = s
	}
	return out, nil
}

func toSeconds(v any) (time.Duration, error) {
	switch n := v.(type) {
	case int64:
		return time.Duration(n) * time.Second, nil
	case int:
		return time.Duration(n) * time.Second, nil
	case float64:
		return time.Duration(n * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("must be a number of seconds, got %T", v)
	}
}
