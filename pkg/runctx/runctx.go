// SPDX-License-Identifier: MPL-2.0

// Package runctx is the model-side companion to the run pipeline. A
// model written in Go reads its run document from stdin, inspects its
// input and staged files, and writes results where the output section
// says to.
//
//	rc, err := runctx.FromStdin()
//	if err != nil {
//		return err
//	}
//	trials := rc.InputInt("trials", 100)
//	out, err := rc.CreateOutput("results.csv")
package runctx

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"mrp-cli/internal/transport"
)

// Reserved input keys interpreted by the SDK rather than the model.
const (
	SeedKey      = "seed"
	ReplicateKey = "replicate"
)

// RunContext wraps a run document with model-side accessors.
type RunContext struct {
	doc    *transport.RunDocument
	stdout io.Writer
}

// FromStdin reads the run document from standard input. This is how a
// process-adapter model receives its context.
func FromStdin() (*RunContext, error) {
	return FromReader(os.Stdin)
}

// FromReader reads the run document from r.
func FromReader(r io.Reader) (*RunContext, error) {
	var doc transport.RunDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode run document: %w", err)
	}
	return FromDocument(&doc), nil
}

// FromDocument wraps an in-memory document. Inline models use this with
// the document their callable receives.
func FromDocument(doc *transport.RunDocument) *RunContext {
	return &RunContext{doc: doc, stdout: os.Stdout}
}

// SetStdout redirects stdout-spec output, which inline models need since
// their "stdout" is a writer handed to the callable.
func (rc *RunContext) SetStdout(w io.Writer) {
	rc.stdout = w
}

// Version returns the document's protocol version.
func (rc *RunContext) Version() string {
	return rc.doc.Protocol.Version
}

// InputHash returns the deterministic digest of the run's logical input.
func (rc *RunContext) InputHash() string {
	return rc.doc.Protocol.InputHash
}

// Input returns the input section without the reserved keys.
func (rc *RunContext) Input() map[string]any {
	out := make(map[string]any, len(rc.doc.Input))
	for k, v := range rc.doc.Input {
		if k == SeedKey || k == ReplicateKey {
			continue
		}
		out[k] = v
	}
	return out
}

// Seed returns the run's random seed, if one was configured.
func (rc *RunContext) Seed() (int64, bool) {
	return rc.inputInt(SeedKey)
}

// Replicate returns the run's replicate index, if one was configured.
func (rc *RunContext) Replicate() (int64, bool) {
	return rc.inputInt(ReplicateKey)
}

// InputInt returns a numeric input value, falling back to def when the
// key is absent or not a number.
func (rc *RunContext) InputInt(key string, def int64) int64 {
	if v, ok := rc.inputInt(key); ok {
		return v
	}
	return def
}

// InputString returns a string input value, falling back to def.
func (rc *RunContext) InputString(key, def string) string {
	if s, ok := rc.doc.Input[key].(string); ok {
		return s
	}
	return def
}

func (rc *RunContext) inputInt(key string) (int64, bool) {
	switch v := rc.doc.Input[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// Files returns the staged file map of logical name to local path.
func (rc *RunContext) Files() map[string]string {
	model, ok := rc.doc.Model[transport.FilesKey].(map[string]any)
	if !ok {
		return map[string]string{}
	}
	files := make(map[string]string, len(model))
	for name, path := range model {
		if s, ok := path.(string); ok {
			files[name] = s
		}
	}
	return files
}

// File returns the local path of a staged file by logical name.
func (rc *RunContext) File(name string) (string, error) {
	path, ok := rc.Files()[name]
	if !ok {
		return "", fmt.Errorf("no staged file named %q", name)
	}
	return path, nil
}

// OutputSpec returns the output section's spec value.
func (rc *RunContext) OutputSpec() string {
	s, _ := rc.doc.Output[transport.OutputSpecKey].(string)
	return s
}

// OutputDir returns the output directory for filesystem output.
func (rc *RunContext) OutputDir() (string, error) {
	if rc.OutputSpec() != transport.OutputSpecFilesystem {
		return "", fmt.Errorf("output.spec is %q, not %q", rc.OutputSpec(), transport.OutputSpecFilesystem)
	}
	dir, ok := rc.doc.Output[transport.OutputDirKey].(string)
	if !ok || dir == "" {
		return "", fmt.Errorf("output.dir is not set")
	}
	return dir, nil
}

// CreateOutput opens a named output stream. For filesystem output it
// creates the file under the output directory; for stdout output it
// returns the model's stdout and the name is ignored.
func (rc *RunContext) CreateOutput(name string) (io.WriteCloser, error) {
	switch rc.OutputSpec() {
	case transport.OutputSpecFilesystem:
		dir, err := rc.OutputDir()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		return os.Create(filepath.Join(dir, name))
	case transport.OutputSpecStdout, "":
		return nopCloser{rc.stdout}, nil
	default:
		return nil, fmt.Errorf("unsupported output.spec %q", rc.OutputSpec())
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
