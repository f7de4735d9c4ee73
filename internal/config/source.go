// SPDX-License-Identifier: MPL-2.0

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Source supplies one layer of run configuration.
type Source interface {
	// Describe identifies the source for diagnostics (a path, "--set", ...).
	Describe() string

	// Load produces the source's nested key-value tree.
	Load() (map[string]any, error)
}

type (
	fileSource struct {
		path string
	}

	valuesSource struct {
		name   string
		values map[string]any
	}

	overridesSource struct {
		pairs []string
	}
)

// NewFileSource creates a source backed by a TOML, YAML, or JSON file.
// The format is chosen by extension. A path without a recognized
// extension is tried with the ".mrp.toml" convention suffix.
func NewFileSource(path string) Source {
	return &fileSource{path: path}
}

// NewValuesSource creates a source backed by an in-memory tree. The name
// is used only for diagnostics.
func NewValuesSource(name string, values map[string]any) Source {
	return &valuesSource{name: name, values: values}
}

// NewOverridesSource creates a source from dotted-path override pairs in
// the form "section.key=value" (the CLI's --set syntax).
func NewOverridesSource(pairs []string) Source {
	return &overridesSource{pairs: pairs}
}

func (s *fileSource) Describe() string { return s.path }

func (s *fileSource) Load() (map[string]any, error) {
	path, err := resolveConfigPath(s.path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	tree := map[string]any{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .toml, .yaml, .yml, or .json)", filepath.Ext(path))
	}

	if err := resolveInputRef(tree, filepath.Dir(path)); err != nil {
		return nil, err
	}

	return tree, nil
}

// resolveInputRef replaces a string-valued input section with the
// contents of the JSON file it names, resolved relative to the config
// file. This lets a run config point at a shared parameter file:
//
//	input = "params/baseline.json"
func resolveInputRef(tree map[string]any, baseDir string) error {
	ref, ok := tree["input"].(string)
	if !ok {
		return nil
	}

	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, ref)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read input file %s: %w", ref, err)
	}

	input := map[string]any{}
	if err := json.Unmarshal(data, &input); err != nil {
		return fmt.Errorf("failed to parse input file %s: %w", ref, err)
	}

	tree["input"] = input
	return nil
}

// resolveConfigPath applies the ".mrp.toml" naming convention: a path
// that does not exist as given is retried with the suffix appended, so
// "mrp run diceroll" finds diceroll.mrp.toml.
func resolveConfigPath(path string) (string, error) {
	if fileExists(path) {
		return path, nil
	}

	conventional := path + ".mrp.toml"
	if fileExists(conventional) {
		return conventional, nil
	}

	return "", fmt.Errorf("config file not found: %s (also tried %s)", path, conventional)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (s *valuesSource) Describe() string { return s.name }

func (s *valuesSource) Load() (map[string]any, error) {
	if s.values == nil {
		return map[string]any{}, nil
	}
	return s.values, nil
}

func (s *overridesSource) Describe() string { return "--set" }

func (s *overridesSource) Load() (map[string]any, error) {
	tree := map[string]any{}

	for _, pair := range s.pairs {
		path, value, err := ParseOverride(pair)
		if err != nil {
			return nil, err
		}

		node := tree
		for _, seg := range path[:len(path)-1] {
			child, ok := node[seg]
			if !ok {
				next := map[string]any{}
				node[seg] = next
				node = next
				continue
			}
			childMap, ok := child.(map[string]any)
			if !ok {
				return nil, &MergeConflictError{Path: strings.Join(path, ".")}
			}
			node = childMap
		}
		node[path[len(path)-1]] = value
	}

	return tree, nil
}
