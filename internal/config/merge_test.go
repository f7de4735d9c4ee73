// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMergePrecedence(t *testing.T) {
	base := NewValuesSource("base", map[string]any{
		"runtime": map[string]any{"spec": "process", "timeout": int64(30)},
	})
	over := NewValuesSource("over", map[string]any{
		"runtime": map[string]any{"timeout": int64(5)},
	})

	merged, err := Merge(base, over)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	runtime := merged["runtime"].(map[string]any)
	if runtime["spec"] != "process" {
		t.Errorf("spec = %v, want preserved base value", runtime["spec"])
	}
	if runtime["timeout"] != int64(5) {
		t.Errorf("timeout = %v, want later source to win", runtime["timeout"])
	}
}

func TestMergeArraysReplaceWholesale(t *testing.T) {
	base := NewValuesSource("base", map[string]any{
		"runtime": map[string]any{"args": []any{"-m", "old"}},
	})
	over := NewValuesSource("over", map[string]any{
		"runtime": map[string]any{"args": []any{"new"}},
	})

	merged, err := Merge(base, over)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	args := merged["runtime"].(map[string]any)["args"]
	if !reflect.DeepEqual(args, []any{"new"}) {
		t.Errorf("args = %v, want replacement not concatenation", args)
	}
}

func TestMergeTableScalarConflict(t *testing.T) {
	base := NewValuesSource("base", map[string]any{
		"model": map[string]any{"files": map[string]any{"w": "w.bin"}},
	})
	over := NewValuesSource("over", map[string]any{
		"model": map[string]any{"files": "nope"},
	})

	_, err := Merge(base, over)
	var conflict *MergeConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Merge() error = %v, want MergeConflictError", err)
	}
	if conflict.Path != "model.files" {
		t.Errorf("conflict path = %q, want %q", conflict.Path, "model.files")
	}
}

func TestMergeDoesNotMutateSources(t *testing.T) {
	tree := map[string]any{
		"runtime": map[string]any{"spec": "process"},
	}
	base := NewValuesSource("base", tree)
	over := NewValuesSource("over", map[string]any{
		"runtime": map[string]any{"spec": "inline"},
	})

	if _, err := Merge(base, over); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if tree["runtime"].(map[string]any)["spec"] != "process" {
		t.Error("Merge() mutated a source tree")
	}
}

func TestFileSourceTOML(t *testing.T) {
	path := writeFile(t, "run.mrp.toml", `
[runtime]
spec = "process"
command = "echo"

[input]
seed = 42
`)

	tree, err := NewFileSource(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if tree["runtime"].(map[string]any)["command"] != "echo" {
		t.Errorf("unexpected tree: %v", tree)
	}
	if tree["input"].(map[string]any)["seed"] != int64(42) {
		t.Errorf("seed = %v (%T), want int64 42", tree["input"].(map[string]any)["seed"], tree["input"].(map[string]any)["seed"])
	}
}

func TestFileSourceYAML(t *testing.T) {
	path := writeFile(t, "run.yaml", `
runtime:
  spec: inline
input:
  trials: 100
`)

	tree, err := NewFileSource(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if tree["runtime"].(map[string]any)["spec"] != "inline" {
		t.Errorf("unexpected tree: %v", tree)
	}
}

func TestFileSourceConventionSuffix(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "diceroll.mrp.toml")
	if err := os.WriteFile(full, []byte("[runtime]\nspec = \"process\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tree, err := NewFileSource(filepath.Join(dir, "diceroll")).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if tree["runtime"].(map[string]any)["spec"] != "process" {
		t.Errorf("unexpected tree: %v", tree)
	}
}

func TestFileSourceResolvesInputReference(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "params.json"), []byte(`{"seed": 7, "trials": 50}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := filepath.Join(dir, "run.mrp.toml")
	content := `input = "params.json"

[runtime]
spec = "process"
`
	if err := os.WriteFile(cfg, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tree, err := NewFileSource(cfg).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	input, ok := tree["input"].(map[string]any)
	if !ok {
		t.Fatalf("input = %T, want the referenced file's contents", tree["input"])
	}
	if input["seed"] != float64(7) {
		t.Errorf("input.seed = %v, want 7", input["seed"])
	}
}

func TestFileSourceMissingInputReference(t *testing.T) {
	path := writeFile(t, "run.mrp.toml", `input = "absent.json"`)

	if _, err := NewFileSource(path).Load(); err == nil {
		t.Fatal("Load() should fail when the referenced input file is missing")
	}
}

func TestFileSourceMissing(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "absent")).Load()
	if err == nil {
		t.Fatal("Load() should fail for a missing file")
	}
}

func TestFileSourceUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "run.ini", "[runtime]\nspec=process\n")

	_, err := NewFileSource(path).Load()
	if err == nil {
		t.Fatal("Load() should reject unknown extensions")
	}
}
