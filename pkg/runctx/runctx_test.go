// SPDX-License-Identifier: MPL-2.0

package runctx

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mrp-cli/internal/transport"
)

func filesystemDoc(dir string) *transport.RunDocument {
	return &transport.RunDocument{
		Protocol: transport.Protocol{Version: transport.ProtocolVersion, InputHash: "0123456789abcdef"},
		Runtime:  map[string]any{"spec": "process"},
		Model: map[string]any{
			"files": map[string]any{"weights": "/tmp/staged/weights.bin"},
		},
		Input: map[string]any{
			"seed":      float64(42),
			"replicate": float64(3),
			"trials":    float64(100),
			"label":     "run-a",
		},
		Output: map[string]any{"spec": "filesystem", "dir": dir},
	}
}

func TestFromReader(t *testing.T) {
	payload := `{
		"mrp": {"version": "0.0.1", "input_hash": "0123456789abcdef"},
		"runtime": {"spec": "process"},
		"model": {},
		"input": {"trials": 10},
		"output": {"spec": "stdout"}
	}`

	rc, err := FromReader(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("FromReader() error = %v", err)
	}
	if rc.Version() != "0.0.1" {
		t.Errorf("Version() = %q, want 0.0.1", rc.Version())
	}
	if rc.InputHash() != "0123456789abcdef" {
		t.Errorf("InputHash() = %q", rc.InputHash())
	}
	if rc.InputInt("trials", 0) != 10 {
		t.Errorf("InputInt(trials) = %d, want 10", rc.InputInt("trials", 0))
	}
}

func TestFromReaderRejectsGarbage(t *testing.T) {
	if _, err := FromReader(strings.NewReader("not json")); err == nil {
		t.Fatal("FromReader() should reject malformed documents")
	}
}

func TestReservedInputKeys(t *testing.T) {
	rc := FromDocument(filesystemDoc(t.TempDir()))

	seed, ok := rc.Seed()
	if !ok || seed != 42 {
		t.Errorf("Seed() = %d, %v, want 42, true", seed, ok)
	}
	replicate, ok := rc.Replicate()
	if !ok || replicate != 3 {
		t.Errorf("Replicate() = %d, %v, want 3, true", replicate, ok)
	}

	input := rc.Input()
	if _, ok := input["seed"]; ok {
		t.Error("Input() should not expose the seed key")
	}
	if _, ok := input["replicate"]; ok {
		t.Error("Input() should not expose the replicate key")
	}
	if input["trials"] != float64(100) {
		t.Errorf("Input()[trials] = %v, want 100", input["trials"])
	}
	if rc.InputString("label", "") != "run-a" {
		t.Errorf("InputString(label) = %q, want run-a", rc.InputString("label", ""))
	}
}

func TestSeedAbsent(t *testing.T) {
	rc := FromDocument(&transport.RunDocument{Input: map[string]any{}})
	if _, ok := rc.Seed(); ok {
		t.Error("Seed() should report absence")
	}
}

func TestFiles(t *testing.T) {
	rc := FromDocument(filesystemDoc(t.TempDir()))

	path, err := rc.File("weights")
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if path != "/tmp/staged/weights.bin" {
		t.Errorf("File() = %q", path)
	}

	if _, err := rc.File("absent"); err == nil {
		t.Error("File() should fail for unknown names")
	}
}

func TestCreateOutputFilesystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	rc := FromDocument(filesystemDoc(dir))

	out, err := rc.CreateOutput("data.txt")
	if err != nil {
		t.Fatalf("CreateOutput() error = %v", err)
	}
	if _, err := out.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	out.Close()

	content, err := os.ReadFile(filepath.Join(dir, "data.txt"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(content) != "hello" {
		t.Errorf("output = %q, want hello", content)
	}
}

func TestCreateOutputStdout(t *testing.T) {
	rc := FromDocument(&transport.RunDocument{
		Output: map[string]any{"spec": "stdout"},
	})

	var buf bytes.Buffer
	rc.SetStdout(&buf)

	out, err := rc.CreateOutput("ignored.txt")
	if err != nil {
		t.Fatalf("CreateOutput() error = %v", err)
	}
	out.Write([]byte("to stdout"))
	out.Close()

	if buf.String() != "to stdout" {
		t.Errorf("stdout = %q", buf.String())
	}
}

func TestOutputDirRequiresFilesystemSpec(t *testing.T) {
	rc := FromDocument(&transport.RunDocument{
		Output: map[string]any{"spec": "stdout"},
	})
	if _, err := rc.OutputDir(); err == nil {
		t.Error("OutputDir() should fail for stdout output")
	}
}

func TestWriteCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	rc := FromDocument(filesystemDoc(dir))

	err := rc.WriteCSV("rolls.csv",
		[]string{"trial", "value"},
		[][]string{{"0", "4"}, {"1", "6"}})
	if err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "rolls.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 || records[0][0] != "trial" || records[2][1] != "6" {
		t.Errorf("records = %v", records)
	}
}

func TestWriteJSON(t *testing.T) {
	rc := FromDocument(&transport.RunDocument{
		Output: map[string]any{"spec": "stdout"},
	})

	var buf bytes.Buffer
	rc.SetStdout(&buf)

	if err := rc.WriteJSON("result.json", map[string]int{"total": 7}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"total": 7`) {
		t.Errorf("output = %q", buf.String())
	}
}
