// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func outputSection() map[string]any {
	return map[string]any{
		"format": "csv",
		"profile": map[string]any{
			"stdout": map[string]any{"spec": "stdout"},
			"file":   map[string]any{"spec": "filesystem", "dir": "results"},
		},
	}
}

func TestResolveSectionExplicitSelection(t *testing.T) {
	resolved, err := ResolveSection("output", outputSection(), "file")
	if err != nil {
		t.Fatalf("ResolveSection() error = %v", err)
	}

	if resolved["spec"] != "filesystem" {
		t.Errorf("spec = %v, want filesystem", resolved["spec"])
	}
	if resolved["dir"] != "results" {
		t.Errorf("dir = %v, want results", resolved["dir"])
	}
	if resolved["format"] != "csv" {
		t.Errorf("format = %v, want bare keys preserved", resolved["format"])
	}
	if _, ok := resolved[ProfileKey]; ok {
		t.Error("resolved section should not retain the profile table")
	}
}

func TestResolveSectionProfileOmitsBaseKey(t *testing.T) {
	// Selecting the stdout profile must not inherit the file profile's
	// dir: variants are alternatives, not layers over each other.
	resolved, err := ResolveSection("output", outputSection(), "stdout")
	if err != nil {
		t.Fatalf("ResolveSection() error = %v", err)
	}

	if resolved["spec"] != "stdout" {
		t.Errorf("spec = %v, want stdout", resolved["spec"])
	}
	if _, ok := resolved["dir"]; ok {
		t.Errorf("dir should be absent for the stdout profile, got %v", resolved["dir"])
	}
}

func TestResolveSectionUnknownProfile(t *testing.T) {
	_, err := ResolveSection("output", outputSection(), "nope")

	var unknown *UnknownProfileError
	if !errors.As(err, &unknown) {
		t.Fatalf("error = %v, want UnknownProfileError", err)
	}
	if unknown.Name != "nope" || unknown.Section != "output" {
		t.Errorf("unexpected error detail: %+v", unknown)
	}
}

func TestResolveSectionAmbiguousWithoutSelection(t *testing.T) {
	_, err := ResolveSection("output", outputSection(), "")

	var ambiguous *AmbiguousProfileError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("error = %v, want AmbiguousProfileError", err)
	}
}

func TestResolveSectionDefaultProfile(t *testing.T) {
	section := map[string]any{
		"profile": map[string]any{
			"default": map[string]any{"spec": "stdout"},
			"file":    map[string]any{"spec": "filesystem", "dir": "out"},
		},
	}

	resolved, err := ResolveSection("output", section, "")
	if err != nil {
		t.Fatalf("ResolveSection() error = %v", err)
	}
	if resolved["spec"] != "stdout" {
		t.Errorf("spec = %v, want the default profile", resolved["spec"])
	}
}

func TestResolveSectionSoleProfileImplicit(t *testing.T) {
	section := map[string]any{
		"profile": map[string]any{
			"only": map[string]any{"spec": "stdout"},
		},
	}

	resolved, err := ResolveSection("output", section, "")
	if err != nil {
		t.Fatalf("ResolveSection() error = %v", err)
	}
	if resolved["spec"] != "stdout" {
		t.Errorf("spec = %v, want the sole profile", resolved["spec"])
	}
}

func TestResolveSectionNoProfilesPassThrough(t *testing.T) {
	section := map[string]any{"spec": "stdout"}

	resolved, err := ResolveSection("output", section, "")
	if err != nil {
		t.Fatalf("ResolveSection() error = %v", err)
	}
	if resolved["spec"] != "stdout" {
		t.Errorf("section should pass through untouched, got %v", resolved)
	}
}
