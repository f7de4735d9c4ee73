// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Thing: {
	name: string
	size?: int & >=0
}
`

func TestValidateValue_Valid(t *testing.T) {
	value := map[string]any{"name": "box", "size": 3}
	if err := ValidateValue(testSchema, "#Thing", value, "thing"); err != nil {
		t.Errorf("ValidateValue() error = %v, want nil", err)
	}
}

func TestValidateValue_WrongType(t *testing.T) {
	value := map[string]any{"name": "box", "size": "large"}
	err := ValidateValue(testSchema, "#Thing", value, "thing")
	if err == nil {
		t.Fatal("ValidateValue() error = nil, want type conflict")
	}
	if !strings.Contains(err.Error(), "size") {
		t.Errorf("ValidateValue() error = %q, want mention of 'size'", err)
	}
}

func TestValidateValue_MissingDefinition(t *testing.T) {
	err := ValidateValue(testSchema, "#Missing", map[string]any{}, "thing")
	if err == nil || !strings.Contains(err.Error(), "#Missing") {
		t.Errorf("ValidateValue() error = %v, want missing definition error", err)
	}
}

func TestFormatPath(t *testing.T) {
	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"model"}, "model"},
		{[]string{"model", "files", "weights"}, "model.files.weights"},
		{[]string{"cmds", "0", "name"}, "cmds[0].name"},
	}
	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
