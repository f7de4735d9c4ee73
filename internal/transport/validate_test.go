// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"strings"
	"testing"
)

func validDocument(t *testing.T) *RunDocument {
	t.Helper()
	doc, _, err := Build(baseConfig(), nil, BuildOptions{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return doc
}

func TestValidateAcceptsBuiltDocument(t *testing.T) {
	if err := Validate(validDocument(t)); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidateRejectsDispatchLeak(t *testing.T) {
	doc := validDocument(t)
	doc.Runtime["command"] = "python"

	err := Validate(doc)
	if err == nil {
		t.Fatal("Validate() should reject runtime.command in the document")
	}
	if !strings.Contains(err.Error(), "runtime.command") {
		t.Errorf("error = %v, want mention of runtime.command", err)
	}
}

func TestValidateRejectsBadHash(t *testing.T) {
	doc := validDocument(t)
	doc.Protocol.InputHash = "not-a-hash"

	if err := Validate(doc); err == nil {
		t.Fatal("Validate() should reject a malformed input hash")
	}
}

func TestValidateRejectsWrongOutputSpecType(t *testing.T) {
	doc := validDocument(t)
	doc.Output["spec"] = 42

	if err := Validate(doc); err == nil {
		t.Fatal("Validate() should reject a non-string output.spec")
	}
}

func TestValidateRejectsMissingModelName(t *testing.T) {
	doc := validDocument(t)
	delete(doc.Model, "name")

	if err := Validate(doc); err == nil {
		t.Fatal("Validate() should reject a document without model.name")
	}
}

func TestValidateRejectsMissingRuntimeSpec(t *testing.T) {
	doc := validDocument(t)
	delete(doc.Runtime, "spec")

	if err := Validate(doc); err == nil {
		t.Fatal("Validate() should reject a document without runtime.spec")
	}
}

func TestValidateNilDocument(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Fatal("Validate(nil) should fail")
	}
}
