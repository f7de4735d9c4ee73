// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// ValidateValue checks a Go value against a definition in an embedded CUE
// schema. The flow is:
//
//  1. Compile the schema and look up defPath (e.g. "#RunDocument")
//  2. Encode the Go value into CUE
//  3. Unify and validate with concrete values required
//
// The name parameter identifies the value in error messages (a file path
// or a logical label such as "run document").
func ValidateValue(schema, defPath string, value any, name string) error {
	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(schema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	def := schemaValue.LookupPath(cue.ParsePath(defPath))
	if def.Err() != nil {
		return fmt.Errorf("internal error: schema definition %s not found: %w", defPath, def.Err())
	}

	encoded := ctx.Encode(value)
	if encoded.Err() != nil {
		return fmt.Errorf("failed to encode %s for validation: %w", name, encoded.Err())
	}

	unified := def.Unify(encoded)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return FormatError(err, name)
	}

	return nil
}
