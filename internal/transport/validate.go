// SPDX-License-Identifier: MPL-2.0

package transport

import (
	_ "embed"
	"fmt"

	"mrp-cli/pkg/cueutil"
)

//go:embed schema.cue
var documentSchema string

// Validate checks a run document against the transport schema and the
// dispatch containment rule. It runs on every document before dispatch,
// including documents assembled programmatically.
func Validate(doc *RunDocument) error {
	if doc == nil {
		return fmt.Errorf("run document is nil")
	}

	for _, key := range dispatchKeys {
		if _, ok := doc.Runtime[key]; ok {
			return fmt.Errorf("runtime.%s is an execution detail and must not appear in the run document", key)
		}
	}

	return cueutil.ValidateValue(documentSchema, "#RunDocument", doc, "run document")
}
