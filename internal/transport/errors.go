// SPDX-License-Identifier: MPL-2.0

package transport

import "fmt"

type (
	// UnknownSectionError reports a top-level key in the merged config
	// that is not one of the transport sections.
	UnknownSectionError struct {
		Name string
	}

	// ReservedSectionError reports a config source that tries to supply
	// the generated metadata section itself.
	ReservedSectionError struct {
		Name string
	}
)

func (e *UnknownSectionError) Error() string {
	return fmt.Sprintf("unknown top-level section %q (expected runtime, model, input, or output)", e.Name)
}

func (e *ReservedSectionError) Error() string {
	return fmt.Sprintf("section %q is generated by the pipeline and cannot be set in configuration", e.Name)
}
