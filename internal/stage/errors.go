// SPDX-License-Identifier: MPL-2.0

package stage

import "fmt"

type (
	// UnsupportedSchemeError reports a file reference with a URI scheme
	// the stager does not handle.
	UnsupportedSchemeError struct {
		Name   string
		URI    string
		Scheme string
	}

	// Error reports a file reference that could not be staged.
	Error struct {
		Name  string
		URI   string
		Cause error
	}
)

func (e *UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("file %q: unsupported URI scheme %q in %q (supported: bare paths, file, http, https)",
		e.Name, e.Scheme, e.URI)
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to stage file %q from %q: %v", e.Name, e.URI, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
