// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"strings"
)

type (
	// MergeConflictError reports a key that holds a table in one source
	// and a non-table value in another.
	MergeConflictError struct {
		// Path is the dotted path of the conflicting key.
		Path string
	}

	// UnknownProfileError reports a selected profile name that the
	// section does not define.
	UnknownProfileError struct {
		Section   string
		Name      string
		Available []string
	}

	// AmbiguousProfileError reports a section that defines several
	// profiles with no selection and no "default" entry.
	AmbiguousProfileError struct {
		Section   string
		Available []string
	}
)

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("type conflict at %q: cannot merge a table with a non-table value", e.Path)
}

func (e *UnknownProfileError) Error() string {
	return fmt.Sprintf("unknown profile %q in section %q (available: %s)",
		e.Name, e.Section, strings.Join(e.Available, ", "))
}

func (e *AmbiguousProfileError) Error() string {
	return fmt.Sprintf("section %q defines profiles %s but none was selected and none is named \"default\"",
		e.Section, strings.Join(e.Available, ", "))
}
