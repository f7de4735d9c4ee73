// SPDX-License-Identifier: MPL-2.0

package runtime

import "time"

// Result contains the outcome of a model run.
type Result struct {
	// ExitCode is the model's exit code
	ExitCode ExitCode
	// Stdout contains captured standard output
	Stdout []byte
	// Stderr contains captured standard error
	Stderr []byte
	// Duration is how long the model ran
	Duration time.Duration
}

// Success returns true if the model exited with code zero.
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess()
}

// TimedOut returns true if the model was killed at its deadline.
func (r *Result) TimedOut() bool {
	return r.ExitCode.IsTimeout()
}
