// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE validation utilities.
//
// The package consolidates the schema-validation pattern used by the
// transport layer: compile the embedded schema, unify a Go value with a
// schema definition, and surface validation failures with JSON-path
// prefixed error messages.
package cueutil
