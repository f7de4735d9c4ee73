// SPDX-License-Identifier: MPL-2.0

// Package stage resolves a run's logical file references to local
// filesystem paths before the model starts.
//
// References are a map of logical name to URI. Bare paths and file: URIs
// are verified to exist and absolutized in place; http(s) URIs are
// downloaded into a per-run staging directory. Staging is all-or-nothing:
// any failing reference aborts the whole operation, the staging
// directory is cleaned up, and the error names the offending logical
// name and URI.
package stage
