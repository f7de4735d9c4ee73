// SPDX-License-Identifier: MPL-2.0

// Package settings loads tool-level configuration for mrp.
//
// Settings are distinct from the per-run configuration merged by
// internal/config: they control how the tool itself behaves (default
// adapter, staging limits, UI verbosity) rather than what a model run
// contains. Values come from defaults, an optional TOML file under the
// platform config directory, and MRP_* environment variables, in that
// order of precedence.
package settings
