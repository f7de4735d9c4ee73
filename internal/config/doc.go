// SPDX-License-Identifier: MPL-2.0

// Package config merges heterogeneous run configuration sources into a
// single nested map ready for transport building.
//
// Sources are ordered by precedence: each later source deep-merges over
// the accumulated result, so command-line overrides beat programmatic
// values, which beat config files. Tables merge key by key, scalars and
// arrays replace wholesale, and a table colliding with a non-table is a
// merge conflict reported with its full dotted path.
//
// The package also resolves named profiles within a section and parses
// the dotted-path override syntax used by the CLI's --set flag.
package config
