// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error context and remediation.
//
// ActionableError carries the operation, the resource involved, and
// suggestions for fixing the problem. The issue catalog maps recurring
// failure classes (merge conflicts, staging failures, unknown adapters)
// to markdown remediation text rendered with glamour at the CLI boundary.
package issue
