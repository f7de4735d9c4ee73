// SPDX-License-Identifier: MPL-2.0

// Package transport turns a merged run configuration into the canonical
// run document handed to a runtime adapter.
//
// The document has exactly five sections: generated mrp metadata
// (protocol version and input hash), runtime, model, input, and output.
// Execution-only keys (command, args, script, callable, workdir) are
// extracted into a DispatchConfig and never appear in the document, so
// the model sees how to behave but not how it was launched. The built
// document is validated against a CUE schema before dispatch.
package transport
