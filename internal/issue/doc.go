// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors for the command line: an error
// names the operation that failed and the resource involved, carries fix
// suggestions, and may point at a catalog entry whose Markdown guidance is
// rendered with glamour.
package issue
