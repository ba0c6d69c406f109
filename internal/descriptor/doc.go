// SPDX-License-Identifier: MPL-2.0

// Package descriptor loads project descriptors into a projectmodel.Project.
//
// A descriptor is a CUE or TOML file listing modules with their content,
// source and excluded roots, their ordered dependencies and their compiler
// output settings, plus the project libraries and SDKs. Both formats are
// validated against one embedded CUE schema; TOML documents are decoded to
// plain values first. Relative paths resolve against the directory holding
// the descriptor.
package descriptor
