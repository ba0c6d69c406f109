// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands for rootindex.
//
// Every command loads the configuration, opens a file index over the project
// descriptor and answers one kind of query against the resulting snapshot.
// The watch command keeps the index open and rescans it on filesystem
// changes.
package cmd
