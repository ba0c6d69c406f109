// SPDX-License-Identifier: MPL-2.0

// Package fileindex assembles the project file index: it loads the project
// model from a Source, rebuilds the root registry on request and hands out
// resolvers bound to the current snapshot.
//
// Rebuilds have a single writer. Rescan runs one synchronously; RequestRescan
// queues one for the Run loop, coalescing requests that arrive while a
// rebuild is pending. Readers never wait for a rebuild: a resolver keeps
// answering from the snapshot it was created with.
package fileindex
