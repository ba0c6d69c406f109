// SPDX-License-Identifier: MPL-2.0

// Package registry turns a project model into an immutable, queryable
// snapshot: a path trie of root markers, a dependency graph and the entity
// tables the resolver reads.
//
// Rebuild is the only way to change what the index knows. It is
// non-incremental: every call recomputes the whole snapshot from its input
// and publishes it with an atomic pointer swap. Readers holding an older
// snapshot keep a consistent view until they drop it.
//
// Malformed roots never fail a rebuild. Each one is skipped, reported as a
// projectmodel.ConfigurationError and aggregated into a *RebuildError that is
// returned together with the published snapshot.
package registry
