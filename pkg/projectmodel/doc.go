// SPDX-License-Identifier: MPL-2.0

// Package projectmodel declares the read-only project model consumed by the
// file index: modules with their content, source and excluded roots, libraries
// at every level, SDKs, and the dependency edges between them.
//
// The model is plain data. Nothing here resolves paths or walks the graph;
// the registry turns a Project into an immutable snapshot and the resolver
// answers queries against it. Order entries are defined here because they are
// part of the public answer vocabulary, but they are only ever produced by the
// resolver.
//
// File organization:
//   - enums.go: Scope, LibraryLevel, SourceKind, TargetKind and their parsers
//   - model.go: Project, Module, ContentRoot, SourceRoot, Library, Sdk, DependencyEdge
//   - entity.go: EntityRef identifiers used as graph node ids
//   - order_entry.go: OrderEntry, the materialized dependency view
//   - predicate.go: ExclusionPredicate and its stock implementations
//   - errors.go: ConfigurationError
package projectmodel
