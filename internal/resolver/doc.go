// SPDX-License-Identifier: MPL-2.0

// Package resolver answers path queries against one registry snapshot:
// classification, order entries, package names and indexable-file iteration.
//
// Resolution walks the ancestors of a path from the filesystem root towards
// the path and applies these rules, deepest marker last:
//
//   - a content root starts a module verdict and resets any earlier exclusion;
//   - a source root of the content module scopes the path as source and
//     re-includes it;
//   - an excluded root (or module output) of the content module excludes it,
//     and beats an inclusion of the same module declared on the same node;
//   - a project-wide output root excludes for every module;
//   - an ignored name excludes until a root declared at or below it.
//
// Library and SDK visibility is computed separately: a library sees a path
// under one of its roots unless one of its excluded roots or its exclusion
// predicate hides it. The classification prefers module content over library
// content, and a path excluded from its module but visible to a library is
// library content.
//
// A Resolver never locks and never changes. Bind a new one to each snapshot.
package resolver
