// SPDX-License-Identifier: MPL-2.0

// Package benchmark provides benchmarks for PGO profile generation.
// They cover the hot paths of the index:
//   - descriptor parsing and schema validation (CUE and TOML)
//   - registry rebuilds of a large synthetic project
//   - path classification, order entries and package lookups
//   - concurrent classification through the file index
//
// To generate a profile, run:
//
//	go test ./internal/benchmark -run '^$' -bench . -cpuprofile default.pgo
package benchmark
