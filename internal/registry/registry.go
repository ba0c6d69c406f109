// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/invowk/rootindex/internal/dag"
	"github.com/invowk/rootindex/internal/trie"
	"github.com/invowk/rootindex/pkg/fspath"
	"github.com/invowk/rootindex/pkg/projectmodel"
	"github.com/invowk/rootindex/pkg/types"
)

type (
	// Config holds the parameters for a Registry.
	Config struct {
		// Case selects case-sensitive or case-insensitive path keys.
		Case fspath.Case
		// Logger receives rebuild diagnostics. A nil logger discards them.
		Logger *log.Logger
	}

	// Input is everything one rebuild reads.
	Input struct {
		Project projectmodel.Project
		// Unloaded names the modules kept out of the live model. Only this set
		// is consulted; Module.Unloaded seeds it through the unloaded registry.
		Unloaded map[types.ModuleName]bool
	}

	// Registry owns the current snapshot. Rebuild calls are serialized; reads
	// through Current never block.
	Registry struct {
		cfg        Config
		logger     *log.Logger
		mu         sync.Mutex
		generation uint64
		current    atomic.Pointer[Snapshot]
	}
)

// New creates a Registry whose current snapshot is empty.
func New(cfg Config) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	r := &Registry{cfg: cfg, logger: logger}
	r.current.Store(emptySnapshot(cfg.Case))
	return r
}

// Current returns the most recently published snapshot.
func (r *Registry) Current() *Snapshot { return r.current.Load() }

// Rebuild recomputes the snapshot from in and publishes it. Configuration
// problems are returned as a *RebuildError alongside the published snapshot.
// A cancelled context aborts the rebuild and leaves the current snapshot in
// place.
func (r *Registry) Rebuild(ctx context.Context, in Input) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := newBuilder(r.cfg.Case, r.generation+1, r.logger)
	if err := b.build(ctx, in); err != nil {
		return nil, err
	}
	r.generation++
	snap := b.snapshot()
	r.current.Store(snap)

	r.logger.Debug("snapshot published",
		"generation", snap.generation,
		"modules", len(snap.modules),
		"libraries", len(snap.libraries),
		"roots", snap.trie.Len())

	if len(snap.errors) > 0 {
		for _, ce := range snap.errors {
			r.logger.Warn("skipped root", "error", ce)
		}
		return snap, &RebuildError{Generation: snap.generation, Errors: slices.Clone(snap.errors)}
	}
	return snap, nil
}

// IsConfigurationOnly reports whether err carries only configuration problems,
// which means a snapshot was still published.
func IsConfigurationOnly(err error) bool {
	var re *RebuildError
	return errors.As(err, &re)
}

func emptySnapshot(cs fspath.Case) *Snapshot {
	return &Snapshot{
		cs:         cs,
		trie:       trie.New[Marker](cs),
		graph:      dag.New(),
		moduleIdx:  make(map[types.ModuleName]*ModuleEntry),
		libraryIdx: make(map[string]*LibraryEntry),
	}
}
