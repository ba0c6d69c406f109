// SPDX-License-Identifier: MPL-2.0

package fileindex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/invowk/rootindex/internal/registry"
	"github.com/invowk/rootindex/internal/resolver"
	"github.com/invowk/rootindex/internal/unloaded"
	"github.com/invowk/rootindex/pkg/fspath"
	"github.com/invowk/rootindex/pkg/projectmodel"
	"github.com/invowk/rootindex/pkg/types"
)

// ErrNoSource is returned by New when Config.Source is nil.
var ErrNoSource = errors.New("fileindex: no project source")

type (
	// Source produces the project model read by each rebuild.
	Source interface {
		Load(ctx context.Context) (*projectmodel.Project, error)
	}

	// SourceFunc adapts a function to Source.
	SourceFunc func(ctx context.Context) (*projectmodel.Project, error)

	// Config holds the parameters for an Index.
	Config struct {
		// Source is read on every rescan. Required.
		Source Source
		// Case selects case-sensitive or case-insensitive path keys.
		Case fspath.Case
		// Resolver tunes the resolvers handed out by Resolver.
		Resolver resolver.Options
		// Workers bounds ClassifyAll concurrency. Zero means GOMAXPROCS.
		Workers int
		// Logger receives rebuild diagnostics. A nil logger discards them.
		Logger *log.Logger
		// OnRebuild, when set, is called with every published snapshot while
		// rescans are held off.
		OnRebuild func(*registry.Snapshot)
	}

	// Index is the composition root of the file index. It is safe for
	// concurrent use.
	Index struct {
		cfg      Config
		logger   *log.Logger
		registry *registry.Registry
		unloaded *unloaded.Registry
		requests chan struct{}
		// rescanMu serializes load and rebuild.
		rescanMu sync.Mutex
		seed     sync.Once
		resolver atomic.Pointer[resolver.Resolver]
	}
)

// Load calls f(ctx).
func (f SourceFunc) Load(ctx context.Context) (*projectmodel.Project, error) { return f(ctx) }

// Static returns a Source that always yields project.
func Static(project projectmodel.Project) Source {
	return SourceFunc(func(context.Context) (*projectmodel.Project, error) {
		p := project
		return &p, nil
	})
}

// New creates an Index with an empty snapshot. Call Rescan (or use Open) to
// load the project.
func New(cfg Config) (*Index, error) {
	if cfg.Source == nil {
		return nil, ErrNoSource
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}

	idx := &Index{
		cfg:      cfg,
		logger:   logger,
		requests: make(chan struct{}, 1),
	}
	idx.registry = registry.New(registry.Config{
		Case:   cfg.Case,
		Logger: logger.WithPrefix("registry"),
	})
	idx.unloaded = unloaded.New(idx.rebuildAfterUnload)
	return idx, nil
}

// Open creates an Index and runs the first rescan. Configuration errors in
// individual roots are logged and do not fail Open; they stay available on
// the snapshot.
func Open(ctx context.Context, cfg Config) (*Index, error) {
	idx, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := idx.Rescan(ctx); err != nil && !registry.IsConfigurationOnly(err) {
		return nil, err
	}
	return idx, nil
}

// Rescan reloads the project from the source and rebuilds the registry. When
// the source fails the current snapshot stays published. Modules the source
// marks unloaded seed the unloaded set on the first successful load only, so
// later SetUnloaded calls are not undone by a rescan.
func (i *Index) Rescan(ctx context.Context) (*registry.Snapshot, error) {
	i.rescanMu.Lock()
	defer i.rescanMu.Unlock()

	project, err := i.cfg.Source.Load(ctx)
	if err != nil {
		i.logger.Error("project load failed", "error", err)
		return nil, fmt.Errorf("rescan: %w", err)
	}
	i.seed.Do(func() { i.unloaded.Seed(*project) })

	snap, err := i.registry.Rebuild(ctx, registry.Input{
		Project:  *project,
		Unloaded: i.unloaded.Set(),
	})
	if err != nil && !registry.IsConfigurationOnly(err) {
		i.logger.Error("rebuild failed", "error", err)
		return nil, fmt.Errorf("rescan: %w", err)
	}

	i.logger.Info("index rebuilt",
		"generation", snap.Generation(),
		"modules", len(snap.Modules()),
		"libraries", len(snap.Libraries()),
		"unloaded", len(i.unloaded.Names()))
	if i.cfg.OnRebuild != nil {
		i.cfg.OnRebuild(snap)
	}
	return snap, err
}

// RequestRescan queues a rescan for the Run loop. It never blocks; requests
// made while one is already queued are merged into it.
func (i *Index) RequestRescan() {
	select {
	case i.requests <- struct{}{}:
	default:
		i.logger.Debug("rescan already queued")
	}
}

// Run performs queued rescans until ctx is cancelled. Rescan failures are
// logged and do not stop the loop.
func (i *Index) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-i.requests:
			if _, err := i.Rescan(ctx); err != nil && ctx.Err() == nil {
				i.logger.Warn("queued rescan finished with errors", "error", err)
			}
		}
	}
}

// Snapshot returns the current snapshot.
func (i *Index) Snapshot() *registry.Snapshot { return i.registry.Current() }

// Resolver returns a resolver bound to the current snapshot. Calls between
// two rebuilds share one resolver and its package cache.
func (i *Index) Resolver() *resolver.Resolver {
	snap := i.registry.Current()
	for {
		cached := i.resolver.Load()
		if cached != nil && cached.Snapshot() == snap {
			return cached
		}
		fresh := resolver.New(snap, i.cfg.Resolver)
		if i.resolver.CompareAndSwap(cached, fresh) {
			return fresh
		}
	}
}

// ClassifyAll classifies paths concurrently against one snapshot. The result
// is in input order.
func (i *Index) ClassifyAll(ctx context.Context, paths []fspath.Path) ([]resolver.Classification, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	r := i.Resolver()
	out := make([]resolver.Classification, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(i.cfg.Workers, len(paths)))
	for n, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[n] = r.Classify(p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	return out, nil
}

// SetUnloaded replaces the unloaded set and rebuilds the index.
func (i *Index) SetUnloaded(ctx context.Context, names []types.ModuleName) error {
	return i.unloaded.SetUnloaded(ctx, names)
}

// UnloadedModules returns the unloaded module names in sorted order.
func (i *Index) UnloadedModules() []types.ModuleName { return i.unloaded.Names() }

// DependentUnloadedModules returns the unloaded modules that still depend
// on module in the current snapshot.
func (i *Index) DependentUnloadedModules(module types.ModuleName) []types.ModuleName {
	return unloaded.DependentUnloadedModules(i.registry.Current(), module)
}

func (i *Index) rebuildAfterUnload(ctx context.Context) error {
	_, err := i.Rescan(ctx)
	if registry.IsConfigurationOnly(err) {
		return nil
	}
	return err
}
