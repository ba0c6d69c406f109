// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/invowk/rootindex/internal/issue"
	"github.com/invowk/rootindex/internal/registry"
	"github.com/invowk/rootindex/internal/watch"
)

// newWatchCommand creates the `rootindex watch` command.
func newWatchCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep the index open and rescan it on filesystem changes",
		Long: `Keep the index open and rescan it whenever the project descriptor is
written or files and directories are created, removed or renamed under a
module or library root. Bursts of events are coalesced into one rescan.

Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), app, flags)
		},
	}
}

func runWatch(ctx context.Context, app *App, flags *rootFlagValues) error {
	var current atomic.Pointer[watch.Watcher]
	onRebuild := func(snap *registry.Snapshot) {
		writeRebuild(app.stdout, snap)
		if w := current.Load(); w != nil {
			if err := w.SetRoots(watchRoots(snap)); err != nil {
				fmt.Fprintln(app.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, flags.verbose))
			}
		}
	}

	s, err := app.open(ctx, flags, onRebuild)
	if err != nil {
		return err
	}

	w, err := watch.New(watch.Config{
		Roots:    watchRoots(s.index.Snapshot()),
		Files:    []string{s.descriptor.Path()},
		Ignore:   s.cfg.Watch.Ignore,
		Debounce: s.cfg.Watch.Debounce,
		OnChange: func(_ context.Context, changed []string) error {
			s.logger.Debug("rescan requested", "changed", len(changed))
			s.index.RequestRescan()
			return nil
		},
		Logger: s.logger.WithPrefix("watch"),
	})
	if err != nil {
		return watchFailure(s.descriptor.Path(), err)
	}
	current.Store(w)

	fmt.Fprintf(app.stdout, "%s watching %d paths (Ctrl+C to stop)\n", TitleStyle.Render("→"), len(w.WatchedPaths()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.index.Run(gctx) })
	g.Go(func() error {
		if err := w.Run(gctx); err != nil {
			return watchFailure(s.descriptor.Path(), err)
		}
		return nil
	})
	return g.Wait()
}

// watchRoots lists every content root, loaded or not, and every library and
// SDK root of snap.
func watchRoots(snap *registry.Snapshot) []string {
	var roots []string
	for _, m := range snap.Modules() {
		for _, r := range m.ContentRoots {
			roots = append(roots, r.OS())
		}
	}
	for _, l := range snap.Libraries() {
		for _, r := range l.Classes {
			roots = append(roots, r.OS())
		}
		for _, r := range l.Sources {
			roots = append(roots, r.OS())
		}
	}
	return roots
}

func writeRebuild(w io.Writer, snap *registry.Snapshot) {
	line := fmt.Sprintf("%s generation %d: %d modules, %d libraries", SuccessStyle.Render("rebuilt"),
		snap.Generation(), len(snap.Modules()), len(snap.Libraries()))
	if n := len(snap.ConfigurationErrors()); n > 0 {
		line += " " + WarningStyle.Render(fmt.Sprintf("(%d configuration errors)", n))
	}
	fmt.Fprintln(w, line)
}

func watchFailure(resource string, err error) error {
	return issue.NewErrorContext().
		WithOperation("watch project").
		WithResource(resource).
		WithIssue(issue.WatchFailedId).
		Wrap(err).
		BuildError()
}
