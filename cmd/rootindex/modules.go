// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/disiqueira/gotree/v3"
	"github.com/spf13/cobra"

	"github.com/invowk/rootindex/internal/dag"
	"github.com/invowk/rootindex/internal/registry"
	"github.com/invowk/rootindex/pkg/projectmodel"
	"github.com/invowk/rootindex/pkg/types"
)

// newModulesCommand creates the `rootindex modules` command.
func newModulesCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List the modules, libraries and SDKs of the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), flags, nil)
			if err != nil {
				return err
			}
			writeSnapshot(app.stdout, s.index.Snapshot())
			return nil
		},
	}
}

// newDependentsCommand creates the `rootindex dependents` command.
func newDependentsCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var tree bool

	cmd := &cobra.Command{
		Use:   "dependents <module>",
		Short: "Show the modules that depend on a module",
		Long: `Show the modules that see a module through their dependencies. A module
is listed when it depends on the target directly, or through a chain of
exported module dependencies.

With --tree every direct dependency is shown as a tree, exported or not.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), flags, nil)
			if err != nil {
				return err
			}
			name := types.ModuleName(args[0])
			if err := s.requireModule(name); err != nil {
				return err
			}
			snap := s.index.Snapshot()
			if tree {
				fmt.Fprint(app.stdout, dependentsTree(snap, name).Print())
				return nil
			}
			found := false
			snap.Graph().WalkDependents(projectmodel.ModuleRef(name).ID(),
				func(e dag.Edge) bool { return e.Exported },
				func(e dag.Edge) {
					if m, ok := snap.ModuleForNode(e.From); ok {
						found = true
						fmt.Fprintln(app.stdout, moduleLabel(m))
					}
				})
			if !found {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("(no dependents)"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&tree, "tree", "t", false, "render every dependency path as a tree")
	return cmd
}

// newUnloadCommand creates the `rootindex unload` command.
func newUnloadCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "unload [module]...",
		Short: "Unload modules and report what still depends on them",
		Long: `Rebuild the index with the given modules unloaded and report the
resulting state. Unloaded modules keep their content roots, so their files
are classified as belonging to an unloaded module. Loaded modules required
by unloaded ones are listed, since unloading does not remove those edges.

Without arguments every module is loaded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := moduleNames(args)
			if err != nil {
				return err
			}
			s, err := app.open(cmd.Context(), flags, nil)
			if err != nil {
				return err
			}
			for _, n := range names {
				if err := s.requireModule(n); err != nil {
					return err
				}
			}
			if err := s.index.SetUnloaded(cmd.Context(), names); err != nil {
				return err
			}
			writeUnloaded(app.stdout, s)
			return nil
		},
	}
}

func writeUnloaded(w io.Writer, s *session) {
	unloaded := s.index.UnloadedModules()
	if len(unloaded) == 0 {
		fmt.Fprintln(w, SuccessStyle.Render("all modules loaded"))
		return
	}
	fmt.Fprintf(w, "%s %s\n", WarningStyle.Render("unloaded:"), joinNames(unloaded))
	for _, m := range s.index.Snapshot().Modules() {
		if m.Unloaded {
			continue
		}
		if deps := s.index.DependentUnloadedModules(m.Name); len(deps) > 0 {
			fmt.Fprintf(w, "%s is required by unloaded %s\n", PathStyle.Render(m.Name.String()), joinNames(deps))
		}
	}
}

func writeSnapshot(w io.Writer, snap *registry.Snapshot) {
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render("Modules"), SubtitleStyle.Render(fmt.Sprintf("(generation %d)", snap.Generation())))
	for _, m := range snap.Modules() {
		state := SuccessStyle.Render("loaded")
		if m.Unloaded {
			state = WarningStyle.Render("unloaded")
		}
		fmt.Fprintf(w, "  %s %s %s\n", PathStyle.Render(m.Name.String()), state,
			SubtitleStyle.Render(fmt.Sprintf("content=%d source=%d deps=%d", len(m.ContentRoots), len(m.SourceRoots), len(m.Dependencies))))
	}

	if libs := snap.Libraries(); len(libs) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, TitleStyle.Render("Libraries"))
		for _, l := range libs {
			fmt.Fprintf(w, "  %s %s\n", PathStyle.Render(l.Ref.String()),
				SubtitleStyle.Render(fmt.Sprintf("classes=%d sources=%d excluded=%d", len(l.Classes), len(l.Sources), len(l.Excluded))))
		}
	}
	if sdk := snap.ProjectSdk(); sdk != "" {
		fmt.Fprintf(w, "\n%s %s\n", TitleStyle.Render("Project SDK"), sdk)
	}

	if errs := snap.ConfigurationErrors(); len(errs) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, ErrorStyle.Render("Configuration errors"))
		for _, ce := range errs {
			fmt.Fprintf(w, "  - %s\n", ce)
		}
	}
}

// dependentsTree renders the reverse dependency edges reaching name. A
// module already shown higher up is printed once more without children.
func dependentsTree(snap *registry.Snapshot, name types.ModuleName) gotree.Tree {
	root := gotree.New(name.String())
	expanded := map[string]bool{}
	var add func(parent gotree.Tree, node string)
	add = func(parent gotree.Tree, node string) {
		expanded[node] = true
		for _, e := range snap.Graph().Predecessors(node) {
			m, ok := snap.ModuleForNode(e.From)
			if !ok {
				continue
			}
			label := moduleLabel(m) + " " + edgeLabel(e)
			if expanded[e.From] {
				parent.Add(label + " ...")
				continue
			}
			add(parent.Add(label), e.From)
		}
	}
	add(root, projectmodel.ModuleRef(name).ID())
	return root
}

func moduleLabel(m *registry.ModuleEntry) string {
	if m.Unloaded {
		return m.Name.String() + " (unloaded)"
	}
	return m.Name.String()
}

func edgeLabel(e dag.Edge) string {
	label := "[" + e.Scope.String()
	if e.Exported {
		label += ", exported"
	}
	return label + "]"
}

func joinNames(names []types.ModuleName) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}
