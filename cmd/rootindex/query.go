// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/invowk/rootindex/internal/resolver"
	"github.com/invowk/rootindex/pkg/projectmodel"
	"github.com/invowk/rootindex/pkg/types"
)

// newClassifyCommand creates the `rootindex classify` command.
func newClassifyCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <path>...",
		Short: "Classify paths against the project",
		Long: `Classify each path as in project, in library, in an unloaded module,
excluded or not in project.

Examples:
  rootindex classify src/main/java/App.java
  rootindex classify build/ lib/guava.jar`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := parsePaths(args)
			if err != nil {
				return err
			}
			s, err := app.open(cmd.Context(), flags, nil)
			if err != nil {
				return err
			}
			results, err := s.index.ClassifyAll(cmd.Context(), paths)
			if err != nil {
				return err
			}
			for n, c := range results {
				fmt.Fprintf(app.stdout, "%s: %s\n", PathStyle.Render(paths[n].OS()), classificationStyle(c).Render(c.String()))
			}
			return nil
		},
	}
}

// newEntriesCommand creates the `rootindex entries` command.
func newEntriesCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "entries <path>",
		Short: "List the order entries that apply to a path",
		Long: `List the dependency entries through which modules see a path, in
module order and then dependency order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := parsePaths(args)
			if err != nil {
				return err
			}
			s, err := app.open(cmd.Context(), flags, nil)
			if err != nil {
				return err
			}
			entries := s.index.Resolver().OrderEntriesFor(paths[0])
			if len(entries) == 0 {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("(no order entries)"))
				return nil
			}
			writeEntries(app.stdout, entries)
			return nil
		},
	}
}

// newPackageCommand creates the `rootindex package` command.
func newPackageCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "package <path>",
		Short: "Print the package name of a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := parsePaths(args)
			if err != nil {
				return err
			}
			s, err := app.open(cmd.Context(), flags, nil)
			if err != nil {
				return err
			}
			name, ok := s.index.Resolver().PackageNameFor(paths[0])
			switch {
			case !ok:
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("(no package)"))
			case name == "":
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("(default package)"))
			default:
				fmt.Fprintln(app.stdout, name)
			}
			return nil
		},
	}
}

// newDirsCommand creates the `rootindex dirs` command.
func newDirsCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var librarySources bool

	cmd := &cobra.Command{
		Use:   "dirs <package>",
		Short: "List the directories of a package",
		Long: `List every existing directory whose package name is the given name,
across module source roots and library classes roots.

Examples:
  rootindex dirs com.example.app
  rootindex dirs org.junit --library-sources`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := types.PackageName(args[0]).Validate(); err != nil {
				return err
			}
			s, err := app.open(cmd.Context(), flags, nil)
			if err != nil {
				return err
			}
			for _, dir := range s.index.Resolver().DirectoriesForPackage(args[0], librarySources) {
				fmt.Fprintln(app.stdout, dir.OS())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&librarySources, "library-sources", false, "include directories under library sources roots")
	return cmd
}

// newIterateCommand creates the `rootindex iterate` command.
func newIterateCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var (
		module string
		dirs   bool
	)

	cmd := &cobra.Command{
		Use:   "iterate",
		Short: "List the indexable files of the project",
		Long: `List every file that is module or library content, skipping excluded,
ignored and unloaded subtrees. With --module only that module's own content
is listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), flags, nil)
			if err != nil {
				return err
			}
			visit := func(f resolver.IndexableFile) error {
				if f.IsDir && !dirs {
					return nil
				}
				_, err := fmt.Fprintln(app.stdout, f.Path.OS())
				return err
			}
			r := s.index.Resolver()
			if module == "" {
				return r.IterateIndexableFiles(cmd.Context(), visit)
			}
			name := types.ModuleName(module)
			if err := s.requireModule(name); err != nil {
				return err
			}
			return r.IterateModuleContent(cmd.Context(), name, visit)
		},
	}
	cmd.Flags().StringVarP(&module, "module", "m", "", "only list the content of this module")
	cmd.Flags().BoolVar(&dirs, "dirs", false, "also list directories")
	return cmd
}

func writeEntries(w io.Writer, entries []projectmodel.OrderEntry) {
	for _, e := range entries {
		owner := PathStyle.Render(e.Owner.String())
		if e.Kind == projectmodel.EntryModuleSource {
			fmt.Fprintf(w, "%s: %s\n", owner, e.Kind)
			continue
		}
		line := fmt.Sprintf("%s: %s %s", owner, e.Target, SubtitleStyle.Render("scope="+e.Scope.String()))
		if e.Exported {
			line += " " + SubtitleStyle.Render("exported")
		}
		fmt.Fprintln(w, line)
	}
}

func classificationStyle(c resolver.Classification) lipgloss.Style {
	switch c.(type) {
	case resolver.InProject, resolver.InLibrary:
		return SuccessStyle
	case resolver.InUnloadedModule, resolver.Excluded:
		return WarningStyle
	default:
		return SubtitleStyle
	}
}
