// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/invowk/rootindex/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	root := &cobra.Command{
		Use:   "rootindex",
		Short: "Answer path questions about a multi-module project",
		Long: TitleStyle.Render("rootindex") + SubtitleStyle.Render(" - project file index") + `

rootindex reads a project descriptor (CUE or TOML) listing modules, their
content, source and excluded roots, libraries and SDKs, and answers
questions about any path on disk: which module owns it, whether it is
source, excluded or library content, which package it belongs to and which
dependency entries apply to it.

` + SubtitleStyle.Render("Examples:") + `
  rootindex classify src/main/java/App.java   Classify a path
  rootindex entries src/main/java             Show the order entries of a path
  rootindex dirs com.example.app              Find the directories of a package
  rootindex dependents core --tree            Show who depends on a module
  rootindex watch                             Rescan on filesystem changes`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is the user config directory)")
	root.PersistentFlags().StringVarP(&flags.projectPath, "project", "p", "", "project descriptor (default is ./project.cue or ./project.toml)")
	root.PersistentFlags().StringSliceVar(&flags.unload, "unload", nil, "modules to unload before answering")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging and full error chains")

	root.AddCommand(
		newClassifyCommand(app, flags),
		newEntriesCommand(app, flags),
		newPackageCommand(app, flags),
		newDirsCommand(app, flags),
		newIterateCommand(app, flags),
		newModulesCommand(app, flags),
		newDependentsCommand(app, flags),
		newUnloadCommand(app, flags),
		newWatchCommand(app, flags),
		newConfigCommand(app, flags),
	)
	return root
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with a non-zero status on failure.
func Execute() {
	app := NewApp(Dependencies{})
	root := NewRootCommand(app)
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		renderGuidance(app, err)
		os.Exit(1)
	}
}

// renderGuidance prints the catalog entry linked to err, if any.
func renderGuidance(app *App, err error) {
	i, ok := issue.IssueOf(err)
	if !ok {
		return
	}
	rendered, renderErr := i.Render("dark")
	if renderErr != nil {
		return
	}
	fmt.Fprint(app.stderr, rendered)
}

// formatErrorForDisplay formats err for the user. ActionableErrors list
// their suggestions, and the full chain in verbose mode.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
