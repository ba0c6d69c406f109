// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invowk/rootindex/internal/config"
)

// newConfigCommand creates the `rootindex config` command tree.
func newConfigCommand(app *App, flags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage rootindex configuration",
		Long: `Manage rootindex configuration.

Configuration is read from rootindex.cue in:
  - Linux: ~/.config/rootindex/
  - macOS: ~/Library/Application Support/rootindex/
  - Windows: %APPDATA%\rootindex\
or from ./rootindex.cue. Environment variables prefixed with ROOTINDEX_
override file values (ROOTINDEX_LOG_LEVEL=debug), and ./.env is loaded
first when present.

Keys:
  project.descriptor              path of the project descriptor
  index.case_sensitive            compare path segments case-sensitively
  index.ignored_files             ignored file name globs
  index.package_cache_size        package lookup cache size, 0 disables
  index.owner_precedence          module-level-first or project-level-first
  index.module_dependent_entries  list dependents on module source paths
  watch.debounce                  quiet period before a rescan
  watch.ignore                    extra doublestar globs the watcher skips
  log.level                       debug, info, warn or error`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context(), flags)
			if err != nil {
				return err
			}
			source := SubtitleStyle.Render("(defaults)")
			if cfg.Source != "" {
				source = PathStyle.Render(cfg.Source)
			}
			fmt.Fprintf(app.stdout, "%s %s\n\n", TitleStyle.Render("Config file:"), source)
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Long: `Write the default configuration to the user config directory. An
existing file is left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("config:"), path)
			return nil
		},
	})

	return cfgCmd
}
