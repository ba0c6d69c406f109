// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/invowk/rootindex/internal/config"
	"github.com/invowk/rootindex/internal/descriptor"
	"github.com/invowk/rootindex/internal/fileindex"
	"github.com/invowk/rootindex/internal/ignore"
	"github.com/invowk/rootindex/internal/issue"
	"github.com/invowk/rootindex/internal/registry"
	"github.com/invowk/rootindex/internal/resolver"
	"github.com/invowk/rootindex/pkg/fspath"
	"github.com/invowk/rootindex/pkg/types"
)

// descriptorCandidates are tried in the working directory when neither
// --project nor project.descriptor names a descriptor.
var descriptorCandidates = []string{"project.cue", "project.toml"}

type (
	// App holds the dependencies shared by all commands.
	App struct {
		Config ConfigProvider
		Fs     afero.Fs
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies are the injectable parts of an App. Nil fields get
	// production defaults.
	Dependencies struct {
		Config ConfigProvider
		Fs     afero.Fs
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// rootFlagValues holds the persistent flags of the root command.
	rootFlagValues struct {
		configPath  string
		projectPath string
		unload      []string
		verbose     bool
	}

	// session is one opened index with the configuration it was built from.
	session struct {
		cfg        *config.Config
		index      *fileindex.Index
		descriptor *descriptor.File
		logger     *log.Logger
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	return &App{Config: deps.Config, Fs: deps.Fs, stdout: deps.Stdout, stderr: deps.Stderr}
}

// loadConfig reads the configuration honoring --config.
func (a *App) loadConfig(ctx context.Context, flags *rootFlagValues) (*config.Config, error) {
	return a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: types.FilesystemPath(flags.configPath)})
}

// open loads the configuration and the project and runs the first rescan.
// Modules named by --unload are unloaded before open returns.
func (a *App) open(ctx context.Context, flags *rootFlagValues, onRebuild func(*registry.Snapshot)) (*session, error) {
	cfg, err := a.loadConfig(ctx, flags)
	if err != nil {
		return nil, err
	}
	logger := a.newLogger(cfg, flags)

	path, err := a.descriptorPath(cfg, flags)
	if err != nil {
		return nil, err
	}
	file, err := descriptor.NewFile(a.Fs, path)
	if err != nil {
		return nil, err
	}

	opts, err := resolverOptions(a.Fs, cfg)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("apply index configuration").
			WithResource(cfg.Source).
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}

	s := &session{cfg: cfg, descriptor: file, logger: logger}
	idx, err := fileindex.Open(ctx, fileindex.Config{
		Source:    file,
		Case:      caseOf(cfg),
		Resolver:  opts,
		Logger:    logger.WithPrefix("fileindex"),
		OnRebuild: onRebuild,
	})
	if err != nil {
		return nil, err
	}
	s.index = idx

	if len(flags.unload) > 0 {
		names, err := moduleNames(flags.unload)
		if err != nil {
			return nil, err
		}
		if err := idx.SetUnloaded(ctx, names); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// descriptorPath picks --project, then project.descriptor, then the first
// candidate present in the working directory.
func (a *App) descriptorPath(cfg *config.Config, flags *rootFlagValues) (string, error) {
	if flags.projectPath != "" {
		return flags.projectPath, nil
	}
	if cfg.Project.Descriptor != "" {
		return string(cfg.Project.Descriptor), nil
	}
	for _, name := range descriptorCandidates {
		if ok, _ := afero.Exists(a.Fs, name); ok {
			return filepath.Abs(name)
		}
	}
	return "", issue.NewErrorContext().
		WithOperation("locate project descriptor").
		WithResource(strings.Join(descriptorCandidates, ", ")).
		WithSuggestion("Pass --project with the path of a .cue or .toml descriptor").
		WithSuggestion("Set project.descriptor in the configuration file").
		WithIssue(issue.DescriptorNotFoundId).
		BuildError()
}

func (a *App) newLogger(cfg *config.Config, flags *rootFlagValues) *log.Logger {
	level, err := log.ParseLevel(cfg.Log.Level.String())
	if err != nil {
		level = log.InfoLevel
	}
	if flags.verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{Level: level, Prefix: "rootindex"})
}

// resolverOptions maps the index section of cfg to resolver options.
func resolverOptions(fs afero.Fs, cfg *config.Config) (resolver.Options, error) {
	matcher, err := ignore.New(cfg.Index.IgnoredFiles)
	if err != nil {
		return resolver.Options{}, err
	}
	precedence, err := resolver.ParseOwnerPrecedence(cfg.Index.OwnerPrecedence.String())
	if err != nil {
		return resolver.Options{}, err
	}
	cacheSize := cfg.Index.PackageCacheSize
	if cacheSize == 0 {
		cacheSize = -1
	}
	return resolver.Options{
		Fs:                     fs,
		Ignore:                 matcher,
		OwnerPrecedence:        precedence,
		ModuleDependentEntries: cfg.Index.ModuleDependentEntries,
		PackageCacheSize:       cacheSize,
	}, nil
}

func caseOf(cfg *config.Config) fspath.Case {
	if cfg.Index.CaseSensitive {
		return fspath.CaseSensitive
	}
	return fspath.CaseInsensitive
}

// parsePaths resolves command-line paths against the working directory.
func parsePaths(args []string) ([]fspath.Path, error) {
	paths := make([]fspath.Path, 0, len(args))
	for _, arg := range args {
		p, err := fspath.FromFilesystem(types.FilesystemPath(arg))
		if err != nil {
			return nil, fmt.Errorf("path %q: %w", arg, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func moduleNames(args []string) ([]types.ModuleName, error) {
	names := make([]types.ModuleName, 0, len(args))
	for _, arg := range args {
		name := types.ModuleName(arg)
		if err := name.Validate(); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// requireModule fails with a ModuleNotFoundId error when name is not in the
// current snapshot.
func (s *session) requireModule(name types.ModuleName) error {
	if _, ok := s.index.Snapshot().Module(name); ok {
		return nil
	}
	return issue.NewErrorContext().
		WithOperation("find module").
		WithResource(name.String()).
		WithSuggestion("List the declared modules with 'rootindex modules'").
		WithIssue(issue.ModuleNotFoundId).
		BuildError()
}
