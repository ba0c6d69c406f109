// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/invowk/rootindex/internal/issue"
	"github.com/invowk/rootindex/pkg/cueutil"
	"github.com/invowk/rootindex/pkg/platform"
	"github.com/invowk/rootindex/pkg/types"
)

const (
	// AppName is the application name.
	AppName = "rootindex"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "rootindex"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment variables that override config keys,
	// e.g. ROOTINDEX_INDEX_CASE_SENSITIVE for index.case_sensitive.
	EnvPrefix = "ROOTINDEX"

	defaultEnvFile = ".env"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the rootindex configuration directory using platform
// conventions: %APPDATA% on Windows, ~/Library/Application Support on macOS
// and $XDG_CONFIG_HOME (defaulting to ~/.config) elsewhere.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if dir, ok := overriddenConfigDir(); ok {
		return dir, nil
	}

	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// loadWithOptions reads .env files, the config file and ROOTINDEX_ variables,
// in increasing order of precedence over the defaults.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load environment files").
			WithSuggestion("Check that every --env-file exists and uses KEY=value lines").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath, err := resolveConfigFile(opts)
	if err != nil {
		return nil, err
	}
	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Source = resolvedPath

	if err := cfg.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check ROOTINDEX_ environment variables as well as the file").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("project.descriptor", defaults.Project.Descriptor)
	v.SetDefault("index.case_sensitive", defaults.Index.CaseSensitive)
	v.SetDefault("index.ignored_files", defaults.Index.IgnoredFiles)
	v.SetDefault("index.package_cache_size", defaults.Index.PackageCacheSize)
	v.SetDefault("index.owner_precedence", defaults.Index.OwnerPrecedence)
	v.SetDefault("index.module_dependent_entries", defaults.Index.ModuleDependentEntries)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("watch.ignore", defaults.Watch.Ignore)
	v.SetDefault("log.level", defaults.Log.Level)
}

// resolveConfigFile returns the file to load: the explicit path, the file
// in the config directory, or the file in the current directory. No file is
// not an error.
func resolveConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		path := string(opts.ConfigFilePath)
		if !fileExists(path) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'rootindex config show' to see the default configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", path)).
				BuildError()
		}
		return path, nil
	}

	cfgDir := string(opts.ConfigDirPath)
	if cfgDir == "" {
		dir, err := ConfigDir()
		if err != nil {
			return "", err
		}
		cfgDir = dir
	}

	fileName := ConfigFileName + "." + ConfigFileExt
	if cuePath := filepath.Join(cfgDir, fileName); fileExists(cuePath) {
		return cuePath, nil
	}
	if fileExists(fileName) {
		return fileName, nil
	}
	return "", nil
}

func loadEnvFiles(files []types.FilesystemPath) error {
	if len(files) == 0 {
		if fileExists(defaultEnvFile) {
			return godotenv.Load(defaultEnvFile)
		}
		return nil
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = string(f)
	}
	return godotenv.Load(paths...)
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into v.
// It does not use cueutil.ParseAndDecode: the result is a map merged into
// Viper, and every field is optional.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default configuration to the config
// directory unless a file already exists there. It returns the file path.
func CreateDefaultConfig() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, nil
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, nil
}

// GenerateCUE renders cfg as a rootindex.cue file.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// rootindex configuration\n\n")

	if cfg.Project.Descriptor != "" {
		fmt.Fprintf(&sb, "project: descriptor: %q\n\n", cfg.Project.Descriptor)
	}

	sb.WriteString("index: {\n")
	fmt.Fprintf(&sb, "\tcase_sensitive: %v\n", cfg.Index.CaseSensitive)
	sb.WriteString("\tignored_files: [")
	for i, name := range cfg.Index.IgnoredFiles {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", name)
	}
	sb.WriteString("]\n")
	fmt.Fprintf(&sb, "\tpackage_cache_size: %d\n", cfg.Index.PackageCacheSize)
	fmt.Fprintf(&sb, "\towner_precedence: %q\n", cfg.Index.OwnerPrecedence)
	fmt.Fprintf(&sb, "\tmodule_dependent_entries: %v\n", cfg.Index.ModuleDependentEntries)
	sb.WriteString("}\n")

	sb.WriteString("\nwatch: {\n")
	fmt.Fprintf(&sb, "\tdebounce: %q\n", cfg.Watch.Debounce.String())
	if len(cfg.Watch.Ignore) > 0 {
		sb.WriteString("\tignore: [\n")
		for _, pattern := range cfg.Watch.Ignore {
			fmt.Fprintf(&sb, "\t\t%q,\n", pattern)
		}
		sb.WriteString("\t]\n")
	}
	sb.WriteString("}\n")

	fmt.Fprintf(&sb, "\nlog: level: %q\n", cfg.Log.Level)

	return sb.String()
}
