// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/invowk/rootindex/internal/ignore"
	"github.com/invowk/rootindex/pkg/platform"
	"github.com/invowk/rootindex/pkg/types"
)

const (
	// LogLevelDebug logs rebuild and watcher diagnostics.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs rebuilds and warnings.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs skipped roots and dependency cycles only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs failures only.
	LogLevelError LogLevel = "error"

	// OwnerPrecedenceModuleLevelFirst ranks module-level libraries first.
	OwnerPrecedenceModuleLevelFirst OwnerPrecedence = "module-level-first"
	// OwnerPrecedenceProjectLevelFirst ranks project and application libraries first.
	OwnerPrecedenceProjectLevelFirst OwnerPrecedence = "project-level-first"

	defaultPackageCacheSize = 256
	defaultDebounce         = 500 * time.Millisecond
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidOwnerPrecedence is returned when an OwnerPrecedence value is not recognized.
	ErrInvalidOwnerPrecedence = errors.New("invalid owner precedence")
	// ErrInvalidIndexConfig is the sentinel error wrapped by InvalidIndexConfigError.
	ErrInvalidIndexConfig = errors.New("invalid index config")
	// ErrInvalidWatchConfig is the sentinel error wrapped by InvalidWatchConfigError.
	ErrInvalidWatchConfig = errors.New("invalid watch config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level of log output.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// OwnerPrecedence decides which library wins when several claim a directory.
	OwnerPrecedence string

	// InvalidOwnerPrecedenceError is returned when an OwnerPrecedence value is
	// not recognized.
	InvalidOwnerPrecedenceError struct {
		Value OwnerPrecedence
	}

	// InvalidIndexConfigError collects the field errors of an IndexConfig.
	InvalidIndexConfigError struct {
		FieldErrors []error
	}

	// InvalidWatchConfigError collects the field errors of a WatchConfig.
	InvalidWatchConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError collects the field errors of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Project locates the project descriptor.
		Project ProjectConfig `json:"project" mapstructure:"project"`
		// Index tunes path resolution.
		Index IndexConfig `json:"index" mapstructure:"index"`
		// Watch configures the file watcher that triggers rescans.
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
		// Log configures diagnostics output.
		Log LogConfig `json:"log" mapstructure:"log"`

		// Source is the file the configuration was read from, empty for defaults.
		Source string `json:"-" mapstructure:"-"`
	}

	// ProjectConfig locates the project descriptor.
	ProjectConfig struct {
		// Descriptor is the path of the CUE or TOML descriptor.
		Descriptor types.FilesystemPath `json:"descriptor" mapstructure:"descriptor"`
	}

	// IndexConfig tunes path resolution.
	IndexConfig struct {
		// CaseSensitive selects case-sensitive path comparison.
		CaseSensitive bool `json:"case_sensitive" mapstructure:"case_sensitive"`
		// IgnoredFiles lists name globs hidden from the index.
		IgnoredFiles []string `json:"ignored_files" mapstructure:"ignored_files"`
		// PackageCacheSize bounds the per-snapshot package lookup cache. Zero
		// disables the cache.
		PackageCacheSize int `json:"package_cache_size" mapstructure:"package_cache_size"`
		// OwnerPrecedence orders libraries claiming the same directory.
		OwnerPrecedence OwnerPrecedence `json:"owner_precedence" mapstructure:"owner_precedence"`
		// ModuleDependentEntries adds the dependents of a module to the order
		// entries of its source files.
		ModuleDependentEntries bool `json:"module_dependent_entries" mapstructure:"module_dependent_entries"`
	}

	// WatchConfig configures the file watcher.
	WatchConfig struct {
		// Debounce coalesces bursts of file events into one rescan.
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
		// Ignore lists extra doublestar globs whose events never trigger a rescan.
		Ignore []string `json:"ignore" mapstructure:"ignore"`
	}

	// LogConfig configures diagnostics output.
	LogConfig struct {
		// Level is the minimum level written to stderr.
		Level LogLevel `json:"level" mapstructure:"level"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			CaseSensitive:    platform.HostCaseSensitivePaths(),
			IgnoredFiles:     ignore.DefaultNames(),
			PackageCacheSize: defaultPackageCacheSize,
			OwnerPrecedence:  OwnerPrecedenceModuleLevelFirst,
		},
		Watch: WatchConfig{
			Debounce: defaultDebounce,
			Ignore:   []string{},
		},
		Log: LogConfig{Level: LogLevelInfo},
	}
}

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// Validate returns an error if the level is not one of the defined levels.
func (l LogLevel) Validate() error {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return nil
	default:
		return &InvalidLogLevelError{Value: l}
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the OwnerPrecedence.
func (o OwnerPrecedence) String() string { return string(o) }

// Validate returns an error if the precedence is not one of the defined values.
func (o OwnerPrecedence) Validate() error {
	switch o {
	case OwnerPrecedenceModuleLevelFirst, OwnerPrecedenceProjectLevelFirst:
		return nil
	default:
		return &InvalidOwnerPrecedenceError{Value: o}
	}
}

// Error implements the error interface for InvalidOwnerPrecedenceError.
func (e *InvalidOwnerPrecedenceError) Error() string {
	return fmt.Sprintf("invalid owner precedence %q (valid: module-level-first, project-level-first)", e.Value)
}

// Unwrap returns ErrInvalidOwnerPrecedence for errors.Is() compatibility.
func (e *InvalidOwnerPrecedenceError) Unwrap() error { return ErrInvalidOwnerPrecedence }

// Validate returns an error if any index setting is unusable.
func (c IndexConfig) Validate() error {
	var errs []error
	if _, err := ignore.New(c.IgnoredFiles); err != nil {
		errs = append(errs, err)
	}
	if c.PackageCacheSize < 0 {
		errs = append(errs, fmt.Errorf("package_cache_size must not be negative, got %d", c.PackageCacheSize))
	}
	if err := c.OwnerPrecedence.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidIndexConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface for InvalidIndexConfigError.
func (e *InvalidIndexConfigError) Error() string {
	return fmt.Sprintf("invalid index config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidIndexConfig for errors.Is() compatibility.
func (e *InvalidIndexConfigError) Unwrap() error { return ErrInvalidIndexConfig }

// Validate returns an error if any watch setting is unusable.
func (c WatchConfig) Validate() error {
	var errs []error
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce must not be negative, got %s", c.Debounce))
	}
	for _, pattern := range c.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, fmt.Errorf("invalid ignore pattern %q", pattern))
		}
	}
	if len(errs) > 0 {
		return &InvalidWatchConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface for InvalidWatchConfigError.
func (e *InvalidWatchConfigError) Error() string {
	return fmt.Sprintf("invalid watch config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidWatchConfig for errors.Is() compatibility.
func (e *InvalidWatchConfigError) Unwrap() error { return ErrInvalidWatchConfig }

// Validate returns an error collecting every invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.Project.Descriptor != "" {
		if err := c.Project.Descriptor.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.Index.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Watch.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Log.Level.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s): %v", len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
