// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/invowk/rootindex/internal/issue"
	"github.com/invowk/rootindex/pkg/cueutil"
	"github.com/invowk/rootindex/pkg/fspath"
	"github.com/invowk/rootindex/pkg/projectmodel"
)

const (
	// FormatCUE is a descriptor written in CUE.
	FormatCUE Format = "cue"
	// FormatTOML is a descriptor written in TOML.
	FormatTOML Format = "toml"

	schemaPath = "#Project"
)

var (
	//go:embed descriptor_schema.cue
	schema []byte

	// ErrUnknownFormat is returned for descriptor files that are neither
	// .cue nor .toml.
	ErrUnknownFormat = errors.New("unknown descriptor format")
	// ErrInvalidDescriptor is the sentinel error wrapped by InvalidDescriptorError.
	ErrInvalidDescriptor = errors.New("invalid project descriptor")
)

type (
	// Format is the syntax of a descriptor file.
	Format string

	// InvalidDescriptorError collects the semantic errors of a descriptor
	// that passed schema validation: duplicate names, bad package prefixes,
	// malformed globs.
	InvalidDescriptorError struct {
		Path        string
		FieldErrors []error
	}

	// File loads the project model from one descriptor file on each call,
	// so edits are picked up by the next rescan.
	File struct {
		fs   afero.Fs
		path string
	}
)

// FormatOf returns the format implied by the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return FormatCUE, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %s (want .cue or .toml)", ErrUnknownFormat, path)
	}
}

// NewFile returns a File reading path from fs. A relative path is made
// absolute against the working directory.
func NewFile(fs afero.Fs, path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving descriptor path: %w", err)
	}
	return &File{fs: fs, path: abs}, nil
}

// Path returns the absolute descriptor path.
func (f *File) Path() string { return f.path }

// Load reads and converts the descriptor.
func (f *File) Load(ctx context.Context) (*projectmodel.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Load(f.fs, f.path)
}

// Load reads the descriptor at path from fs and converts it to a project.
// Failures are returned as *issue.ActionableError carrying the descriptor
// guidance.
func Load(fs afero.Fs, path string) (*projectmodel.Project, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, parseFailure(path, err)
	}

	exists, err := afero.Exists(fs, path)
	if err != nil || !exists {
		if err == nil {
			err = fmt.Errorf("descriptor not found: %s", path)
		}
		return nil, issue.NewErrorContext().
			WithOperation("load project descriptor").
			WithResource(path).
			WithSuggestion("Pass --project or set project.descriptor in the configuration").
			WithIssue(issue.DescriptorNotFoundId).
			Wrap(err).
			BuildError()
	}

	var doc *document
	switch format {
	case FormatCUE:
		doc, err = decodeCUE(fs, path)
	case FormatTOML:
		doc, err = decodeTOML(fs, path)
	}
	if err != nil {
		return nil, parseFailure(path, err)
	}

	absDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, parseFailure(path, err)
	}
	project, err := doc.project(baseDir(absDir))
	if err != nil {
		return nil, parseFailure(path, &InvalidDescriptorError{Path: path, FieldErrors: unjoin(err)})
	}
	return project, nil
}

func decodeCUE(fs afero.Fs, path string) (*document, error) {
	result, err := cueutil.ParseFile[document](fs, path, schema, schemaPath, cueutil.WithConcrete(true))
	if err != nil {
		return nil, err
	}
	return result.Value, nil
}

func decodeTOML(fs afero.Fs, path string) (*document, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if info.Size() > cueutil.DefaultMaxFileSize {
		return nil, fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", path, info.Size(), cueutil.DefaultMaxFileSize)
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("%s:%d:%d: %s", path, row, col, derr.Error())
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	result, err := cueutil.ParseValue[document](schema, raw, schemaPath, cueutil.WithFilename(path))
	if err != nil {
		return nil, err
	}
	return result.Value, nil
}

func parseFailure(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("parse project descriptor").
		WithResource(path).
		WithSuggestion("Run 'rootindex --project " + path + " modules' after fixing the reported fields").
		WithIssue(issue.DescriptorParseErrorId).
		Wrap(err).
		BuildError()
}

func baseDir(dir string) fspath.Path {
	return resolvePath(fspath.Path{}, dir)
}

func unjoin(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// Error implements the error interface for InvalidDescriptorError.
func (e *InvalidDescriptorError) Error() string {
	if len(e.FieldErrors) == 1 {
		return fmt.Sprintf("invalid project descriptor %s: %v", e.Path, e.FieldErrors[0])
	}
	return fmt.Sprintf("invalid project descriptor %s: %d errors: %v", e.Path, len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidDescriptor followed by the field errors, so
// errors.Is matches both the sentinel and the underlying causes.
func (e *InvalidDescriptorError) Unwrap() []error {
	return append([]error{ErrInvalidDescriptor}, e.FieldErrors...)
}
