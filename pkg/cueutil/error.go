// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue/errors"
)

type (
	// ValidationError lists the problems CUE reported for one file.
	ValidationError struct {
		File     string
		Problems []Problem
	}

	// Problem is one CUE error, addressed by field path and, when CUE knows
	// it, by source position.
	Problem struct {
		// Field is the JSON-style field path, e.g. "modules[0].content_roots[1].path".
		Field string
		// Line and Column are 1-based; zero means unknown.
		Line    int
		Column  int
		Message string
	}
)

// FormatError turns a CUE error into a *ValidationError for filePath.
// Errors that carry no CUE detail are wrapped with the file name.
//
// Rendered form, one problem per line:
//
//	project.cue:4:9: modules[0].content_roots[1].path: incomplete value string
//	rootindex.cue: index.case_sensitive: conflicting values true and "yes"
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrors := errors.Errors(err)
	if len(cueErrors) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	ve := &ValidationError{File: filePath}
	for _, e := range cueErrors {
		p := Problem{Field: formatPath(errors.Path(e)), Message: e.Error()}

		// CUE sometimes repeats the path in the message.
		if p.Field != "" {
			for _, prefix := range []string{p.Field, strings.Join(errors.Path(e), ".")} {
				if strings.HasPrefix(p.Message, prefix+":") {
					p.Message = strings.TrimSpace(strings.TrimPrefix(p.Message, prefix+":"))
					break
				}
			}
		}
		if pos := e.Position(); pos.IsValid() {
			p.Line, p.Column = pos.Line(), pos.Column()
		}
		ve.Problems = append(ve.Problems, p)
	}
	return ve
}

// Error renders a single problem inline and several problems one per line.
func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return e.Problems[0].render(e.File)
	}
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = p.render(e.File)
	}
	return fmt.Sprintf("%s: %d problems:\n  %s", e.File, len(e.Problems), strings.Join(lines, "\n  "))
}

func (p Problem) render(file string) string {
	var sb strings.Builder
	sb.WriteString(file)
	if p.Line > 0 {
		sb.WriteString(":" + strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column))
	}
	if p.Field != "" {
		sb.WriteString(": " + p.Field)
	}
	sb.WriteString(": " + p.Message)
	return sb.String()
}

// formatPath renders a CUE path such as ["modules", "0", "name"] as
// "modules[0].name".
func formatPath(path []string) string {
	var result strings.Builder
	for i, part := range path {
		if _, err := strconv.Atoi(part); err == nil && i > 0 {
			result.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			result.WriteString(".")
		}
		result.WriteString(part)
	}
	return result.String()
}

// CheckFileSize returns an error when data is larger than maxSize.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), maxSize)
	}
	return nil
}
