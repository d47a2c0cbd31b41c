package crime

import (
	"fmt"
	"strings"
)

// ConfigurationError indicates a configured location (input root or config file)
// cannot be used.
type ConfigurationError struct {
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration %q unusable: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("configuration %q unusable", e.Path)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// EmptyInputError indicates the root exists but holds no matching data files.
type EmptyInputError struct {
	Root       string
	Extensions []string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("no %s files found under %s", strings.Join(e.Extensions, "/"), e.Root)
}

// ParseError indicates a discovered file could not be read as a table.
type ParseError struct {
	File string
	// Line is 1-based; 0 when the failure is not tied to a row.
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s (line %d): %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FormatError indicates a month value that is not "YYYY-MM".
type FormatError struct {
	Value string
	// Row is the 0-based dataset index when known, -1 otherwise.
	Row int
}

func (e *FormatError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("month %q at record %d does not match YYYY-MM", e.Value, e.Row)
	}
	return fmt.Sprintf("month %q does not match YYYY-MM", e.Value)
}

// MissingConfigurationError indicates a force with no population figure.
type MissingConfigurationError struct {
	Force string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("no population configured for force %q", e.Force)
}

// MissingColumnError indicates a column required by a strict drop step is absent.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not present in dataset", e.Column)
}
