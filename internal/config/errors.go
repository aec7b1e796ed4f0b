package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrInvalidValue indicates a setting has the wrong type or an
	// out-of-range value.
	ErrInvalidValue = errors.New("config: invalid value")

	// ErrFileNotFound indicates the configuration file doesn't exist.
	ErrFileNotFound = errors.New("config: file not found")

	// ErrBookmarkNotFound indicates the named bookmark is not in the file.
	ErrBookmarkNotFound = errors.New("config: bookmark not found")
)

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	// Path is the file path that failed to parse. Empty for in-memory data.
	Path string
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	path := e.Path
	if path == "" {
		path = "<data>"
	}
	return fmt.Sprintf("config: parse error in %s: %s", path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// invalid builds an ErrInvalidValue for a setting path.
func invalid(path, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidValue, path, fmt.Sprintf(format, args...))
}
