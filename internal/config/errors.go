package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration loading.
var (
	// ErrUnknownCompilerType indicates a compiler type other than rustc, gcc
	// or clang.
	ErrUnknownCompilerType = errors.New("unknown compiler type")

	// ErrEmptyCommand indicates a command list with no program.
	ErrEmptyCommand = errors.New("empty command")

	// ErrInvalidIndent indicates a non-positive indent width.
	ErrInvalidIndent = errors.New("indent_width must be positive")
)

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Line is the line number where the error occurred (if available).
	Line int
	// Column is the column number where the error occurred (if available).
	Column int
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError describes a setting with a bad value.
type ValidationError struct {
	// Section is the table holding the setting, such as "file.rs".
	Section string
	// Field is the setting name.
	Field string
	// Value is the rejected value.
	Value any
	// Err is the sentinel describing the problem.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %v (value: %v)", e.Section, e.Field, e.Err, e.Value)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
