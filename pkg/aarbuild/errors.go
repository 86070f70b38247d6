package aarbuild

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrEmptyTemplateSet is returned when none of the selected templates could
// be loaded
var ErrEmptyTemplateSet = errors.New("no selected template could be loaded")

// Exit codes returned by ExitCode
const (
	ExitOK               = 0
	ExitGeneric          = 1
	ExitEmptyTemplateSet = 3
	ExitConfig           = 7
	ExitDocument         = 11
)

// DocumentError represents an error during document operations
type DocumentError struct {
	Operation string
	Path      string
	Cause     error
}

func (e *DocumentError) Error() string {
	if e.Path != "" && e.Cause != nil {
		return fmt.Sprintf("document error during %s of '%s': %v", e.Operation, e.Path, e.Cause)
	} else if e.Path != "" {
		return fmt.Sprintf("document error during %s of '%s'", e.Operation, e.Path)
	} else if e.Cause != nil {
		return fmt.Sprintf("document error during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("document error during %s", e.Operation)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// NewDocumentError creates a new document error
func NewDocumentError(operation, path string, cause error) error {
	return &DocumentError{
		Operation: operation,
		Path:      path,
		Cause:     cause,
	}
}

// ConfigError reports a configuration file or environment that could not be
// loaded
type ConfigError struct {
	Path  string
	Cause error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config error in '%s': %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("config error: %v", e.Cause)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// ValidationIssue represents a single validation problem
type ValidationIssue struct {
	Field   string
	Message string
}

// ValidationError represents multiple validation issues
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation error"
	}

	if len(e.Issues) == 1 {
		return fmt.Sprintf("validation error: %s - %s", e.Issues[0].Field, e.Issues[0].Message)
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d validation issues:", len(e.Issues)))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("  %s: %s", issue.Field, issue.Message))
	}
	return strings.Join(parts, "\n")
}

// MultiError collects multiple errors
type MultiError struct {
	errors []error
}

// NewMultiError creates a new multi-error collector
func NewMultiError() *MultiError {
	return &MultiError{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collection (ignores nil errors)
func (m *MultiError) Add(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

// Len returns the number of errors
func (m *MultiError) Len() int {
	return len(m.errors)
}

// Errors returns the collected errors
func (m *MultiError) Errors() []error {
	return m.errors
}

// Err returns the multi-error or nil if empty
func (m *MultiError) Err() error {
	if len(m.errors) == 0 {
		return nil
	}
	if len(m.errors) == 1 {
		return m.errors[0]
	}
	return m
}

func (m *MultiError) Error() string {
	if len(m.errors) == 0 {
		return "no errors"
	}

	if len(m.errors) == 1 {
		return m.errors[0].Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d errors occurred:", len(m.errors)))
	for i, err := range m.errors {
		parts = append(parts, fmt.Sprintf("  [%d] %v", i+1, err))
	}
	return strings.Join(parts, "\n")
}

// Unwrap exposes the collected errors to errors.Is and errors.As
func (m *MultiError) Unwrap() []error {
	return m.errors
}

// ContextError adds context to an existing error
type ContextError struct {
	Operation string
	Context   map[string]interface{}
	Cause     error
}

func (e *ContextError) Error() string {
	var contextParts []string
	for k, v := range e.Context {
		contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(contextParts)

	if len(contextParts) > 0 {
		return fmt.Sprintf("%s [%s]: %v", e.Operation, strings.Join(contextParts, ", "), e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
}

func (e *ContextError) Unwrap() error {
	return e.Cause
}

// WithContext wraps an error with additional context
func WithContext(err error, operation string, context map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &ContextError{
		Operation: operation,
		Context:   context,
		Cause:     err,
	}
}

// RecoverError converts a panic recovery value to an error
func RecoverError(r interface{}) error {
	switch v := r.(type) {
	case error:
		return fmt.Errorf("panic recovered: %w", v)
	case string:
		return fmt.Errorf("panic recovered: %s", v)
	default:
		return fmt.Errorf("panic recovered: %v", v)
	}
}

// IsDocumentError checks if an error is, or wraps, a document error
func IsDocumentError(err error) bool {
	var de *DocumentError
	return errors.As(err, &de)
}

// IsConfigError checks if an error is, or wraps, a configuration error
func IsConfigError(err error) bool {
	var ce *ConfigError
	var ve *ValidationError
	return errors.As(err, &ce) || errors.As(err, &ve)
}

// ExitCode maps an error returned by the engine or the configuration layer
// to a process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsConfigError(err):
		return ExitConfig
	case errors.Is(err, ErrEmptyTemplateSet):
		return ExitEmptyTemplateSet
	case IsDocumentError(err):
		return ExitDocument
	default:
		return ExitGeneric
	}
}
