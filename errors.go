package docmerge

import (
	"errors"
	"fmt"

	"github.com/docmerge/docmerge/internal/tabular"
)

// Predefined sentinel errors for common cases.
var (
	// ErrInvalidEmail indicates an invalid email address format.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrNoTemplate indicates an operation was attempted before a
	// template was loaded.
	ErrNoTemplate = errors.New("no template loaded")

	// ErrNoData indicates an operation was attempted before a data
	// source was loaded.
	ErrNoData = errors.New("no data loaded")

	// ErrUnsupportedFormat indicates a data file extension with no
	// registered loader. Errors returned by LoadData wrap it when the
	// extension is unrecognized.
	ErrUnsupportedFormat = tabular.ErrUnsupportedFormat

	// ErrInvalidConfiguration indicates invalid configuration.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("client closed")
)

// DataFormatError reports a data file that could not be read or parsed.
type DataFormatError = tabular.DataFormatError

// TemplateError represents an error in document template processing.
type TemplateError struct {
	// Template identifies the template (filename or label).
	Template string

	// Operation is the operation that failed (e.g., "parse", "generate").
	Operation string

	// Message is the error message.
	Message string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *TemplateError) Error() string {
	return fmt.Sprintf("template error in %s during %s: %s", e.Template, e.Operation, e.Message)
}

// Unwrap returns the underlying error.
func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// NewTemplateError creates a new template error.
func NewTemplateError(template, operation, message string, cause error) *TemplateError {
	return &TemplateError{
		Template:  template,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

// RowError reports a failure while generating the document for one
// data row. Index is zero-based.
type RowError struct {
	// Index is the position of the row in the data source.
	Index int

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Index, e.Cause)
}

// Unwrap returns the underlying error.
func (e *RowError) Unwrap() error {
	return e.Cause
}
