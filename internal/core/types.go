package core

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strconv"
	"strings"
)

// Transport defines the interface for batch dispatch transports.
// Implementations handle transport-specific wire formats and connection
// management; the dispatch loop itself lives in the client.
type Transport interface {
	// Connect opens the connection used for an entire batch.
	// The returned Conn is owned exclusively by one batch and must be
	// closed when the batch completes, on every exit path.
	Connect(ctx context.Context) (Conn, error)

	// ValidateConfig validates the transport configuration.
	// Returns an error if the configuration is invalid or incomplete.
	ValidateConfig() error

	// Name returns the transport's name for identification and tracing.
	Name() string
}

// Conn is a live transport connection reused across the jobs of a batch.
type Conn interface {
	// Send transmits a single fully-rendered job.
	Send(ctx context.Context, job *SendJob) error

	// Close tears the connection down. Safe to call more than once.
	Close() error
}

// TransportSettings represents configuration settings for dispatch transports.
type TransportSettings map[string]string

// Get retrieves a configuration value by key.
func (ts TransportSettings) Get(key string) string {
	return ts[key]
}

// Set sets a configuration value.
func (ts TransportSettings) Set(key, value string) {
	ts[key] = value
}

// ValueKind enumerates the closed set of scalar kinds a table cell can hold.
type ValueKind int

const (
	// KindNull marks a missing or empty cell.
	KindNull ValueKind = iota

	// KindString marks free text.
	KindString

	// KindInt marks an integer value.
	KindInt

	// KindFloat marks a floating-point value.
	KindFloat
)

// Value is a single table cell. Cells are immutable after load.
type Value struct {
	Kind ValueKind
	Str  string
	Int  int64
	Fl   float64
}

// NullValue returns the missing-cell sentinel.
func NullValue() Value { return Value{Kind: KindNull} }

// StringValue wraps free text.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// IntValue wraps an integer.
func IntValue(i int64) Value { return Value{Kind: KindInt, Int: i} }

// FloatValue wraps a float.
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Fl: f} }

// IsNull reports whether the cell is missing.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Numeric returns the cell as a float64 and whether it is numeric.
// Strings that parse as a number after stripping thousands separators
// count as numeric, matching the loader's numeric-looking rule.
func (v Value) Numeric() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Fl, true
	case KindString:
		s := strings.ReplaceAll(strings.TrimSpace(v.Str), ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// String formats the cell for document substitution and filename
// construction: null is empty, a float with zero fractional part drops
// the trailing ".0", everything else takes its default string form.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		if v.Fl == float64(int64(v.Fl)) {
			return strconv.FormatInt(int64(v.Fl), 10)
		}
		return strconv.FormatFloat(v.Fl, 'f', -1, 64)
	default:
		return v.Str
	}
}

// Row is one table row: column order as authored, values keyed by the
// trimmed column name.
type Row struct {
	Columns []string
	Values  map[string]Value
}

// Get returns the cell for a column, or the null sentinel when absent.
func (r Row) Get(column string) Value {
	if v, ok := r.Values[column]; ok {
		return v
	}
	return NullValue()
}

// RowData is a fully materialized row: formatted strings keyed by
// placeholder name (when a mapping was applied) plus the original
// columns, including any synthesized *_Words entries.
type RowData map[string]string

// Lookup resolves a key exactly first, then case-insensitively.
// The second return reports whether any match was found.
func (rd RowData) Lookup(key string) (string, bool) {
	if v, ok := rd[key]; ok {
		return v, true
	}
	for k, v := range rd {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// GeneratedDocument is one rendered output: a derived filename and fresh
// document bytes that never alias the template buffer.
type GeneratedDocument struct {
	Filename string
	Content  []byte
}

// Attachment represents a file attached to an outgoing message.
type Attachment struct {
	// Filename is the name of the file as it will appear in the email.
	Filename string

	// ContentType is the MIME content type of the file.
	// If empty, it will be detected from the filename extension.
	ContentType string

	// Data contains the file content.
	Data []byte
}

// DetectContentType attempts to detect the content type from the filename.
func (a *Attachment) DetectContentType() string {
	if a.ContentType != "" {
		return a.ContentType
	}

	ext := strings.ToLower(filepath.Ext(a.Filename))
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".doc", ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xls", ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".txt":
		return "text/plain"
	case ".csv":
		return "text/csv"
	case ".zip":
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}

// Address represents an email address with optional display name.
type Address struct {
	Name  string `json:"name"`  // Display name (optional)
	Email string `json:"email"` // Email address (required)
}

// String returns the formatted email address.
// If Name is provided, returns "Name <email@domain.com>",
// otherwise just "email@domain.com".
func (a Address) String() string {
	if a.Name != "" {
		return mime.QEncoding.Encode("UTF-8", a.Name) + " <" + a.Email + ">"
	}
	return a.Email
}

// SendJob is one fully-rendered, ready-to-transmit unit of work:
// one recipient, one message, one personalized attachment.
type SendJob struct {
	// To is the primary recipient address.
	To string

	// Subject and Body are pre-rendered upstream; the dispatcher never
	// performs substitution.
	Subject string
	Body    string

	// Attachment is the personalized document for this recipient.
	Attachment Attachment

	// CC and BCC are optional additional recipients.
	CC  []string
	BCC []string

	// ExtraAttachments are optional attachments common to the batch.
	ExtraAttachments []Attachment

	// RowIndex is the originating data row, used to correlate failures
	// back to source data.
	RowIndex int
}

// AllRecipients returns To, CC and BCC combined, blanks dropped.
func (j *SendJob) AllRecipients() []string {
	all := make([]string, 0, 1+len(j.CC)+len(j.BCC))
	if strings.TrimSpace(j.To) != "" {
		all = append(all, strings.TrimSpace(j.To))
	}
	for _, cc := range j.CC {
		if strings.TrimSpace(cc) != "" {
			all = append(all, strings.TrimSpace(cc))
		}
	}
	for _, bcc := range j.BCC {
		if strings.TrimSpace(bcc) != "" {
			all = append(all, strings.TrimSpace(bcc))
		}
	}
	return all
}

// FailureDetail records one failed job within a batch.
type FailureDetail struct {
	// RowIndex is the originating data row; -1 marks a synthetic entry
	// covering the whole remaining batch after a connection failure.
	RowIndex int `json:"row_index"`

	// Email is the recipient of the failed job.
	Email string `json:"email"`

	// Error is the failure text.
	Error string `json:"error"`
}

// BatchResult aggregates the outcome of one dispatch batch.
// It is created once per batch invocation and never merged across batches.
type BatchResult struct {
	// Total is the number of jobs in the batch.
	Total int `json:"total"`

	// Sent is the number of jobs transmitted successfully.
	Sent int `json:"sent"`

	// Failed is the number of jobs that failed, including jobs covered
	// by a synthetic connection-failure entry.
	Failed int `json:"failed"`

	// Skipped is the number of jobs not attempted, e.g. after a
	// mid-batch cancellation.
	Skipped int `json:"skipped"`

	// FailedDetails lists failures in send order.
	FailedDetails []FailureDetail `json:"failed_details"`

	// Transport is the name of the transport used for the batch.
	Transport string `json:"transport"`
}

// ProgressFunc reports dispatch progress after each job.
// current starts at 1. Implementations must return quickly; slow
// consumers cause updates to be dropped, never dispatch to stall.
type ProgressFunc func(current, total int, status string)

// ValidationError represents a validation error with specific field information.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string

	// Message is the validation error message.
	Message string

	// Value is the invalid value (optional).
	Value interface{}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation error in %s: %s (value: %v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Is implements error matching for errors.Is.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// ProviderError represents an error from a transport or signing provider.
type ProviderError struct {
	// Provider is the name of the provider that generated the error.
	Provider string

	// Code is the provider-specific error code.
	Code string

	// Message is the error message from the provider.
	Message string

	// StatusCode is the HTTP status code (for HTTP-based providers).
	StatusCode int

	// Cause is the underlying error that caused this provider error.
	Cause error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %s error [%s] (status: %d): %s",
			e.Provider, e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %s error [%s]: %s", e.Provider, e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Is implements error matching for errors.Is.
func (e *ProviderError) Is(target error) bool {
	pe, ok := target.(*ProviderError)
	if !ok {
		return false
	}
	return e.Provider == pe.Provider && e.Code == pe.Code
}

// NewProviderError creates a new provider error.
func NewProviderError(provider, code, message string) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Code:     code,
		Message:  message,
	}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewValidationErrorWithValue creates a new validation error with a value.
func NewValidationErrorWithValue(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}
