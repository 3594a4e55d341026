package docmerge

import (
	"time"
)

// Config holds the complete docmerge configuration.
type Config struct {
	// Transport contains dispatch transport configuration.
	Transport TransportConfig

	// Dispatch contains batch dispatch behavior configuration.
	Dispatch DispatchConfig

	// Documents contains document generation configuration.
	Documents DocumentConfig
}

// TransportConfig contains dispatch transport settings.
type TransportConfig struct {
	// Type specifies the email transport to use.
	Type TransportType

	// Settings contains settings for the transport.
	Settings TransportSettings

	// Timeout is the maximum time to wait for transport operations.
	Timeout time.Duration
}

// TransportType represents the type of email transport.
type TransportType string

const (
	// TransportSMTP represents a generic SMTP server.
	TransportSMTP TransportType = "smtp"

	// TransportAWSSES represents Amazon Simple Email Service.
	TransportAWSSES TransportType = "aws_ses"

	// TransportSendGrid represents the SendGrid email service.
	TransportSendGrid TransportType = "sendgrid"

	// TransportMailgun represents the Mailgun email service.
	TransportMailgun TransportType = "mailgun"
)

// String returns the string representation of the transport type.
func (tt TransportType) String() string {
	return string(tt)
}

// Valid checks if the transport type is supported.
func (tt TransportType) Valid() bool {
	switch tt {
	case TransportSMTP, TransportAWSSES, TransportSendGrid, TransportMailgun:
		return true
	default:
		return false
	}
}

// DispatchConfig contains batch dispatch behavior settings.
type DispatchConfig struct {
	// Delay is the pause between consecutive jobs in a batch. The
	// delay is not applied after the final job.
	Delay time.Duration

	// ProgressBuffer is the capacity of the progress update queue.
	// Updates are dropped when the queue is full so dispatch never
	// blocks on a slow progress consumer.
	ProgressBuffer int
}

// DocumentConfig contains document generation settings.
type DocumentConfig struct {
	// ReservedPlaceholders are placeholder names left untouched during
	// substitution. Matching is exact and case-sensitive.
	ReservedPlaceholders []string
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Transport: TransportConfig{
			Timeout: 30 * time.Second,
		},
		Dispatch: DispatchConfig{
			Delay:          1500 * time.Millisecond,
			ProgressBuffer: 64,
		},
		Documents: DocumentConfig{
			ReservedPlaceholders: []string{"Signature"},
		},
	}
}

// Validate checks if the configuration is valid and complete.
func (c *Config) Validate() error {
	if !c.Transport.Type.Valid() {
		return &ValidationError{
			Field:   "transport.type",
			Message: "invalid or unsupported transport type: " + string(c.Transport.Type),
		}
	}

	if c.Transport.Timeout <= 0 {
		return &ValidationError{
			Field:   "transport.timeout",
			Message: "timeout must be greater than 0",
		}
	}

	if c.Dispatch.Delay < 0 {
		return &ValidationError{
			Field:   "dispatch.delay",
			Message: "delay must not be negative",
		}
	}

	if c.Dispatch.ProgressBuffer <= 0 {
		return &ValidationError{
			Field:   "dispatch.progress_buffer",
			Message: "progress buffer must be greater than 0",
		}
	}

	return nil
}
