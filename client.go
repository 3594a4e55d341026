package docmerge

import (
	"context"
	"fmt"
	"sync"

	"github.com/docmerge/docmerge/internal/core"
	"github.com/docmerge/docmerge/internal/providers/mailgun"
	"github.com/docmerge/docmerge/internal/providers/sendgrid"
	"github.com/docmerge/docmerge/internal/providers/ses"
	"github.com/docmerge/docmerge/internal/providers/smtp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Type aliases to re-export core types for the public API.
// This allows users to access types like docmerge.SendJob instead of
// core.SendJob, maintaining a clean public interface while keeping
// implementation details internal.
type (
	Transport         = core.Transport
	Conn              = core.Conn
	TransportSettings = core.TransportSettings
	Address           = core.Address
	Attachment        = core.Attachment
	SendJob           = core.SendJob
	FailureDetail     = core.FailureDetail
	BatchResult       = core.BatchResult
	ProgressFunc      = core.ProgressFunc
	GeneratedDocument = core.GeneratedDocument
	Row               = core.Row
	RowData           = core.RowData
	Value             = core.Value
	ValueKind         = core.ValueKind
	ValidationError   = core.ValidationError
	ProviderError     = core.ProviderError
)

// Value kind constants
const (
	KindNull   = core.KindNull
	KindString = core.KindString
	KindInt    = core.KindInt
	KindFloat  = core.KindFloat
)

// Error constructor functions
var (
	NewValidationError          = core.NewValidationError
	NewValidationErrorWithValue = core.NewValidationErrorWithValue
	NewProviderError            = core.NewProviderError
)

// Client implements the Dispatcher interface and sends generated
// documents to their recipients in batches.
// All methods are safe for concurrent use.
type Client struct {
	config    Config
	transport Transport
	tracer    trace.Tracer
	mu        sync.RWMutex
	closed    bool
}

// New creates a new dispatch client with the given configuration.
// The client must be closed when no longer needed to release resources.
func New(config Config, opts ...Option) (*Client, error) {
	// Apply functional options
	for _, opt := range opts {
		opt(&config)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	transport, err := createTransport(config.Transport.Type, config.Transport.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	return &Client{
		config:    config,
		transport: transport,
		tracer:    otel.Tracer("github.com/docmerge/docmerge"),
	}, nil
}

// SendBatch sends the given jobs over a single transport connection.
// The connection is opened once, reused for every job and torn down
// when the batch completes. Individual job failures are recorded in
// the returned BatchResult and never abort the batch; only a failure
// to establish the connection terminates early, leaving one synthetic
// failure entry covering the whole batch.
//
// progress, when non-nil, is invoked after each job with a 1-based
// current counter. Updates are delivered through a bounded queue and
// dropped when the consumer cannot keep up, so dispatch never stalls.
func (c *Client) SendBatch(ctx context.Context, jobs []*SendJob, progress ProgressFunc) (*BatchResult, error) {
	ctx, span := c.tracer.Start(ctx, "docmerge.Client.SendBatch")
	defer span.End()

	// Check if client is closed
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		span.RecordError(ErrClientClosed)
		span.SetStatus(codes.Error, ErrClientClosed.Error())
		return nil, ErrClientClosed
	}
	c.mu.RUnlock()

	result := &BatchResult{
		Total:     len(jobs),
		Transport: c.transport.Name(),
	}

	if len(jobs) == 0 {
		span.SetStatus(codes.Ok, "no jobs to send")
		return result, nil
	}

	span.SetAttributes(
		attribute.Int("docmerge.batch.size", len(jobs)),
		attribute.String("docmerge.transport", c.transport.Name()),
	)

	err := c.runBatch(ctx, jobs, result, progress)

	span.SetAttributes(
		attribute.Int("docmerge.batch.sent", result.Sent),
		attribute.Int("docmerge.batch.failed", result.Failed),
		attribute.Int("docmerge.batch.skipped", result.Skipped),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch dispatch failed")
		return result, err
	}

	if result.Failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d/%d jobs failed", result.Failed, result.Total))
	} else {
		span.SetStatus(codes.Ok, "batch dispatch completed")
	}

	return result, nil
}

// TestConnection verifies that a connection to the transport can be
// established and authenticated, then tears it down.
func (c *Client) TestConnection(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "docmerge.Client.TestConnection")
	defer span.End()

	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		span.RecordError(ErrClientClosed)
		span.SetStatus(codes.Error, ErrClientClosed.Error())
		return ErrClientClosed
	}
	c.mu.RUnlock()

	span.SetAttributes(
		attribute.String("docmerge.transport", c.transport.Name()),
	)

	conn, err := c.transport.Connect(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "connection test failed")
		return err
	}

	if err := conn.Close(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "connection teardown failed")
		return err
	}

	span.SetStatus(codes.Ok, "connection test succeeded")
	return nil
}

// Close closes the client and releases any resources.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	return nil
}

// createTransport creates a transport instance based on type and settings.
func createTransport(transportType TransportType, settings TransportSettings) (Transport, error) {
	switch transportType {
	case TransportSMTP:
		return smtp.New(settings)
	case TransportAWSSES:
		return ses.New(settings)
	case TransportSendGrid:
		return sendgrid.New(settings)
	case TransportMailgun:
		return mailgun.New(settings)
	default:
		return nil, fmt.Errorf("%w: unsupported transport type: %s", ErrInvalidConfiguration, transportType)
	}
}
