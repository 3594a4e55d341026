// Package smtp implements the dispatch transport for plain SMTP servers.
// One connection is dialed, upgraded to TLS and authenticated per batch,
// then reused for every job; the per-message handshake cost would
// otherwise dominate large batches.
package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"sync"
	"time"

	"github.com/docmerge/docmerge/internal/core"
)

// Transport implements core.Transport over SMTP.
type Transport struct {
	config core.TransportSettings
}

// New creates a new SMTP transport.
func New(settings core.TransportSettings) (core.Transport, error) {
	t := &Transport{config: settings}
	if err := t.ValidateConfig(); err != nil {
		return nil, err
	}
	return t, nil
}

// ValidateConfig validates the transport configuration.
func (t *Transport) ValidateConfig() error {
	if t.config.Get("host") == "" {
		return core.NewValidationError("host", "SMTP host is required")
	}

	port := t.config.Get("port")
	if port == "" {
		return core.NewValidationError("port", "SMTP port is required")
	}
	if _, err := strconv.Atoi(port); err != nil {
		return core.NewValidationError("port", "invalid port number: "+port)
	}

	if t.config.Get("from") == "" {
		return core.NewValidationError("from", "sender address is required")
	}

	return nil
}

// Name returns the transport name.
func (t *Transport) Name() string {
	return "smtp"
}

// Connect dials the server, performs STARTTLS when the server offers it,
// and authenticates. The returned connection carries the whole batch.
func (t *Transport) Connect(ctx context.Context) (core.Conn, error) {
	host := t.config.Get("host")
	addr := net.JoinHostPort(host, t.config.Get("port"))

	timeout := 30 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	dialer := &net.Dialer{Timeout: timeout}
	raw, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, core.NewProviderError("smtp", "connect_error", "failed to connect: "+err.Error())
	}

	client, err := smtp.NewClient(raw, host)
	if err != nil {
		raw.Close()
		return nil, core.NewProviderError("smtp", "connect_error", "failed to open session: "+err.Error())
	}

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{
			ServerName: host,
			MinVersion: tls.VersionTLS12,
		}
		if t.config.Get("tls_skip_verify") == "true" {
			tlsConfig.InsecureSkipVerify = true
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return nil, core.NewProviderError("smtp", "tls_error", "STARTTLS failed: "+err.Error())
		}
	}

	username := t.config.Get("username")
	password := t.config.Get("password")
	if username != "" && password != "" {
		auth := smtp.PlainAuth("", username, password, host)
		if err := client.Auth(auth); err != nil {
			client.Close()
			return nil, core.NewProviderError("smtp", "auth_error", "authentication failed: "+err.Error())
		}
	}

	from := core.Address{
		Name:  t.config.Get("from_name"),
		Email: t.config.Get("from"),
	}

	return &conn{client: client, from: from}, nil
}

// conn is one live SMTP session, reused across a batch's jobs.
type conn struct {
	client *smtp.Client
	from   core.Address
	mu     sync.Mutex
	closed bool
}

// Send transmits one job over the shared session.
func (c *conn) Send(ctx context.Context, job *core.SendJob) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return core.NewProviderError("smtp", "connection_closed", "connection already closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := c.client.Mail(c.from.Email); err != nil {
		return core.NewProviderError("smtp", "mail_error", "MAIL FROM rejected: "+err.Error())
	}

	for _, rcpt := range job.AllRecipients() {
		if err := c.client.Rcpt(rcpt); err != nil {
			// Abort the half-open transaction so the session stays usable
			// for the next job.
			_ = c.client.Reset()
			return core.NewProviderError("smtp", "rcpt_error",
				fmt.Sprintf("recipient %s rejected: %v", rcpt, err))
		}
	}

	w, err := c.client.Data()
	if err != nil {
		_ = c.client.Reset()
		return core.NewProviderError("smtp", "data_error", "DATA rejected: "+err.Error())
	}
	if _, err := w.Write(core.BuildMIME(c.from, job)); err != nil {
		w.Close()
		return core.NewProviderError("smtp", "write_error", "failed to write message: "+err.Error())
	}
	if err := w.Close(); err != nil {
		return core.NewProviderError("smtp", "write_error", "failed to finalize message: "+err.Error())
	}

	return nil
}

// Close quits the session; it degrades to a hard close when the server
// does not answer the QUIT.
func (c *conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if err := c.client.Quit(); err != nil {
		return c.client.Close()
	}
	return nil
}
