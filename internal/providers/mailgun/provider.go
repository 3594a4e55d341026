// Package mailgun implements the dispatch transport for Mailgun.
package mailgun

import (
	"context"
	"fmt"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/docmerge/docmerge/internal/core"
)

// Transport implements core.Transport for Mailgun.
type Transport struct {
	config core.TransportSettings
}

// New creates a new Mailgun transport.
func New(settings core.TransportSettings) (core.Transport, error) {
	t := &Transport{config: settings}
	if err := t.ValidateConfig(); err != nil {
		return nil, err
	}
	return t, nil
}

// ValidateConfig validates the transport configuration.
func (t *Transport) ValidateConfig() error {
	if t.config.Get("api_key") == "" {
		return core.NewValidationError("api_key", "Mailgun API key is required")
	}
	if t.config.Get("domain") == "" {
		return core.NewValidationError("domain", "Mailgun domain is required")
	}
	if t.config.Get("from") == "" {
		return core.NewValidationError("from", "sender address is required")
	}
	return nil
}

// Name returns the transport name.
func (t *Transport) Name() string {
	return "mailgun"
}

// Connect builds the API client reused for the whole batch.
func (t *Transport) Connect(ctx context.Context) (core.Conn, error) {
	client := mailgun.NewMailgun(t.config.Get("domain"), t.config.Get("api_key"))

	// EU customers carry their own API base.
	if baseURL := t.config.Get("base_url"); baseURL != "" {
		client.SetAPIBase(baseURL)
	}

	from := core.Address{
		Name:  t.config.Get("from_name"),
		Email: t.config.Get("from"),
	}

	return &conn{client: client, from: from}, nil
}

// conn wraps the Mailgun client for the lifetime of one batch.
type conn struct {
	client mailgun.Mailgun
	from   core.Address
}

// Send transmits one job through the Mailgun messages API.
func (c *conn) Send(ctx context.Context, job *core.SendJob) error {
	message := c.client.NewMessage(c.from.String(), job.Subject, job.Body, job.To)

	for _, cc := range job.CC {
		message.AddCC(cc)
	}
	for _, bcc := range job.BCC {
		message.AddBCC(bcc)
	}

	if len(job.Attachment.Data) > 0 {
		message.AddBufferAttachment(job.Attachment.Filename, job.Attachment.Data)
	}
	for _, att := range job.ExtraAttachments {
		if len(att.Data) > 0 {
			message.AddBufferAttachment(att.Filename, att.Data)
		}
	}

	if _, _, err := c.client.Send(ctx, message); err != nil {
		return core.NewProviderError("mailgun", "send_failed", fmt.Sprintf("failed to send email: %v", err))
	}
	return nil
}

// Close releases the batch's hold on the client.
func (c *conn) Close() error {
	return nil
}
