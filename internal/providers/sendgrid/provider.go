// Package sendgrid implements the dispatch transport for SendGrid.
package sendgrid

import (
	"context"
	"encoding/base64"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/docmerge/docmerge/internal/core"
)

// Transport implements core.Transport for SendGrid.
type Transport struct {
	config core.TransportSettings
}

// New creates a new SendGrid transport.
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
		return core.NewValidationError("api_key", "SendGrid API key is required")
	}
	if t.config.Get("from") == "" {
		return core.NewValidationError("from", "sender address is required")
	}
	return nil
}

// Name returns the transport name.
func (t *Transport) Name() string {
	return "sendgrid"
}

// Connect builds the API client reused for the whole batch.
func (t *Transport) Connect(ctx context.Context) (core.Conn, error) {
	from := core.Address{
		Name:  t.config.Get("from_name"),
		Email: t.config.Get("from"),
	}
	return &conn{client: sendgrid.NewSendClient(t.config.Get("api_key")), from: from}, nil
}

// conn wraps the SendGrid client for the lifetime of one batch.
type conn struct {
	client *sendgrid.Client
	from   core.Address
}

// Send transmits one job through the SendGrid v3 mail API.
func (c *conn) Send(ctx context.Context, job *core.SendJob) error {
	from := mail.NewEmail(c.from.Name, c.from.Email)
	to := mail.NewEmail("", job.To)
	message := mail.NewSingleEmail(from, job.Subject, to, job.Body, "")

	if len(job.CC) > 0 || len(job.BCC) > 0 {
		p := message.Personalizations[0]
		for _, cc := range job.CC {
			p.AddCCs(mail.NewEmail("", cc))
		}
		for _, bcc := range job.BCC {
			p.AddBCCs(mail.NewEmail("", bcc))
		}
	}

	addAttachment(message, job.Attachment)
	for _, att := range job.ExtraAttachments {
		addAttachment(message, att)
	}

	response, err := c.client.SendWithContext(ctx, message)
	if err != nil {
		return core.NewProviderError("sendgrid", "send_error", "failed to send email: "+err.Error())
	}
	if response.StatusCode >= 400 {
		return &core.ProviderError{
			Provider:   "sendgrid",
			Code:       "api_error",
			Message:    "SendGrid API error: " + response.Body,
			StatusCode: response.StatusCode,
		}
	}
	return nil
}

// Close releases the batch's hold on the client.
func (c *conn) Close() error {
	return nil
}

func addAttachment(message *mail.SGMailV3, att core.Attachment) {
	if att.Filename == "" && len(att.Data) == 0 {
		return
	}
	a := mail.NewAttachment()
	a.SetContent(base64.StdEncoding.EncodeToString(att.Data))
	a.SetType(att.DetectContentType())
	a.SetFilename(att.Filename)
	a.SetDisposition("attachment")
	message.AddAttachment(a)
}
