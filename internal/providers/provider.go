package providers

import (
	"github.com/docmerge/docmerge"
	"github.com/docmerge/docmerge/internal/providers/mailgun"
	"github.com/docmerge/docmerge/internal/providers/sendgrid"
	"github.com/docmerge/docmerge/internal/providers/ses"
	"github.com/docmerge/docmerge/internal/providers/smtp"
)

// NewSMTPTransport creates a new SMTP dispatch transport.
func NewSMTPTransport(settings docmerge.TransportSettings) (docmerge.Transport, error) {
	return smtp.New(settings)
}

// NewSESTransport creates a new AWS SES dispatch transport.
func NewSESTransport(settings docmerge.TransportSettings) (docmerge.Transport, error) {
	return ses.New(settings)
}

// NewSendGridTransport creates a new SendGrid dispatch transport.
func NewSendGridTransport(settings docmerge.TransportSettings) (docmerge.Transport, error) {
	return sendgrid.New(settings)
}

// NewMailgunTransport creates a new Mailgun dispatch transport.
func NewMailgunTransport(settings docmerge.TransportSettings) (docmerge.Transport, error) {
	return mailgun.New(settings)
}
