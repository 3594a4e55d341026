// Package ses implements the dispatch transport for Amazon SES.
// Messages go out through SendRawEmail so personalized attachments
// survive intact. The SDK client plays the role of the batch's reused
// connection; it is built once per Connect and shared by every job.
package ses

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/docmerge/docmerge/internal/core"
)

// Transport implements core.Transport for Amazon SES.
type Transport struct {
	config core.TransportSettings
}

// New creates a new SES transport.
func New(settings core.TransportSettings) (core.Transport, error) {
	t := &Transport{config: settings}
	if err := t.ValidateConfig(); err != nil {
		return nil, err
	}
	return t, nil
}

// ValidateConfig validates the transport configuration.
func (t *Transport) ValidateConfig() error {
	if t.config.Get("region") == "" {
		return core.NewValidationError("region", "AWS region is required")
	}
	if t.config.Get("from") == "" {
		return core.NewValidationError("from", "sender address is required")
	}
	if t.config.Get("access_key") != "" && t.config.Get("secret_key") == "" {
		return core.NewValidationError("secret_key", "secret key is required when access key is provided")
	}
	return nil
}

// Name returns the transport name.
func (t *Transport) Name() string {
	return "aws_ses"
}

// Connect loads the AWS configuration and builds the SES client reused
// for the whole batch.
func (t *Transport) Connect(ctx context.Context) (core.Conn, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(t.config.Get("region")),
	)
	if err != nil {
		return nil, core.NewProviderError("aws_ses", "config_error", "failed to load AWS config: "+err.Error())
	}

	// Override with explicit credentials if provided.
	if accessKey := t.config.Get("access_key"); accessKey != "" {
		secretKey := t.config.Get("secret_key")
		sessionToken := t.config.Get("session_token")
		cfg.Credentials = aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     accessKey,
				SecretAccessKey: secretKey,
				SessionToken:    sessionToken,
			}, nil
		})
	}

	from := core.Address{
		Name:  t.config.Get("from_name"),
		Email: t.config.Get("from"),
	}

	return &conn{client: ses.NewFromConfig(cfg), from: from}, nil
}

// conn wraps the SES client for the lifetime of one batch.
type conn struct {
	client *ses.Client
	from   core.Address
}

// Send transmits one job as a raw MIME message.
func (c *conn) Send(ctx context.Context, job *core.SendJob) error {
	input := &ses.SendRawEmailInput{
		Source:       aws.String(c.from.String()),
		Destinations: job.AllRecipients(),
		RawMessage: &types.RawMessage{
			Data: core.BuildMIME(c.from, job),
		},
	}

	if _, err := c.client.SendRawEmail(ctx, input); err != nil {
		return core.NewProviderError("aws_ses", "send_error", "failed to send email: "+err.Error())
	}
	return nil
}

// Close releases the batch's hold on the client. The SDK client itself
// holds no connection state that needs tearing down.
func (c *conn) Close() error {
	return nil
}
