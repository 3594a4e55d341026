package docmerge

import (
	"context"

	"github.com/docmerge/docmerge/internal/signing"
	"github.com/docmerge/docmerge/internal/signing/adobesign"
	"github.com/docmerge/docmerge/internal/signing/docusign"
	"github.com/docmerge/docmerge/internal/signing/zohosign"
)

// Public interfaces for the docmerge library
type (
	// Dispatcher defines the batch email dispatch interface.
	// All methods are safe for concurrent use.
	Dispatcher interface {
		// SendBatch sends the given jobs over a single transport
		// connection. Individual job failures are recorded in the
		// returned BatchResult and never abort the batch.
		SendBatch(ctx context.Context, jobs []*SendJob, progress ProgressFunc) (*BatchResult, error)

		// TestConnection verifies that a connection to the transport
		// can be established and authenticated, then tears it down.
		TestConnection(ctx context.Context) error

		// Close closes the dispatcher and releases any resources.
		// After calling Close, the dispatcher should not be used.
		Close() error
	}

	// SigningProvider routes generated documents for e-signature.
	// Every provider exposes the same single Submit operation; callers
	// never branch on the concrete provider.
	SigningProvider = signing.Provider

	// SignRequest describes one document to route for signature.
	SignRequest = signing.Request

	// SignResult reports the outcome of a signature submission.
	SignResult = signing.Result

	// TokenSource supplies access tokens for signing provider APIs.
	// Token acquisition (OAuth, JWT grants) is the caller's concern.
	TokenSource = signing.TokenSource
)

// DocuSignConfig holds the DocuSign connection settings.
type DocuSignConfig struct {
	// AccountID is the DocuSign API account id.
	AccountID string

	// BaseURL overrides the API host. Empty selects the demo
	// environment.
	BaseURL string

	// ReturnURL is where the signer lands after the embedded ceremony.
	ReturnURL string

	// Token supplies OAuth access tokens.
	Token TokenSource
}

// NewDocuSignProvider returns a SigningProvider backed by DocuSign.
// Submissions return an embedded signing link anchored on the literal
// {Signature} token in the document.
func NewDocuSignProvider(cfg DocuSignConfig) (SigningProvider, error) {
	return docusign.New(docusign.Config{
		AccountID: cfg.AccountID,
		BaseURL:   cfg.BaseURL,
		ReturnURL: cfg.ReturnURL,
		Token:     cfg.Token,
	})
}

// NewAdobeSignProvider returns a SigningProvider backed by Adobe
// Acrobat Sign. Adobe emails the signer directly, so submissions report
// Delivered instead of a signing link. baseURL may be empty to use the
// North America shard.
func NewAdobeSignProvider(baseURL string, token TokenSource) (SigningProvider, error) {
	return adobesign.New(baseURL, token)
}

// NewZohoSignProvider returns a SigningProvider backed by Zoho Sign.
// Zoho emails the signer directly, so submissions report Delivered
// instead of a signing link. baseURL may be empty to use the default
// data center.
func NewZohoSignProvider(baseURL string, token TokenSource) (SigningProvider, error) {
	return zohosign.New(baseURL, token)
}
