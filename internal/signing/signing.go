// Package signing defines the e-signature provider capability. Every
// provider exposes the same single operation: submit a rendered document
// for signature and report either a signing link or that the provider
// delivered its own email to the signer. Token acquisition (OAuth, JWT)
// is the caller's concern and is injected as a TokenSource.
//
// Providers anchor their signature field on the literal {Signature}
// token, which the placeholder engine leaves unsubstituted when listed
// as a reserved placeholder.
package signing

import "context"

// AnchorToken is the literal text a provider anchors its signature
// field to in the rendered document.
const AnchorToken = "{Signature}"

// TokenSource supplies a valid access token for the provider API.
type TokenSource func(ctx context.Context) (string, error)

// Request describes one document to route for signature.
type Request struct {
	// SignerEmail is the recipient who must sign.
	SignerEmail string

	// SignerName is the recipient's display name.
	SignerName string

	// DocumentName is the filename shown to the signer.
	DocumentName string

	// Document is the rendered document content.
	Document []byte
}

// Result reports the outcome of a submission.
type Result struct {
	// Reference is the provider's identifier for the submission
	// (envelope, agreement or request id).
	Reference string

	// SigningURL is an embedded-signing link when the provider issues
	// one; empty when the provider notifies the signer itself.
	SigningURL string

	// Delivered is true when the provider sent its own email to the
	// signer instead of returning a link.
	Delivered bool
}

// Provider is the single polymorphic signing capability. Callers never
// branch on the concrete provider.
type Provider interface {
	// Submit routes one document for signature.
	Submit(ctx context.Context, req Request) (*Result, error)

	// Name returns the provider's name for identification and tracing.
	Name() string
}
