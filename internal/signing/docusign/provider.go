// Package docusign submits documents for signature through the
// DocuSign eSignature REST API. It creates a sent envelope with a
// signature tab anchored on the signature token, then requests an
// embedded recipient view so the caller gets a signing link back.
package docusign

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/docmerge/docmerge/internal/signing"
)

const defaultBaseURL = "https://demo.docusign.net/restapi"

// clientUserID marks the recipient as captive so DocuSign allows an
// embedded recipient view instead of sending its own email.
const clientUserID = "docmerge-embedded"

// Provider implements signing.Provider against DocuSign.
type Provider struct {
	accountID string
	baseURL   string
	returnURL string
	token     signing.TokenSource
	client    *http.Client
}

// Config holds the DocuSign connection settings.
type Config struct {
	// AccountID is the DocuSign API account id.
	AccountID string

	// BaseURL overrides the API host. Defaults to the demo
	// environment when empty.
	BaseURL string

	// ReturnURL is where DocuSign redirects the signer after the
	// embedded ceremony completes.
	ReturnURL string

	// Token supplies OAuth access tokens.
	Token signing.TokenSource
}

// New returns a DocuSign provider.
func New(cfg Config) (*Provider, error) {
	if cfg.AccountID == "" {
		return nil, fmt.Errorf("docusign: account id is required")
	}
	if cfg.Token == nil {
		return nil, fmt.Errorf("docusign: token source is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return &Provider{
		accountID: cfg.AccountID,
		baseURL:   strings.TrimSuffix(base, "/"),
		returnURL: cfg.ReturnURL,
		token:     cfg.Token,
		client:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Name implements signing.Provider.
func (p *Provider) Name() string { return "docusign" }

type envelopeRequest struct {
	EmailSubject string     `json:"emailSubject"`
	Documents    []document `json:"documents"`
	Recipients   recipients `json:"recipients"`
	Status       string     `json:"status"`
}

type document struct {
	DocumentBase64 string `json:"documentBase64"`
	Name           string `json:"name"`
	FileExtension  string `json:"fileExtension"`
	DocumentID     string `json:"documentId"`
}

type recipients struct {
	Signers []signer `json:"signers"`
}

type signer struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	RecipientID  string `json:"recipientId"`
	ClientUserID string `json:"clientUserId"`
	Tabs         tabs   `json:"tabs"`
}

type tabs struct {
	SignHereTabs []anchorTab `json:"signHereTabs"`
}

type anchorTab struct {
	AnchorString  string `json:"anchorString"`
	AnchorUnits   string `json:"anchorUnits"`
	AnchorXOffset string `json:"anchorXOffset"`
	AnchorYOffset string `json:"anchorYOffset"`
}

// Submit creates a sent envelope and returns an embedded signing link.
func (p *Provider) Submit(ctx context.Context, req signing.Request) (*signing.Result, error) {
	env := envelopeRequest{
		EmailSubject: "Please sign: " + req.DocumentName,
		Documents: []document{{
			DocumentBase64: base64.StdEncoding.EncodeToString(req.Document),
			Name:           req.DocumentName,
			FileExtension:  "docx",
			DocumentID:     "1",
		}},
		Recipients: recipients{
			Signers: []signer{{
				Email:        req.SignerEmail,
				Name:         req.SignerName,
				RecipientID:  "1",
				ClientUserID: clientUserID,
				Tabs: tabs{
					SignHereTabs: []anchorTab{{
						AnchorString:  signing.AnchorToken,
						AnchorUnits:   "pixels",
						AnchorXOffset: "0",
						AnchorYOffset: "0",
					}},
				},
			}},
		},
		Status: "sent",
	}

	var created struct {
		EnvelopeID string `json:"envelopeId"`
	}
	url := fmt.Sprintf("%s/v2.1/accounts/%s/envelopes", p.baseURL, p.accountID)
	if err := p.post(ctx, url, env, &created); err != nil {
		return nil, fmt.Errorf("docusign: create envelope: %w", err)
	}

	view := map[string]string{
		"returnUrl":            p.returnURL,
		"authenticationMethod": "none",
		"email":                req.SignerEmail,
		"userName":             req.SignerName,
		"clientUserId":         clientUserID,
	}
	var viewResp struct {
		URL string `json:"url"`
	}
	url = fmt.Sprintf("%s/v2.1/accounts/%s/envelopes/%s/views/recipient", p.baseURL, p.accountID, created.EnvelopeID)
	if err := p.post(ctx, url, view, &viewResp); err != nil {
		return nil, fmt.Errorf("docusign: recipient view: %w", err)
	}

	return &signing.Result{
		Reference:  created.EnvelopeID,
		SigningURL: viewResp.URL,
	}, nil
}

func (p *Provider) post(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	token, err := p.token(ctx)
	if err != nil {
		return fmt.Errorf("acquire token: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
