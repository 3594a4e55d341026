// Package zohosign submits documents for signature through the Zoho
// Sign REST API. A single multipart request uploads the document and
// creates the signature request; Zoho emails the signer directly.
package zohosign

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/docmerge/docmerge/internal/signing"
)

const defaultBaseURL = "https://sign.zoho.com"

// Provider implements signing.Provider against Zoho Sign.
type Provider struct {
	baseURL string
	token   signing.TokenSource
	client  *http.Client
}

// New returns a Zoho Sign provider. baseURL may be empty to use the
// default data center; token supplies OAuth access tokens.
func New(baseURL string, token signing.TokenSource) (*Provider, error) {
	if token == nil {
		return nil, fmt.Errorf("zohosign: token source is required")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Name implements signing.Provider.
func (p *Provider) Name() string { return "zohosign" }

// Submit creates and dispatches a signature request in one call. Zoho
// notifies the signer by email, so no signing link is returned.
func (p *Provider) Submit(ctx context.Context, req signing.Request) (*signing.Result, error) {
	data := map[string]any{
		"requests": map[string]any{
			"request_name":  req.DocumentName,
			"is_sequential": false,
			"actions": []map[string]any{
				{
					"recipient_email":  req.SignerEmail,
					"recipient_name":   req.SignerName,
					"action_type":      "SIGN",
					"signing_order":    0,
					"verify_recipient": false,
				},
			},
		},
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	file, err := form.CreateFormFile("file", req.DocumentName)
	if err != nil {
		return nil, err
	}
	if _, err := file.Write(req.Document); err != nil {
		return nil, err
	}
	if err := form.WriteField("data", string(dataJSON)); err != nil {
		return nil, err
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/api/v1/requests", &body)
	if err != nil {
		return nil, err
	}
	token, err := p.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("zohosign: acquire token: %w", err)
	}
	httpReq.Header.Set("Authorization", "Zoho-oauthtoken "+token)
	httpReq.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("zohosign: create request: status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var created struct {
		Requests struct {
			RequestID json.Number `json:"request_id"`
		} `json:"requests"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, err
	}

	reference := created.Requests.RequestID.String()
	if reference == "" {
		return nil, fmt.Errorf("zohosign: response missing request_id")
	}
	return &signing.Result{
		Reference: reference,
		Delivered: true,
	}, nil
}
