// Package adobesign submits documents for signature through the Adobe
// Acrobat Sign REST API. The flow is two calls: upload the document as
// a transient file, then create an in-process agreement that Adobe
// delivers to the signer by email.
package adobesign

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

const defaultBaseURL = "https://api.na1.adobesign.com"

// Provider implements signing.Provider against Adobe Acrobat Sign.
type Provider struct {
	baseURL string
	token   signing.TokenSource
	client  *http.Client
}

// New returns an Adobe Sign provider. baseURL may be empty to use the
// North America shard; token supplies OAuth access tokens.
func New(baseURL string, token signing.TokenSource) (*Provider, error) {
	if token == nil {
		return nil, fmt.Errorf("adobesign: token source is required")
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
func (p *Provider) Name() string { return "adobesign" }

// Submit uploads the document and creates a sent agreement. Adobe
// notifies the signer directly, so no signing link is returned.
func (p *Provider) Submit(ctx context.Context, req signing.Request) (*signing.Result, error) {
	transientID, err := p.upload(ctx, req.DocumentName, req.Document)
	if err != nil {
		return nil, fmt.Errorf("adobesign: upload: %w", err)
	}

	agreement := map[string]any{
		"fileInfos": []map[string]string{
			{"transientDocumentId": transientID},
		},
		"name": req.DocumentName,
		"participantSetsInfo": []map[string]any{
			{
				"memberInfos": []map[string]string{
					{"email": req.SignerEmail},
				},
				"order": 1,
				"role":  "SIGNER",
			},
		},
		"signatureType": "ESIGN",
		"state":         "IN_PROCESS",
	}

	payload, err := json.Marshal(agreement)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/api/rest/v6/agreements", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	if err := p.authorize(ctx, httpReq); err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("adobesign: create agreement: %s", readError(resp))
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, err
	}

	return &signing.Result{
		Reference: created.ID,
		Delivered: true,
	}, nil
}

func (p *Provider) upload(ctx context.Context, name string, content []byte) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("File", name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(content); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/api/rest/v6/transientDocuments", &body)
	if err != nil {
		return "", err
	}
	if err := p.authorize(ctx, httpReq); err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, readError(resp))
	}
	var uploaded struct {
		TransientDocumentID string `json:"transientDocumentId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", err
	}
	return uploaded.TransientDocumentID, nil
}

func (p *Provider) authorize(ctx context.Context, req *http.Request) error {
	token, err := p.token(ctx)
	if err != nil {
		return fmt.Errorf("acquire token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func readError(resp *http.Response) string {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return strings.TrimSpace(string(msg))
}
