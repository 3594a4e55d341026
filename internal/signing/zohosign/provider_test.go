package zohosign_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docmerge/docmerge/internal/signing"
	"github.com/docmerge/docmerge/internal/signing/zohosign"
)

func staticToken(token string) signing.TokenSource {
	return func(ctx context.Context) (string, error) {
		return token, nil
	}
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	t.Run("creates a delivered request from one multipart call", func(t *testing.T) {
		t.Parallel()

		doc := []byte("rendered document")

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/v1/requests", r.URL.Path)
			require.Equal(t, "Zoho-oauthtoken tok", r.Header.Get("Authorization"))

			require.NoError(t, r.ParseMultipartForm(1<<20))
			file, header, err := r.FormFile("file")
			require.NoError(t, err)
			defer file.Close()
			require.Equal(t, "contract.docx", header.Filename)
			content, err := io.ReadAll(file)
			require.NoError(t, err)
			require.Equal(t, doc, content)

			var data map[string]any
			require.NoError(t, json.Unmarshal([]byte(r.FormValue("data")), &data))
			actions := data["requests"].(map[string]any)["actions"].([]any)
			action := actions[0].(map[string]any)
			require.Equal(t, "SIGN", action["action_type"])
			require.Equal(t, "asha@example.com", action["recipient_email"])

			w.Write([]byte(`{"requests":{"request_id":81234567890}}`))
		}))
		defer srv.Close()

		p, err := zohosign.New(srv.URL, staticToken("tok"))
		require.NoError(t, err)

		res, err := p.Submit(context.Background(), signing.Request{
			SignerEmail:  "asha@example.com",
			SignerName:   "Asha",
			DocumentName: "contract.docx",
			Document:     doc,
		})
		require.NoError(t, err)
		require.Equal(t, "81234567890", res.Reference)
		require.True(t, res.Delivered)
		require.Empty(t, res.SigningURL)
	})

	t.Run("rejects responses without a request id", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"requests":{}}`))
		}))
		defer srv.Close()

		p, err := zohosign.New(srv.URL, staticToken("tok"))
		require.NoError(t, err)

		_, err = p.Submit(context.Background(), signing.Request{DocumentName: "contract.docx"})
		require.ErrorContains(t, err, "request_id")
	})

	t.Run("surfaces API errors", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"Extra authorization required"}`))
		}))
		defer srv.Close()

		p, err := zohosign.New(srv.URL, staticToken("tok"))
		require.NoError(t, err)

		_, err = p.Submit(context.Background(), signing.Request{DocumentName: "contract.docx"})
		require.ErrorContains(t, err, "status 400")
	})

	t.Run("requires a token source", func(t *testing.T) {
		t.Parallel()

		_, err := zohosign.New("", nil)
		require.Error(t, err)
	})
}
