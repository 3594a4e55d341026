package providers_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docmerge/docmerge"
	"github.com/docmerge/docmerge/internal/providers"
)

func TestNewSMTPTransport(t *testing.T) {
	t.Parallel()

	tr, err := providers.NewSMTPTransport(docmerge.TransportSettings{
		"host": "smtp.example.com",
		"port": "587",
		"from": "sender@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "smtp", tr.Name())

	_, err = providers.NewSMTPTransport(docmerge.TransportSettings{
		"host": "smtp.example.com",
	})
	require.Error(t, err)
}

func TestNewSESTransport(t *testing.T) {
	t.Parallel()

	tr, err := providers.NewSESTransport(docmerge.TransportSettings{
		"region": "eu-west-1",
		"from":   "sender@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "aws_ses", tr.Name())

	_, err = providers.NewSESTransport(docmerge.TransportSettings{
		"region":     "eu-west-1",
		"from":       "sender@example.com",
		"access_key": "AKIA...",
	})
	require.Error(t, err, "access key without secret key")
}

func TestNewSendGridTransport(t *testing.T) {
	t.Parallel()

	tr, err := providers.NewSendGridTransport(docmerge.TransportSettings{
		"api_key": "SG.key",
		"from":    "sender@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "sendgrid", tr.Name())

	_, err = providers.NewSendGridTransport(docmerge.TransportSettings{})
	require.Error(t, err)
}

func TestNewMailgunTransport(t *testing.T) {
	t.Parallel()

	tr, err := providers.NewMailgunTransport(docmerge.TransportSettings{
		"api_key": "key",
		"domain":  "mg.example.com",
		"from":    "sender@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "mailgun", tr.Name())

	_, err = providers.NewMailgunTransport(docmerge.TransportSettings{
		"api_key": "key",
	})
	require.Error(t, err)
}
