package docmerge

import (
	"time"
)

// Option is a functional option for configuring the docmerge client.
type Option func(*Config)

// WithTransport sets the email transport type and its settings.
func WithTransport(transportType TransportType, settings TransportSettings) Option {
	return func(c *Config) {
		c.Transport.Type = transportType
		c.Transport.Settings = settings
	}
}

// WithTimeout sets the transport operation timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Transport.Timeout = timeout
	}
}

// WithDispatchDelay sets the pause between consecutive jobs in a batch.
func WithDispatchDelay(delay time.Duration) Option {
	return func(c *Config) {
		c.Dispatch.Delay = delay
	}
}

// WithoutDispatchDelay disables the inter-job pause.
func WithoutDispatchDelay() Option {
	return func(c *Config) {
		c.Dispatch.Delay = 0
	}
}

// WithProgressBuffer sets the capacity of the progress update queue.
func WithProgressBuffer(size int) Option {
	return func(c *Config) {
		c.Dispatch.ProgressBuffer = size
	}
}

// WithReservedPlaceholders sets the placeholder names left untouched
// during substitution. Matching is exact and case-sensitive.
func WithReservedPlaceholders(names ...string) Option {
	return func(c *Config) {
		c.Documents.ReservedPlaceholders = names
	}
}

// WithSES creates an AWS SES transport configuration.
func WithSES(region, from string) Option {
	return WithTransport(TransportAWSSES, TransportSettings{
		"region": region,
		"from":   from,
	})
}

// WithSESCredentials creates an AWS SES transport configuration with
// explicit credentials.
func WithSESCredentials(region, from, accessKey, secretKey string) Option {
	return WithTransport(TransportAWSSES, TransportSettings{
		"region":     region,
		"from":       from,
		"access_key": accessKey,
		"secret_key": secretKey,
	})
}

// WithSendGrid creates a SendGrid transport configuration.
func WithSendGrid(apiKey, from string) Option {
	return WithTransport(TransportSendGrid, TransportSettings{
		"api_key": apiKey,
		"from":    from,
	})
}

// WithMailgun creates a Mailgun transport configuration.
func WithMailgun(apiKey, domain, from string) Option {
	return WithTransport(TransportMailgun, TransportSettings{
		"api_key": apiKey,
		"domain":  domain,
		"from":    from,
	})
}

// WithMailgunEU creates a Mailgun transport configuration for the EU region.
func WithMailgunEU(apiKey, domain, from string) Option {
	return WithTransport(TransportMailgun, TransportSettings{
		"api_key":  apiKey,
		"domain":   domain,
		"from":     from,
		"base_url": "https://api.eu.mailgun.net/v3",
	})
}

// WithSMTP creates an SMTP transport configuration.
func WithSMTP(host, port, from string) Option {
	return WithTransport(TransportSMTP, TransportSettings{
		"host": host,
		"port": port,
		"from": from,
	})
}

// WithSMTPAuth creates an SMTP transport configuration with authentication.
func WithSMTPAuth(host, port, from, username, password string) Option {
	return WithTransport(TransportSMTP, TransportSettings{
		"host":     host,
		"port":     port,
		"from":     from,
		"username": username,
		"password": password,
	})
}

// WithSMTPTLS creates an SMTP transport configuration with TLS enabled.
func WithSMTPTLS(host, port, from, username, password string, skipVerify bool) Option {
	return WithTransport(TransportSMTP, TransportSettings{
		"host":     host,
		"port":     port,
		"from":     from,
		"username": username,
		"password": password,
		"tls":      "true",
		"tls_skip_verify": func() string {
			if skipVerify {
				return "true"
			}
			return "false"
		}(),
	})
}
