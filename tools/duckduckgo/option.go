package duckduckgo

import (
	"net/http"

	"github.com/bububa/omniquery/tools"
)

type Option func(*Config)

// WithEndpoint overrides the HTML search endpoint
func WithEndpoint(endpoint string) Option {
	return func(c *Config) {
		c.endpoint = endpoint
	}
}

// WithRegion sets the kl region parameter, e.g. us-en
func WithRegion(region string) Option {
	return func(c *Config) {
		c.region = region
	}
}

func WithMaxResults(n int) Option {
	return func(c *Config) {
		c.maxResults = n
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Config) {
		c.userAgent = ua
	}
}

func WithHttpClient(clt *http.Client) Option {
	return func(c *Config) {
		c.httpClient = clt
	}
}

func WithToolOptions(opts ...tools.Option) Option {
	return func(c *Config) {
		for _, opt := range opts {
			opt(&c.Config)
		}
	}
}
