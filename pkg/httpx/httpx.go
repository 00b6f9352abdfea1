package httpx

import (
	"net/http"
	"strings"
	"time"
)

type Config struct {
	BaseURL string `split_words:"true" required:"true"`
	APIKey  string `envconfig:"API_KEY"`
	Timeout int    `split_words:"true" default:"15"`
}

// New builds an *http.Client that stamps the shared API key header on every
// outgoing request. A blank key leaves requests untouched.
func (c *Config) New() *http.Client {
	return &http.Client{
		Timeout: time.Duration(c.Timeout) * time.Second,
		Transport: &apiKeyTransport{
			key:  c.APIKey,
			next: http.DefaultTransport,
		},
	}
}

// Base returns the configured base URL without a trailing slash.
func (c *Config) Base() string {
	return strings.TrimRight(c.BaseURL, "/")
}

type apiKeyTransport struct {
	key  string
	next http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.key == "" {
		return t.next.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("X-API-Key", t.key)
	return t.next.RoundTrip(clone)
}
