// Package arvan implements a DNS-01 authenticator backed by the ArvanCloud CDN API.
package arvan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/arvan-dns01/internal/dns"
)

const (
	// DefaultBaseURL is the ArvanCloud domains endpoint.
	DefaultBaseURL = "https://napi.arvancloud.ir/cdn/4.0/domains"
	// DefaultTimeout bounds every request made against the API.
	DefaultTimeout = 15 * time.Second

	description = "Obtain certificates using a DNS TXT record (if you are using ArvanCloud for DNS)."
)

func init() {
	dns.Register("arvan", func(log logr.Logger, settings map[string]string) (dns.Authenticator, error) {
		return New(log, settings)
	})
}

// Provider implements dns.Authenticator for ArvanCloud DNS.
type Provider struct {
	baseURL       string
	authorization string
	client        *http.Client
	log           logr.Logger
}

var _ dns.Authenticator = (*Provider)(nil)

// New creates an ArvanCloud provider from the given settings map.
// Required settings: api_key.
// Optional settings: base_url (default DefaultBaseURL), timeout (Go duration, default 15s).
func New(log logr.Logger, settings map[string]string) (*Provider, error) {
	key := NormalizeAPIKey(settings["api_key"])
	if key == "" {
		return nil, fmt.Errorf("arvan: missing required setting 'api_key'")
	}

	baseURL := settings["base_url"]
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := DefaultTimeout
	if v := settings["timeout"]; v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("arvan: invalid timeout %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("arvan: timeout must be positive, got %s", parsed)
		}
		timeout = parsed
	}

	return &Provider{
		baseURL:       strings.TrimRight(baseURL, "/"),
		authorization: AuthorizationHeader(key),
		client:        &http.Client{Timeout: timeout},
		log:           log,
	}, nil
}

// Description returns a human-readable summary of the authenticator.
func (p *Provider) Description() string {
	return description
}

// Perform publishes the validation token for ch.
func (p *Provider) Perform(ctx context.Context, ch dns.Challenge) error {
	return p.AddTXTRecord(ctx, ch.Domain, ch.ValidationName, ch.Token)
}

// Cleanup removes the validation record for ch. Failures are logged, never returned.
func (p *Provider) Cleanup(ctx context.Context, ch dns.Challenge) {
	p.DeleteTXTRecord(ctx, ch.Domain, ch.ValidationName, ch.Token)
}

// doRequest builds and executes an HTTP request against the ArvanCloud API.
// path is appended to the base URL as-is, so it may carry a query string.
func (p *Provider) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("arvan: marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("arvan: build request: %w", err)
	}

	req.Header.Set("Authorization", p.authorization)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arvan: %s %s: %w", method, path, err)
	}
	return resp, nil
}
