// Package helius implements the holder-count enrichment source backed by
// the Helius token API.
package helius

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Defaults for the Helius API.
const (
	DefaultBaseURL = "https://api.helius.xyz"
	DefaultAPIKey  = "demo"
	DefaultTimeout = 10 * time.Second
)

// Client fetches holder counts and token metadata by mint address.
type Client struct {
	rest   *resty.Client
	apiKey string
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.rest.SetBaseURL(url)
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.rest.SetTimeout(d)
	}
}

// NewClient creates a Helius client. An empty key falls back to the demo
// tier, matching upstream behavior.
func NewClient(apiKey string, opts ...Option) *Client {
	if apiKey == "" {
		apiKey = DefaultAPIKey
	}

	rest := resty.New().
		SetBaseURL(DefaultBaseURL).
		SetTimeout(DefaultTimeout)

	c := &Client{rest: rest, apiKey: apiKey}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type holdersResponse struct {
	Total int `json:"total"`
}

// Holders returns the total holder count for a mint address.
func (c *Client) Holders(ctx context.Context, address string) (int, error) {
	var out holdersResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParam("api-key", c.apiKey).
		SetResult(&out).
		Get(fmt.Sprintf("/v0/tokens/%s/holders", address))
	if err != nil {
		return 0, fmt.Errorf("helius holders %s: %w", address, err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("helius holders %s: status %d", address, resp.StatusCode())
	}
	return out.Total, nil
}

// Metadata describes a token mint as reported by Helius.
type Metadata struct {
	Mint   string `json:"mint"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// TokenMetadata returns metadata for a mint address.
func (c *Client) TokenMetadata(ctx context.Context, address string) (*Metadata, error) {
	var out Metadata
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"api-key": c.apiKey,
			"mint":    address,
		}).
		SetResult(&out).
		Get("/v0/tokens/metadata")
	if err != nil {
		return nil, fmt.Errorf("helius metadata %s: %w", address, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("helius metadata %s: status %d", address, resp.StatusCode())
	}
	return &out, nil
}
