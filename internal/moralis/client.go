// Package moralis implements the price enrichment source backed by the
// Moralis Solana gateway.
package moralis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Defaults for the Moralis Solana gateway.
const (
	DefaultBaseURL = "https://solana-gateway.moralis.io"
	DefaultNetwork = "mainnet"
	DefaultTimeout = 5 * time.Second
)

// ErrNoAPIKey is returned when the client is constructed without a key.
var ErrNoAPIKey = errors.New("moralis: API key not provided")

// Client fetches token prices and metadata by mint address.
type Client struct {
	rest    *resty.Client
	network string
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the gateway base URL (used by tests).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.rest.SetBaseURL(url)
	}
}

// WithNetwork sets the Solana network segment of request paths.
func WithNetwork(network string) Option {
	return func(c *Client) {
		c.network = network
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.rest.SetTimeout(d)
	}
}

// NewClient creates a Moralis client. The API key is required.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	rest := resty.New().
		SetBaseURL(DefaultBaseURL).
		SetTimeout(DefaultTimeout).
		SetHeader("X-API-Key", apiKey)

	c := &Client{rest: rest, network: DefaultNetwork}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type priceResponse struct {
	UsdPrice float64 `json:"usdPrice"`
}

// Price returns the current USD price for a mint address.
func (c *Client) Price(ctx context.Context, address string) (float64, error) {
	var out priceResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/token/%s/%s/price", c.network, address))
	if err != nil {
		return 0, fmt.Errorf("moralis price %s: %w", address, err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("moralis price %s: status %d", address, resp.StatusCode())
	}
	return out.UsdPrice, nil
}

// Metadata describes an SPL token as reported by Moralis.
type Metadata struct {
	Mint     string `json:"mint"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals string `json:"decimals"`
}

// TokenMetadata returns metadata for a mint address.
func (c *Client) TokenMetadata(ctx context.Context, address string) (*Metadata, error) {
	var out Metadata
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/token/%s/%s/metadata", c.network, address))
	if err != nil {
		return nil, fmt.Errorf("moralis metadata %s: %w", address, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("moralis metadata %s: status %d", address, resp.StatusCode())
	}
	return &out, nil
}
