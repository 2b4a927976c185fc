// Package dexscreener implements the discovery source: the DEX Screener
// public search endpoint, which returns trading-pair records with nested
// volume/liquidity/price-change fields.
package dexscreener

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"solana-trade-bot/internal/domain"
)

// Defaults for the public API.
const (
	DefaultBaseURL = "https://api.dexscreener.com/latest"
	DefaultQuery   = "solana"
	DefaultTimeout = 10 * time.Second

	solanaChainID = "solana"
)

// Client queries DEX Screener for candidate trading pairs.
type Client struct {
	rest  *resty.Client
	query string
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.rest.SetBaseURL(url)
	}
}

// WithQuery sets the search term used for discovery.
func WithQuery(q string) Option {
	return func(c *Client) {
		c.query = q
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.rest.SetTimeout(d)
	}
}

// NewClient creates a DEX Screener client.
func NewClient(opts ...Option) *Client {
	rest := resty.New().
		SetBaseURL(DefaultBaseURL).
		SetTimeout(DefaultTimeout)

	c := &Client{rest: rest, query: DefaultQuery}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// searchResponse mirrors /dex/search. Numeric sub-fields may be missing or
// null; zero values stand in for both.
type searchResponse struct {
	Pairs []Pair `json:"pairs"`
}

// Pair is one trading-pair record from DEX Screener.
type Pair struct {
	ChainID       string      `json:"chainId"`
	PairAddress   string      `json:"pairAddress"`
	BaseToken     Token       `json:"baseToken"`
	QuoteToken    Token       `json:"quoteToken"`
	PriceUsd      string      `json:"priceUsd"` // decimal string
	Volume        Volume      `json:"volume"`
	PriceChange   PriceChange `json:"priceChange"`
	Liquidity     Liquidity   `json:"liquidity"`
	MarketCap     float64     `json:"marketCap"`
	PairCreatedAt int64       `json:"pairCreatedAt"` // unix ms, 0 if unknown
}

// Token identifies one side of a pair.
type Token struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
}

// Volume holds rolling volume windows in USD.
type Volume struct {
	M5  float64 `json:"m5"`
	H1  float64 `json:"h1"`
	H6  float64 `json:"h6"`
	H24 float64 `json:"h24"`
}

// PriceChange holds rolling price changes in percent.
type PriceChange struct {
	M5  float64 `json:"m5"`
	H1  float64 `json:"h1"`
	H6  float64 `json:"h6"`
	H24 float64 `json:"h24"`
}

// Liquidity holds pooled liquidity in USD.
type Liquidity struct {
	Usd float64 `json:"usd"`
}

// Search returns raw pair records for the given query.
func (c *Client) Search(ctx context.Context, query string) ([]Pair, error) {
	var out searchResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		SetResult(&out).
		Get("/dex/search")
	if err != nil {
		return nil, fmt.Errorf("dexscreener search: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("dexscreener search: status %d", resp.StatusCode())
	}
	return out.Pairs, nil
}

// Discover returns token snapshots for Solana pairs matching the configured
// query. It implements the feed aggregator's discovery source.
func (c *Client) Discover(ctx context.Context) ([]*domain.TokenSnapshot, error) {
	pairs, err := c.Search(ctx, c.query)
	if err != nil {
		return nil, err
	}

	snapshots := make([]*domain.TokenSnapshot, 0, len(pairs))
	for i := range pairs {
		pair := &pairs[i]
		if pair.ChainID != solanaChainID {
			continue
		}
		snapshots = append(snapshots, pair.Snapshot())
	}
	return snapshots, nil
}

// Snapshot converts a pair record to a token snapshot keyed by the base
// token's mint. Unparseable price strings become 0.
func (p *Pair) Snapshot() *domain.TokenSnapshot {
	snap := &domain.TokenSnapshot{
		Address:       p.BaseToken.Address,
		Symbol:        p.BaseToken.Symbol,
		Name:          p.BaseToken.Name,
		Price:         parsePrice(p.PriceUsd),
		PriceChange5m: p.PriceChange.M5,
		Volume5m:      p.Volume.M5,
		Volume24h:     p.Volume.H24,
		MarketCap:     p.MarketCap,
		Liquidity:     p.Liquidity.Usd,
		Decimals:      domain.DefaultDecimals,
	}
	if p.PairCreatedAt > 0 {
		snap.CreatedAt = time.UnixMilli(p.PairCreatedAt).UTC()
	}
	return snap
}

func parsePrice(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
