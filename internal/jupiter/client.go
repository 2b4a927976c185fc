// Package jupiter implements the quote/swap-routing collaborator. A quote
// estimates swap output for a given input amount; a second call turns the
// quote plus a spender identity into submittable transaction data.
// Transaction submission and signing are out of scope.
package jupiter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"solana-trade-bot/internal/domain"
)

// Defaults for the Jupiter v6 quote API.
const (
	DefaultBaseURL     = "https://quote-api.jup.ag/v6"
	DefaultSlippageBps = 100 // 1%
	DefaultTimeout     = 10 * time.Second
)

// ErrEmptyQuote is returned when the API responds without an output amount.
var ErrEmptyQuote = errors.New("jupiter: empty quote")

// Client requests swap quotes and swap transactions.
type Client struct {
	rest        *resty.Client
	slippageBps int
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.rest.SetBaseURL(url)
	}
}

// WithSlippageBps sets the slippage tolerance in basis points.
func WithSlippageBps(bps int) Option {
	return func(c *Client) {
		c.slippageBps = bps
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.rest.SetTimeout(d)
	}
}

// NewClient creates a Jupiter client.
func NewClient(opts ...Option) *Client {
	rest := resty.New().
		SetBaseURL(DefaultBaseURL).
		SetTimeout(DefaultTimeout)

	c := &Client{rest: rest, slippageBps: DefaultSlippageBps}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// quoteResponse mirrors the fields of /quote we consume. Amounts are
// decimal strings in the smallest unit of each mint.
type quoteResponse struct {
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`
}

// Quote requests a swap quote for amount (smallest unit of inputMint).
func (c *Client) Quote(ctx context.Context, inputMint, outputMint string, amount uint64) (*domain.Quote, error) {
	var out quoteResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"inputMint":   inputMint,
			"outputMint":  outputMint,
			"amount":      strconv.FormatUint(amount, 10),
			"slippageBps": strconv.Itoa(c.slippageBps),
		}).
		SetResult(&out).
		Get("/quote")
	if err != nil {
		return nil, fmt.Errorf("jupiter quote %s->%s: %w", inputMint, outputMint, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("jupiter quote %s->%s: status %d", inputMint, outputMint, resp.StatusCode())
	}
	if out.OutAmount == "" {
		return nil, ErrEmptyQuote
	}

	outAmount, err := strconv.ParseUint(out.OutAmount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("jupiter quote: parse outAmount %q: %w", out.OutAmount, err)
	}
	inAmount, err := strconv.ParseUint(out.InAmount, 10, 64)
	if err != nil {
		// Some routes omit inAmount; fall back to the requested amount.
		inAmount = amount
	}

	return &domain.Quote{
		InputMint:  inputMint,
		OutputMint: outputMint,
		InAmount:   inAmount,
		OutAmount:  outAmount,
		Raw:        resp.Body(),
	}, nil
}

type swapRequest struct {
	QuoteResponse any    `json:"quoteResponse"`
	UserPublicKey string `json:"userPublicKey"`
	WrapUnwrapSOL bool   `json:"wrapAndUnwrapSol"`
}

type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
}

// SwapTransaction turns a quote plus a spender public key into base64
// transaction data ready for signing. The quote's Raw payload is replayed
// verbatim so the route computed upstream is preserved.
func (c *Client) SwapTransaction(ctx context.Context, quote *domain.Quote, userPublicKey string) (string, error) {
	if quote == nil || len(quote.Raw) == 0 {
		return "", ErrEmptyQuote
	}

	var out swapResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(swapRequest{
			QuoteResponse: quote.Raw,
			UserPublicKey: userPublicKey,
			WrapUnwrapSOL: true,
		}).
		SetResult(&out).
		Post("/swap")
	if err != nil {
		return "", fmt.Errorf("jupiter swap: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("jupiter swap: status %d", resp.StatusCode())
	}
	return out.SwapTransaction, nil
}
