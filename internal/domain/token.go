package domain

import "time"

// Opportunity is a coarse multiplier-potential tag assigned during scoring.
type Opportunity string

// Opportunity labels, evaluated high-to-low with first match winning.
const (
	OpportunityNone Opportunity = ""
	Opportunity3x   Opportunity = "3x"
	Opportunity5x   Opportunity = "5x"
	Opportunity10x  Opportunity = "10x"
)

// DefaultDecimals is assumed for SPL tokens when metadata is unavailable.
const DefaultDecimals = 9

// TokenSnapshot is one observation of a tradable token's market stats.
// Snapshots are keyed by mint address; the feed aggregator is the only
// writer and replaces whole values, so a snapshot is immutable once handed
// to a reader.
type TokenSnapshot struct {
	Address string // mint address, unique table key
	Symbol  string // display only
	Name    string // display only

	Price         float64 // USD
	PriceChange5m float64 // percent, signed
	Volume5m      float64 // USD
	Volume24h     float64 // USD
	MarketCap     float64 // USD
	Liquidity     float64 // USD
	Holders       int
	Decimals      int

	CreatedAt   time.Time // pair creation time; zero means unknown age
	BasePrice   float64   // price at first observation
	Score       float64   // recomputed every refresh cycle
	Opportunity Opportunity
	LastUpdated time.Time // most recent successful source write
}

// AgeKnown reports whether the token's creation time was observed.
func (t *TokenSnapshot) AgeKnown() bool {
	return !t.CreatedAt.IsZero()
}

// Age returns the time elapsed since pair creation, or zero if unknown.
func (t *TokenSnapshot) Age(now time.Time) time.Duration {
	if !t.AgeKnown() {
		return 0
	}
	return now.Sub(t.CreatedAt)
}
