// Package scoring computes the heuristic desirability score and the
// opportunity classification for token snapshots. All functions are pure:
// the same snapshot fields always produce the same outputs.
package scoring

import (
	"time"

	"solana-trade-bot/internal/domain"
)

// PumpBonusPoints is added on top of the base score when a token shows the
// combined volume/liquidity/momentum profile of an active pump.
const PumpBonusPoints = 10

// Base returns the additive band score in [0, 100]:
// volume (0-30), momentum (0-30), liquidity (0-20), age (0-20).
func Base(t *domain.TokenSnapshot, now time.Time) float64 {
	var score float64

	// Volume bands (5m, USD)
	switch {
	case t.Volume5m > 100_000:
		score += 30
	case t.Volume5m > 50_000:
		score += 20
	case t.Volume5m > 10_000:
		score += 10
	}

	// Price momentum bands (5m, percent)
	switch {
	case t.PriceChange5m > 10:
		score += 30
	case t.PriceChange5m > 5:
		score += 20
	case t.PriceChange5m > 2:
		score += 10
	}

	// Liquidity bands (USD)
	switch {
	case t.Liquidity > 50_000:
		score += 20
	case t.Liquidity > 20_000:
		score += 10
	}

	// Freshness bands; unknown age scores nothing
	if t.AgeKnown() {
		switch age := t.Age(now); {
		case age < time.Hour:
			score += 20
		case age < 6*time.Hour:
			score += 10
		}
	}

	return score
}

// IsPumpCandidate reports whether the snapshot qualifies for the pump bonus:
// high short-term volume, non-trivial liquidity and strong momentum at once.
func IsPumpCandidate(t *domain.TokenSnapshot) bool {
	return t.Volume5m > 50_000 && t.Liquidity > 10_000 && t.PriceChange5m > 5
}

// Score returns the full score: base bands plus the pump bonus when it
// applies. The result can exceed 100 by at most PumpBonusPoints.
func Score(t *domain.TokenSnapshot, now time.Time) float64 {
	score := Base(t, now)
	if IsPumpCandidate(t) {
		score += PumpBonusPoints
	}
	return score
}

// Classify returns the opportunity label for a snapshot. Bands are evaluated
// high-to-low and the first match wins, so labels are mutually exclusive.
func Classify(t *domain.TokenSnapshot) domain.Opportunity {
	switch {
	case t.Volume5m > 100_000 && t.PriceChange5m > 100:
		return domain.Opportunity10x
	case t.Volume5m > 50_000 && t.PriceChange5m > 50:
		return domain.Opportunity5x
	case t.Volume5m > 20_000 && t.PriceChange5m > 20:
		return domain.Opportunity3x
	default:
		return domain.OpportunityNone
	}
}
