// Package risk provides position sizing and stop-loss checks for the
// trading engine. A Manager holds only configuration; every method is a
// pure function of its inputs.
package risk

import "solana-trade-bot/internal/domain"

// Default manager configuration.
const (
	DefaultBasePosition    = 10.0 // USDC
	DefaultMaxRisk         = 0.5  // fraction of base position at stake
	DefaultStopLossPercent = 15.0
)

// Manager computes risk scores and position sizes.
type Manager struct {
	BasePosition    float64 // spend for a zero-risk entry, quote currency
	MaxRisk         float64 // cap on the risk discount, in [0, 1]
	StopLossPercent float64 // positive percentage, e.g. 15 means -15%
}

// NewManager returns a Manager with default configuration.
func NewManager() Manager {
	return Manager{
		BasePosition:    DefaultBasePosition,
		MaxRisk:         DefaultMaxRisk,
		StopLossPercent: DefaultStopLossPercent,
	}
}

// AssessRisk maps a snapshot to a risk score in [0, 1]. Deep liquidity and a
// broad holder base reduce risk; a steep short-term move increases it.
func (m Manager) AssessRisk(t *domain.TokenSnapshot) float64 {
	risk := 0.5
	if t.Liquidity > 100_000 {
		risk -= 0.2
	}
	if t.Holders > 1000 {
		risk -= 0.1
	}
	if t.PriceChange5m > 10 {
		risk += 0.2
	}
	return clamp01(risk)
}

// PositionSize returns the spend for an entry at the given risk score.
// It is non-increasing in risk and never exceeds BasePosition; it stays
// positive as long as MaxRisk < 1.
func (m Manager) PositionSize(riskScore float64) float64 {
	factor := 1.0 - min(riskScore, m.MaxRisk)
	return m.BasePosition * factor
}

// StopLossTriggered reports whether the move from entry to current price
// breaches the configured stop loss.
func (m Manager) StopLossTriggered(entryPrice, currentPrice float64) bool {
	if entryPrice == 0 {
		return false
	}
	change := (currentPrice - entryPrice) / entryPrice * 100
	return change <= -m.StopLossPercent
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
