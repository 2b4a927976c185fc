package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"solana-trade-bot/internal/domain"
)

func TestAssessRisk(t *testing.T) {
	m := NewManager()

	tests := []struct {
		name string
		snap domain.TokenSnapshot
		want float64
	}{
		{
			name: "baseline",
			snap: domain.TokenSnapshot{},
			want: 0.5,
		},
		{
			name: "deep liquidity and broad holder base",
			snap: domain.TokenSnapshot{Liquidity: 120_000, Holders: 1500, PriceChange5m: 2},
			want: 0.2,
		},
		{
			name: "steep move adds risk",
			snap: domain.TokenSnapshot{PriceChange5m: 15},
			want: 0.7,
		},
		{
			name: "offsetting signals",
			snap: domain.TokenSnapshot{Liquidity: 200_000, Holders: 5000, PriceChange5m: 25},
			want: 0.4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, m.AssessRisk(&tt.snap), 1e-9)
		})
	}
}

func TestAssessRisk_Clamped(t *testing.T) {
	m := NewManager()
	for _, snap := range []domain.TokenSnapshot{
		{},
		{Liquidity: 1e9, Holders: 1e6},
		{PriceChange5m: 1e6},
		{Liquidity: 1e9, Holders: 1e6, PriceChange5m: 1e6},
	} {
		risk := m.AssessRisk(&snap)
		assert.GreaterOrEqual(t, risk, 0.0)
		assert.LessOrEqual(t, risk, 1.0)
	}
}

func TestPositionSize(t *testing.T) {
	m := Manager{BasePosition: 10, MaxRisk: 0.5}

	// Reference scenario: risk 0.2 -> 10 * (1 - 0.2) = 8.
	snap := domain.TokenSnapshot{Liquidity: 120_000, Holders: 1500, PriceChange5m: 2}
	risk := m.AssessRisk(&snap)
	assert.InDelta(t, 0.2, risk, 1e-9)
	assert.InDelta(t, 8.0, m.PositionSize(risk), 1e-9)

	// Non-increasing in risk, never above base, positive while MaxRisk < 1.
	prev := m.PositionSize(0)
	for r := 0.0; r <= 1.0; r += 0.05 {
		size := m.PositionSize(r)
		assert.LessOrEqual(t, size, m.BasePosition)
		assert.LessOrEqual(t, size, prev)
		assert.Greater(t, size, 0.0)
		prev = size
	}

	// Risk beyond MaxRisk is capped.
	assert.Equal(t, m.PositionSize(m.MaxRisk), m.PositionSize(1.0))
}

func TestStopLossTriggered(t *testing.T) {
	m := Manager{StopLossPercent: 15}

	assert.True(t, m.StopLossTriggered(1.00, 0.79))  // -21%
	assert.False(t, m.StopLossTriggered(1.00, 0.87)) // -13%
	assert.True(t, m.StopLossTriggered(1.00, 0.85))  // exactly -15%
	assert.False(t, m.StopLossTriggered(1.00, 1.30))
	assert.False(t, m.StopLossTriggered(0, 0.5)) // no entry price, no trigger
}
