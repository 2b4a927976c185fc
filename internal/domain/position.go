package domain

import "time"

// Position tracks one simulated trade. Entry facts are immutable after
// creation; exit facts are set exactly once when the engine closes the
// position. Unrealized PnL is always computed against a live price supplied
// by the caller, never against a price stored on the position.
type Position struct {
	Token TokenSnapshot // snapshot at entry

	AmountIn   float64 // quote currency spent (USDC)
	AmountOut  float64 // token quantity acquired
	EntryPrice float64
	EntryTime  time.Time

	// Zero while the position is open.
	ExitPrice float64
	ExitTime  time.Time
}

// NewPosition records an entry against the given snapshot.
func NewPosition(token TokenSnapshot, amountIn, amountOut float64, now time.Time) *Position {
	return &Position{
		Token:      token,
		AmountIn:   amountIn,
		AmountOut:  amountOut,
		EntryPrice: token.Price,
		EntryTime:  now,
	}
}

// Closed reports whether exit facts have been recorded.
func (p *Position) Closed() bool {
	return !p.ExitTime.IsZero()
}

// Value returns the position value in quote currency at the given price.
func (p *Position) Value(price float64) float64 {
	return p.AmountOut * price
}

// PnL returns profit or loss at the given price.
func (p *Position) PnL(price float64) float64 {
	return p.Value(price) - p.AmountIn
}

// PnLPercent returns profit or loss as a percentage of cost basis.
func (p *Position) PnLPercent(price float64) float64 {
	if p.AmountIn == 0 {
		return 0
	}
	return p.PnL(price) / p.AmountIn * 100
}
