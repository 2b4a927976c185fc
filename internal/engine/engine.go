// Package engine implements the trading decision loop: each cycle it checks
// open positions for exits, then scans the top-ranked tokens for at most one
// new entry. All trades are simulated against quotes; nothing is submitted
// on-chain.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"solana-trade-bot/internal/domain"
	"solana-trade-bot/internal/observability"
	"solana-trade-bot/internal/risk"
	"solana-trade-bot/internal/wallet"
)

// Default engine configuration.
const (
	DefaultInterval     = 5 * time.Second
	DefaultBackoff      = 10 * time.Second
	DefaultMaxPositions = 5
	DefaultTakeProfit   = 50.0  // percent
	DefaultStopLoss     = -20.0 // percent
	DefaultMinScore     = 60.0
	DefaultCandidates   = 10 // top tokens considered per cycle
)

// Exit reason codes.
const (
	ExitReasonTakeProfit = "TAKE_PROFIT"
	ExitReasonStopLoss   = "STOP_LOSS"
)

// Errors surfaced by entry/exit attempts.
var (
	ErrNoWallet = errors.New("engine: no wallet configured")
	ErrNoQuote  = errors.New("engine: no usable quote")
)

// Feed is the read-only view of the token table the engine consults.
type Feed interface {
	TopTokens(n int) []*domain.TokenSnapshot
	Get(address string) (*domain.TokenSnapshot, bool)
}

// Quoter is the swap-routing collaborator.
type Quoter interface {
	// Quote estimates swap output; amount is in the smallest unit of
	// inputMint.
	Quote(ctx context.Context, inputMint, outputMint string, amount uint64) (*domain.Quote, error)

	// SwapTransaction turns a quote plus a spender into submittable
	// transaction data. Submission itself is out of scope.
	SwapTransaction(ctx context.Context, quote *domain.Quote, spender string) (string, error)
}

// Engine runs the trading loop against a feed and a quoter.
type Engine struct {
	feed   Feed
	quoter Quoter
	risk   risk.Manager
	wallet wallet.Config

	interval     time.Duration
	backoff      time.Duration
	maxPositions int
	takeProfit   float64 // close at or above, percent
	stopLoss     float64 // close at or below, percent (negative)
	minScore     float64
	candidates   int
	logger       *log.Logger

	mu            sync.Mutex
	positions     map[string]*domain.Position // keyed by mint, open only
	totalInvested float64
	realizedPnL   float64
	running       bool
	cancel        context.CancelFunc
	done          chan struct{}
}

// Options configures an Engine. Feed and Quoter are required.
type Options struct {
	Feed   Feed
	Quoter Quoter
	Risk   risk.Manager
	Wallet wallet.Config

	Interval     time.Duration // default 5s
	Backoff      time.Duration // delay after a failed cycle, default 10s
	MaxPositions int           // default 5
	TakeProfit   float64       // default +50%
	StopLoss     float64       // default -20%
	MinScore     float64       // default 60
	Candidates   int           // default 10
	Logger       *log.Logger
}

// New creates a trading engine.
func New(opts Options) *Engine {
	interval := opts.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	backoff := opts.Backoff
	if backoff == 0 {
		backoff = DefaultBackoff
	}
	maxPositions := opts.MaxPositions
	if maxPositions == 0 {
		maxPositions = DefaultMaxPositions
	}
	takeProfit := opts.TakeProfit
	if takeProfit == 0 {
		takeProfit = DefaultTakeProfit
	}
	stopLoss := opts.StopLoss
	if stopLoss == 0 {
		stopLoss = DefaultStopLoss
	}
	minScore := opts.MinScore
	if minScore == 0 {
		minScore = DefaultMinScore
	}
	candidates := opts.Candidates
	if candidates == 0 {
		candidates = DefaultCandidates
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	riskMgr := opts.Risk
	if riskMgr == (risk.Manager{}) {
		riskMgr = risk.NewManager()
	}

	return &Engine{
		feed:         opts.Feed,
		quoter:       opts.Quoter,
		risk:         riskMgr,
		wallet:       opts.Wallet,
		interval:     interval,
		backoff:      backoff,
		maxPositions: maxPositions,
		takeProfit:   takeProfit,
		stopLoss:     stopLoss,
		minScore:     minScore,
		candidates:   candidates,
		logger:       logger,
		positions:    make(map[string]*domain.Position),
	}
}

// Start begins the trading loop. Starting twice is a no-op.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.running = true
	e.cancel = cancel
	e.done = make(chan struct{})

	go e.run(runCtx)
	e.logger.Println("Trading engine started")
}

// Stop halts the loop and waits for the current cycle to finish. Open
// positions are left as-is.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	cancel, done := e.cancel, e.done
	e.mu.Unlock()

	cancel()
	<-done
	e.logger.Println("Trading engine stopped")
}

// Running reports whether the loop is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	for {
		delay := e.interval
		start := time.Now()
		if err := e.executeCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			e.logger.Printf("Trading cycle failed: %v", err)
			observability.RecordEngineCycle("error", time.Since(start).Seconds())
			delay = e.backoff
		} else {
			observability.RecordEngineCycle("success", time.Since(start).Seconds())
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// executeCycle runs one decision pass. Exits are evaluated before entries
// so slots freed this cycle are available for new positions immediately.
func (e *Engine) executeCycle(ctx context.Context) error {
	e.checkExits(ctx)
	e.findEntry(ctx)
	return ctx.Err()
}

// checkExits closes every open position whose unrealized PnL breaches the
// take-profit or stop-loss threshold. A failed close is logged and retried
// next cycle; it never blocks the remaining positions.
func (e *Engine) checkExits(ctx context.Context) {
	for _, pos := range e.openPositions() {
		price := e.livePrice(pos)
		pnlPct := pos.PnLPercent(price)

		var reason string
		switch {
		case pnlPct >= e.takeProfit:
			reason = ExitReasonTakeProfit
		case pnlPct <= e.stopLoss:
			reason = ExitReasonStopLoss
		default:
			continue
		}

		e.logger.Printf("Closing %s (%s): %.2f%%", pos.Token.Symbol, reason, pnlPct)
		if err := e.closePosition(ctx, pos, reason); err != nil {
			e.logger.Printf("Failed to close %s: %v", pos.Token.Symbol, err)
		}
	}
}

// findEntry opens at most one position per cycle: the first top-ranked
// token that passes the entry rule. Quote failures skip to the next
// candidate without side effects.
func (e *Engine) findEntry(ctx context.Context) {
	if e.openCount() >= e.maxPositions {
		return
	}
	if !e.wallet.Configured() {
		e.logger.Println("No wallet configured, skipping entries")
		return
	}

	for _, token := range e.feed.TopTokens(e.candidates) {
		if e.hasPosition(token.Address) {
			continue
		}
		if !e.entryQualifies(token) {
			continue
		}

		e.logger.Printf("Entry signal for %s (score %.0f)", token.Symbol, token.Score)
		if err := e.openPosition(ctx, token); err != nil {
			e.logger.Printf("Failed to open %s: %v", token.Symbol, err)
			continue
		}
		return
	}
}

// entryQualifies applies the entry rule to one snapshot.
func (e *Engine) entryQualifies(t *domain.TokenSnapshot) bool {
	return t.Score >= e.minScore &&
		t.Volume5m > 50_000 &&
		t.Liquidity > 20_000 &&
		t.PriceChange5m > 5
}

// openPosition spends a risk-adjusted amount of USDC on the token and
// records the resulting position. The swap transaction is generated to
// validate the route but never submitted.
func (e *Engine) openPosition(ctx context.Context, token *domain.TokenSnapshot) error {
	if !e.wallet.Configured() {
		return ErrNoWallet
	}

	spend := e.risk.PositionSize(e.risk.AssessRisk(token))

	quote, err := e.quoter.Quote(ctx, domain.USDCMint, token.Address, toLamports(spend, domain.USDCDecimals))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoQuote, err)
	}
	if quote.OutAmount == 0 {
		return ErrNoQuote
	}

	if _, err := e.quoter.SwapTransaction(ctx, quote, e.wallet.PublicKey); err != nil {
		return fmt.Errorf("swap transaction: %w", err)
	}

	amountOut := fromLamports(quote.OutAmount, token.Decimals)
	pos := domain.NewPosition(*token, spend, amountOut, time.Now().UTC())

	e.mu.Lock()
	e.positions[token.Address] = pos
	e.totalInvested += spend
	open := len(e.positions)
	invested, realized := e.totalInvested, e.realizedPnL
	e.mu.Unlock()

	observability.RecordPositionOpened()
	observability.UpdateEngineState(open, invested, realized)
	e.logger.Printf("Opened position: %.2f USDC -> %f %s", spend, amountOut, token.Symbol)
	return nil
}

// closePosition quotes the reverse swap, folds the realized PnL into the
// running total and removes the position from the open set.
func (e *Engine) closePosition(ctx context.Context, pos *domain.Position, reason string) error {
	quote, err := e.quoter.Quote(ctx, pos.Token.Address, domain.USDCMint, toLamports(pos.AmountOut, pos.Token.Decimals))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoQuote, err)
	}
	if quote.OutAmount == 0 {
		return ErrNoQuote
	}

	proceeds := fromLamports(quote.OutAmount, domain.USDCDecimals)
	realized := proceeds - pos.AmountIn
	exitPrice := e.livePrice(pos)

	// Exit facts are set under the lock: Positions and Stats copy the
	// struct while it is still in the open set.
	e.mu.Lock()
	pos.ExitPrice = exitPrice
	pos.ExitTime = time.Now().UTC()
	delete(e.positions, pos.Token.Address)
	e.realizedPnL += realized
	open := len(e.positions)
	invested, totalRealized := e.totalInvested, e.realizedPnL
	e.mu.Unlock()

	observability.RecordPositionClosed(reason)
	observability.UpdateEngineState(open, invested, totalRealized)
	e.logger.Printf("Closed %s: PnL %.2f USDC", pos.Token.Symbol, realized)
	return nil
}

// Stats returns the aggregate trading state. Open PnL is computed against
// live feed prices.
func (e *Engine) Stats() domain.EngineStats {
	e.mu.Lock()
	positions := make([]*domain.Position, 0, len(e.positions))
	for _, pos := range e.positions {
		positions = append(positions, pos)
	}
	invested, realized := e.totalInvested, e.realizedPnL
	e.mu.Unlock()

	var openPnL float64
	for _, pos := range positions {
		openPnL += pos.PnL(e.livePrice(pos))
	}

	totalPnL := realized + openPnL
	var roi float64
	if invested > 0 {
		roi = totalPnL / invested * 100
	}

	return domain.EngineStats{
		Positions:     len(positions),
		TotalInvested: invested,
		OpenPnL:       openPnL,
		RealizedPnL:   realized,
		TotalPnL:      totalPnL,
		ROIPercent:    roi,
	}
}

// Positions returns copies of the open positions.
func (e *Engine) Positions() []domain.Position {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.Position, 0, len(e.positions))
	for _, pos := range e.positions {
		out = append(out, *pos)
	}
	return out
}

// livePrice returns the current feed price for a position's token, falling
// back to the entry snapshot when the token is not tracked.
func (e *Engine) livePrice(pos *domain.Position) float64 {
	if snap, ok := e.feed.Get(pos.Token.Address); ok {
		return snap.Price
	}
	return pos.Token.Price
}

func (e *Engine) openPositions() []*domain.Position {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*domain.Position, 0, len(e.positions))
	for _, pos := range e.positions {
		out = append(out, pos)
	}
	return out
}

func (e *Engine) openCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.positions)
}

func (e *Engine) hasPosition(address string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.positions[address]
	return ok
}

// toLamports converts a human amount to the mint's smallest unit.
func toLamports(amount float64, decimals int) uint64 {
	if amount <= 0 {
		return 0
	}
	if decimals == 0 {
		decimals = domain.DefaultDecimals
	}
	return uint64(math.Round(amount * math.Pow10(decimals)))
}

// fromLamports converts from the mint's smallest unit to a human amount.
func fromLamports(amount uint64, decimals int) float64 {
	if decimals == 0 {
		decimals = domain.DefaultDecimals
	}
	return float64(amount) / math.Pow10(decimals)
}
