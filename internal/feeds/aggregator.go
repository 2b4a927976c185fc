// Package feeds maintains the shared token snapshot table, refreshed on a
// fixed interval from a discovery source and per-token enrichment sources.
package feeds

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"solana-trade-bot/internal/domain"
	"solana-trade-bot/internal/observability"
	"solana-trade-bot/internal/wallet"
)

// Default aggregator configuration.
const (
	DefaultInterval      = 5 * time.Second
	DefaultBackoff       = 10 * time.Second
	DefaultDiscoverLimit = 20 // candidates taken per cycle
	DefaultEnrichLimit   = 5  // addresses enriched per cycle
)

// Aggregator periodically pulls snapshots from the upstream sources, merges
// them into the token table and recomputes scores. Discovery is a single
// cheap call and runs unbounded up to the batch limit; enrichment is
// rate-limited to a small rotating subset of known addresses per cycle.
type Aggregator struct {
	discovery DiscoverySource
	prices    PriceSource  // optional
	holders   HolderSource // optional

	table         *TokenTable
	interval      time.Duration
	backoff       time.Duration
	discoverLimit int
	enrichLimit   int
	logger        *log.Logger

	// enrichCursor rotates through Addresses() across cycles so every
	// known token is eventually refreshed despite the per-cycle cap.
	enrichCursor int

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// Options configures an Aggregator. Discovery is required; enrichment
// sources are optional and skipped when nil.
type Options struct {
	Discovery DiscoverySource
	Prices    PriceSource
	Holders   HolderSource

	Interval      time.Duration // default 5s
	Backoff       time.Duration // delay after a failed cycle, default 10s
	DiscoverLimit int           // default 20
	EnrichLimit   int           // default 5
	Logger        *log.Logger
}

// NewAggregator creates an aggregator with an empty token table.
func NewAggregator(opts Options) *Aggregator {
	interval := opts.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	backoff := opts.Backoff
	if backoff == 0 {
		backoff = DefaultBackoff
	}
	discoverLimit := opts.DiscoverLimit
	if discoverLimit == 0 {
		discoverLimit = DefaultDiscoverLimit
	}
	enrichLimit := opts.EnrichLimit
	if enrichLimit == 0 {
		enrichLimit = DefaultEnrichLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Aggregator{
		discovery:     opts.Discovery,
		prices:        opts.Prices,
		holders:       opts.Holders,
		table:         NewTokenTable(),
		interval:      interval,
		backoff:       backoff,
		discoverLimit: discoverLimit,
		enrichLimit:   enrichLimit,
		logger:        logger,
	}
}

// Table returns the shared token table for read-only consumers.
func (a *Aggregator) Table() *TokenTable {
	return a.table
}

// TopTokens returns the n highest-scored snapshots.
func (a *Aggregator) TopTokens(n int) []*domain.TokenSnapshot {
	return a.table.Top(n)
}

// Get returns the snapshot for an address, if tracked.
func (a *Aggregator) Get(address string) (*domain.TokenSnapshot, bool) {
	return a.table.Get(address)
}

// Start begins the periodic refresh cycle. Starting twice is a no-op.
func (a *Aggregator) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.running = true
	a.cancel = cancel
	a.done = make(chan struct{})

	go a.run(runCtx)
	a.logger.Println("Feed aggregator started")
}

// Stop halts further refreshes and waits for the current cycle to wind
// down. In-flight fetches finish or fail on their own timeouts.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	cancel, done := a.cancel, a.done
	a.mu.Unlock()

	cancel()
	<-done
	a.logger.Println("Feed aggregator stopped")
}

func (a *Aggregator) run(ctx context.Context) {
	defer close(a.done)

	for {
		delay := a.interval
		start := time.Now()
		if err := a.refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			a.logger.Printf("Refresh cycle failed: %v", err)
			observability.RecordRefreshCycle("error", time.Since(start).Seconds())
			delay = a.backoff
		} else {
			observability.RecordRefreshCycle("success", time.Since(start).Seconds())
		}
		observability.UpdateTokensTracked(a.table.Len())

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// refresh runs one full cycle: discovery, enrichment, rescore. Only a
// discovery failure fails the whole cycle; enrichment failures are isolated
// per token and per source.
func (a *Aggregator) refresh(ctx context.Context) error {
	now := time.Now().UTC()

	if err := a.discover(ctx, now); err != nil {
		return fmt.Errorf("discovery: %w", err)
	}

	a.enrich(ctx)

	// Rescore the entire table, not just updated tokens: relative ranking
	// depends on the full set.
	a.table.Rescore(time.Now().UTC())
	return nil
}

// discover pulls one candidate batch and upserts qualifying snapshots:
// a valid mint address plus any sign of activity (volume or liquidity).
func (a *Aggregator) discover(ctx context.Context, now time.Time) error {
	snaps, err := a.discovery.Discover(ctx)
	if err != nil {
		return err
	}

	taken := 0
	for _, snap := range snaps {
		if taken >= a.discoverLimit {
			break
		}
		if snap.Address == "" || !wallet.ValidAddress(snap.Address) {
			continue
		}
		if snap.Volume5m <= 0 && snap.Liquidity <= 0 {
			continue
		}
		a.table.Upsert(snap, now)
		observability.RecordTokenUpsert()
		taken++
	}
	return nil
}

// enrich patches price and holder data for the next slice of the address
// rotation. Calls for different addresses run concurrently; each failure is
// logged and dropped without affecting the rest of the cycle.
func (a *Aggregator) enrich(ctx context.Context) {
	if a.prices == nil && a.holders == nil {
		return
	}

	addrs := a.nextEnrichBatch()
	if len(addrs) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, addr := range addrs {
		wg.Add(1)
		go func(addr string) {
			defer wg.Done()
			a.enrichToken(ctx, addr)
		}(addr)
	}
	wg.Wait()
}

// enrichToken patches one token from each enrichment source. Source
// failures are independent: a price failure does not block the holder
// update and vice versa.
func (a *Aggregator) enrichToken(ctx context.Context, addr string) {
	if a.prices != nil {
		if price, err := a.prices.Price(ctx, addr); err != nil {
			a.logger.Printf("Price update failed for %s: %v", addr, err)
			observability.RecordSourceError("price")
		} else if price > 0 {
			a.table.PatchPrice(addr, price, time.Now().UTC())
		}
	}

	if a.holders != nil {
		if holders, err := a.holders.Holders(ctx, addr); err != nil {
			a.logger.Printf("Holder update failed for %s: %v", addr, err)
			observability.RecordSourceError("holders")
		} else if holders > 0 {
			a.table.PatchHolders(addr, holders, time.Now().UTC())
		}
	}
}

// nextEnrichBatch advances the rotation and returns at most enrichLimit
// addresses.
func (a *Aggregator) nextEnrichBatch() []string {
	addrs := a.table.Addresses()
	if len(addrs) == 0 {
		return nil
	}

	n := a.enrichLimit
	if n > len(addrs) {
		n = len(addrs)
	}

	batch := make([]string, 0, n)
	for i := 0; i < n; i++ {
		batch = append(batch, addrs[(a.enrichCursor+i)%len(addrs)])
	}
	a.enrichCursor = (a.enrichCursor + n) % len(addrs)
	return batch
}
