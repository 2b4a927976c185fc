package feeds

import (
	"sort"
	"sync"
	"time"

	"solana-trade-bot/internal/domain"
	"solana-trade-bot/internal/scoring"
)

// TokenTable is the authoritative in-memory table of token snapshots, keyed
// by mint address. The aggregator is its only writer; the engine and the
// API read from it concurrently. Every write constructs a new snapshot
// value and swaps the map entry whole, so readers never observe a
// partially-updated snapshot. Entries are never deleted.
type TokenTable struct {
	mu   sync.RWMutex
	data map[string]*domain.TokenSnapshot
}

// NewTokenTable creates an empty table.
func NewTokenTable() *TokenTable {
	return &TokenTable{
		data: make(map[string]*domain.TokenSnapshot),
	}
}

// Upsert merges a discovered snapshot into the table. New tokens keep the
// observed price as their base price. For known tokens the mutable market
// fields are overwritten while address, base price and creation time are
// preserved; score and opportunity carry over until the next rescore.
func (t *TokenTable) Upsert(snap *domain.TokenSnapshot, now time.Time) {
	if snap == nil || snap.Address == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	next := *snap
	next.LastUpdated = now

	if prev, ok := t.data[snap.Address]; ok {
		next.BasePrice = prev.BasePrice
		next.CreatedAt = prev.CreatedAt
		next.Score = prev.Score
		next.Opportunity = prev.Opportunity
		if next.Decimals == 0 {
			next.Decimals = prev.Decimals
		}
	} else {
		next.BasePrice = snap.Price
	}

	t.data[snap.Address] = &next
}

// PatchPrice overwrites only the price of a known token.
func (t *TokenTable) PatchPrice(address string, price float64, now time.Time) {
	t.patch(address, func(s *domain.TokenSnapshot) {
		s.Price = price
		s.LastUpdated = now
	})
}

// PatchHolders overwrites only the holder count of a known token.
func (t *TokenTable) PatchHolders(address string, holders int, now time.Time) {
	t.patch(address, func(s *domain.TokenSnapshot) {
		s.Holders = holders
		s.LastUpdated = now
	})
}

// patch applies fn to a copy of the stored snapshot and swaps it in.
// Unknown addresses are ignored.
func (t *TokenTable) patch(address string, fn func(*domain.TokenSnapshot)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, ok := t.data[address]
	if !ok {
		return
	}
	next := *prev
	fn(&next)
	t.data[address] = &next
}

// Rescore recomputes score and opportunity for every snapshot. Relative
// ranking depends on the full set, so no subset variant exists.
func (t *TokenTable) Rescore(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for addr, prev := range t.data {
		next := *prev
		next.Score = scoring.Score(&next, now)
		next.Opportunity = scoring.Classify(&next)
		t.data[addr] = &next
	}
}

// Get returns a copy of the snapshot for an address.
func (t *TokenTable) Get(address string) (*domain.TokenSnapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap, ok := t.data[address]
	if !ok {
		return nil, false
	}
	cp := *snap
	return &cp, true
}

// Len returns the number of tracked tokens.
func (t *TokenTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.data)
}

// Addresses returns all tracked addresses in lexical order. The fixed order
// gives the enrichment rotation a stable footing.
func (t *TokenTable) Addresses() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	addrs := make([]string, 0, len(t.data))
	for addr := range t.data {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs
}

// Top returns copies of the n highest-scored snapshots. Equal scores tie
// break on address so the order is stable across calls within one epoch.
func (t *TokenTable) Top(n int) []*domain.TokenSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	all := make([]*domain.TokenSnapshot, 0, len(t.data))
	for _, snap := range t.data {
		cp := *snap
		all = append(all, &cp)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		return all[i].Address < all[j].Address
	})

	if n < 0 {
		n = 0
	}
	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}
