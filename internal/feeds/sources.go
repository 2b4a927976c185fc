package feeds

import (
	"context"

	"solana-trade-bot/internal/domain"
)

// DiscoverySource returns a batch of candidate token snapshots. Batches may
// be large; the aggregator bounds how many are taken per cycle.
type DiscoverySource interface {
	Discover(ctx context.Context) ([]*domain.TokenSnapshot, error)
}

// PriceSource returns a current USD price for a mint address.
type PriceSource interface {
	Price(ctx context.Context, address string) (float64, error)
}

// HolderSource returns a total holder count for a mint address.
type HolderSource interface {
	Holders(ctx context.Context, address string) (int, error)
}
