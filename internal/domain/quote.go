package domain

import "encoding/json"

// Well-known mint addresses.
const (
	USDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	WSOLMint = "So11111111111111111111111111111111111111112"

	// USDCDecimals is the decimal count of the USDC mint.
	USDCDecimals = 6
)

// Quote is a swap-routing estimate: spend InAmount of InputMint, expect
// OutAmount of OutputMint. Amounts are in the smallest unit of each mint.
// Raw carries the provider's full response so it can be replayed into a
// swap-transaction request without lossy re-encoding.
type Quote struct {
	InputMint  string
	OutputMint string
	InAmount   uint64
	OutAmount  uint64
	Raw        json.RawMessage
}
