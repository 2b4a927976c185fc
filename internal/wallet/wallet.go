// Package wallet holds the spending-key configuration for the entry/exit
// execution path. The secret is the standard Solana keypair export: a JSON
// array of 64 bytes, seed followed by public key. Only the public key is
// ever used here; signing and submission are out of scope.
package wallet

import (
	"encoding/json"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

const keypairLen = 64

// Errors returned when parsing wallet configuration.
var (
	ErrNoSecret       = errors.New("wallet: no secret configured")
	ErrBadSecret      = errors.New("wallet: malformed secret key")
	ErrPubkeyOffCurve = errors.New("wallet: public key not on curve")
)

// Config is the parsed wallet configuration passed to components that need
// a spender identity.
type Config struct {
	PublicKey string // base58, empty when no wallet is configured
}

// Configured reports whether a spending key is available.
func (c Config) Configured() bool {
	return c.PublicKey != ""
}

// FromSecret parses a Solana keypair export and derives the public key.
// The embedded public key is checked to be a valid curve point before use.
func FromSecret(secret string) (Config, error) {
	if secret == "" {
		return Config{}, ErrNoSecret
	}

	// The export format is a JSON array of numbers, not a base64 string,
	// so it cannot be unmarshaled straight into []byte.
	var nums []int
	if err := json.Unmarshal([]byte(secret), &nums); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrBadSecret, err)
	}
	if len(nums) != keypairLen {
		return Config{}, fmt.Errorf("%w: got %d bytes, want %d", ErrBadSecret, len(nums), keypairLen)
	}
	raw := make([]byte, keypairLen)
	for i, n := range nums {
		if n < 0 || n > 255 {
			return Config{}, fmt.Errorf("%w: byte %d out of range", ErrBadSecret, i)
		}
		raw[i] = byte(n)
	}

	// Keypair layout: seed(32) | pubkey(32)
	pub := raw[32:]
	if _, err := new(edwards25519.Point).SetBytes(pub); err != nil {
		return Config{}, ErrPubkeyOffCurve
	}

	return Config{PublicKey: base58.Encode(pub)}, nil
}

// ValidAddress reports whether s decodes to a 32-byte Solana account
// address. Mint addresses may be off-curve (program derived), so no curve
// check is applied.
func ValidAddress(s string) bool {
	raw, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(raw) == 32
}
