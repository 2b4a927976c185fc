package wallet

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-trade-bot/internal/domain"
)

func keypairJSON(t *testing.T, seed []byte) string {
	t.Helper()
	priv := ed25519.NewKeyFromSeed(seed)
	nums := make([]int, len(priv))
	for i, b := range priv {
		nums[i] = int(b)
	}
	data, err := json.Marshal(nums)
	require.NoError(t, err)
	return string(data)
}

func TestFromSecret(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, ed25519.SeedSize)
	secret := keypairJSON(t, seed)

	cfg, err := FromSecret(secret)
	require.NoError(t, err)
	require.True(t, cfg.Configured())

	priv := ed25519.NewKeyFromSeed(seed)
	want := base58.Encode(priv[32:])
	assert.Equal(t, want, cfg.PublicKey)
	assert.True(t, ValidAddress(cfg.PublicKey))
}

func TestFromSecret_Errors(t *testing.T) {
	_, err := FromSecret("")
	assert.ErrorIs(t, err, ErrNoSecret)

	_, err = FromSecret("not json")
	assert.ErrorIs(t, err, ErrBadSecret)

	_, err = FromSecret("[1,2,3]")
	assert.ErrorIs(t, err, ErrBadSecret)

	// Out-of-range byte values.
	_, err = FromSecret("[" + strings.Repeat("300,", keypairLen-1) + "300]")
	assert.ErrorIs(t, err, ErrBadSecret)

	// Right length, but the pubkey half is not a curve point (y=2 has no
	// square root for x, so SetBytes rejects the encoding).
	bad := make([]int, keypairLen)
	bad[32] = 2
	data, err := json.Marshal(bad)
	require.NoError(t, err)
	_, err = FromSecret(string(data))
	assert.ErrorIs(t, err, ErrPubkeyOffCurve)
}

func TestValidAddress(t *testing.T) {
	assert.True(t, ValidAddress(domain.USDCMint))
	assert.True(t, ValidAddress(domain.WSOLMint))
	assert.False(t, ValidAddress(""))
	assert.False(t, ValidAddress("abc"))
	assert.False(t, ValidAddress("0OIl")) // invalid base58 alphabet
}
