package moralis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient("")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token/mainnet/MintA/price", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"usdPrice": 1.2345, "exchangeName": "Raydium"}`))
	}))
	defer srv.Close()

	client, err := NewClient("test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)

	price, err := client.Price(context.Background(), "MintA")
	require.NoError(t, err)
	assert.Equal(t, 1.2345, price)
}

func TestPrice_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid address"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client, err := NewClient("test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = client.Price(context.Background(), "bogus")
	assert.ErrorContains(t, err, "status 400")
}

func TestTokenMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token/devnet/MintA/metadata", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"mint":"MintA","name":"Test Token","symbol":"TST","decimals":"9"}`))
	}))
	defer srv.Close()

	client, err := NewClient("test-key", WithBaseURL(srv.URL), WithNetwork("devnet"))
	require.NoError(t, err)

	meta, err := client.TokenMetadata(context.Background(), "MintA")
	require.NoError(t, err)
	assert.Equal(t, "TST", meta.Symbol)
	assert.Equal(t, "9", meta.Decimals)
}
