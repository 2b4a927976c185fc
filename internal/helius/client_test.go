package helius

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/tokens/MintA/holders", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api-key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total": 1337, "holders": []}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))

	holders, err := client.Holders(context.Background(), "MintA")
	require.NoError(t, err)
	assert.Equal(t, 1337, holders)
}

func TestHolders_EmptyKeyFallsBackToDemo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultAPIKey, r.URL.Query().Get("api-key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total": 1}`))
	}))
	defer srv.Close()

	client := NewClient("", WithBaseURL(srv.URL))

	_, err := client.Holders(context.Background(), "MintA")
	require.NoError(t, err)
}

func TestHolders_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))

	_, err := client.Holders(context.Background(), "MintA")
	assert.ErrorContains(t, err, "status 429")
}

func TestTokenMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/tokens/metadata", r.URL.Path)
		assert.Equal(t, "MintA", r.URL.Query().Get("mint"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"mint":"MintA","name":"Test Token","symbol":"TST"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))

	meta, err := client.TokenMetadata(context.Background(), "MintA")
	require.NoError(t, err)
	assert.Equal(t, "Test Token", meta.Name)
}
