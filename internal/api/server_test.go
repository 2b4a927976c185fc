package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-trade-bot/internal/domain"
)

type stubFeed struct {
	tokens []*domain.TokenSnapshot
}

func (f *stubFeed) TopTokens(n int) []*domain.TokenSnapshot {
	if n > len(f.tokens) {
		n = len(f.tokens)
	}
	return f.tokens[:n]
}

type stubTrader struct {
	mu        sync.Mutex
	running   bool
	stats     domain.EngineStats
	positions []domain.Position
}

func (t *stubTrader) Start(context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = true
}

func (t *stubTrader) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
}

func (t *stubTrader) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *stubTrader) Stats() domain.EngineStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

func (t *stubTrader) Positions() []domain.Position {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.positions
}

func newTestRouter(feed TokenFeed, trader Trader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(Options{
		Feed:         feed,
		Trader:       trader,
		PushInterval: 10 * time.Millisecond,
		Logger:       log.New(&bytes.Buffer{}, "", 0),
	})
	handler.SetupRoutes(router)
	return router
}

func doRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&stubFeed{}, &stubTrader{})

	w := doRequest(router, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListTokens(t *testing.T) {
	feed := &stubFeed{tokens: []*domain.TokenSnapshot{
		{Address: "MintA", Symbol: "AAA", Score: 80},
		{Address: "MintB", Symbol: "BBB", Score: 60},
		{Address: "MintC", Symbol: "CCC", Score: 40},
	}}
	router := newTestRouter(feed, &stubTrader{})

	w := doRequest(router, http.MethodGet, "/api/tokens?limit=2")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count  int                     `json:"count"`
		Tokens []*domain.TokenSnapshot `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Tokens, 2)
	assert.Equal(t, "MintA", resp.Tokens[0].Address)

	// Out-of-range limits fall back to the default.
	w = doRequest(router, http.MethodGet, "/api/tokens?limit=-1")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)
}

func TestGetStats(t *testing.T) {
	trader := &stubTrader{stats: domain.EngineStats{
		Positions:     2,
		TotalInvested: 20,
		RealizedPnL:   3.5,
		TotalPnL:      4.0,
		ROIPercent:    20,
	}}
	router := newTestRouter(&stubFeed{}, trader)

	w := doRequest(router, http.MethodGet, "/api/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var stats domain.EngineStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, trader.stats, stats)
}

func TestListPositions(t *testing.T) {
	trader := &stubTrader{positions: []domain.Position{
		{Token: domain.TokenSnapshot{Address: "MintA"}, AmountIn: 5},
	}}
	router := newTestRouter(&stubFeed{}, trader)

	w := doRequest(router, http.MethodGet, "/api/positions")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestEngineControl(t *testing.T) {
	trader := &stubTrader{}
	router := newTestRouter(&stubFeed{}, trader)

	w := doRequest(router, http.MethodGet, "/api/engine/status")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"running":false}`, w.Body.String())

	w = doRequest(router, http.MethodPost, "/api/engine/start")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, trader.Running())

	// Starting a running engine is a conflict.
	w = doRequest(router, http.MethodPost, "/api/engine/start")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(router, http.MethodPost, "/api/engine/stop")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, trader.Running())

	// Stopping an idle engine is fine.
	w = doRequest(router, http.MethodPost, "/api/engine/stop")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(&stubFeed{}, &stubTrader{})

	w := doRequest(router, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestLiveStream(t *testing.T) {
	feed := &stubFeed{tokens: []*domain.TokenSnapshot{
		{Address: "MintA", Symbol: "AAA", Score: 80},
	}}
	trader := &stubTrader{stats: domain.EngineStats{Positions: 1, TotalInvested: 5}}
	router := newTestRouter(feed, trader)

	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/live"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	// The first frame arrives without waiting for the ticker; later
	// frames follow on the push interval.
	for i := 0; i < 2; i++ {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		var frame struct {
			Running bool                    `json:"running"`
			Stats   domain.EngineStats      `json:"stats"`
			Tokens  []*domain.TokenSnapshot `json:"tokens"`
		}
		require.NoError(t, conn.ReadJSON(&frame))
		assert.Equal(t, 1, frame.Stats.Positions)
		require.Len(t, frame.Tokens, 1)
		assert.Equal(t, "MintA", frame.Tokens[0].Address)
	}
}
