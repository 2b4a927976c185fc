// Package api exposes the HTTP surface: token rankings, trading stats,
// engine control and a live stats stream over WebSocket.
package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"solana-trade-bot/internal/domain"
	"solana-trade-bot/internal/observability"
)

// DefaultPushInterval is how often /ws/live pushes a frame.
const DefaultPushInterval = 2 * time.Second

// TokenFeed is the read side of the token table served over HTTP.
type TokenFeed interface {
	TopTokens(n int) []*domain.TokenSnapshot
}

// Trader is the engine surface the API controls and reports on.
type Trader interface {
	Start(ctx context.Context)
	Stop()
	Running() bool
	Stats() domain.EngineStats
	Positions() []domain.Position
}

// Handler serves the REST and WebSocket endpoints.
type Handler struct {
	feed   TokenFeed
	trader Trader
	logger *log.Logger

	// engineCtx is the lifetime handed to Trader.Start from the HTTP
	// control endpoints.
	engineCtx context.Context

	upgrader     websocket.Upgrader
	pushInterval time.Duration
}

// Options configures a Handler. Feed and Trader are required.
type Options struct {
	Feed   TokenFeed
	Trader Trader

	// EngineContext bounds engine runs started over HTTP. Defaults to
	// context.Background().
	EngineContext context.Context

	PushInterval time.Duration // default 2s
	Logger       *log.Logger
}

// NewHandler creates the API handler.
func NewHandler(opts Options) *Handler {
	engineCtx := opts.EngineContext
	if engineCtx == nil {
		engineCtx = context.Background()
	}
	pushInterval := opts.PushInterval
	if pushInterval == 0 {
		pushInterval = DefaultPushInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Handler{
		feed:      opts.Feed,
		trader:    opts.Trader,
		logger:    logger,
		engineCtx: engineCtx,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		pushInterval: pushInterval,
	}
}

// SetupRoutes registers all endpoints on the router.
func (h *Handler) SetupRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(observability.Handler()))

	api := r.Group("/api")
	{
		api.GET("/tokens", h.ListTokens)
		api.GET("/stats", h.GetStats)
		api.GET("/positions", h.ListPositions)

		engine := api.Group("/engine")
		{
			engine.POST("/start", h.StartEngine)
			engine.POST("/stop", h.StopEngine)
			engine.GET("/status", h.EngineStatus)
		}
	}

	r.GET("/ws/live", h.LiveStream)
}

// Health: GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListTokens: GET /api/tokens?limit=20
// Returns tracked tokens ordered by score, best first.
func (h *Handler) ListTokens(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 200 {
		limit = 20
	}

	tokens := h.feed.TopTokens(limit)
	c.JSON(http.StatusOK, gin.H{"count": len(tokens), "tokens": tokens})
}

// GetStats: GET /api/stats
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.trader.Stats())
}

// ListPositions: GET /api/positions
func (h *Handler) ListPositions(c *gin.Context) {
	positions := h.trader.Positions()
	c.JSON(http.StatusOK, gin.H{"count": len(positions), "positions": positions})
}

// StartEngine: POST /api/engine/start
func (h *Handler) StartEngine(c *gin.Context) {
	if h.trader.Running() {
		c.JSON(http.StatusConflict, gin.H{"error": "engine already running"})
		return
	}
	h.trader.Start(h.engineCtx)
	c.JSON(http.StatusOK, gin.H{"running": true})
}

// StopEngine: POST /api/engine/stop
func (h *Handler) StopEngine(c *gin.Context) {
	if !h.trader.Running() {
		c.JSON(http.StatusOK, gin.H{"running": false})
		return
	}
	h.trader.Stop()
	c.JSON(http.StatusOK, gin.H{"running": false})
}

// EngineStatus: GET /api/engine/status
func (h *Handler) EngineStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"running": h.trader.Running()})
}

// liveFrame is one /ws/live push.
type liveFrame struct {
	Running   bool                    `json:"running"`
	Stats     domain.EngineStats      `json:"stats"`
	Tokens    []*domain.TokenSnapshot `json:"tokens"`
	Timestamp time.Time               `json:"timestamp"`
}

// LiveStream: GET /ws/live
// Upgrades to WebSocket and pushes stats plus the current top tokens on a
// fixed interval until the client disconnects.
func (h *Handler) LiveStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Reader goroutine: detects client close, discards everything else.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pushInterval)
	defer ticker.Stop()

	// First frame immediately, then on the ticker.
	if err := h.pushFrame(conn); err != nil {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			if err := h.pushFrame(conn); err != nil {
				return
			}
		}
	}
}

func (h *Handler) pushFrame(conn *websocket.Conn) error {
	frame := liveFrame{
		Running:   h.trader.Running(),
		Stats:     h.trader.Stats(),
		Tokens:    h.feed.TopTokens(10),
		Timestamp: time.Now().UTC(),
	}
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(frame)
}

// Server wraps the gin router in an http.Server with graceful shutdown.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

// NewServer builds the router and binds it to addr.
func NewServer(addr string, handler *Handler, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler.SetupRoutes(router)

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0, // WebSocket connections stay open
		},
		logger: logger,
	}
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		s.logger.Printf("HTTP server listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("HTTP server error: %v", err)
		}
	}()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
