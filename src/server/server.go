package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"portfolio-stream/src/interfaces"
	"portfolio-stream/src/logger"
	"portfolio-stream/src/models"
	"portfolio-stream/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

// -----------------------------------------------------------------------------
// StreamServer
// -----------------------------------------------------------------------------

// StreamServer is the push layer: it owns the connection registry, the price
// history store, the update scheduler and the heartbeat monitor, and exposes
// the websocket endpoint plus the administrative REST surface. Quote source,
// portfolio builder and archive are injected collaborators.
type StreamServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	engine *gin.Engine
	clock  clockwork.Clock

	registry  *Registry
	history   *utils.HistoryStore
	scheduler *UpdateScheduler
	heartbeat *HeartbeatMonitor

	quoteSource      interfaces.IQuoteSource
	portfolioBuilder interfaces.IPortfolioBuilder
	archive          interfaces.IDatabase

	httpSrv  *http.Server
	stopOnce sync.Once
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewStreamServer(
	cfg *models.MConfig,
	log *logger.Logger,
	quoteSource interfaces.IQuoteSource,
	portfolioBuilder interfaces.IPortfolioBuilder,
	archive interfaces.IDatabase,
	clock clockwork.Clock,
) *StreamServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &StreamServer{
		Config:           cfg,
		Logger:           log,
		engine:           gin.Default(),
		clock:            clock,
		history:          utils.NewHistoryStore(cfg.Stream.MaxHistoryPoints),
		quoteSource:      quoteSource,
		portfolioBuilder: portfolioBuilder,
		archive:          archive,
	}

	s.registry = NewRegistry(log)
	s.scheduler = NewUpdateScheduler(clock, log)
	s.heartbeat = NewHeartbeatMonitor(s.registry, s.dropClient, s.heartbeatInterval(), clock, log)

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *StreamServer) setupRoutes() {
	// REST API endpoints (administrative surface)
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/connections", s.getConnections)
	s.engine.GET("/api/history/:symbol", s.getHistory)
	s.engine.POST("/api/refresh/portfolio", s.postRefreshPortfolio)
	s.engine.POST("/api/refresh/prices", s.postRefreshPrices)
	s.engine.PUT("/api/intervals", s.putIntervals)
	s.engine.POST("/api/shutdown", s.postShutdown)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *StreamServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	s.scheduler.Register(CyclePortfolio, s.portfolioInterval(), s.RunPortfolioCycle)
	s.scheduler.Register(CyclePrice, s.priceInterval(), s.RunPriceCycle)
	s.heartbeat.Start()

	s.httpSrv = &http.Server{Addr: addr, Handler: s.engine}
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// Stop cancels all timers, terminates every connection and clears retained
// history. The shutdown path is the only one that touches all connections.
func (s *StreamServer) Stop() error {
	s.stopOnce.Do(func() {
		s.Logger.Info("Shutting down stream server")

		s.scheduler.Stop()
		s.heartbeat.Stop()
		s.registry.Shutdown()
		s.history.Clear()

		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.httpSrv.Shutdown(ctx)
		}
	})
	return nil
}

// -----------------------------------------------------------------------------
// WebSocket Handling
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *StreamServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := newClient(uuid.NewString(), s, conn, s.Config.Stream.SendBufferSize)

	// The connected greeting is queued before registration, so it reaches
	// the client ahead of any broadcast.
	client.trySend(models.NewConnectedMessage(s.nowMillis()))
	s.registry.Register(client)

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------

// dropClient removes the record and releases the transport. Idempotent; used
// by the pumps, the heartbeat monitor and the broadcast engine alike.
func (s *StreamServer) dropClient(c *Client) {
	s.registry.Unregister(c.ID())
}

// -----------------------------------------------------------------------------
// Route Handlers (administrative surface)
// -----------------------------------------------------------------------------

func (s *StreamServer) getHealth(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":      "ok",
		"connections": s.registry.Count(),
		"symbols":     s.history.SymbolCount(),
	})
}

// -----------------------------------------------------------------------------

func (s *StreamServer) getConnections(c *gin.Context) {
	c.JSON(200, gin.H{"connections": s.registry.Count()})
}

// -----------------------------------------------------------------------------

func (s *StreamServer) getHistory(c *gin.Context) {
	key := utils.NormalizeSymbolKey(c.Param("symbol"), s.Config.Stream.DefaultExchange)
	if key == "" {
		c.JSON(400, gin.H{"error": "symbol is required"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(400, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	c.JSON(200, gin.H{
		"symbol":  key,
		"history": s.history.Slice(key, limit),
	})
}

// -----------------------------------------------------------------------------

func (s *StreamServer) postRefreshPortfolio(c *gin.Context) {
	if err := s.scheduler.TriggerNow(CyclePortfolio); err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(202, gin.H{"status": "portfolio refresh triggered"})
}

// -----------------------------------------------------------------------------

func (s *StreamServer) postRefreshPrices(c *gin.Context) {
	if err := s.scheduler.TriggerNow(CyclePrice); err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(202, gin.H{"status": "price refresh triggered"})
}

// -----------------------------------------------------------------------------

type intervalsRequest struct {
	Cycle   string `json:"cycle" binding:"required"`
	Seconds int    `json:"seconds" binding:"required"`
}

func (s *StreamServer) putIntervals(c *gin.Context) {
	var req intervalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	cycle := CycleType(req.Cycle)
	if cycle != CyclePortfolio && cycle != CyclePrice {
		c.JSON(400, gin.H{"error": fmt.Sprintf("unknown cycle: %s", req.Cycle)})
		return
	}
	if req.Seconds <= 0 {
		c.JSON(400, gin.H{"error": "seconds must be positive"})
		return
	}

	if err := s.scheduler.SetInterval(cycle, time.Duration(req.Seconds)*time.Second); err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"cycle": req.Cycle, "seconds": req.Seconds})
}

// -----------------------------------------------------------------------------

func (s *StreamServer) postShutdown(c *gin.Context) {
	c.JSON(202, gin.H{"status": "shutting down"})

	// Off the request goroutine so the response can flush first.
	go s.Stop()
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func (s *StreamServer) nowMillis() int64 {
	return utils.NowMillis(s.clock.Now())
}

func (s *StreamServer) heartbeatInterval() time.Duration {
	if s.Config.Stream.HeartbeatIntervalSeconds > 0 {
		return time.Duration(s.Config.Stream.HeartbeatIntervalSeconds) * time.Second
	}
	return utils.DefaultHeartbeatInterval
}

func (s *StreamServer) portfolioInterval() time.Duration {
	if s.Config.Stream.PortfolioIntervalSeconds > 0 {
		return time.Duration(s.Config.Stream.PortfolioIntervalSeconds) * time.Second
	}
	return utils.DefaultPortfolioInterval
}

func (s *StreamServer) priceInterval() time.Duration {
	if s.Config.Stream.PriceIntervalSeconds > 0 {
		return time.Duration(s.Config.Stream.PriceIntervalSeconds) * time.Second
	}
	return utils.DefaultPriceInterval
}
