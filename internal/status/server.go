// Package status serves a read-only HTTP view of the running monitor.
package status

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rewired-gh/oiwatch/internal/logger"
	"github.com/rewired-gh/oiwatch/internal/models"
	"github.com/rewired-gh/oiwatch/internal/monitor"
)

// AlertLister reads the alert journal.
type AlertLister interface {
	RecentAlerts(limit int) ([]models.Alert, error)
	CountAlerts() (map[models.SignalType]int, error)
}

// Server exposes /health, /status and /alerts.
type Server struct {
	router  *gin.Engine
	httpSrv *http.Server
	board   *monitor.StatusBoard
	alerts  AlertLister
}

// NewServer builds the router. alerts may be nil, in which case /alerts is not registered.
func NewServer(addr string, board *monitor.StatusBoard, alerts AlertLister) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router: router,
		board:  board,
		alerts: alerts,
	}
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	router.GET("/health", s.handleHealth)
	router.GET("/status", s.handleStatus)
	if alerts != nil {
		router.GET("/alerts", s.handleAlerts)
	}
	return s
}

// Handler returns the underlying router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves in a background goroutine.
func (s *Server) Start() {
	go func() {
		logger.Info("Status server listening on %s", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Status server stopped: %v", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	snap := s.board.Snapshot()
	status := "healthy"
	if snap.ConsecutiveFailures > 0 {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":               status,
		"symbol":               snap.Symbol,
		"cycles":               snap.Cycles,
		"consecutive_failures": snap.ConsecutiveFailures,
		"last_cycle_at":        snap.LastCycleAt,
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.board.Snapshot())
}

func (s *Server) handleAlerts(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}

	alerts, err := s.alerts.RecentAlerts(limit)
	if err != nil {
		logger.Warn("Failed to list alerts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list alerts"})
		return
	}
	counts, err := s.alerts.CountAlerts()
	if err != nil {
		logger.Warn("Failed to count alerts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count alerts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "counts": counts})
}
