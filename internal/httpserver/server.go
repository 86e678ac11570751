// Package httpserver serves stored panel snapshots and metrics over HTTP.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tinytelemetry/boxinfo/internal/model"
)

// QueryStore is the narrow store contract required by the HTTP API.
type QueryStore interface {
	model.SnapshotQuerier
	TableRowCounts() (map[string]int64, error)
}

// Server provides an HTTP API for reading collected panels.
type Server struct {
	addr      string
	store     QueryStore
	metrics   http.Handler
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewServer creates a new HTTP API server. A nil metrics handler leaves
// /metrics unrouted.
func NewServer(addr string, store QueryStore, metrics http.Handler) *Server {
	if addr == "" {
		addr = "127.0.0.1:8089"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      addr,
		store:     store,
		metrics:   metrics,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
}

func (s *Server) handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/health", s.handleHealth)
	r.GET("/api/panels", s.handlePanels)
	r.GET("/api/panels/:id", s.handlePanel)
	r.GET("/api/memory", s.handleMemory)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics))
	}
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.startTime = time.Now()

	go s.server.Serve(listener)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	counts, err := s.store.TableRowCounts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read health metrics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"uptime":     time.Since(s.startTime).String(),
		"row_counts": counts,
	})
}

func (s *Server) handlePanels(c *gin.Context) {
	panels, err := s.store.ListPanels()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list panels"})
		return
	}
	if panels == nil {
		panels = []model.PanelSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"panels": panels})
}

func (s *Server) handlePanel(c *gin.Context) {
	snap, err := s.store.LatestSnapshot(c.Param("id"))
	if errors.Is(err, model.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot for panel " + c.Param("id")})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read snapshot"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleMemory(c *gin.Context) {
	limit := model.DefaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	samples, err := s.store.MemoryHistory(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read memory history"})
		return
	}
	if samples == nil {
		samples = []model.MemorySample{}
	}
	c.JSON(http.StatusOK, gin.H{"samples": samples})
}
