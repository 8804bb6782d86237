// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"lease-scan/internal/config"
	"lease-scan/internal/core"
	"lease-scan/internal/detector"
	"lease-scan/internal/observability"
	"lease-scan/internal/preprocessors"
	"lease-scan/internal/rules"
	"lease-scan/internal/version"

	// Import formatters to register them
	_ "lease-scan/internal/formatters/csv"
	_ "lease-scan/internal/formatters/json"
	_ "lease-scan/internal/formatters/text"
	_ "lease-scan/internal/formatters/yaml"
)

// RequestIDHeader carries the per-request id in both directions
const RequestIDHeader = "X-Request-ID"

// DefaultSearchLimit caps /rules/search results unless the caller asks otherwise
const DefaultSearchLimit = 3

// Server is the HTTP API around one analyzer
type Server struct {
	cfg           *config.Config
	analyzer      *core.Analyzer
	library       *rules.Library
	preprocessors *preprocessors.PreprocessorManager
	observer      *observability.StandardObserver
	logger        observability.Logger
	cache         *lru.Cache[string, *detector.AnalysisResult]
	metrics       *metrics
	engine        *gin.Engine
	server        *http.Server
}

// NewServer builds the router. The analyzer must not change after this call
// because results are cached by document hash.
func NewServer(cfg *config.Config, analyzer *core.Analyzer, observer *observability.StandardObserver) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if observer == nil {
		observer = observability.NewStandardObserver(observability.ObservabilityOff, nil)
	}

	s := &Server{
		cfg:           cfg,
		analyzer:      analyzer,
		library:       analyzer.Library(),
		preprocessors: preprocessors.NewDefaultManager(observer),
		observer:      observer,
		logger:        observer.Logger(),
		metrics:       newMetrics(),
	}

	if cfg.Web.CacheSize > 0 {
		cache, err := lru.New[string, *detector.AnalysisResult](cfg.Web.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
		s.cache = cache
	}

	s.engine = s.routes()
	return s, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestID(), s.accessLog())
	engine.MaxMultipartMemory = s.maxUploadBytes()

	engine.GET("/health", s.handleHealth)
	engine.POST("/analyze", s.handleAnalyze)
	engine.GET("/rules", s.handleRules)
	engine.GET("/rules/search", s.handleSearch)
	engine.GET("/jurisdictions", s.handleJurisdictions)
	engine.GET("/formats", s.handleFormats)
	engine.GET("/metrics", gin.WrapH(s.metrics.handler()))
	return engine
}

func (s *Server) maxUploadBytes() int64 {
	return int64(s.cfg.Web.MaxUploadMB) << 20
}

// requestID reuses the caller's id when present so logs can be correlated
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Header("Server", version.Get().ServerHeader())
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString(RequestIDHeader))
	}
}

// newHTTPServer applies the read, write and idle timeouts used for every listener
func (s *Server) newHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Start serves on the configured port until ctx is cancelled, then shuts
// down gracefully
func (s *Server) Start(ctx context.Context) error {
	addr := ":" + s.cfg.Web.Port
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %s is not available: %w\n"+
			"Troubleshooting:\n"+
			"  1. Check if another service is using the port\n"+
			"  2. Try a different port with --port <number>", s.cfg.Web.Port, err)
	}

	s.server = s.newHTTPServer(addr)
	s.logger.Info("lease-scan API listening", "addr", listener.Addr().String(), "version", version.Get().Version)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down API server")
		return s.server.Shutdown(shutdownCtx)
	}
}

// Stop closes the listener immediately
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}
