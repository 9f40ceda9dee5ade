// Package proxy serves a local HTTP front for PokeAPI that adds caching,
// retries and a batch endpoint returning one JSON array per request.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/five82/shinyhunt/internal/pokeapi"
)

const (
	// DefaultBind is the listen address used when none is configured.
	DefaultBind = "127.0.0.1:7488"
	// MaxBatch bounds the number of paths in one batch request.
	MaxBatch = 100

	fetchFailedMessage = "Failed to fetch from PokeAPI"
	shutdownTimeout    = 5 * time.Second
)

// Server routes proxy requests to a pokeapi.Fetcher.
type Server struct {
	fetcher pokeapi.Fetcher
	metrics *Metrics
	logger  *slog.Logger
	engine  *gin.Engine
}

// NewServer builds the gin engine. metrics may be nil.
func NewServer(fetcher pokeapi.Fetcher, metrics *Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{fetcher: fetcher, metrics: metrics, logger: logger}

	engine := gin.New()
	engine.Use(gin.Recovery())
	if metrics != nil {
		engine.Use(metrics.middleware())
		engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/api/pokemon/*path", s.handlePokemon)
	s.engine = engine
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on bind until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, bind string) error {
	if strings.TrimSpace(bind) == "" {
		bind = DefaultBind
	}
	srv := &http.Server{
		Addr:              bind,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("proxy listening", "addr", bind)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", bind, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("proxy shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handlePokemon(c *gin.Context) {
	if urls, ok := c.GetQuery("urls"); ok {
		s.handleBatch(c, urls)
		return
	}

	path := strings.TrimPrefix(c.Param("path"), "/")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing resource path"})
		return
	}
	if raw := c.Request.URL.RawQuery; raw != "" {
		path += "?" + raw
	}
	body, err := s.fetcher.Get(c.Request.Context(), path)
	if err != nil {
		s.logger.Warn("proxy fetch failed", "path", path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fetchFailedMessage})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (s *Server) handleBatch(c *gin.Context, urls string) {
	paths := strings.Split(urls, ",")
	if len(paths) > MaxBatch {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("at most %d urls per batch", MaxBatch)})
		return
	}
	for i, p := range paths {
		paths[i] = strings.TrimSpace(p)
		if paths[i] == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty url in batch"})
			return
		}
	}
	if s.metrics != nil {
		s.metrics.observeBatch(len(paths))
	}

	items, err := s.fetcher.Batch(c.Request.Context(), paths)
	if err != nil {
		s.logger.Warn("proxy batch failed", "count", len(paths), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fetchFailedMessage})
		return
	}
	body, err := json.Marshal(items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fetchFailedMessage})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
