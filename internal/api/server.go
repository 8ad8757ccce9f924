// Package api exposes the parsing engine over HTTP: a parse endpoint
// mirroring the request shapes operators already use, a health check, and
// Prometheus metrics.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"estateparser/internal/config"
	"estateparser/internal/domain"
	"estateparser/internal/monitoring"
	"estateparser/internal/parser"
)

const (
	readTimeout = 10 * time.Second
	// Parsing is synchronous and multi-site requests fetch pages one by one,
	// so requests are allowed to run far longer than a typical API call.
	requestTimeout = 5 * time.Minute
	writeTimeout   = requestTimeout + 30*time.Second
)

// ListingStore persists extracted listings. Optional.
type ListingStore interface {
	SaveListings(ctx context.Context, listings []domain.Listing) error
	Ping(ctx context.Context) error
}

// ResultCache caches serialized parse responses. Optional.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte) error
	Ping(ctx context.Context) error
}

// Server holds the dependencies for the HTTP server. store and cache may be
// nil when the corresponding backend is not configured.
type Server struct {
	config     *config.Config
	router     http.Handler
	httpServer *http.Server
	parser     *parser.Parser
	store      ListingStore
	cache      ResultCache
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

func NewServer(cfg *config.Config, p *parser.Parser, store ListingStore, cache ResultCache, m *monitoring.Metrics, l *zap.Logger) *Server {
	s := &Server{
		config:  cfg,
		parser:  p,
		store:   store,
		cache:   cache,
		metrics: m,
		logger:  l,
	}
	s.router = s.setupRouter()
	return s
}

// Handler returns the configured router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.ServerPort),
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
