// Package api provides the HTTP server that exposes the pricing engine and
// catalog reads to the admin UI.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"decoration-cost/catalog"
	"decoration-cost/decision/pricing"
	apitypes "decoration-cost/pkg/api"
	domainerrors "decoration-cost/pkg/errors"
	"decoration-cost/pkg/platform"
)

// CatalogStore is the catalog surface the server needs: the engine's read
// interface plus product listing for the admin screens.
type CatalogStore interface {
	catalog.Reader
	ListProducts(ctx context.Context) ([]catalog.DecorationProduct, error)
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds server configuration.
type Config struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestSize int64
}

// DefaultConfig returns default server configuration. The port can be
// overridden through the PORT environment variable.
func DefaultConfig() *Config {
	return &Config{
		Port:           platform.GetEnvInt("PORT", 8080),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxRequestSize: 1 << 20,
	}
}

// Server is the HTTP API server.
type Server struct {
	httpServer *http.Server
	engine     *pricing.Engine
	store      CatalogStore
	recorder   pricing.QuoteRecorder
	logger     zerolog.Logger
	config     *Config
}

// NewServer creates an API server over the given catalog store.
func NewServer(store CatalogStore, config *Config, logger zerolog.Logger) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	return &Server{
		engine: pricing.NewEngine(store).WithLogger(logger),
		store:  store,
		logger: logger,
		config: config,
	}
}

// WithRecorder attaches a quote audit recorder. Recording is best-effort:
// a recorder failure is logged, never surfaced to the caller.
func (s *Server) WithRecorder(recorder pricing.QuoteRecorder) *Server {
	s.recorder = recorder
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Post("/api/v1/quote", s.handleQuote)
	r.Get("/api/v1/products", s.handleListProducts)
	r.Get("/api/v1/products/{id}", s.handleGetProduct)

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.routes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.logger.Info().Int("port", s.config.Port).Msg("decoration pricing API starting")
	return s.httpServer.ListenAndServe()
}

// StartWithGracefulShutdown starts the server and drains it on SIGINT/SIGTERM.
func (s *Server) StartWithGracefulShutdown() error {
	errChan := make(chan error, 1)
	go func() {
		if err := s.Start(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-quit:
		s.logger.Info().Msg("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "decoration-pricing",
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if pinger, ok := s.store.(Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := pinger.Ping(ctx); err != nil {
			s.jsonError(w, http.StatusServiceUnavailable, "catalog store not ready")
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)

	var req apitypes.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	domainReq, err := req.ToDomain()
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.engine.Calculate(r.Context(), domainReq)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if s.recorder != nil {
		rec := pricing.NewAuditRecord(domainReq, result, "api")
		if err := s.recorder.RecordQuote(r.Context(), rec); err != nil {
			s.logger.Warn().Err(err).Str("quote_id", rec.ID.String()).Msg("quote audit write failed")
		}
	}

	s.jsonResponse(w, http.StatusOK, apitypes.NewQuoteResponse(result))
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.ListProducts(r.Context())
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	if products == nil {
		products = []catalog.DecorationProduct{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"products": products})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	product, err := s.store.GetDecorationProduct(r.Context(), id)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	if product == nil {
		s.jsonError(w, http.StatusNotFound, "product not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, product)
}

// writeDomainError maps the engine's typed errors onto HTTP statuses so the
// admin UI can render the specific reason without a crash.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var domainErr *domainerrors.DomainError
	if !errors.As(err, &domainErr) {
		s.jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	status := http.StatusInternalServerError
	switch domainErr.Code {
	case domainerrors.ErrCodeProductNotFound:
		status = http.StatusNotFound
	case domainerrors.ErrCodeInvalidDimensions, domainerrors.ErrCodeInvalidRequest:
		status = http.StatusBadRequest
	case domainerrors.ErrCodeNoApplicablePricing:
		status = http.StatusUnprocessableEntity
	}

	s.jsonResponse(w, status, apitypes.ErrorResponse{
		Error:   domainErr.Code,
		Message: domainErr.Message,
	})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, apitypes.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
