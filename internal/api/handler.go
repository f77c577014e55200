// Package api implements the unifai REST API.
// It exposes the prediction modules, the stored prediction log, explanations, chat
// and analytics over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/unifai/unifai/internal/archive"
	"github.com/unifai/unifai/internal/gateway"
	"github.com/unifai/unifai/internal/metrics"
	"github.com/unifai/unifai/internal/service"
	"github.com/unifai/unifai/internal/store"
	"github.com/unifai/unifai/pkg/scoring"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

// Pinger reports whether a dependency is reachable. *sql.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler is the top-level API handler for the unifai service.
type Handler struct {
	svc     *service.Service
	metrics *metrics.Metrics
	limiter *RateLimiter
	db      Pinger
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithMetrics records request latency and serves /metrics.
func WithMetrics(m *metrics.Metrics) Option { return func(h *Handler) { h.metrics = m } }

// WithRateLimiter throttles the gateway-backed endpoints per client IP.
func WithRateLimiter(rl *RateLimiter) Option { return func(h *Handler) { h.limiter = rl } }

// WithHealthCheck makes /healthz ping the database.
func WithHealthCheck(db Pinger) Option { return func(h *Handler) { h.db = db } }

// WithLogger sets the logger used for server-side failures.
func WithLogger(l *slog.Logger) Option { return func(h *Handler) { h.logger = l } }

// WithClock overrides the clock used for analytics.
func WithClock(now func() time.Time) Option { return func(h *Handler) { h.now = now } }

// NewHandler creates a new API handler.
func NewHandler(svc *service.Service, opts ...Option) *Handler {
	h := &Handler{svc: svc, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	h.handle(mux, "GET /api/v1/modules", h.handleListModules)
	h.handle(mux, "POST /api/v1/predict/{module}", h.handlePredict)
	h.handle(mux, "GET /api/v1/predictions", h.handleListPredictions)
	h.handle(mux, "GET /api/v1/predictions/{id}", h.handleGetPrediction)
	h.handle(mux, "GET /api/v1/archive/{module}/{id}", h.handleGetArchived)
	h.handle(mux, "GET /api/v1/analytics", h.handleAnalytics)

	// Gateway-backed endpoints share the per-IP budget.
	h.handle(mux, "POST /api/v1/explain", h.throttle(h.handleExplain))
	h.handle(mux, "POST /api/v1/chat", h.throttle(h.handleChat))

	mux.HandleFunc("GET /healthz", h.handleHealth)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics.Handler())
	}
}

func (h *Handler) handle(mux *http.ServeMux, pattern string, fn http.HandlerFunc) {
	if h.metrics == nil {
		mux.HandleFunc(pattern, fn)
		return
	}
	mux.Handle(pattern, Instrument(h.metrics, pattern, fn))
}

func (h *Handler) throttle(fn http.HandlerFunc) http.HandlerFunc {
	if h.limiter == nil {
		return fn
	}
	return h.limiter.Middleware(fn).ServeHTTP
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Messages for gateway failures, as the web client shows them.
const (
	msgRateLimited       = "Rate limit exceeded. Please try again later."
	msgExplainNoCredits  = "AI credits exhausted. Please add credits to continue."
	msgChatNoCredits     = "AI credits exhausted. Please add credits."
	msgGatewayNotPresent = "AI gateway is not configured"
)

// writeServiceError maps service and domain errors to HTTP responses.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var (
		validation *scoring.ValidationError
		request    *gateway.RequestError
		upstream   *gateway.StatusError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": validation.Error(),
			"field": validation.Field,
		})
	case errors.As(err, &request):
		writeError(w, http.StatusBadRequest, request.Reason)
	case errors.Is(err, scoring.ErrUnknownModule):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "prediction not found")
	case errors.Is(err, archive.ErrNotFound):
		writeError(w, http.StatusNotFound, "archived prediction not found")
	case errors.Is(err, gateway.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, msgRateLimited)
	case errors.Is(err, gateway.ErrCreditsExhausted):
		writeError(w, http.StatusPaymentRequired, msgExplainNoCredits)
	case errors.Is(err, gateway.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, msgGatewayNotPresent)
	case errors.Is(err, service.ErrNoArchive):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &upstream):
		h.logger.Error("gateway error", "status", upstream.Code, "body", upstream.Body)
		writeError(w, http.StatusBadGateway, upstream.Error())
	default:
		h.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
