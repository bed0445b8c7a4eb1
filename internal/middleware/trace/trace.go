package trace

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"punti/internal/log"
)

// ContextKey type for context keys
type ContextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey ContextKey = "request_id"

	// HeaderRequestID carries the request ID in both directions.
	HeaderRequestID = "X-Request-ID"
)

// ObserveFunc receives the outcome of every request, keyed by route pattern.
type ObserveFunc func(method, route string, status int, d time.Duration)

// Middleware handles request tracing and logging
type Middleware struct {
	extractIP func(*http.Request) string
	logger    *log.Logger
	observe   ObserveFunc
}

// NewMiddleware creates a new trace middleware. observe may be nil.
func NewMiddleware(logger *log.Logger, extractIP func(*http.Request) string, observe ObserveFunc) *Middleware {
	if logger == nil {
		logger = log.FromSlog(nil, log.ComponentTrace)
	}
	return &Middleware{
		extractIP: extractIP,
		logger:    logger,
		observe:   observe,
	}
}

// Middleware returns HTTP middleware for request tracing. The request logger
// is attached through log.Middleware and log.RequestIDMiddleware.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	traced := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		requestID := GetRequestID(ctx)

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		sl := log.NewStructuredLogger(m.logger)
		sl.LogHTTPStart(ctx, r, requestID, clientIP)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		sl.LogHTTPEnd(ctx, r, requestID, rw.statusCode, duration.Milliseconds(), clientIP)

		if m.observe != nil {
			m.observe(r.Method, routePattern(r), rw.statusCode, duration)
		}
	})

	withLogger := log.Middleware(m.logger)(
		log.RequestIDMiddleware(func(r *http.Request) string { return GetRequestID(r.Context()) })(traced))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := requestIDFrom(r)
		w.Header().Set(HeaderRequestID, requestID)
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		withLogger.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestIDFrom reuses a well-formed incoming ID and mints one otherwise.
func requestIDFrom(r *http.Request) string {
	if id := r.Header.Get(HeaderRequestID); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	return GenerateRequestID()
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	wrote      bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wrote {
		rw.statusCode = code
		rw.wrote = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wrote = true
	return rw.ResponseWriter.Write(b)
}

// GenerateRequestID creates a unique request ID for tracing
func GenerateRequestID() string {
	return uuid.NewString()
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
