package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"punti/internal/core"
	"punti/internal/log"
	"punti/internal/metrics"
	"punti/internal/middleware/security"
	"punti/internal/middleware/trace"
	"punti/internal/view"
	appweb "punti/web"
)

// StateReader is what the server needs from the store beyond the view.
type StateReader interface {
	Document() core.Document
	Refresh(ctx context.Context)
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	templates *template.Template
	view      *view.Controller
	state     StateReader
	logger    *log.Logger
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	now       func() time.Time
	started   time.Time
}

type Option func(*Server)

func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentHTTP)
		}
	}
}

// WithMetrics records request metrics into m and serves g on /metrics.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, ctrl *view.Controller, st StateReader, opts ...Option) *Server {
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
		},
		view:    ctrl,
		state:   st,
		logger:  log.FromSlog(nil, log.ComponentHTTP),
		now:     time.Now,
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err)
	} else {
		s.templates = t
	}

	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	tracer := trace.NewMiddleware(s.logger.WithComponent(log.ComponentTrace), clientIP, s.metrics.ObserveHTTP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(tracer.Middleware)
	r.Use(headers.Middleware)

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	// App routes re-read the shared document first so CLI writes show up.
	r.Group(func(r chi.Router) {
		r.Use(s.refreshState)

		r.Get("/", s.handleIndex)
		r.Get("/app", s.handleApp)

		r.Post("/edit", s.handleToggleEdit)
		r.Post("/children", s.handleAddChild)
		r.Post("/children/{id}/move/{dir}", s.handleMoveChild)
		r.Post("/children/{id}/delete", s.handleRequestDelete)
		r.Post("/delete/confirm", s.handleConfirmDelete)
		r.Post("/delete/cancel", s.handleCancelDelete)
		r.Post("/children/{id}/open", s.handleOpenChild)
		r.Post("/close", s.handleCloseChild)

		r.Route("/pad", func(r chi.Router) {
			r.Post("/digit/{d}", s.handleDigit)
			r.Post("/backspace", s.handleBackspace)
			r.Post("/clear", s.handleClearEntry)
			r.Post("/stage/{kind}", s.handleStage)
			r.Post("/confirm", s.handleConfirmTransaction)
			r.Post("/cancel", s.handleCancelTransaction)
		})

		r.Get("/api/children", s.handleAPIChildren)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(s.gatherer))
	}

	return r
}
