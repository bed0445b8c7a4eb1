package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"punti/internal/core"
	"punti/internal/log"
	"punti/internal/view"
)

// refreshState picks up writes other front ends made to the shared store.
func (s *Server) refreshState(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.state.Refresh(r.Context())
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", s.view.Snapshot(s.now())); err != nil {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(),
			"Index template execution failed", err, log.OpRender, log.LogFields{"template": "index.html"})
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	NewHTMXResponse().BodyHTML(buf.Bytes()).Write(w)
}

func (s *Server) handleApp(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, nil, nil)
}

// respond re-renders the #app partial and attaches the notice for err.
// InputRejected maps to 422, a persistence warning still renders with 200.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, err error, decorate func(*HTMXResponseBuilder)) {
	ctx := r.Context()
	if s.templates == nil {
		InternalServerError("Templates not loaded").Write(w)
		return
	}

	var buf bytes.Buffer
	if rerr := s.templates.ExecuteTemplate(&buf, "app", s.view.Snapshot(s.now())); rerr != nil {
		log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx,
			"App template execution failed", rerr, log.OpRender, log.LogFields{"template": "app"})
		InternalServerError("Rendering failed").Write(w)
		return
	}

	resp := NewHTMXResponse().BodyHTML(buf.Bytes())
	switch {
	case err == nil, errors.Is(err, core.ErrNotFound):
	case errors.Is(err, core.ErrInputRejected):
		resp.Status(http.StatusUnprocessableEntity)
	case errors.Is(err, core.ErrPersistence):
		log.FromContext(ctx).WarnContext(ctx, "Change kept in memory only", log.FieldError, err)
	default:
		log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, "Action failed", err, r.URL.Path, nil)
		resp.Status(http.StatusInternalServerError)
	}
	if n, ok := view.NoticeFor(err); ok {
		resp.TriggerNotice(n)
	}
	if decorate != nil {
		decorate(resp)
	}
	resp.Write(w)
}

func (s *Server) handleToggleEdit(w http.ResponseWriter, r *http.Request) {
	s.view.ToggleEditMode()
	s.respond(w, r, nil, nil)
}

func (s *Server) handleAddChild(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	form := ParseChildForm(r)
	_, err := s.view.AddChild(r.Context(), form.Name, form.Color)
	s.respond(w, r, err, nil)
}

func (s *Server) handleMoveChild(w http.ResponseWriter, r *http.Request) {
	id, ok := s.childID(w, r)
	if !ok {
		return
	}
	dir, err := core.ParseDirection(chi.URLParam(r, "dir"))
	if err != nil {
		s.respond(w, r, err, nil)
		return
	}
	s.respond(w, r, s.view.MoveChild(r.Context(), id, dir), nil)
}

func (s *Server) handleRequestDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := s.childID(w, r)
	if !ok {
		return
	}
	s.view.RequestDelete(id)
	s.respond(w, r, nil, nil)
}

func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.view.ConfirmDelete(r.Context()), nil)
}

func (s *Server) handleCancelDelete(w http.ResponseWriter, r *http.Request) {
	s.view.CancelDelete()
	s.respond(w, r, nil, nil)
}

func (s *Server) handleOpenChild(w http.ResponseWriter, r *http.Request) {
	id, ok := s.childID(w, r)
	if !ok {
		return
	}
	s.view.OpenChild(id)
	s.respond(w, r, nil, nil)
}

func (s *Server) handleCloseChild(w http.ResponseWriter, r *http.Request) {
	s.view.CloseChild()
	s.respond(w, r, nil, nil)
}

func (s *Server) handleDigit(w http.ResponseWriter, r *http.Request) {
	d, err := ParseDigit(r)
	if err != nil {
		BadRequestError("Invalid digit").Write(w)
		return
	}
	s.view.Digit(d)
	s.respond(w, r, nil, nil)
}

func (s *Server) handleBackspace(w http.ResponseWriter, r *http.Request) {
	s.view.Backspace()
	s.respond(w, r, nil, nil)
}

func (s *Server) handleClearEntry(w http.ResponseWriter, r *http.Request) {
	s.view.ClearEntry()
	s.respond(w, r, nil, nil)
}

func (s *Server) handleStage(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.respond(w, r, err, nil)
		return
	}
	s.view.Stage(kind)
	s.respond(w, r, nil, nil)
}

func (s *Server) handleConfirmTransaction(w http.ResponseWriter, r *http.Request) {
	child, applied, err := s.view.ConfirmTransaction(r.Context())
	s.respond(w, r, err, func(b *HTMXResponseBuilder) {
		if applied && !errors.Is(err, core.ErrInputRejected) {
			b.TriggerPointsChanged(child)
		}
	})
}

func (s *Server) handleCancelTransaction(w http.ResponseWriter, r *http.Request) {
	s.view.CancelTransaction()
	s.respond(w, r, nil, nil)
}

// handleAPIChildren returns the document in its persisted layout.
func (s *Server) handleAPIChildren(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.state.Document()); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Encoding children failed", log.FieldError, err)
	}
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if err := s.state.Ping(ctx); err != nil {
		checks["storage"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// childID parses {id}, writing a 400 when it is malformed.
func (s *Server) childID(w http.ResponseWriter, r *http.Request) (core.ChildID, bool) {
	id, err := ParseChildID(r)
	if err != nil {
		BadRequestError("Invalid child id").Write(w)
		return 0, false
	}
	return id, true
}
