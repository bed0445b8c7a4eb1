package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"punti/internal/core"
	"punti/internal/view"
)

func decodeTriggers(t *testing.T, w *httptest.ResponseRecorder) map[string]map[string]any {
	t.Helper()
	raw := w.Header().Get("HX-Trigger")
	if raw == "" {
		t.Fatal("HX-Trigger header not set")
	}
	var out map[string]map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v (%s)", err, raw)
	}
	return out
}

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusOK).
		BodyHTML([]byte("<p>test</p>")).
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "<p>test</p>" {
		t.Errorf("Body = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Error("no triggers were added, header must be absent")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerPointsChanged(core.Child{ID: 42, Points: 7}).
		TriggerSuccessNotification("Saved").
		Write(w)

	triggers := decodeTriggers(t, w)
	pc, ok := triggers[EventPointsChanged]
	if !ok {
		t.Fatalf("missing %s: %v", EventPointsChanged, triggers)
	}
	if pc["id"] != float64(42) || pc["points"] != float64(7) {
		t.Errorf("points:changed payload = %v", pc)
	}
	n := triggers[EventNotification]
	if n["type"] != "success" || n["message"] != "Saved" || n["duration"] != float64(3000) {
		t.Errorf("notification payload = %v", n)
	}
}

func TestHTMXResponseBuilder_Notice(t *testing.T) {
	tests := []struct {
		level    view.Level
		wantType string
		duration float64
	}{
		{view.LevelWarning, "warning", 8000},
		{view.LevelError, "error", 5000},
		{view.LevelSuccess, "success", 3000},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		NewHTMXResponse().TriggerNotice(view.Notice{Level: tt.level, Message: "m"}).Write(w)
		n := decodeTriggers(t, w)[EventNotification]
		if n["type"] != tt.wantType || n["duration"] != tt.duration {
			t.Errorf("%s: payload = %v", tt.level, n)
		}
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *HTMXResponseBuilder
		code    int
	}{
		{"bad request", BadRequestError("bad <input>"), http.StatusBadRequest},
		{"not found", NotFoundError("missing"), http.StatusNotFound},
		{"internal", InternalServerError("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.code {
				t.Errorf("status = %d, want %d", w.Code, tt.code)
			}
			if !strings.HasPrefix(w.Body.String(), `<div class="error">`) {
				t.Errorf("body = %q", w.Body.String())
			}
			if strings.Contains(w.Body.String(), "<input>") {
				t.Error("message must be escaped")
			}
			if decodeTriggers(t, w)[EventNotification]["type"] != "error" {
				t.Error("error responses notify")
			}
		})
	}
}

func TestHeaderOverride(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().Header("Cache-Control", "no-store").Status(http.StatusNoContent).Write(w)
	if w.Code != http.StatusNoContent || w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("got %d %q", w.Code, w.Header().Get("Cache-Control"))
	}
}
