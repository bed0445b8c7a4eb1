// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating request data:
// route parameters, form values and input sanitization.

package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"punti/internal/core"
)

var errBadParam = errors.New("invalid route parameter")

// ParseChildID reads the {id} route parameter.
func ParseChildID(r *http.Request) (core.ChildID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadParam
	}
	return core.ChildID(id), nil
}

// ParseDigit reads the {d} route parameter as a single ASCII digit.
func ParseDigit(r *http.Request) (byte, error) {
	raw := chi.URLParam(r, "d")
	if len(raw) != 1 || raw[0] < '0' || raw[0] > '9' {
		return 0, errBadParam
	}
	return raw[0], nil
}

// ChildForm holds the fields of the add-child form.
type ChildForm struct {
	Name  string
	Color string
}

// ParseChildForm reads the add-child form. Blank names are left for the
// store to reject.
func ParseChildForm(r *http.Request) ChildForm {
	return ChildForm{
		Name:  sanitizeInput(r.Form.Get("name")),
		Color: sanitizeInput(r.Form.Get("color")),
	}
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
