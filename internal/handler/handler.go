// Package handler provides HTTP request handlers.
package handler

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/mailcast/mailcast/internal/handler/dto"
)

//go:embed static/index.html
var indexHTML []byte

// errBadBody marks a request body that could not be decoded.
var errBadBody = errors.New("malformed request body")

// Handler serves the routes that need no dependencies.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Index serves the key registration page.
// GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// The page loads htmx from a CDN and posts a form.
	w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src https://unpkg.com; style-src 'unsafe-inline'")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexHTML)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes the standard error envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: dto.ErrorBody{Code: code, Message: message}})
}

// isJSON reports whether the request declares a JSON body.
func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// decodeJSON decodes a JSON body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

// formOrJSON reads named fields from a JSON body or, failing that, from
// form values (body or query string).
func formOrJSON(r *http.Request, dst any, fields map[string]*string) error {
	if isJSON(r) {
		return decodeJSON(r, dst)
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	for name, target := range fields {
		*target = r.Form.Get(name)
	}
	return nil
}

// writeBodyError maps decode failures, including an oversized body, to a
// response.
func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
}
