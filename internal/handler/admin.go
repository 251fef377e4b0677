package handler

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mailcast/mailcast/internal/handler/dto"
	"github.com/mailcast/mailcast/internal/logutil"
	"github.com/mailcast/mailcast/internal/model"
	"github.com/mailcast/mailcast/internal/service"
)

// Registrar issues a key for a new sender identity.
type Registrar interface {
	Register(ctx context.Context, senderEmail, senderCredential string) (model.APIKey, error)
}

// AdminHandler serves the key registration route.
type AdminHandler struct {
	svc    Registrar
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc Registrar, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, logger: logger}
}

// RegisterKey handles POST /api/admin/register_new_key.
// Browsers and htmx get an HTML fragment; everything else gets JSON.
func (h *AdminHandler) RegisterKey(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterKeyRequest
	err := formOrJSON(r, &req, map[string]*string{
		"sender_email":    &req.SenderEmail,
		"sender_password": &req.SenderPassword,
	})
	if err != nil {
		writeBodyError(w, err)
		return
	}

	key, err := h.svc.Register(r.Context(), req.SenderEmail, req.SenderPassword)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("api_key_registered",
		"tenant", logutil.RedactKey(key),
		"sender", logutil.RedactEmail(strings.TrimSpace(req.SenderEmail)),
	)

	if wantsHTML(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("<span>Your API KEY is: " + html.EscapeString(key.String()) + "</span>"))
		return
	}
	writeJSON(w, http.StatusCreated, dto.RegisterKeyResponse{APIKey: key.String()})
}

func (h *AdminHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSenderRequired):
		writeError(w, http.StatusBadRequest, "SENDER_REQUIRED", "sender_email and sender_password are required")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") != "" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
