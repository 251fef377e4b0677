package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mailcast/mailcast/internal/auth"
	"github.com/mailcast/mailcast/internal/directory"
	"github.com/mailcast/mailcast/internal/handler/dto"
	"github.com/mailcast/mailcast/internal/logutil"
	"github.com/mailcast/mailcast/internal/model"
	"github.com/mailcast/mailcast/internal/service"
)

// SubscriptionManager is the subscriber-list surface the handler needs.
type SubscriptionManager interface {
	Subscribe(ctx context.Context, key model.APIKey, rawEmail string) (string, error)
	Unsubscribe(ctx context.Context, key model.APIKey, rawEmail string) (string, error)
	List(ctx context.Context, key model.APIKey) ([]string, error)
}

// SubscriberHandler handles a tenant's subscriber list.
type SubscriberHandler struct {
	svc    SubscriptionManager
	logger *slog.Logger
}

// NewSubscriberHandler creates a new SubscriberHandler.
func NewSubscriberHandler(svc SubscriptionManager, logger *slog.Logger) *SubscriberHandler {
	return &SubscriberHandler{svc: svc, logger: logger}
}

// List handles GET /api/get_clients.
func (h *SubscriberHandler) List(w http.ResponseWriter, r *http.Request) {
	key := auth.MustTenantKeyFromContext(r.Context())

	clients, err := h.svc.List(r.Context(), key)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ClientsResponse{Data: dto.ClientsData{Clients: clients}})
}

// Add handles POST /api/add_client.
func (h *SubscriberHandler) Add(w http.ResponseWriter, r *http.Request) {
	key := auth.MustTenantKeyFromContext(r.Context())

	var req dto.ClientRequest
	if err := formOrJSON(r, &req, map[string]*string{"email": &req.Email}); err != nil {
		writeBodyError(w, err)
		return
	}

	email, err := h.svc.Subscribe(r.Context(), key, req.Email)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("client_added",
		"tenant", logutil.RedactKey(key),
		"email", logutil.RedactEmail(email),
	)

	writeJSON(w, http.StatusCreated, dto.NewClientResponse(service.MessageClientCreated, email))
}

// Unsubscribe handles POST /api/unsubscribe_client.
func (h *SubscriberHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	key := auth.MustTenantKeyFromContext(r.Context())

	var req dto.ClientRequest
	if err := formOrJSON(r, &req, map[string]*string{"email": &req.Email}); err != nil {
		writeBodyError(w, err)
		return
	}

	email, err := h.svc.Unsubscribe(r.Context(), key, req.Email)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("client_unsubscribed",
		"tenant", logutil.RedactKey(key),
		"email", logutil.RedactEmail(email),
	)

	writeJSON(w, http.StatusOK, dto.NewClientResponse(service.MessageClientUnsubscribe, email))
}

// handleServiceError maps service errors to HTTP responses.
func (h *SubscriberHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrEmailRequired):
		writeError(w, http.StatusBadRequest, "EMAIL_REQUIRED", "No email provided for client")
	case errors.Is(err, service.ErrAlreadySubscribed):
		writeError(w, http.StatusConflict, "ALREADY_SUBSCRIBED", "Email is already registered to this api-key")
	case errors.Is(err, service.ErrNotSubscribed):
		writeError(w, http.StatusConflict, "NOT_SUBSCRIBED", "Email is not registered to this api-key")
	case errors.Is(err, directory.ErrTenantNotFound):
		h.logger.Error("tenant_missing_for_valid_key",
			"tenant", logutil.RedactKey(auth.MustTenantKeyFromContext(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
