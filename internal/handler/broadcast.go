package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mailcast/mailcast/internal/auth"
	"github.com/mailcast/mailcast/internal/handler/dto"
	"github.com/mailcast/mailcast/internal/model"
	"github.com/mailcast/mailcast/internal/service"
)

// Broadcaster sends a broadcast on behalf of a tenant.
type Broadcaster interface {
	Send(ctx context.Context, key model.APIKey, b model.Broadcast) (*model.DispatchResult, error)
}

// BroadcastHandler handles broadcast sends.
type BroadcastHandler struct {
	svc    Broadcaster
	logger *slog.Logger
}

// NewBroadcastHandler creates a new BroadcastHandler.
func NewBroadcastHandler(svc Broadcaster, logger *slog.Logger) *BroadcastHandler {
	return &BroadcastHandler{svc: svc, logger: logger}
}

// Send handles POST /api/send_to_clients.
func (h *BroadcastHandler) Send(w http.ResponseWriter, r *http.Request) {
	key := auth.MustTenantKeyFromContext(r.Context())

	var req dto.BroadcastRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	res, err := h.svc.Send(r.Context(), key, req.ToModel())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBroadcastResponse(res))
}

func (h *BroadcastHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrTransport):
		writeError(w, http.StatusBadGateway, "TRANSPORT_FAILURE", "Mail transport rejected the message")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
