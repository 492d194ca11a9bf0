package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/sinoai/medassist-bot/internal/telegram"
	"github.com/sinoai/medassist-bot/pkg/logger"
)

// UpdateHandler processes one inbound update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, upd telegram.Update)
}

// WebhookHandler receives Bot API webhook deliveries.
type WebhookHandler struct {
	router UpdateHandler
	logger *logger.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(router UpdateHandler, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{router: router, logger: log}
}

// Receive handles POST /telegram/webhook. The update is processed
// asynchronously; the Bot API only needs a prompt 200 to avoid
// redelivery.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var upd telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		h.logger.Warn("failed to decode webhook update", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid update payload")
		return
	}

	go h.router.HandleUpdate(context.WithoutCancel(r.Context()), upd)
	w.WriteHeader(http.StatusOK)
}
