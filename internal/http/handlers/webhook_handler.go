package handlers

import (
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"

	"learnhub/internal/gateway"
	"learnhub/internal/service"
	"learnhub/internal/ws"
)

const maxWebhookBody = 1 << 20

// PurchaseDispatcher forwards the CoursePurchased event to the external
// notifier.
type PurchaseDispatcher interface {
	DispatchPurchase(ctx context.Context, event service.PurchaseEvent) error
}

// WebhookHandler receives one gateway's payment notifications, verifies
// them, confirms the transaction and dispatches the purchase event exactly
// once. Replayed deliveries are acknowledged with 200 so the gateway stops
// retrying.
type WebhookHandler struct {
	verifier  gateway.Verifier
	checkout  *service.CheckoutService
	dispatch  PurchaseDispatcher
	dashboard *ws.Hub
	logger    *zap.Logger
}

// NewWebhookHandler builds handler.
func NewWebhookHandler(verifier gateway.Verifier, checkout *service.CheckoutService, dispatch PurchaseDispatcher, dashboard *ws.Hub, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier:  verifier,
		checkout:  checkout,
		dispatch:  dispatch,
		dashboard: dashboard,
		logger:    logger,
	}
}

// ServeHTTP handles POST /webhooks/{gateway}.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	result, err := h.verifier.Verify(r.Context(), body, r.Header)
	if err != nil {
		h.logger.Warn("webhook verification failed",
			zap.String("gateway", h.verifier.Gateway()),
			zap.Error(err),
		)
		writeDomainError(w, err)
		return
	}

	if !result.Paid {
		// Pending/expired/failed statuses are acknowledged without a
		// state transition; the gateway keeps the transaction's fate.
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	tx, event, err := h.checkout.ConfirmPayment(r.Context(), *result)
	if err != nil {
		h.logger.Error("webhook confirmation failed",
			zap.String("gateway", h.verifier.Gateway()),
			zap.String("booking_trx_id", result.BookingTrxID),
			zap.Error(err),
		)
		writeDomainError(w, err)
		return
	}

	if event != nil {
		if err := h.dispatch.DispatchPurchase(r.Context(), *event); err != nil {
			h.logger.Warn("purchase event dispatch failed",
				zap.String("booking_trx_id", event.BookingTrxID),
				zap.Error(err),
			)
		}
		h.dashboard.Publish(event.UserID, ws.Event{
			Type:    ws.EventCoursePurchased,
			Payload: event,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"transaction": tx,
	})
}
