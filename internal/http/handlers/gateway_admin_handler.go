package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"learnhub/internal/repository"
)

// NewActivateGatewayHandler returns PUT /api/admin/gateways/{id}/activate.
// Activation deactivates every other gateway setting in the same database
// transaction, so there is never more than one active gateway.
func NewActivateGatewayHandler(gateways *repository.GatewayRepository, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid gateway id")
			return
		}

		if err := gateways.Activate(r.Context(), id); err != nil {
			if errors.Is(err, repository.ErrGatewayNotFound) {
				writeError(w, http.StatusNotFound, "gateway setting not found")
				return
			}
			logger.Error("gateway activation failed", zap.Int64("id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "activation failed")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "activated"})
	}
}
