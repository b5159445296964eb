package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"learnhub/internal/domain"
	"learnhub/internal/http/middleware"
	"learnhub/internal/service"
)

type checkoutRequest struct {
	CourseID     int64  `json:"course_id"`
	DiscountCode string `json:"discount_code"`
}

// NewCheckoutHandler returns POST /api/checkout handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing user identity")
			return
		}

		var req checkoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		tx, err := svc.CreateTransaction(r.Context(), service.CreateTransactionInput{
			UserID:       userID,
			CourseID:     req.CourseID,
			DiscountCode: req.DiscountCode,
		})
		if err != nil {
			if !errors.Is(err, domain.ErrValidation) && !errors.Is(err, domain.ErrNotFound) {
				logger.Error("checkout failed", zap.Int64("user_id", userID), zap.Error(err))
			}
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, tx)
	}
}
