package handlers

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"learnhub/internal/repository"
)

// ExportHandler streams paid transactions as CSV for administrative
// reporting, filtered by course, mentor and date range.
type ExportHandler struct {
	transactions *repository.TransactionRepository
	logger       *zap.Logger
}

// NewExportHandler builds handler.
func NewExportHandler(transactions *repository.TransactionRepository, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		transactions: transactions,
		logger:       logger,
	}
}

// ServeHTTP handles GET /api/admin/transactions/export.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	filter, err := parseExportFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := h.transactions.ListPaid(r.Context(), filter)
	if err != nil {
		h.logger.Error("transaction export failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="paid_transactions.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{
		"booking_trx_id", "user_id", "course_id", "payment_type",
		"grand_total_amount", "admin_fee_amount", "discount_amount",
		"net_revenue", "started_at",
	})
	for _, tx := range txs {
		startedAt := ""
		if tx.StartedAt != nil {
			startedAt = tx.StartedAt.UTC().Format(time.RFC3339)
		}
		_ = cw.Write([]string{
			tx.BookingTrxID,
			strconv.FormatInt(tx.UserID, 10),
			strconv.FormatInt(tx.CourseID, 10),
			tx.PaymentType,
			strconv.FormatInt(tx.GrandTotalAmount, 10),
			strconv.FormatInt(tx.AdminFeeAmount, 10),
			strconv.FormatInt(tx.DiscountAmount, 10),
			strconv.FormatInt(tx.NetRevenue(), 10),
			startedAt,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Warn("csv stream interrupted", zap.Error(err))
	}
}

func parseExportFilter(r *http.Request) (repository.PaidTransactionFilter, error) {
	var filter repository.PaidTransactionFilter
	query := r.URL.Query()

	if raw := query.Get("course_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, errInvalidFilter("course_id")
		}
		filter.CourseID = id
	}
	if raw := query.Get("mentor_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, errInvalidFilter("mentor_id")
		}
		filter.MentorID = id
	}
	if raw := query.Get("from"); raw != "" {
		ts, err := parseDate(raw)
		if err != nil {
			return filter, errInvalidFilter("from")
		}
		filter.From = ts
	}
	if raw := query.Get("to"); raw != "" {
		ts, err := parseDate(raw)
		if err != nil {
			return filter, errInvalidFilter("to")
		}
		filter.To = ts
	}
	return filter, nil
}

// parseDate accepts RFC3339 timestamps or plain dates.
func parseDate(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", raw)
}

type filterError string

func errInvalidFilter(field string) filterError {
	return filterError("invalid filter value: " + field)
}

func (e filterError) Error() string { return string(e) }
