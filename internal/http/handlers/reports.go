package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront-api/internal/reports"

	"go.uber.org/zap"
)

// Report payloads are returned bare rather than wrapped in the usual
// success envelope so the admin dashboard can bind charts directly to
// the response body. Errors carry a single message field.
func (h *Handler) runReport(w http.ResponseWriter, r *http.Request, kind reports.ReportKind) {
	dateRange := reports.ParseRange(r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))

	report, err := h.Reports.Run(r.Context(), kind, dateRange)
	if err != nil {
		status := http.StatusInternalServerError
		var reportErr *reports.Error
		if errors.As(err, &reportErr) {
			status = reportErr.Status
		}
		h.Logger.Error("report failed",
			zap.String("report", string(kind)),
			zap.String("startDate", dateRange.StartInput),
			zap.String("endDate", dateRange.EndInput),
			zapError(err),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(report)
}

func (h *Handler) AdminSalesReport(w http.ResponseWriter, r *http.Request) {
	h.runReport(w, r, reports.KindSales)
}

func (h *Handler) AdminProductReport(w http.ResponseWriter, r *http.Request) {
	h.runReport(w, r, reports.KindProduct)
}

func (h *Handler) AdminCustomerReport(w http.ResponseWriter, r *http.Request) {
	h.runReport(w, r, reports.KindCustomer)
}

func (h *Handler) AdminOrderReport(w http.ResponseWriter, r *http.Request) {
	h.runReport(w, r, reports.KindOrder)
}

func (h *Handler) AdminFinancialReport(w http.ResponseWriter, r *http.Request) {
	h.runReport(w, r, reports.KindFinancial)
}
