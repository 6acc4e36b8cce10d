package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storefront-api/internal/reports"

	"github.com/phpdave11/gofpdf"
)

// AdminFinancialExport renders the financial summary as a downloadable PDF
// for the same date range the JSON endpoint accepts.
func (h *Handler) AdminFinancialExport(w http.ResponseWriter, r *http.Request) {
	dateRange := reports.ParseRange(r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))

	report, err := h.Reports.Financial(r.Context(), dateRange)
	if err != nil {
		status := http.StatusInternalServerError
		var reportErr *reports.Error
		if errors.As(err, &reportErr) {
			status = reportErr.Status
		}
		h.Logger.Error("financial export failed", zapError(err))
		http.Error(w, err.Error(), status)
		return
	}

	data, err := renderFinancialPDF(report)
	if err != nil {
		h.Logger.Error("financial export render failed", zapError(err))
		http.Error(w, "failed to render pdf", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("financial-summary-%s.pdf", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func renderFinancialPDF(report *reports.FinancialReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, "Financial Summary", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	rangeLabel := "All time"
	if report.DateRange.StartDate != "" || report.DateRange.EndDate != "" {
		rangeLabel = fmt.Sprintf("%s to %s", orDash(report.DateRange.StartDate), orDash(report.DateRange.EndDate))
	}
	pdf.CellFormat(0, 5, rangeLabel, "", 1, "C", false, 0, "")
	pdf.Ln(3)

	section := func(title string) {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, title, "B", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
	}
	row := func(label string, value string) {
		pdf.CellFormat(60, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, value, "", 1, "R", false, 0, "")
	}
	money := func(v float64) string { return fmt.Sprintf("$%.2f", v) }

	section("Revenue")
	row("Gross revenue", money(report.Revenue.Gross))
	row("Net revenue", money(report.Revenue.Net))
	row("Tax collected", money(report.Revenue.Tax))
	row("Shipping revenue", money(report.Revenue.Shipping))
	row("Outstanding", money(report.Revenue.Outstanding))
	pdf.Ln(3)

	section("Profitability")
	row("Estimated COGS", money(report.Profitability.EstimatedCOGS))
	row("Gross profit", money(report.Profitability.GrossProfit))
	row("Gross profit margin", fmt.Sprintf("%.2f%%", report.Profitability.GrossProfitMargin))
	pdf.Ln(3)

	section("Orders")
	row("Total orders", fmt.Sprintf("%d", report.Metrics.TotalOrders))
	row("Paid orders", fmt.Sprintf("%d", report.Metrics.PaidOrders))
	row("Average order value", money(report.Metrics.AvgOrderValue))
	row("Conversion rate", fmt.Sprintf("%.2f%%", report.Metrics.ConversionRate))
	pdf.Ln(3)

	if len(report.PaymentMethodRevenue) > 0 {
		section("Revenue by payment method")
		for _, method := range report.PaymentMethodRevenue {
			row(method.Method, fmt.Sprintf("%s (%.2f%%)", money(method.Revenue), method.Percentage))
		}
		pdf.Ln(3)
	}

	if len(report.MonthlyFinancials) > 0 {
		section("Monthly breakdown")
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(25, 5, "Period", "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 5, "Revenue", "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 5, "Tax", "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 5, "Shipping", "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 5, "Net", "", 0, "R", false, 0, "")
		pdf.CellFormat(0, 5, "Orders", "", 1, "R", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, month := range report.MonthlyFinancials {
			pdf.CellFormat(25, 5, month.Period, "", 0, "L", false, 0, "")
			pdf.CellFormat(35, 5, money(month.Revenue), "", 0, "R", false, 0, "")
			pdf.CellFormat(30, 5, money(month.Tax), "", 0, "R", false, 0, "")
			pdf.CellFormat(30, 5, money(month.Shipping), "", 0, "R", false, 0, "")
			pdf.CellFormat(35, 5, money(month.NetRevenue), "", 0, "R", false, 0, "")
			pdf.CellFormat(0, 5, fmt.Sprintf("%d", month.Orders), "", 1, "R", false, 0, "")
		}
		pdf.Ln(3)
	}

	section("Cash flow")
	row("Inflow", money(report.CashFlow.Inflow))
	row("Outflow", money(report.CashFlow.Outflow))
	row("Net cash flow", money(report.CashFlow.NetCashFlow))

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
