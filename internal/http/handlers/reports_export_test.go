package handlers

import (
	"bytes"
	"strings"
	"testing"

	"storefront-api/internal/reports"
)

func TestRenderFinancialPDF(t *testing.T) {
	report := &reports.FinancialReport{
		Revenue: reports.RevenueBreakdown{Gross: 340, Net: 300, Tax: 30, Shipping: 10, Outstanding: 60},
		Profitability: reports.Profitability{
			EstimatedCOGS: 180, GrossProfit: 120, GrossProfitMargin: 40,
		},
		Metrics: reports.FinancialMetrics{TotalOrders: 3, PaidOrders: 2, AvgOrderValue: 170, ConversionRate: 66.67},
		MonthlyFinancials: []reports.MonthlyFinancial{
			{Period: "5/2024", Revenue: 110, Tax: 10, NetRevenue: 100, Orders: 1},
		},
		PaymentMethodRevenue: []reports.PaymentMethodRevenue{
			{Method: "PayPal", Revenue: 300, Percentage: 88.24},
		},
		CashFlow:  reports.CashFlow{Inflow: 340, Outflow: 180, NetCashFlow: 160},
		DateRange: reports.RangeEcho{StartDate: "2024-05-01", EndDate: "2024-06-15"},
	}

	data, err := renderFinancialPDF(report)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF, starts with %q", data[:8])
	}
	if len(data) < 500 {
		t.Fatalf("suspiciously small PDF: %d bytes", len(data))
	}
}

func TestNewOrderNumberShape(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		n := newOrderNumber()
		if !strings.HasPrefix(n, "ORD-") || len(n) != 12 {
			t.Fatalf("unexpected order number %q", n)
		}
		if _, dup := seen[n]; dup {
			t.Fatalf("duplicate order number %q", n)
		}
		seen[n] = struct{}{}
	}
}
