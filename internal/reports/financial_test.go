package reports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFinancialRevenueSplit(t *testing.T) {
	store := &fakeStore{
		orders: []Order{
			{ID: 1, UserID: 1, TotalPrice: 110, TaxPrice: 10, ShippingPrice: 0, IsPaid: true, PaymentMethod: "PayPal", CreatedAt: day(-1), Items: []OrderItem{
				{ProductID: 1, Price: 100, Qty: 1},
			}},
			{ID: 2, UserID: 1, TotalPrice: 230, TaxPrice: 20, ShippingPrice: 10, IsPaid: true, PaymentMethod: "Stripe", CreatedAt: day(-2), Items: []OrderItem{
				{ProductID: 2, Price: 100, Qty: 2},
			}},
			{ID: 3, UserID: 2, TotalPrice: 60, TaxPrice: 5, CreatedAt: day(-3), Items: []OrderItem{
				{ProductID: 1, Price: 55, Qty: 1},
			}},
		},
	}
	engine := testEngine(store)

	report, err := engine.Financial(context.Background(), DateRange{})
	require.NoError(t, err)

	require.Equal(t, 340.0, report.Revenue.Gross)
	require.Equal(t, 30.0, report.Revenue.Tax)
	require.Equal(t, 10.0, report.Revenue.Shipping)
	// 340 - 30 - 10
	require.Equal(t, 300.0, report.Revenue.Net)
	// The unpaid order contributes only here.
	require.Equal(t, 60.0, report.Revenue.Outstanding)

	// Paid items only: (100 + 200) * 0.6.
	require.Equal(t, 180.0, report.Profitability.EstimatedCOGS)
	require.Equal(t, 120.0, report.Profitability.GrossProfit)
	require.Equal(t, 40.0, report.Profitability.GrossProfitMargin)

	require.Equal(t, 3, report.Metrics.TotalOrders)
	require.Equal(t, 2, report.Metrics.PaidOrders)
	require.Equal(t, 170.0, report.Metrics.AvgOrderValue)
	require.Equal(t, 66.67, report.Metrics.ConversionRate)

	require.Equal(t, 340.0, report.CashFlow.Inflow)
	require.Equal(t, 180.0, report.CashFlow.Outflow)
	require.Equal(t, 160.0, report.CashFlow.NetCashFlow)
}

func TestFinancialPaymentMethodRevenueSorted(t *testing.T) {
	store := &fakeStore{
		orders: []Order{
			{ID: 1, UserID: 1, TotalPrice: 100, IsPaid: true, PaymentMethod: "Stripe", CreatedAt: day(-1)},
			{ID: 2, UserID: 1, TotalPrice: 300, IsPaid: true, PaymentMethod: "PayPal", CreatedAt: day(-1)},
			{ID: 3, UserID: 1, TotalPrice: 100, IsPaid: true, CreatedAt: day(-1)},
		},
	}
	engine := testEngine(store)

	report, err := engine.Financial(context.Background(), DateRange{})
	require.NoError(t, err)

	require.Len(t, report.PaymentMethodRevenue, 3)
	require.Equal(t, "PayPal", report.PaymentMethodRevenue[0].Method)
	require.Equal(t, 60.0, report.PaymentMethodRevenue[0].Percentage)
	// Equal revenue ties break alphabetically.
	require.Equal(t, "Stripe", report.PaymentMethodRevenue[1].Method)
	require.Equal(t, "Unknown", report.PaymentMethodRevenue[2].Method)
}

func TestFinancialMonthlyBreakdownPaidOnly(t *testing.T) {
	store := &fakeStore{
		orders: []Order{
			{ID: 1, UserID: 1, TotalPrice: 110, TaxPrice: 10, IsPaid: true, CreatedAt: testNow.AddDate(0, -1, 0)},
			{ID: 2, UserID: 1, TotalPrice: 220, TaxPrice: 20, ShippingPrice: 10, IsPaid: true, CreatedAt: day(-1)},
			{ID: 3, UserID: 1, TotalPrice: 999, CreatedAt: day(-1)},
		},
	}
	engine := testEngine(store)

	report, err := engine.Financial(context.Background(), DateRange{})
	require.NoError(t, err)

	require.Equal(t, []MonthlyFinancial{
		{Period: "5/2024", Revenue: 110, Tax: 10, Shipping: 0, NetRevenue: 100, Orders: 1},
		{Period: "6/2024", Revenue: 220, Tax: 20, Shipping: 10, NetRevenue: 190, Orders: 1},
	}, report.MonthlyFinancials)
}

func TestFinancialZeroDenominators(t *testing.T) {
	engine := testEngine(&fakeStore{})

	report, err := engine.Financial(context.Background(), DateRange{})
	require.NoError(t, err)

	require.Equal(t, 0.0, report.Profitability.GrossProfitMargin)
	require.Equal(t, 0.0, report.Metrics.AvgOrderValue)
	require.Equal(t, 0.0, report.Metrics.ConversionRate)
	require.Empty(t, report.MonthlyFinancials)
	require.Empty(t, report.PaymentMethodRevenue)
}
