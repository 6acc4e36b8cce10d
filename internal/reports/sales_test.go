package reports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSalesSummary(t *testing.T) {
	store := &fakeStore{
		orders: []Order{
			{ID: 1, UserID: 1, TotalPrice: 100, TaxPrice: 8, ShippingPrice: 5, IsPaid: true, PaymentMethod: "PayPal", CreatedAt: day(-1)},
			{ID: 2, UserID: 1, TotalPrice: 150, TaxPrice: 12, IsPaid: true, PaymentMethod: "Stripe", CreatedAt: day(-1)},
			{ID: 3, UserID: 2, TotalPrice: 250, TaxPrice: 20, ShippingPrice: 10, IsPaid: true, PaymentMethod: "PayPal", CreatedAt: day(-1)},
			{ID: 4, UserID: 2, TotalPrice: 50, TaxPrice: 4, IsPaid: false, CreatedAt: day(-1)},
		},
	}
	engine := testEngine(store)

	report, err := engine.Sales(context.Background(), DateRange{})
	require.NoError(t, err)

	require.Equal(t, 4, report.Summary.TotalOrders)
	require.Equal(t, 550.0, report.Summary.TotalRevenue)
	require.Equal(t, 44.0, report.Summary.TotalTax)
	require.Equal(t, 15.0, report.Summary.TotalShipping)
	require.Equal(t, 137.5, report.Summary.AverageOrderValue)
	require.Equal(t, 3, report.Summary.PaidOrders)
	require.Equal(t, 500.0, report.Summary.PaidRevenue)
	require.Equal(t, 50.0, report.Summary.UnpaidRevenue)

	require.Equal(t, map[string]int{"PayPal": 2, "Stripe": 1, "Unknown": 1}, report.PaymentMethods)

	require.Len(t, report.DailySales, 1)
	require.Equal(t, day(-1).Format("2006-01-02"), report.DailySales[0].Date)
	require.Equal(t, 550.0, report.DailySales[0].Revenue)
	require.Equal(t, 4, report.DailySales[0].Orders)

	require.Len(t, report.MonthlyComparison, 1)
	require.Equal(t, "6/2024", report.MonthlyComparison[0].Period)
	require.Equal(t, 4, report.MonthlyComparison[0].Orders)
}

func TestSalesGrowthZeroWhenNoPreviousOrders(t *testing.T) {
	store := &fakeStore{
		orders: []Order{
			{ID: 1, UserID: 1, TotalPrice: 300, IsPaid: true, CreatedAt: day(-2)},
		},
	}
	engine := testEngine(store)

	r := ParseRange("2024-06-10", "2024-06-14")
	report, err := engine.Sales(context.Background(), r)
	require.NoError(t, err)

	require.Equal(t, 1, report.Summary.TotalOrders)
	require.Equal(t, 0.0, report.Summary.RevenueGrowth)
	require.Equal(t, 0.0, report.Summary.OrderGrowth)
}

func TestSalesGrowthAgainstPrecedingWindow(t *testing.T) {
	store := &fakeStore{
		orders: []Order{
			// Preceding window: 2024-06-05 .. 2024-06-10.
			{ID: 1, UserID: 1, TotalPrice: 100, CreatedAt: day(-8)},
			// Current window: 2024-06-10 .. 2024-06-14.
			{ID: 2, UserID: 1, TotalPrice: 150, CreatedAt: day(-3)},
			{ID: 3, UserID: 1, TotalPrice: 150, CreatedAt: day(-2)},
		},
	}
	engine := testEngine(store)

	r := ParseRange("2024-06-10", "2024-06-14")
	report, err := engine.Sales(context.Background(), r)
	require.NoError(t, err)

	require.Equal(t, 2, report.Summary.TotalOrders)
	require.Equal(t, 200.0, report.Summary.RevenueGrowth)
	require.Equal(t, 100.0, report.Summary.OrderGrowth)
}

func TestSalesMonthlyComparisonSpansLastYearWhenUnfiltered(t *testing.T) {
	store := &fakeStore{
		orders: []Order{
			{ID: 1, UserID: 1, TotalPrice: 80, CreatedAt: testNow.AddDate(0, -2, 0)},
			{ID: 2, UserID: 1, TotalPrice: 120, CreatedAt: testNow.AddDate(0, -1, 0)},
			{ID: 3, UserID: 1, TotalPrice: 200, CreatedAt: day(-1)},
			// Older than a year: excluded from the unfiltered comparison.
			{ID: 4, UserID: 1, TotalPrice: 999, CreatedAt: testNow.AddDate(-2, 0, 0)},
		},
	}
	engine := testEngine(store)

	report, err := engine.Sales(context.Background(), DateRange{})
	require.NoError(t, err)

	require.Equal(t, 4, report.Summary.TotalOrders)
	require.Len(t, report.MonthlyComparison, 3)
	require.Equal(t, "4/2024", report.MonthlyComparison[0].Period)
	require.Equal(t, "5/2024", report.MonthlyComparison[1].Period)
	require.Equal(t, "6/2024", report.MonthlyComparison[2].Period)
}

// nilRowStore mimics a backend that returns a nil slice (rather than an
// empty one) when a between query matches no rows.
type nilRowStore struct {
	*fakeStore
}

func (s *nilRowStore) OrdersBetween(_ context.Context, _, _ time.Time) ([]Order, error) {
	return nil, nil
}

func TestSalesMonthlyComparisonStaysEmptyOnNilRows(t *testing.T) {
	store := &nilRowStore{fakeStore: &fakeStore{
		orders: []Order{
			{ID: 1, UserID: 1, TotalPrice: 100, CreatedAt: day(-1)},
			{ID: 2, UserID: 1, TotalPrice: 200, CreatedAt: day(-2)},
		},
	}}
	engine := testEngine(store)

	report, err := engine.Sales(context.Background(), DateRange{})
	require.NoError(t, err)

	require.Equal(t, 2, report.Summary.TotalOrders)
	// The unfiltered comparison is driven solely by the twelve-month query;
	// it must not fall back to the full order set when that query matches
	// nothing.
	require.Empty(t, report.MonthlyComparison)
	require.Equal(t, 0.0, report.Summary.RevenueGrowth)
	require.Equal(t, 0.0, report.Summary.OrderGrowth)
}

func TestSalesDegenerateRangeSkipsPrecedingWindow(t *testing.T) {
	store := &fakeStore{
		orders: []Order{
			// Exactly at midnight of the (inverted) range start: must not be
			// counted as preceding-window volume.
			{ID: 1, UserID: 1, TotalPrice: 100, CreatedAt: time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)},
		},
	}
	engine := testEngine(store)

	report, err := engine.Sales(context.Background(), ParseRange("2024-06-10", "2024-06-01"))
	require.NoError(t, err)

	require.Equal(t, 0, report.Summary.TotalOrders)
	require.Equal(t, 0.0, report.Summary.RevenueGrowth)
	require.Equal(t, 0.0, report.Summary.OrderGrowth)
}

func TestSalesReportIsDeterministic(t *testing.T) {
	store := &fakeStore{
		orders: []Order{
			{ID: 1, UserID: 1, TotalPrice: 99.99, IsPaid: true, PaymentMethod: "PayPal", CreatedAt: day(-5)},
			{ID: 2, UserID: 2, TotalPrice: 45.5, PaymentMethod: "Stripe", CreatedAt: day(-4)},
			{ID: 3, UserID: 1, TotalPrice: 310, IsPaid: true, PaymentMethod: "Cash On Delivery", CreatedAt: day(-3)},
			{ID: 4, UserID: 3, TotalPrice: 12, PaymentMethod: "PayPal", CreatedAt: day(-3)},
		},
	}
	engine := testEngine(store)
	r := ParseRange("2024-06-01", "2024-06-14")

	first, err := engine.Sales(context.Background(), r)
	require.NoError(t, err)
	second, err := engine.Sales(context.Background(), r)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	require.Equal(t, firstJSON, secondJSON)
}
