package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOrderStatusBreakdownAndBuckets(t *testing.T) {
	store := &fakeStore{
		orders: []Order{
			{ID: 1, UserID: 1, TotalPrice: 25, IsPaid: true, IsDelivered: true, CreatedAt: day(-1)},
			{ID: 2, UserID: 1, TotalPrice: 75, IsPaid: true, CreatedAt: day(-2)},
			{ID: 3, UserID: 2, TotalPrice: 150, CreatedAt: day(-3)},
			{ID: 4, UserID: 2, TotalPrice: 350, IsPaid: true, CreatedAt: day(-4)},
			{ID: 5, UserID: 3, TotalPrice: 900, CreatedAt: day(-5)},
		},
	}
	engine := testEngine(store)

	report, err := engine.Orders(context.Background(), DateRange{})
	require.NoError(t, err)

	require.Equal(t, StatusBreakdown{
		Total:            5,
		Paid:             3,
		Unpaid:           2,
		Delivered:        1,
		Undelivered:      4,
		PaidAndDelivered: 1,
	}, report.StatusBreakdown)

	require.Equal(t, map[string]int{
		BucketUnder50:  1,
		Bucket50To100:  1,
		Bucket100To200: 1,
		Bucket200To500: 1,
		BucketOver500:  1,
	}, report.OrderValueRanges)

	// Every order lands in exactly one bucket.
	bucketSum := 0
	for _, count := range report.OrderValueRanges {
		bucketSum += count
	}
	require.Equal(t, report.StatusBreakdown.Total, bucketSum)
}

func TestOrderValueRangesAlwaysComplete(t *testing.T) {
	engine := testEngine(&fakeStore{})

	report, err := engine.Orders(context.Background(), DateRange{})
	require.NoError(t, err)

	// All five buckets are present even with no orders.
	require.Len(t, report.OrderValueRanges, 5)
	for bucket, count := range report.OrderValueRanges {
		require.Equal(t, 0, count, "bucket %s", bucket)
	}
}

func TestOrderPaymentMethodStats(t *testing.T) {
	store := &fakeStore{
		orders: []Order{
			{ID: 1, UserID: 1, TotalPrice: 100, PaymentMethod: "PayPal", CreatedAt: day(-1)},
			{ID: 2, UserID: 1, TotalPrice: 200, PaymentMethod: "PayPal", CreatedAt: day(-1)},
			{ID: 3, UserID: 2, TotalPrice: 40, CreatedAt: day(-1)},
		},
	}
	engine := testEngine(store)

	report, err := engine.Orders(context.Background(), DateRange{})
	require.NoError(t, err)

	require.Equal(t, PaymentMethodStat{Count: 2, TotalValue: 300, AvgValue: 150}, report.PaymentMethodStats["PayPal"])
	require.Equal(t, PaymentMethodStat{Count: 1, TotalValue: 40, AvgValue: 40}, report.PaymentMethodStats["Unknown"])
}

func TestOrderPatterns(t *testing.T) {
	// 2024-06-10 is a Monday.
	monday9 := time.Date(2024, time.June, 10, 9, 30, 0, 0, time.UTC)
	monday17 := time.Date(2024, time.June, 10, 17, 5, 0, 0, time.UTC)
	saturday9 := time.Date(2024, time.June, 8, 9, 0, 0, 0, time.UTC)

	store := &fakeStore{
		orders: []Order{
			{ID: 1, UserID: 1, TotalPrice: 10, CreatedAt: monday9},
			{ID: 2, UserID: 1, TotalPrice: 10, CreatedAt: monday17},
			{ID: 3, UserID: 1, TotalPrice: 10, CreatedAt: saturday9},
		},
	}
	engine := testEngine(store)

	report, err := engine.Orders(context.Background(), DateRange{})
	require.NoError(t, err)

	require.Equal(t, map[string]int{"Monday": 2, "Saturday": 1}, report.OrderPatterns.ByDay)
	require.Equal(t, map[int]int{9: 2, 17: 1}, report.OrderPatterns.ByHour)
}

func TestDeliveryMetricsRequireBothTimestamps(t *testing.T) {
	paidAt := day(-6)
	deliveredAt := day(-3)

	store := &fakeStore{
		orders: []Order{
			// Complete timestamps: 3 days paid-to-delivered.
			{ID: 1, UserID: 1, TotalPrice: 100, IsPaid: true, PaidAt: ptrTime(paidAt), IsDelivered: true, DeliveredAt: ptrTime(deliveredAt), CreatedAt: day(-7)},
			// Delivered flag without timestamps: excluded from timing.
			{ID: 2, UserID: 1, TotalPrice: 100, IsDelivered: true, CreatedAt: day(-7)},
			{ID: 3, UserID: 2, TotalPrice: 100, CreatedAt: day(-7)},
		},
	}
	engine := testEngine(store)

	report, err := engine.Orders(context.Background(), DateRange{})
	require.NoError(t, err)

	require.Equal(t, 1, report.DeliveryMetrics.DeliveredOrders)
	require.Equal(t, 3.0, report.DeliveryMetrics.AvgDeliveryTime)
	// 1 of 3 orders.
	require.Equal(t, 33.33, report.DeliveryMetrics.DeliveryRate)
}

func TestShippingStats(t *testing.T) {
	store := &fakeStore{
		orders: []Order{
			{ID: 1, UserID: 1, TotalPrice: 40, ShippingPrice: 10, CreatedAt: day(-1)},
			{ID: 2, UserID: 1, TotalPrice: 200, ShippingPrice: 0, CreatedAt: day(-1)},
			{ID: 3, UserID: 2, TotalPrice: 90, ShippingPrice: 5, CreatedAt: day(-1)},
		},
	}
	engine := testEngine(store)

	report, err := engine.Orders(context.Background(), DateRange{})
	require.NoError(t, err)

	require.Equal(t, 15.0, report.ShippingStats.TotalShippingCost)
	require.Equal(t, 5.0, report.ShippingStats.AvgShippingCost)
	require.Equal(t, 1, report.ShippingStats.FreeShippingOrders)
}

func TestRecentOrdersNewestFirstCapTen(t *testing.T) {
	orders := make([]Order, 0, 12)
	for i := int64(1); i <= 12; i++ {
		orders = append(orders, Order{
			ID: i, UserID: 1, TotalPrice: float64(i), CreatedAt: testNow.Add(-time.Duration(i) * time.Hour),
		})
	}
	engine := testEngine(&fakeStore{orders: orders})

	report, err := engine.Orders(context.Background(), DateRange{})
	require.NoError(t, err)

	require.Len(t, report.RecentOrders, 10)
	require.Equal(t, int64(1), report.RecentOrders[0].OrderID)
	require.Equal(t, int64(10), report.RecentOrders[9].OrderID)
}
