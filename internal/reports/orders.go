package reports

import (
	"context"
	"sort"
	"time"
)

type StatusBreakdown struct {
	Total            int `json:"total"`
	Paid             int `json:"paid"`
	Unpaid           int `json:"unpaid"`
	Delivered        int `json:"delivered"`
	Undelivered      int `json:"undelivered"`
	PaidAndDelivered int `json:"paidAndDelivered"`
}

type PaymentMethodStat struct {
	Count      int     `json:"count"`
	TotalValue float64 `json:"totalValue"`
	AvgValue   float64 `json:"avgValue"`
}

type OrderPatterns struct {
	ByDay  map[string]int `json:"byDay"`
	ByHour map[int]int    `json:"byHour"`
}

type ShippingStats struct {
	TotalShippingCost  float64 `json:"totalShippingCost"`
	AvgShippingCost    float64 `json:"avgShippingCost"`
	FreeShippingOrders int     `json:"freeShippingOrders"`
}

type DeliveryMetrics struct {
	AvgDeliveryTime float64 `json:"avgDeliveryTime"`
	DeliveredOrders int     `json:"deliveredOrders"`
	DeliveryRate    float64 `json:"deliveryRate"`
}

type RecentOrder struct {
	OrderID       int64     `json:"orderId"`
	CreatedAt     time.Time `json:"createdAt"`
	TotalPrice    float64   `json:"totalPrice"`
	IsPaid        bool      `json:"isPaid"`
	IsDelivered   bool      `json:"isDelivered"`
	PaymentMethod string    `json:"paymentMethod"`
}

type OrderReport struct {
	StatusBreakdown    StatusBreakdown              `json:"statusBreakdown"`
	OrderValueRanges   map[string]int               `json:"orderValueRanges"`
	PaymentMethodStats map[string]PaymentMethodStat `json:"paymentMethodStats"`
	OrderPatterns      OrderPatterns                `json:"orderPatterns"`
	ShippingStats      ShippingStats                `json:"shippingStats"`
	DeliveryMetrics    DeliveryMetrics              `json:"deliveryMetrics"`
	RecentOrders       []RecentOrder                `json:"recentOrders"`
	DateRange          RangeEcho                    `json:"dateRange"`
}

// Orders computes boolean breakdowns, delivery timing, fixed value buckets,
// per-method stats, weekday/hour patterns and shipping cost totals over the
// in-range orders.
func (e *Engine) Orders(ctx context.Context, r DateRange) (*OrderReport, error) {
	orders, err := e.store.OrdersInRange(ctx, r)
	if err != nil {
		return nil, failed(KindOrder, err)
	}

	breakdown := StatusBreakdown{Total: len(orders)}
	valueRanges := map[string]int{
		BucketUnder50:  0,
		Bucket50To100:  0,
		Bucket100To200: 0,
		Bucket200To500: 0,
		BucketOver500:  0,
	}
	byDay := make(map[string]int)
	byHour := make(map[int]int)

	type methodAcc struct {
		count int
		total float64
	}
	byMethod := make(map[string]methodAcc)

	var shippingTotal float64
	freeShipping := 0

	var deliverySum float64
	deliveredWithTimes := 0

	for _, order := range orders {
		if order.IsPaid {
			breakdown.Paid++
		} else {
			breakdown.Unpaid++
		}
		if order.IsDelivered {
			breakdown.Delivered++
		} else {
			breakdown.Undelivered++
		}
		if order.IsPaid && order.IsDelivered {
			breakdown.PaidAndDelivered++
		}

		valueRanges[BucketOrderValue(order.TotalPrice)]++

		method := order.PaymentMethod
		if method == "" {
			method = "Unknown"
		}
		a := byMethod[method]
		a.count++
		a.total += order.TotalPrice
		byMethod[method] = a

		byDay[dayNames[order.CreatedAt.Weekday()]]++
		byHour[order.CreatedAt.Hour()]++

		shippingTotal += order.ShippingPrice
		if order.ShippingPrice == 0 {
			freeShipping++
		}

		// Delivery time is measured only when both timestamps exist.
		if order.IsDelivered && order.PaidAt != nil && order.DeliveredAt != nil {
			deliverySum += order.DeliveredAt.Sub(*order.PaidAt).Hours() / 24
			deliveredWithTimes++
		}
	}

	methodStats := make(map[string]PaymentMethodStat, len(byMethod))
	for method, a := range byMethod {
		methodStats[method] = PaymentMethodStat{
			Count:      a.count,
			TotalValue: round2(a.total),
			AvgValue:   round2(a.total / float64(a.count)),
		}
	}

	avgShipping := 0.0
	if len(orders) > 0 {
		avgShipping = shippingTotal / float64(len(orders))
	}
	avgDelivery := 0.0
	if deliveredWithTimes > 0 {
		avgDelivery = deliverySum / float64(deliveredWithTimes)
	}

	return &OrderReport{
		StatusBreakdown:    breakdown,
		OrderValueRanges:   valueRanges,
		PaymentMethodStats: methodStats,
		OrderPatterns:      OrderPatterns{ByDay: byDay, ByHour: byHour},
		ShippingStats: ShippingStats{
			TotalShippingCost:  round2(shippingTotal),
			AvgShippingCost:    round2(avgShipping),
			FreeShippingOrders: freeShipping,
		},
		DeliveryMetrics: DeliveryMetrics{
			AvgDeliveryTime: round1(avgDelivery),
			DeliveredOrders: deliveredWithTimes,
			DeliveryRate:    round2(ratio(float64(deliveredWithTimes), float64(len(orders)))),
		},
		RecentOrders: buildRecentOrders(orders, 10),
		DateRange:    r.Echo(),
	}, nil
}

func buildRecentOrders(orders []Order, n int) []RecentOrder {
	sorted := make([]Order, len(orders))
	copy(sorted, orders)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	out := make([]RecentOrder, 0, len(sorted))
	for _, order := range sorted {
		out = append(out, RecentOrder{
			OrderID:       order.ID,
			CreatedAt:     order.CreatedAt,
			TotalPrice:    round2(order.TotalPrice),
			IsPaid:        order.IsPaid,
			IsDelivered:   order.IsDelivered,
			PaymentMethod: order.PaymentMethod,
		})
	}
	return out
}
