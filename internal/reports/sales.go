package reports

import (
	"context"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

type SalesSummary struct {
	TotalOrders       int     `json:"totalOrders"`
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalTax          float64 `json:"totalTax"`
	TotalShipping     float64 `json:"totalShipping"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	PaidOrders        int     `json:"paidOrders"`
	PaidRevenue       float64 `json:"paidRevenue"`
	UnpaidRevenue     float64 `json:"unpaidRevenue"`
	RevenueGrowth     float64 `json:"revenueGrowth"`
	OrderGrowth       float64 `json:"orderGrowth"`
}

type DailySales struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type PeriodSales struct {
	Period  string  `json:"period"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type SalesReport struct {
	Summary           SalesSummary   `json:"summary"`
	PaymentMethods    map[string]int `json:"paymentMethods"`
	DailySales        []DailySales   `json:"dailySales"`
	MonthlyComparison []PeriodSales  `json:"monthlyComparison"`
	DateRange         RangeEcho      `json:"dateRange"`
}

// Sales computes order counts, revenue splits, payment-method counts, the
// daily and monthly series, and growth against the preceding window.
func (e *Engine) Sales(ctx context.Context, r DateRange) (*SalesReport, error) {
	now := e.now()
	prevStart, prevEnd := r.PreviousWindow(now)
	unbounded := r.IsZero()

	var (
		orders         []Order
		previousOrders []Order
		monthlyOrders  []Order
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = e.store.OrdersInRange(gctx, r)
		return err
	})
	if prevEnd.After(prevStart) {
		// A degenerate range collapses the preceding window to nothing;
		// fetching the inclusive boundary instant would count orders placed
		// exactly at the range start against an empty current window.
		g.Go(func() error {
			var err error
			previousOrders, err = e.store.OrdersBetween(gctx, prevStart, prevEnd)
			return err
		})
	}
	if unbounded {
		// No explicit window: the monthly comparison covers the last 12
		// months instead of the (unbounded) filtered set.
		g.Go(func() error {
			var err error
			monthlyOrders, err = e.store.OrdersBetween(gctx, now.AddDate(0, -12, 0), now)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, failed(KindSales, err)
	}
	if !unbounded {
		monthlyOrders = orders
	}

	var totalRevenue, totalTax, totalShipping, paidRevenue float64
	paidOrders := 0
	paymentMethods := make(map[string]int)
	for _, order := range orders {
		totalRevenue += order.TotalPrice
		totalTax += order.TaxPrice
		totalShipping += order.ShippingPrice
		if order.IsPaid {
			paidOrders++
			paidRevenue += order.TotalPrice
		}
		method := order.PaymentMethod
		if method == "" {
			method = "Unknown"
		}
		paymentMethods[method]++
	}

	averageOrderValue := 0.0
	if len(orders) > 0 {
		averageOrderValue = totalRevenue / float64(len(orders))
	}

	var previousRevenue float64
	for _, order := range previousOrders {
		previousRevenue += order.TotalPrice
	}
	revenueGrowth := 0.0
	if previousRevenue > 0 {
		revenueGrowth = (totalRevenue - previousRevenue) / previousRevenue * 100
	}
	orderGrowth := 0.0
	if len(previousOrders) > 0 {
		orderGrowth = (float64(len(orders)) - float64(len(previousOrders))) / float64(len(previousOrders)) * 100
	}

	return &SalesReport{
		Summary: SalesSummary{
			TotalOrders:       len(orders),
			TotalRevenue:      round2(totalRevenue),
			TotalTax:          round2(totalTax),
			TotalShipping:     round2(totalShipping),
			AverageOrderValue: round2(averageOrderValue),
			PaidOrders:        paidOrders,
			PaidRevenue:       round2(paidRevenue),
			UnpaidRevenue:     round2(totalRevenue - paidRevenue),
			RevenueGrowth:     round2(revenueGrowth),
			OrderGrowth:       round2(orderGrowth),
		},
		PaymentMethods:    paymentMethods,
		DailySales:        buildDailySales(orders),
		MonthlyComparison: buildMonthlyComparison(monthlyOrders),
		DateRange:         r.Echo(),
	}, nil
}

func buildDailySales(orders []Order) []DailySales {
	type acc struct {
		revenue float64
		orders  int
	}
	byDay := make(map[string]acc)
	for _, order := range orders {
		key := order.CreatedAt.UTC().Format("2006-01-02")
		a := byDay[key]
		a.revenue += order.TotalPrice
		a.orders++
		byDay[key] = a
	}

	out := make([]DailySales, 0, len(byDay))
	for day, a := range byDay {
		out = append(out, DailySales{Date: day, Revenue: round2(a.revenue), Orders: a.orders})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func buildMonthlyComparison(orders []Order) []PeriodSales {
	type acc struct {
		at      time.Time
		revenue float64
		orders  int
	}
	byMonth := make(map[string]acc)
	for _, order := range orders {
		at := order.CreatedAt.UTC()
		key := at.Format("2006-01")
		a := byMonth[key]
		a.at = time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)
		a.revenue += order.TotalPrice
		a.orders++
		byMonth[key] = a
	}

	accs := make([]acc, 0, len(byMonth))
	for _, a := range byMonth {
		accs = append(accs, a)
	}
	sort.Slice(accs, func(i, j int) bool { return accs[i].at.Before(accs[j].at) })

	out := make([]PeriodSales, 0, len(accs))
	for _, a := range accs {
		out = append(out, PeriodSales{
			Period:  monthPeriod(a.at),
			Revenue: round2(a.revenue),
			Orders:  a.orders,
		})
	}
	return out
}

// monthPeriod renders "M/YYYY" without zero padding, matching the period
// labels the admin dashboard already consumes.
func monthPeriod(t time.Time) string {
	return strconv.Itoa(int(t.Month())) + "/" + strconv.Itoa(t.Year())
}
