package reports

import (
	"context"
	"sort"
	"time"
)

// COGS is approximated as a fixed fraction of item revenue. This is a
// simplifying heuristic carried over from the dashboard being replaced,
// not a costing model; it intentionally has no configuration knob.
const cogsRate = 0.6

type RevenueBreakdown struct {
	Gross       float64 `json:"gross"`
	Net         float64 `json:"net"`
	Tax         float64 `json:"tax"`
	Shipping    float64 `json:"shipping"`
	Outstanding float64 `json:"outstanding"`
}

type Profitability struct {
	EstimatedCOGS     float64 `json:"estimatedCOGS"`
	GrossProfit       float64 `json:"grossProfit"`
	GrossProfitMargin float64 `json:"grossProfitMargin"`
}

type FinancialMetrics struct {
	TotalOrders    int     `json:"totalOrders"`
	PaidOrders     int     `json:"paidOrders"`
	AvgOrderValue  float64 `json:"avgOrderValue"`
	ConversionRate float64 `json:"conversionRate"`
}

type MonthlyFinancial struct {
	Period     string  `json:"period"`
	Revenue    float64 `json:"revenue"`
	Tax        float64 `json:"tax"`
	Shipping   float64 `json:"shipping"`
	NetRevenue float64 `json:"netRevenue"`
	Orders     int     `json:"orders"`
}

type PaymentMethodRevenue struct {
	Method     string  `json:"method"`
	Revenue    float64 `json:"revenue"`
	Percentage float64 `json:"percentage"`
}

type CashFlow struct {
	Inflow      float64 `json:"inflow"`
	Outflow     float64 `json:"outflow"`
	NetCashFlow float64 `json:"netCashFlow"`
}

type FinancialReport struct {
	Revenue              RevenueBreakdown       `json:"revenue"`
	Profitability        Profitability          `json:"profitability"`
	Metrics              FinancialMetrics       `json:"metrics"`
	MonthlyFinancials    []MonthlyFinancial     `json:"monthlyFinancials"`
	PaymentMethodRevenue []PaymentMethodRevenue `json:"paymentMethodRevenue"`
	CashFlow             CashFlow               `json:"cashFlow"`
	DateRange            RangeEcho              `json:"dateRange"`
}

// Financial restricts revenue figures to paid orders; unpaid orders only
// contribute to the outstanding amount and the conversion denominator.
func (e *Engine) Financial(ctx context.Context, r DateRange) (*FinancialReport, error) {
	orders, err := e.store.OrdersInRange(ctx, r)
	if err != nil {
		return nil, failed(KindFinancial, err)
	}

	var grossRevenue, taxCollected, shippingRevenue, outstanding, cogs float64
	paidOrders := 0
	methodRevenue := make(map[string]float64)

	for _, order := range orders {
		if !order.IsPaid {
			outstanding += order.TotalPrice
			continue
		}
		paidOrders++
		grossRevenue += order.TotalPrice
		taxCollected += order.TaxPrice
		shippingRevenue += order.ShippingPrice
		for _, item := range order.Items {
			cogs += float64(item.Qty) * item.Price * cogsRate
		}
		method := order.PaymentMethod
		if method == "" {
			method = "Unknown"
		}
		methodRevenue[method] += order.TotalPrice
	}

	netRevenue := grossRevenue - taxCollected - shippingRevenue
	grossProfit := netRevenue - cogs
	margin := ratio(grossProfit, netRevenue)

	avgOrderValue := 0.0
	if paidOrders > 0 {
		avgOrderValue = grossRevenue / float64(paidOrders)
	}

	methods := make([]PaymentMethodRevenue, 0, len(methodRevenue))
	for method, revenue := range methodRevenue {
		methods = append(methods, PaymentMethodRevenue{
			Method:     method,
			Revenue:    round2(revenue),
			Percentage: round2(ratio(revenue, grossRevenue)),
		})
	}
	sort.Slice(methods, func(i, j int) bool {
		if methods[i].Revenue != methods[j].Revenue {
			return methods[i].Revenue > methods[j].Revenue
		}
		return methods[i].Method < methods[j].Method
	})

	return &FinancialReport{
		Revenue: RevenueBreakdown{
			Gross:       round2(grossRevenue),
			Net:         round2(netRevenue),
			Tax:         round2(taxCollected),
			Shipping:    round2(shippingRevenue),
			Outstanding: round2(outstanding),
		},
		Profitability: Profitability{
			EstimatedCOGS:     round2(cogs),
			GrossProfit:       round2(grossProfit),
			GrossProfitMargin: round2(margin),
		},
		Metrics: FinancialMetrics{
			TotalOrders:    len(orders),
			PaidOrders:     paidOrders,
			AvgOrderValue:  round2(avgOrderValue),
			ConversionRate: round2(ratio(float64(paidOrders), float64(len(orders)))),
		},
		MonthlyFinancials:    buildMonthlyFinancials(orders),
		PaymentMethodRevenue: methods,
		CashFlow: CashFlow{
			Inflow:      round2(grossRevenue),
			Outflow:     round2(cogs),
			NetCashFlow: round2(grossRevenue - cogs),
		},
		DateRange: r.Echo(),
	}, nil
}

func buildMonthlyFinancials(orders []Order) []MonthlyFinancial {
	type acc struct {
		at       time.Time
		revenue  float64
		tax      float64
		shipping float64
		orders   int
	}
	byMonth := make(map[string]*acc)
	for _, order := range orders {
		if !order.IsPaid {
			continue
		}
		at := order.CreatedAt.UTC()
		key := at.Format("2006-01")
		a := byMonth[key]
		if a == nil {
			a = &acc{at: time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)}
			byMonth[key] = a
		}
		a.revenue += order.TotalPrice
		a.tax += order.TaxPrice
		a.shipping += order.ShippingPrice
		a.orders++
	}

	accs := make([]*acc, 0, len(byMonth))
	for _, a := range byMonth {
		accs = append(accs, a)
	}
	sort.Slice(accs, func(i, j int) bool { return accs[i].at.Before(accs[j].at) })

	out := make([]MonthlyFinancial, 0, len(accs))
	for _, a := range accs {
		out = append(out, MonthlyFinancial{
			Period:     monthPeriod(a.at),
			Revenue:    round2(a.revenue),
			Tax:        round2(a.tax),
			Shipping:   round2(a.shipping),
			NetRevenue: round2(a.revenue - a.tax - a.shipping),
			Orders:     a.orders,
		})
	}
	return out
}
