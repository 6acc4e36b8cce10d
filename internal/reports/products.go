package reports

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

type ProductPerformance struct {
	ProductID    int64   `json:"productId"`
	Name         string  `json:"name"`
	TotalSold    int     `json:"totalSold"`
	TotalRevenue float64 `json:"totalRevenue"`
	AvgPrice     float64 `json:"avgPrice"`
	OrderCount   int     `json:"orderCount"`
	CurrentStock int32   `json:"currentStock"`
	Category     string  `json:"category"`
	Brand        string  `json:"brand"`
	Rating       float64 `json:"rating"`
	NumReviews   int32   `json:"numReviews"`
}

type CategoryAnalysis struct {
	Category       string  `json:"category"`
	TotalSold      int     `json:"totalSold"`
	TotalRevenue   float64 `json:"totalRevenue"`
	UniqueProducts int     `json:"uniqueProducts"`
}

type InventoryItem struct {
	ProductID      int64       `json:"productId"`
	Name           string      `json:"name"`
	Category       string      `json:"category"`
	Brand          string      `json:"brand"`
	CountInStock   int32       `json:"countInStock"`
	Price          float64     `json:"price"`
	InventoryValue float64     `json:"inventoryValue"`
	StockStatus    StockStatus `json:"stockStatus"`
}

type ProductMetrics struct {
	TotalProducts       int     `json:"totalProducts"`
	TotalInventoryValue float64 `json:"totalInventoryValue"`
	AvgProductRating    float64 `json:"avgProductRating"`
}

type ProductReport struct {
	ProductPerformance []ProductPerformance `json:"productPerformance"`
	CategoryAnalysis   []CategoryAnalysis   `json:"categoryAnalysis"`
	InventoryAnalysis  []InventoryItem      `json:"inventoryAnalysis"`
	StockSummary       map[StockStatus]int  `json:"stockSummary"`
	TopPerformers      []ProductPerformance `json:"topPerformers"`
	WorstPerformers    []ProductPerformance `json:"worstPerformers"`
	Metrics            ProductMetrics       `json:"metrics"`
	DateRange          RangeEcho            `json:"dateRange"`
}

// ProductReport joins order line items in range with the current catalog,
// and classifies the whole catalog into stock bands regardless of the date
// filter (inventory is a point-in-time view, not an order-scoped one).
func (e *Engine) ProductReport(ctx context.Context, r DateRange) (*ProductReport, error) {
	var (
		orders   []Order
		products []Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = e.store.OrdersInRange(gctx, r)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = e.store.Products(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, failed(KindProduct, err)
	}

	byID := make(map[int64]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	performance := buildProductPerformance(orders, byID)
	inventory, stockSummary, totalInventoryValue := buildInventoryAnalysis(products)

	var ratingSum float64
	for _, p := range performance {
		ratingSum += p.Rating
	}
	avgRating := 0.0
	if len(performance) > 0 {
		avgRating = ratingSum / float64(len(performance))
	}

	top := performance
	if len(top) > 10 {
		top = top[:10]
	}
	worst := worstPerformers(performance, 10)

	return &ProductReport{
		ProductPerformance: performance,
		CategoryAnalysis:   buildCategoryAnalysis(orders, byID),
		InventoryAnalysis:  inventory,
		StockSummary:       stockSummary,
		TopPerformers:      top,
		WorstPerformers:    worst,
		Metrics: ProductMetrics{
			TotalProducts:       len(products),
			TotalInventoryValue: round2(totalInventoryValue),
			AvgProductRating:    round2(avgRating),
		},
		DateRange: r.Echo(),
	}, nil
}

func buildProductPerformance(orders []Order, products map[int64]Product) []ProductPerformance {
	type acc struct {
		name      string
		totalSold int
		revenue   float64
		priceSum  float64
		lines     int
	}
	byProduct := make(map[int64]*acc)
	for _, order := range orders {
		for _, item := range order.Items {
			a := byProduct[item.ProductID]
			if a == nil {
				a = &acc{name: item.Name}
				byProduct[item.ProductID] = a
			}
			a.totalSold += int(item.Qty)
			a.revenue += float64(item.Qty) * item.Price
			a.priceSum += item.Price
			a.lines++
		}
	}

	out := make([]ProductPerformance, 0, len(byProduct))
	for productID, a := range byProduct {
		product, ok := products[productID]
		if !ok {
			// Line items whose product left the catalog are dropped, the
			// same way the dashboard's inner join behaves.
			continue
		}
		out = append(out, ProductPerformance{
			ProductID:    productID,
			Name:         a.name,
			TotalSold:    a.totalSold,
			TotalRevenue: round2(a.revenue),
			AvgPrice:     round2(a.priceSum / float64(a.lines)),
			OrderCount:   a.lines,
			CurrentStock: product.CountInStock,
			Category:     product.Category,
			Brand:        product.Brand,
			Rating:       product.Rating,
			NumReviews:   product.NumReviews,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalRevenue != out[j].TotalRevenue {
			return out[i].TotalRevenue > out[j].TotalRevenue
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}

func worstPerformers(performance []ProductPerformance, n int) []ProductPerformance {
	start := len(performance) - n
	if start < 0 {
		start = 0
	}
	tail := performance[start:]
	out := make([]ProductPerformance, 0, len(tail))
	for i := len(tail) - 1; i >= 0; i-- {
		out = append(out, tail[i])
	}
	return out
}

func buildCategoryAnalysis(orders []Order, products map[int64]Product) []CategoryAnalysis {
	type acc struct {
		totalSold int
		revenue   float64
		productID map[int64]struct{}
	}
	byCategory := make(map[string]*acc)
	for _, order := range orders {
		for _, item := range order.Items {
			product, ok := products[item.ProductID]
			if !ok {
				continue
			}
			a := byCategory[product.Category]
			if a == nil {
				a = &acc{productID: make(map[int64]struct{})}
				byCategory[product.Category] = a
			}
			a.totalSold += int(item.Qty)
			a.revenue += float64(item.Qty) * item.Price
			a.productID[item.ProductID] = struct{}{}
		}
	}

	out := make([]CategoryAnalysis, 0, len(byCategory))
	for category, a := range byCategory {
		out = append(out, CategoryAnalysis{
			Category:       category,
			TotalSold:      a.totalSold,
			TotalRevenue:   round2(a.revenue),
			UniqueProducts: len(a.productID),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalRevenue != out[j].TotalRevenue {
			return out[i].TotalRevenue > out[j].TotalRevenue
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func buildInventoryAnalysis(products []Product) ([]InventoryItem, map[StockStatus]int, float64) {
	items := make([]InventoryItem, 0, len(products))
	summary := make(map[StockStatus]int)
	var totalValue float64

	for _, p := range products {
		value := p.Price * float64(p.CountInStock)
		status := ClassifyStock(p.CountInStock)
		summary[status]++
		totalValue += value
		items = append(items, InventoryItem{
			ProductID:      p.ID,
			Name:           p.Name,
			Category:       p.Category,
			Brand:          p.Brand,
			CountInStock:   p.CountInStock,
			Price:          p.Price,
			InventoryValue: round2(value),
			StockStatus:    status,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].InventoryValue != items[j].InventoryValue {
			return items[i].InventoryValue > items[j].InventoryValue
		}
		return items[i].ProductID < items[j].ProductID
	})
	return items, summary, totalValue
}
