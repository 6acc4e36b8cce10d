package reports

import (
	"math"
	"time"
)

// Snapshot entities. The engine treats these as immutable for the duration
// of one report computation; they are owned and mutated elsewhere.

type OrderItem struct {
	ProductID int64
	Name      string
	Price     float64
	Qty       int32
	Image     string
}

type Order struct {
	ID            int64
	OrderNumber   string
	UserID        int64
	Items         []OrderItem
	PaymentMethod string
	ItemsPrice    float64
	TaxPrice      float64
	ShippingPrice float64
	TotalPrice    float64
	IsPaid        bool
	PaidAt        *time.Time
	IsDelivered   bool
	DeliveredAt   *time.Time
	CreatedAt     time.Time
}

type Product struct {
	ID           int64
	Name         string
	Category     string
	Brand        string
	Price        float64
	CountInStock int32
	Rating       float64
	NumReviews   int32
}

type User struct {
	ID        int64
	Name      string
	Email     string
	IsAdmin   bool
	CreatedAt time.Time
}

// ReportKind names one of the five analytics computations.
type ReportKind string

const (
	KindSales     ReportKind = "sales"
	KindProduct   ReportKind = "product"
	KindCustomer  ReportKind = "customer"
	KindOrder     ReportKind = "order"
	KindFinancial ReportKind = "financial"
)

// Title is the user-visible label used in error messages.
func (k ReportKind) Title() string {
	switch k {
	case KindSales:
		return "Sales analytics"
	case KindProduct:
		return "Product analytics"
	case KindCustomer:
		return "Customer analytics"
	case KindOrder:
		return "Order analytics"
	case KindFinancial:
		return "Financial summary"
	default:
		return "Report"
	}
}

// StockStatus is an inventory band derived from count in stock.
type StockStatus string

const (
	StockOut    StockStatus = "Out of Stock"
	StockLow    StockStatus = "Low Stock"
	StockMedium StockStatus = "Medium Stock"
	StockHigh   StockStatus = "High Stock"
)

// ClassifyStock is total over the non-negative integers: boundaries are
// closed at 0, 5 and 20, checked in that priority order.
func ClassifyStock(countInStock int32) StockStatus {
	switch {
	case countInStock == 0:
		return StockOut
	case countInStock <= 5:
		return StockLow
	case countInStock <= 20:
		return StockMedium
	default:
		return StockHigh
	}
}

// Segment is a customer classification bucket derived from total spend.
type Segment string

const (
	SegmentVIP     Segment = "VIP"
	SegmentPremium Segment = "Premium"
	SegmentRegular Segment = "Regular"
	SegmentBasic   Segment = "Basic"
)

// ClassifySpend checks the spend thresholds from highest to lowest.
func ClassifySpend(totalSpent float64) Segment {
	switch {
	case totalSpent >= 1000:
		return SegmentVIP
	case totalSpent >= 500:
		return SegmentPremium
	case totalSpent >= 200:
		return SegmentRegular
	default:
		return SegmentBasic
	}
}

// Order value buckets, checked low to high.
const (
	BucketUnder50  = "Under $50"
	Bucket50To100  = "$50 - $100"
	Bucket100To200 = "$100 - $200"
	Bucket200To500 = "$200 - $500"
	BucketOver500  = "Over $500"
)

func BucketOrderValue(totalPrice float64) string {
	switch {
	case totalPrice < 50:
		return BucketUnder50
	case totalPrice < 100:
		return Bucket50To100
	case totalPrice < 200:
		return Bucket100To200
	case totalPrice < 500:
		return Bucket200To500
	default:
		return BucketOver500
	}
}

// Weekday names keyed by time.Weekday, Sunday first.
var dayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// round2 rounds to currency precision. Monetary sums accumulate unrounded
// and pass through here only when a result struct is assembled.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ratio yields value/total scaled by 100, and 0 whenever the denominator is
// zero. Derived ratios are never an error and never NaN.
func ratio(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return value / total * 100
}
