package reports

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

type CustomerSegmentRow struct {
	CustomerID          int64     `json:"customerId"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	TotalSpent          float64   `json:"totalSpent"`
	OrderCount          int       `json:"orderCount"`
	AvgOrderValue       float64   `json:"avgOrderValue"`
	FirstOrder          time.Time `json:"firstOrder"`
	LastOrder           time.Time `json:"lastOrder"`
	DaysSinceFirstOrder float64   `json:"daysSinceFirstOrder"`
	Segment             Segment   `json:"segment"`
}

type AcquisitionPoint struct {
	Period       string `json:"period"`
	NewCustomers int    `json:"newCustomers"`
}

type CustomerMetrics struct {
	TotalCustomers        int     `json:"totalCustomers"`
	RepeatCustomers       int     `json:"repeatCustomers"`
	OneTimeCustomers      int     `json:"oneTimeCustomers"`
	RetentionRate         float64 `json:"retentionRate"`
	AvgCustomerLifetime   float64 `json:"avgCustomerLifetime"`
	AvgCustomerValue      float64 `json:"avgCustomerValue"`
	CustomerLifetimeValue float64 `json:"customerLifetimeValue"`
}

type CustomerReport struct {
	CustomerSegments    []CustomerSegmentRow `json:"customerSegments"`
	CustomerAcquisition []AcquisitionPoint   `json:"customerAcquisition"`
	SegmentSummary      map[Segment]int      `json:"segmentSummary"`
	Metrics             CustomerMetrics      `json:"metrics"`
	TopCustomers        []CustomerSegmentRow `json:"topCustomers"`
	DateRange           RangeEcho            `json:"dateRange"`
}

// Customers groups in-range orders by owning user and derives spend
// segments, retention and lifetime-value metrics. Acquisition is grouped
// over the User collection's signup timestamps, filtered by the same range.
func (e *Engine) Customers(ctx context.Context, r DateRange) (*CustomerReport, error) {
	var (
		orders      []Order
		signupUsers []User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = e.store.OrdersInRange(gctx, r)
		return err
	})
	g.Go(func() error {
		var err error
		signupUsers, err = e.store.UsersInRange(gctx, r)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, failed(KindCustomer, err)
	}

	type acc struct {
		totalSpent float64
		orderCount int
		firstOrder time.Time
		lastOrder  time.Time
	}
	byUser := make(map[int64]*acc)
	for _, order := range orders {
		a := byUser[order.UserID]
		if a == nil {
			a = &acc{firstOrder: order.CreatedAt, lastOrder: order.CreatedAt}
			byUser[order.UserID] = a
		}
		a.totalSpent += order.TotalPrice
		a.orderCount++
		if order.CreatedAt.Before(a.firstOrder) {
			a.firstOrder = order.CreatedAt
		}
		if order.CreatedAt.After(a.lastOrder) {
			a.lastOrder = order.CreatedAt
		}
	}

	ids := make([]int64, 0, len(byUser))
	for id := range byUser {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	users, err := e.store.UsersByID(ctx, ids)
	if err != nil {
		return nil, failed(KindCustomer, err)
	}
	userByID := make(map[int64]User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	now := e.now()
	segments := make([]CustomerSegmentRow, 0, len(byUser))
	for id, a := range byUser {
		user, ok := userByID[id]
		if !ok {
			// Orders whose owner record is gone are dropped from the
			// customer view, matching the dashboard's inner join.
			continue
		}
		segments = append(segments, CustomerSegmentRow{
			CustomerID:          id,
			Name:                user.Name,
			Email:               user.Email,
			TotalSpent:          round2(a.totalSpent),
			OrderCount:          a.orderCount,
			AvgOrderValue:       round2(a.totalSpent / float64(a.orderCount)),
			FirstOrder:          a.firstOrder,
			LastOrder:           a.lastOrder,
			DaysSinceFirstOrder: now.Sub(a.firstOrder).Hours() / 24,
			Segment:             ClassifySpend(a.totalSpent),
		})
	}
	sort.Slice(segments, func(i, j int) bool {
		if segments[i].TotalSpent != segments[j].TotalSpent {
			return segments[i].TotalSpent > segments[j].TotalSpent
		}
		return segments[i].CustomerID < segments[j].CustomerID
	})

	repeat := 0
	segmentSummary := make(map[Segment]int)
	var lifetimeSum, valueSum float64
	for _, c := range segments {
		if c.OrderCount > 1 {
			repeat++
		}
		segmentSummary[c.Segment]++
		lifetimeSum += c.DaysSinceFirstOrder
		valueSum += c.TotalSpent
	}

	total := len(segments)
	avgLifetime := 0.0
	avgValue := 0.0
	ltv := 0.0
	if total > 0 {
		avgLifetime = lifetimeSum / float64(total)
		avgValue = valueSum / float64(total)
		ltv = avgValue * (avgLifetime / 365)
	}

	top := segments
	if len(top) > 20 {
		top = top[:20]
	}

	return &CustomerReport{
		CustomerSegments:    segments,
		CustomerAcquisition: buildAcquisition(signupUsers),
		SegmentSummary:      segmentSummary,
		Metrics: CustomerMetrics{
			TotalCustomers:        total,
			RepeatCustomers:       repeat,
			OneTimeCustomers:      total - repeat,
			RetentionRate:         round2(ratio(float64(repeat), float64(total))),
			AvgCustomerLifetime:   math.Round(avgLifetime),
			AvgCustomerValue:      round2(avgValue),
			CustomerLifetimeValue: round2(ltv),
		},
		TopCustomers: top,
		DateRange:    r.Echo(),
	}, nil
}

func buildAcquisition(users []User) []AcquisitionPoint {
	type acc struct {
		at    time.Time
		count int
	}
	byMonth := make(map[string]acc)
	for _, u := range users {
		at := u.CreatedAt.UTC()
		key := at.Format("2006-01")
		a := byMonth[key]
		a.at = time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)
		a.count++
		byMonth[key] = a
	}

	accs := make([]acc, 0, len(byMonth))
	for _, a := range byMonth {
		accs = append(accs, a)
	}
	sort.Slice(accs, func(i, j int) bool { return accs[i].at.Before(accs[j].at) })

	out := make([]AcquisitionPoint, 0, len(accs))
	for _, a := range accs {
		out = append(out, AcquisitionPoint{Period: monthPeriod(a.at), NewCustomers: a.count})
	}
	return out
}
