package reports

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeStore serves snapshots from memory, applying the same inclusive
// range predicates the SQL store applies.
type fakeStore struct {
	orders   []Order
	products []Product
	users    []User
	err      error
}

func (s *fakeStore) OrdersInRange(_ context.Context, r DateRange) ([]Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]Order, 0)
	for _, o := range s.orders {
		if r.Contains(o.CreatedAt) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeStore) OrdersBetween(_ context.Context, start, end time.Time) ([]Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]Order, 0)
	for _, o := range s.orders {
		if !o.CreatedAt.Before(start) && !o.CreatedAt.After(end) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeStore) Products(_ context.Context) ([]Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.products, nil
}

func (s *fakeStore) UsersInRange(_ context.Context, r DateRange) ([]User, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]User, 0)
	for _, u := range s.users {
		if r.Contains(u.CreatedAt) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *fakeStore) UsersByID(_ context.Context, ids []int64) ([]User, error) {
	if s.err != nil {
		return nil, s.err
	}
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]User, 0)
	for _, u := range s.users {
		if _, ok := want[u.ID]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

var testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func testEngine(store Store) *Engine {
	return NewEngineAt(store, func() time.Time { return testNow })
}

func day(offset int) time.Time {
	return testNow.AddDate(0, 0, offset)
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestRunDispatchesEveryKind(t *testing.T) {
	engine := testEngine(&fakeStore{})
	for _, kind := range []ReportKind{KindSales, KindProduct, KindCustomer, KindOrder, KindFinancial} {
		report, err := engine.Run(context.Background(), kind, DateRange{})
		require.NoError(t, err, "kind %s", kind)
		require.NotNil(t, report, "kind %s", kind)
	}
}

func TestRunUnknownKind(t *testing.T) {
	engine := testEngine(&fakeStore{})
	_, err := engine.Run(context.Background(), ReportKind("bogus"), DateRange{})
	require.Error(t, err)

	var reportErr *Error
	require.ErrorAs(t, err, &reportErr)
	require.Equal(t, http.StatusBadRequest, reportErr.Status)
}

func TestStoreFailureWrapsKind(t *testing.T) {
	cause := errors.New("connection reset")
	engine := testEngine(&fakeStore{err: cause})

	_, err := engine.Run(context.Background(), KindSales, DateRange{})
	require.Error(t, err)
	require.Equal(t, "Sales analytics error: connection reset", err.Error())

	var reportErr *Error
	require.ErrorAs(t, err, &reportErr)
	require.Equal(t, http.StatusInternalServerError, reportErr.Status)
	require.ErrorIs(t, err, cause)

	_, err = engine.Run(context.Background(), KindFinancial, DateRange{})
	require.Error(t, err)
	require.Equal(t, "Financial summary error: connection reset", err.Error())
}

func TestDegenerateRangeYieldsEmptyReports(t *testing.T) {
	store := &fakeStore{
		orders: []Order{
			{ID: 1, UserID: 1, TotalPrice: 100, IsPaid: true, CreatedAt: day(-3)},
		},
		products: []Product{{ID: 1, Name: "Widget", Price: 10, CountInStock: 3}},
		users:    []User{{ID: 1, Name: "A", CreatedAt: day(-40)}},
	}
	engine := testEngine(store)

	r := ParseRange("2024-06-14", "2024-06-01")
	require.NotNil(t, r.Start)
	require.NotNil(t, r.End)

	sales, err := engine.Sales(context.Background(), r)
	require.NoError(t, err)
	require.Equal(t, 0, sales.Summary.TotalOrders)
	require.Equal(t, 0.0, sales.Summary.TotalRevenue)
	require.Empty(t, sales.DailySales)
	require.Equal(t, RangeEcho{StartDate: "2024-06-14", EndDate: "2024-06-01"}, sales.DateRange)

	orders, err := engine.Orders(context.Background(), r)
	require.NoError(t, err)
	require.Equal(t, StatusBreakdown{}, orders.StatusBreakdown)
	require.Empty(t, orders.RecentOrders)

	customers, err := engine.Customers(context.Background(), r)
	require.NoError(t, err)
	require.Empty(t, customers.CustomerSegments)
	require.Equal(t, 0, customers.Metrics.TotalCustomers)

	products, err := engine.ProductReport(context.Background(), r)
	require.NoError(t, err)
	require.Empty(t, products.ProductPerformance)

	financial, err := engine.Financial(context.Background(), r)
	require.NoError(t, err)
	require.Equal(t, 0.0, financial.Revenue.Gross)
	require.Equal(t, 0, financial.Metrics.TotalOrders)
}
