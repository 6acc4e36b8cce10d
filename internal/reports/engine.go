package reports

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Store is the engine's only contract with persistence: bounded,
// cancellable reads returning immutable snapshots. Implementations must not
// return partial data alongside an error.
type Store interface {
	// OrdersInRange returns orders whose creation timestamp satisfies the
	// range predicate, line items included.
	OrdersInRange(ctx context.Context, r DateRange) ([]Order, error)
	// OrdersBetween returns orders created within [start, end], inclusive.
	OrdersBetween(ctx context.Context, start, end time.Time) ([]Order, error)
	// Products returns the whole catalog.
	Products(ctx context.Context) ([]Product, error)
	// UsersInRange returns users whose signup timestamp satisfies the range.
	UsersInRange(ctx context.Context, r DateRange) ([]User, error)
	// UsersByID resolves the given user ids; missing ids are simply absent
	// from the result.
	UsersByID(ctx context.Context, ids []int64) ([]User, error)
}

// Engine computes the five admin reports. It is stateless: every invocation
// recomputes from the store, and concurrent invocations do not coordinate.
type Engine struct {
	store Store
	now   func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// NewEngineAt pins the engine clock, for deterministic report output.
func NewEngineAt(store Store, now func() time.Time) *Engine {
	return &Engine{store: store, now: now}
}

// Error wraps a failed report computation with the kind that failed and an
// HTTP-equivalent status, carried explicitly in the value rather than set
// ambiently on shared state.
type Error struct {
	Kind   ReportKind
	Status int
	Cause  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind.Title(), e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func failed(kind ReportKind, cause error) error {
	return &Error{Kind: kind, Status: http.StatusInternalServerError, Cause: cause}
}

// Run dispatches a report kind. Unknown kinds are a caller bug, not an
// upstream failure, and are reported as such.
func (e *Engine) Run(ctx context.Context, kind ReportKind, r DateRange) (any, error) {
	switch kind {
	case KindSales:
		return e.Sales(ctx, r)
	case KindProduct:
		return e.ProductReport(ctx, r)
	case KindCustomer:
		return e.Customers(ctx, r)
	case KindOrder:
		return e.Orders(ctx, r)
	case KindFinancial:
		return e.Financial(ctx, r)
	default:
		return nil, &Error{
			Kind:   kind,
			Status: http.StatusBadRequest,
			Cause:  fmt.Errorf("unknown report kind %q", string(kind)),
		}
	}
}
