package store

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"storefront-api/internal/reports"
	"storefront-api/internal/utils"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres loads snapshot structs for the reports engine. Each method is a
// single bounded read; no transaction spans the multiple reads a report
// issues, so a report is consistent only as of query time.
type Postgres struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) OrdersInRange(ctx context.Context, r reports.DateRange) ([]reports.Order, error) {
	where, args := rangeClause("o.created_at", r, nil)
	return s.loadOrders(ctx, where, args)
}

func (s *Postgres) OrdersBetween(ctx context.Context, start, end time.Time) ([]reports.Order, error) {
	return s.loadOrders(ctx,
		[]string{"o.created_at >= $1", "o.created_at <= $2"},
		[]any{start, end},
	)
}

func (s *Postgres) loadOrders(ctx context.Context, where []string, args []any) ([]reports.Order, error) {
	query := `
		select o.id, o.order_number, o.user_id, o.payment_method,
		       o.items_price, o.tax_price, o.shipping_price, o.total_price,
		       o.is_paid, o.paid_at, o.is_delivered, o.delivered_at, o.created_at
		from orders o`
	if len(where) > 0 {
		query += "\n\t\twhere " + strings.Join(where, " and ")
	}
	query += "\n\t\torder by o.id"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]reports.Order, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var (
			order       reports.Order
			items       pgtype.Numeric
			tax         pgtype.Numeric
			shipping    pgtype.Numeric
			total       pgtype.Numeric
			paidAt      pgtype.Timestamptz
			deliveredAt pgtype.Timestamptz
		)
		if err := rows.Scan(
			&order.ID, &order.OrderNumber, &order.UserID, &order.PaymentMethod,
			&items, &tax, &shipping, &total,
			&order.IsPaid, &paidAt, &order.IsDelivered, &deliveredAt, &order.CreatedAt,
		); err != nil {
			return nil, err
		}
		order.ItemsPrice = utils.NumericToFloat64(items)
		order.TaxPrice = utils.NumericToFloat64(tax)
		order.ShippingPrice = utils.NumericToFloat64(shipping)
		order.TotalPrice = utils.NumericToFloat64(total)
		if paidAt.Valid {
			order.PaidAt = &paidAt.Time
		}
		if deliveredAt.Valid {
			order.DeliveredAt = &deliveredAt.Time
		}
		index[order.ID] = len(orders)
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
	}

	itemRows, err := s.db.Query(ctx, `
		select oi.order_id, oi.product_id, oi.name, oi.price, oi.qty, coalesce(oi.image, '')
		from order_items oi
		where oi.order_id = any($1)
		order by oi.id
	`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			orderID int64
			item    reports.OrderItem
			price   pgtype.Numeric
		)
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.Name, &price, &item.Qty, &item.Image); err != nil {
			return nil, err
		}
		item.Price = utils.NumericToFloat64(price)
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func (s *Postgres) Products(ctx context.Context) ([]reports.Product, error) {
	rows, err := s.db.Query(ctx, `
		select p.id, p.name, p.category, p.brand, p.price, p.count_in_stock, p.rating, p.num_reviews
		from products p
		order by p.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]reports.Product, 0)
	for rows.Next() {
		var (
			product reports.Product
			price   pgtype.Numeric
			rating  pgtype.Numeric
		)
		if err := rows.Scan(
			&product.ID, &product.Name, &product.Category, &product.Brand,
			&price, &product.CountInStock, &rating, &product.NumReviews,
		); err != nil {
			return nil, err
		}
		product.Price = utils.NumericToFloat64(price)
		product.Rating = utils.NumericToFloat64(rating)
		products = append(products, product)
	}
	return products, rows.Err()
}

func (s *Postgres) UsersInRange(ctx context.Context, r reports.DateRange) ([]reports.User, error) {
	where, args := rangeClause("u.created_at", r, nil)
	query := `
		select u.id, u.name, u.email, u.is_admin, u.created_at
		from users u`
	if len(where) > 0 {
		query += "\n\t\twhere " + strings.Join(where, " and ")
	}
	query += "\n\t\torder by u.id"
	return s.loadUsers(ctx, query, args)
}

func (s *Postgres) UsersByID(ctx context.Context, ids []int64) ([]reports.User, error) {
	if len(ids) == 0 {
		return []reports.User{}, nil
	}
	sorted := make([]int64, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	query := `
		select u.id, u.name, u.email, u.is_admin, u.created_at
		from users u
		where u.id = any($1)
		order by u.id`
	return s.loadUsers(ctx, query, []any{sorted})
}

func (s *Postgres) loadUsers(ctx context.Context, query string, args []any) ([]reports.User, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]reports.User, 0)
	for rows.Next() {
		var user reports.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.IsAdmin, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// rangeClause renders the inclusive range predicate for one timestamp
// column. A degenerate range (start after end) renders both bounds and
// matches no rows, which is the documented behavior rather than an error.
func rangeClause(column string, r reports.DateRange, args []any) ([]string, []any) {
	where := make([]string, 0, 2)
	if r.Start != nil {
		args = append(args, *r.Start)
		where = append(where, column+" >= $"+strconv.Itoa(len(args)))
	}
	if r.End != nil {
		args = append(args, *r.End)
		where = append(where, column+" <= $"+strconv.Itoa(len(args)))
	}
	return where, args
}
