package main

import (
	"context"
	"strings"
	"time"

	"storefront-api/internal/config"
	"storefront-api/internal/db"
	"storefront-api/internal/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var schema = []string{
	`create table if not exists users (
		id bigserial primary key,
		name text not null,
		email text not null unique,
		password text not null,
		is_admin boolean not null default false,
		created_at timestamptz not null default now()
	)`,
	`create table if not exists products (
		id bigserial primary key,
		name text not null,
		description text,
		image text,
		category text not null default '',
		brand text not null default '',
		price numeric(12,2) not null default 0,
		count_in_stock integer not null default 0,
		rating numeric(4,2) not null default 0,
		num_reviews integer not null default 0,
		created_at timestamptz not null default now()
	)`,
	`create table if not exists product_reviews (
		id bigserial primary key,
		product_id bigint not null references products(id) on delete cascade,
		user_id bigint not null references users(id) on delete cascade,
		name text not null,
		rating integer not null,
		comment text not null default '',
		created_at timestamptz not null default now(),
		unique (product_id, user_id)
	)`,
	`create table if not exists orders (
		id bigserial primary key,
		order_number text not null unique,
		user_id bigint not null references users(id),
		payment_method text not null default '',
		items_price numeric(12,2) not null default 0,
		tax_price numeric(12,2) not null default 0,
		shipping_price numeric(12,2) not null default 0,
		total_price numeric(12,2) not null default 0,
		is_paid boolean not null default false,
		paid_at timestamptz,
		payment_result_id text,
		payment_result_status text,
		payment_result_email text,
		is_delivered boolean not null default false,
		delivered_at timestamptz,
		shipping_address text,
		shipping_city text,
		shipping_postal_code text,
		shipping_country text,
		created_at timestamptz not null default now()
	)`,
	`create table if not exists order_items (
		id bigserial primary key,
		order_id bigint not null references orders(id) on delete cascade,
		product_id bigint not null,
		name text not null,
		image text,
		price numeric(12,2) not null default 0,
		qty integer not null default 1
	)`,
	`create index if not exists idx_orders_created_at on orders (created_at)`,
	`create index if not exists idx_orders_user_id on orders (user_id)`,
	`create index if not exists idx_order_items_order_id on order_items (order_id)`,
}

type seedUser struct {
	name    string
	email   string
	isAdmin bool
}

type seedProduct struct {
	name     string
	brand    string
	category string
	price    float64
	stock    int32
}

var users = []seedUser{
	{name: "Admin User", email: "admin@example.com", isAdmin: true},
	{name: "John Doe", email: "john@example.com"},
	{name: "Jane Smith", email: "jane@example.com"},
	{name: "Sam Carter", email: "sam@example.com"},
}

var products = []seedProduct{
	{name: "iPhone 14 Pro", brand: "Apple", category: "Electronics", price: 999, stock: 12},
	{name: "Galaxy Buds Pro", brand: "Samsung", category: "Electronics", price: 179.99, stock: 30},
	{name: "Mechanical Keyboard", brand: "Keychron", category: "Electronics", price: 89.5, stock: 4},
	{name: "Leather Jacket", brand: "AllSaints", category: "Fashion", price: 349, stock: 8},
	{name: "Running Shoes", brand: "Nike", category: "Fashion", price: 129.99, stock: 0},
	{name: "Ceramic Planter", brand: "Bloomscape", category: "Home & Garden", price: 34.95, stock: 55},
	{name: "Cast Iron Skillet", brand: "Lodge", category: "Home & Garden", price: 44.9, stock: 18},
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Fatal("schema statement failed", zap.Error(err))
		}
	}
	log.Info("schema ready")

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), 10)
	if err != nil {
		log.Fatal("password hash failed", zap.Error(err))
	}

	userIDs := make([]int64, 0, len(users))
	for _, u := range users {
		var id int64
		err := pool.QueryRow(ctx, `
			insert into users (name, email, password, is_admin)
			values ($1, $2, $3, $4)
			on conflict (email) do update set name = excluded.name
			returning id
		`, u.name, u.email, string(hashed), u.isAdmin).Scan(&id)
		if err != nil {
			log.Fatal("user seed failed", zap.String("email", u.email), zap.Error(err))
		}
		userIDs = append(userIDs, id)
	}
	log.Info("users seeded", zap.Int("count", len(userIDs)))

	productIDs := make([]int64, 0, len(products))
	prices := make([]float64, 0, len(products))
	for _, p := range products {
		var id int64
		err := pool.QueryRow(ctx, `
			insert into products (name, brand, category, price, count_in_stock)
			values ($1, $2, $3, $4, $5)
			returning id
		`, p.name, p.brand, p.category, p.price, p.stock).Scan(&id)
		if err != nil {
			log.Fatal("product seed failed", zap.String("name", p.name), zap.Error(err))
		}
		productIDs = append(productIDs, id)
		prices = append(prices, p.price)
	}
	log.Info("products seeded", zap.Int("count", len(productIDs)))

	// A few weeks of orders spread over customers, most paid, some
	// delivered, one left unpaid per customer so the dashboards have
	// outstanding balances to show.
	now := time.Now().UTC()
	orderCount := 0
	for i, userID := range userIDs[1:] {
		for j := 0; j < 6; j++ {
			productIdx := (i + j) % len(productIDs)
			qty := int32(1 + j%3)
			itemsPrice := prices[productIdx] * float64(qty)
			taxPrice := itemsPrice * 0.1
			shippingPrice := 0.0
			if itemsPrice < 100 {
				shippingPrice = 10
			}
			totalPrice := itemsPrice + taxPrice + shippingPrice
			createdAt := now.AddDate(0, 0, -(i*9 + j*4))
			paid := j != 5
			delivered := paid && j%2 == 0

			err := seedOrder(ctx, pool, seedOrderParams{
				userID:        userID,
				productID:     productIDs[productIdx],
				productName:   products[productIdx].name,
				qty:           qty,
				unitPrice:     prices[productIdx],
				itemsPrice:    itemsPrice,
				taxPrice:      taxPrice,
				shippingPrice: shippingPrice,
				totalPrice:    totalPrice,
				paymentMethod: []string{"PayPal", "Stripe", "Cash On Delivery"}[j%3],
				createdAt:     createdAt,
				paid:          paid,
				delivered:     delivered,
			})
			if err != nil {
				log.Fatal("order seed failed", zap.Error(err))
			}
			orderCount++
		}
	}
	log.Info("orders seeded", zap.Int("count", orderCount))
}

type seedOrderParams struct {
	userID        int64
	productID     int64
	productName   string
	qty           int32
	unitPrice     float64
	itemsPrice    float64
	taxPrice      float64
	shippingPrice float64
	totalPrice    float64
	paymentMethod string
	createdAt     time.Time
	paid          bool
	delivered     bool
}

func seedOrder(ctx context.Context, pool *pgxpool.Pool, p seedOrderParams) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	orderNumber := "ORD-" + strings.ToUpper(uuid.NewString()[:8])
	var paidAt, deliveredAt *time.Time
	if p.paid {
		at := p.createdAt.Add(2 * time.Hour)
		paidAt = &at
	}
	if p.delivered {
		at := p.createdAt.Add(72 * time.Hour)
		deliveredAt = &at
	}

	var orderID int64
	err = tx.QueryRow(ctx, `
		insert into orders (
			order_number, user_id, payment_method,
			items_price, tax_price, shipping_price, total_price,
			is_paid, paid_at, is_delivered, delivered_at, created_at
		)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		returning id
	`, orderNumber, p.userID, p.paymentMethod,
		p.itemsPrice, p.taxPrice, p.shippingPrice, p.totalPrice,
		p.paid, paidAt, p.delivered, deliveredAt, p.createdAt,
	).Scan(&orderID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		insert into order_items (order_id, product_id, name, price, qty)
		values ($1, $2, $3, $4, $5)
	`, orderID, p.productID, p.productName, p.unitPrice, p.qty)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
