package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront-api/internal/middleware"
	"storefront-api/internal/queue"
	"storefront-api/internal/utils"
	"storefront-api/pkg/response"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

type orderItemInput struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Qty       int32   `json:"qty"`
}

type createOrderRequest struct {
	OrderItems      []orderItemInput `json:"orderItems"`
	PaymentMethod   string           `json:"paymentMethod"`
	ItemsPrice      float64          `json:"itemsPrice"`
	TaxPrice        float64          `json:"taxPrice"`
	ShippingPrice   float64          `json:"shippingPrice"`
	TotalPrice      float64          `json:"totalPrice"`
	ShippingAddress struct {
		Address    string `json:"address"`
		City       string `json:"city"`
		PostalCode string `json:"postalCode"`
		Country    string `json:"country"`
	} `json:"shippingAddress"`
}

type orderItemView struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
	Price     float64 `json:"price"`
	Qty       int32   `json:"qty"`
}

type orderView struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	UserID          int64           `json:"userId"`
	UserName        string          `json:"userName,omitempty"`
	UserEmail       string          `json:"userEmail,omitempty"`
	OrderItems      []orderItemView `json:"orderItems"`
	PaymentMethod   string          `json:"paymentMethod"`
	ItemsPrice      float64         `json:"itemsPrice"`
	TaxPrice        float64         `json:"taxPrice"`
	ShippingPrice   float64         `json:"shippingPrice"`
	TotalPrice      float64         `json:"totalPrice"`
	IsPaid          bool            `json:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	IsDelivered     bool            `json:"isDelivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	ShippingAddress *addressView    `json:"shippingAddress,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type addressView struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// newOrderNumber derives a short human-quotable code from a v4 UUID.
func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

func (h *Handler) OrderCreate(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if len(req.OrderItems) == 0 {
		response.Error(w, http.StatusBadRequest, "no_order_items", "No order items")
		return
	}
	for _, item := range req.OrderItems {
		if item.ProductID <= 0 || item.Qty <= 0 || item.Price < 0 {
			response.Error(w, http.StatusBadRequest, "invalid_order_item", "invalid order item")
			return
		}
	}

	ctx := r.Context()
	tx, err := h.DB.Begin(ctx)
	if err != nil {
		h.Logger.Error("order create begin failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to create order")
		return
	}
	defer tx.Rollback(ctx)

	orderNumber := newOrderNumber()
	var (
		orderID   int64
		createdAt time.Time
	)
	err = tx.QueryRow(ctx, `
		insert into orders (
			order_number, user_id, payment_method,
			items_price, tax_price, shipping_price, total_price,
			shipping_address, shipping_city, shipping_postal_code, shipping_country
		)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		returning id, created_at
	`, orderNumber, authCtx.UserID, req.PaymentMethod,
		req.ItemsPrice, req.TaxPrice, req.ShippingPrice, req.TotalPrice,
		req.ShippingAddress.Address, req.ShippingAddress.City,
		req.ShippingAddress.PostalCode, req.ShippingAddress.Country,
	).Scan(&orderID, &createdAt)
	if err != nil {
		h.Logger.Error("order insert failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to create order")
		return
	}

	for _, item := range req.OrderItems {
		_, err = tx.Exec(ctx, `
			insert into order_items (order_id, product_id, name, image, price, qty)
			values ($1, $2, $3, $4, $5, $6)
		`, orderID, item.ProductID, item.Name, item.Image, item.Price, item.Qty)
		if err != nil {
			h.Logger.Error("order item insert failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "internal_error", "failed to create order")
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		h.Logger.Error("order create commit failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to create order")
		return
	}

	if err := queue.PublishOrderEvent(ctx, h.Queue, queue.OrderCreatedKey, queue.OrderEvent{
		OrderID:     orderID,
		OrderNumber: orderNumber,
		UserID:      authCtx.UserID,
		TotalPrice:  req.TotalPrice,
		OccurredAt:  time.Now().UTC(),
	}); err != nil {
		h.Logger.Warn("order created event publish failed", zap.Int64("orderId", orderID), zapError(err))
	}

	order, err := h.loadOrderView(ctx, orderID)
	if err != nil {
		h.Logger.Error("order reload failed", zap.Int64("orderId", orderID), zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to create order")
		return
	}
	response.Created(w, order)
}

func (h *Handler) OrderList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.listOrders(r.Context(), "", nil)
	if err != nil {
		h.Logger.Error("order list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to list orders")
		return
	}
	response.Success(w, orders)
}

func (h *Handler) OrderListMine(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	orders, err := h.listOrders(r.Context(), "where o.user_id = $1", []any{authCtx.UserID})
	if err != nil {
		h.Logger.Error("my orders failed", zap.Int64("userId", authCtx.UserID), zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to list orders")
		return
	}
	response.Success(w, orders)
}

func (h *Handler) OrderDetail(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	orderID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid_order_id", "invalid order id")
		return
	}

	order, err := h.loadOrderView(r.Context(), orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		response.Error(w, http.StatusNotFound, "order_not_found", "Order not found")
		return
	}
	if err != nil {
		h.Logger.Error("order detail failed", zap.Int64("orderId", orderID), zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to load order")
		return
	}
	if order.UserID != authCtx.UserID && !authCtx.IsAdmin {
		response.Error(w, http.StatusForbidden, "forbidden", "not allowed to view this order")
		return
	}
	response.Success(w, order)
}

type payOrderRequest struct {
	PaymentResultID     string `json:"id"`
	PaymentResultStatus string `json:"status"`
	PayerEmail          string `json:"email_address"`
}

func (h *Handler) OrderPay(w http.ResponseWriter, r *http.Request) {
	orderID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid_order_id", "invalid order id")
		return
	}

	var req payOrderRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "invalid_body", "invalid request body")
			return
		}
	}

	ctx := r.Context()
	var alreadyPaid bool
	err = h.DB.QueryRow(ctx, `select is_paid from orders where id = $1`, orderID).Scan(&alreadyPaid)
	if errors.Is(err, pgx.ErrNoRows) {
		response.Error(w, http.StatusNotFound, "order_not_found", "Order not found")
		return
	}
	if err != nil {
		h.Logger.Error("order pay lookup failed", zap.Int64("orderId", orderID), zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to update order")
		return
	}
	if alreadyPaid {
		response.Error(w, http.StatusBadRequest, "order_already_paid", "Order is already paid")
		return
	}

	_, err = h.DB.Exec(ctx, `
		update orders
		set is_paid = true,
		    paid_at = now(),
		    payment_result_id = $2,
		    payment_result_status = $3,
		    payment_result_email = $4
		where id = $1
	`, orderID, req.PaymentResultID, req.PaymentResultStatus, req.PayerEmail)
	if err != nil {
		h.Logger.Error("order pay update failed", zap.Int64("orderId", orderID), zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to update order")
		return
	}

	order, err := h.loadOrderView(ctx, orderID)
	if err != nil {
		h.Logger.Error("order reload failed", zap.Int64("orderId", orderID), zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to load order")
		return
	}

	if err := queue.PublishOrderEvent(ctx, h.Queue, queue.OrderPaidKey, queue.OrderEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		TotalPrice:  order.TotalPrice,
		OccurredAt:  time.Now().UTC(),
	}); err != nil {
		h.Logger.Warn("order paid event publish failed", zap.Int64("orderId", orderID), zapError(err))
	}

	response.Success(w, order)
}

func (h *Handler) OrderDeliver(w http.ResponseWriter, r *http.Request) {
	orderID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid_order_id", "invalid order id")
		return
	}

	ctx := r.Context()
	tag, err := h.DB.Exec(ctx, `
		update orders
		set is_delivered = true, delivered_at = now()
		where id = $1
	`, orderID)
	if err != nil {
		h.Logger.Error("order deliver update failed", zap.Int64("orderId", orderID), zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to update order")
		return
	}
	if tag.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "order_not_found", "Order not found")
		return
	}

	order, err := h.loadOrderView(ctx, orderID)
	if err != nil {
		h.Logger.Error("order reload failed", zap.Int64("orderId", orderID), zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to load order")
		return
	}

	if err := queue.PublishOrderEvent(ctx, h.Queue, queue.OrderDeliveredKey, queue.OrderEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		TotalPrice:  order.TotalPrice,
		OccurredAt:  time.Now().UTC(),
	}); err != nil {
		h.Logger.Warn("order delivered event publish failed", zap.Int64("orderId", orderID), zapError(err))
	}

	response.Success(w, order)
}

func (h *Handler) loadOrderView(ctx context.Context, orderID int64) (*orderView, error) {
	orders, err := h.listOrders(ctx, "where o.id = $1", []any{orderID})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &orders[0], nil
}

func (h *Handler) listOrders(ctx context.Context, where string, args []any) ([]orderView, error) {
	query := `
		select o.id, o.order_number, o.user_id, u.name, u.email, o.payment_method,
		       o.items_price, o.tax_price, o.shipping_price, o.total_price,
		       o.is_paid, o.paid_at, o.is_delivered, o.delivered_at,
		       coalesce(o.shipping_address, ''), coalesce(o.shipping_city, ''),
		       coalesce(o.shipping_postal_code, ''), coalesce(o.shipping_country, ''),
		       o.created_at
		from orders o
		join users u on u.id = o.user_id`
	if where != "" {
		query += "\n\t\t" + where
	}
	query += "\n\t\torder by o.created_at desc, o.id desc"

	rows, err := h.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]orderView, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var (
			view                    orderView
			items, tax, ship, total pgtype.Numeric
			paidAt, deliveredAt     pgtype.Timestamptz
			addr                    addressView
		)
		err := rows.Scan(
			&view.ID, &view.OrderNumber, &view.UserID, &view.UserName, &view.UserEmail,
			&view.PaymentMethod, &items, &tax, &ship, &total,
			&view.IsPaid, &paidAt, &view.IsDelivered, &deliveredAt,
			&addr.Address, &addr.City, &addr.PostalCode, &addr.Country,
			&view.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		view.ItemsPrice = utils.NumericToFloat64(items)
		view.TaxPrice = utils.NumericToFloat64(tax)
		view.ShippingPrice = utils.NumericToFloat64(ship)
		view.TotalPrice = utils.NumericToFloat64(total)
		if paidAt.Valid {
			at := paidAt.Time
			view.PaidAt = &at
		}
		if deliveredAt.Valid {
			at := deliveredAt.Time
			view.DeliveredAt = &at
		}
		if addr != (addressView{}) {
			view.ShippingAddress = &addr
		}
		view.OrderItems = make([]orderItemView, 0)
		index[view.ID] = len(views)
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return views, nil
	}

	ids := make([]int64, 0, len(views))
	for _, view := range views {
		ids = append(ids, view.ID)
	}
	itemRows, err := h.DB.Query(ctx, `
		select oi.order_id, oi.product_id, oi.name, coalesce(oi.image, ''), oi.price, oi.qty
		from order_items oi
		where oi.order_id = any($1)
		order by oi.order_id, oi.id
	`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			orderID int64
			item    orderItemView
			price   pgtype.Numeric
		)
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.Name, &item.Image, &price, &item.Qty); err != nil {
			return nil, err
		}
		item.Price = utils.NumericToFloat64(price)
		if i, ok := index[orderID]; ok {
			views[i].OrderItems = append(views[i].OrderItems, item)
		}
	}
	return views, itemRows.Err()
}
