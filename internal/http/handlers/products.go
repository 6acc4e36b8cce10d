package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"storefront-api/internal/middleware"
	"storefront-api/internal/utils"
	"storefront-api/pkg/response"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

type productView struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Image        string  `json:"image,omitempty"`
	Category     string  `json:"category"`
	Brand        string  `json:"brand"`
	Price        float64 `json:"price"`
	CountInStock int32   `json:"countInStock"`
	Rating       float64 `json:"rating"`
	NumReviews   int32   `json:"numReviews"`
}

type reviewView struct {
	ID        int64     `json:"id"`
	UserName  string    `json:"name"`
	Rating    int32     `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type productDetailView struct {
	productView
	Reviews []reviewView `json:"reviews"`
}

const productColumns = `p.id, p.name, coalesce(p.description, ''), coalesce(p.image, ''),
	       p.category, p.brand, p.price, p.count_in_stock, p.rating, p.num_reviews`

func scanProduct(row pgx.Row, view *productView) error {
	var price, rating pgtype.Numeric
	err := row.Scan(
		&view.ID, &view.Name, &view.Description, &view.Image,
		&view.Category, &view.Brand, &price, &view.CountInStock, &rating, &view.NumReviews,
	)
	if err != nil {
		return err
	}
	view.Price = utils.NumericToFloat64(price)
	view.Rating = utils.NumericToFloat64(rating)
	return nil
}

func (h *Handler) ProductList(w http.ResponseWriter, r *http.Request) {
	query := `select ` + productColumns + `
		from products p`
	args := []any{}
	if keyword := r.URL.Query().Get("keyword"); keyword != "" {
		query += `
		where p.name ilike '%' || $1 || '%'`
		args = append(args, keyword)
	}
	query += `
		order by p.id`

	rows, err := h.DB.Query(r.Context(), query, args...)
	if err != nil {
		h.Logger.Error("product list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to list products")
		return
	}
	defer rows.Close()

	products := make([]productView, 0)
	for rows.Next() {
		var view productView
		if err := scanProduct(rows, &view); err != nil {
			h.Logger.Error("product scan failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "internal_error", "failed to list products")
			return
		}
		products = append(products, view)
	}
	if err := rows.Err(); err != nil {
		h.Logger.Error("product list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to list products")
		return
	}
	response.Success(w, products)
}

func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	productID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid_product_id", "invalid product id")
		return
	}

	ctx := r.Context()
	var detail productDetailView
	err = scanProduct(h.DB.QueryRow(ctx, `select `+productColumns+`
		from products p
		where p.id = $1`, productID), &detail.productView)
	if errors.Is(err, pgx.ErrNoRows) {
		response.Error(w, http.StatusNotFound, "product_not_found", "Product not found")
		return
	}
	if err != nil {
		h.Logger.Error("product detail failed", zap.Int64("productId", productID), zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to load product")
		return
	}

	rows, err := h.DB.Query(ctx, `
		select r.id, r.name, r.rating, r.comment, r.created_at
		from product_reviews r
		where r.product_id = $1
		order by r.created_at desc, r.id desc
	`, productID)
	if err != nil {
		h.Logger.Error("product reviews failed", zap.Int64("productId", productID), zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to load product")
		return
	}
	defer rows.Close()

	detail.Reviews = make([]reviewView, 0)
	for rows.Next() {
		var review reviewView
		if err := rows.Scan(&review.ID, &review.UserName, &review.Rating, &review.Comment, &review.CreatedAt); err != nil {
			h.Logger.Error("review scan failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "internal_error", "failed to load product")
			return
		}
		detail.Reviews = append(detail.Reviews, review)
	}
	if err := rows.Err(); err != nil {
		h.Logger.Error("product reviews failed", zap.Int64("productId", productID), zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to load product")
		return
	}
	response.Success(w, detail)
}

type createReviewRequest struct {
	Rating  int32  `json:"rating"`
	Comment string `json:"comment"`
}

// ProductReviewCreate enforces one review per user per product and folds
// the new rating into the product aggregates in the same transaction.
func (h *Handler) ProductReviewCreate(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	productID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid_product_id", "invalid product id")
		return
	}

	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		response.Error(w, http.StatusBadRequest, "invalid_rating", "rating must be between 1 and 5")
		return
	}

	ctx := r.Context()
	tx, err := h.DB.Begin(ctx)
	if err != nil {
		h.Logger.Error("review begin failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to create review")
		return
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `select exists(select 1 from products where id = $1)`, productID).Scan(&exists)
	if err != nil {
		h.Logger.Error("review product lookup failed", zap.Int64("productId", productID), zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to create review")
		return
	}
	if !exists {
		response.Error(w, http.StatusNotFound, "product_not_found", "Product not found")
		return
	}

	var alreadyReviewed bool
	err = tx.QueryRow(ctx, `
		select exists(select 1 from product_reviews where product_id = $1 and user_id = $2)
	`, productID, authCtx.UserID).Scan(&alreadyReviewed)
	if err != nil {
		h.Logger.Error("review lookup failed", zap.Int64("productId", productID), zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to create review")
		return
	}
	if alreadyReviewed {
		response.Error(w, http.StatusBadRequest, "already_reviewed", "Product already reviewed")
		return
	}

	_, err = tx.Exec(ctx, `
		insert into product_reviews (product_id, user_id, name, rating, comment)
		values ($1, $2, $3, $4, $5)
	`, productID, authCtx.UserID, authCtx.Name, req.Rating, req.Comment)
	if err != nil {
		h.Logger.Error("review insert failed", zap.Int64("productId", productID), zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to create review")
		return
	}

	_, err = tx.Exec(ctx, `
		update products p
		set num_reviews = agg.count, rating = agg.avg
		from (
			select count(*) as count, avg(rating) as avg
			from product_reviews
			where product_id = $1
		) agg
		where p.id = $1
	`, productID)
	if err != nil {
		h.Logger.Error("review aggregate update failed", zap.Int64("productId", productID), zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to create review")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		h.Logger.Error("review commit failed", zap.Int64("productId", productID), zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to create review")
		return
	}

	response.Created(w, map[string]string{"message": "Review added"})
}
