package httpapi

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"storefront-api/internal/config"
	"storefront-api/internal/http/handlers"
	"storefront-api/internal/middleware"
	"storefront-api/internal/queue"
	"storefront-api/internal/reports"
	"storefront-api/internal/storage"
	"storefront-api/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func NewRouter(db *pgxpool.Pool, logger *zap.Logger, cfg config.Config, queueClient *queue.Client, engine *reports.Engine, objects *storage.ObjectStore, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Use(middleware.RequestID())

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"Cache-Control",
				"Pragma",
			},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	h := &handlers.Handler{
		DB:      db,
		Logger:  logger,
		Config:  cfg,
		Queue:   queueClient,
		Reports: engine,
		Objects: objects,
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ProductList)
		r.Get("/{id}", h.ProductDetail)

		r.Group(func(r chi.Router) {
			r.Use(middleware.UserAuth(db, cfg.JWTSecret))
			r.Post("/{id}/reviews", h.ProductReviewCreate)
		})
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(middleware.UserAuth(db, cfg.JWTSecret))

		r.Post("/", h.OrderCreate)
		r.Get("/myorders", h.OrderListMine)
		r.Get("/{id}", h.OrderDetail)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(db, cfg.JWTSecret))
			r.Get("/", h.OrderList)
			r.Put("/{id}/pay", h.OrderPay)
			r.Put("/{id}/deliver", h.OrderDeliver)
		})
	})

	r.Route("/api/reports", func(r chi.Router) {
		r.Use(middleware.AdminAuth(db, cfg.JWTSecret))

		r.Get("/sales-analytics", h.AdminSalesReport)
		r.Get("/product-analytics", h.AdminProductReport)
		r.Get("/customer-analytics", h.AdminCustomerReport)
		r.Get("/order-analytics", h.AdminOrderReport)
		r.Get("/financial-summary", h.AdminFinancialReport)
		r.Get("/financial-summary/export", h.AdminFinancialExport)
	})

	r.Route("/api/uploads", func(r chi.Router) {
		r.Use(middleware.AdminAuth(db, cfg.JWTSecret))
		r.Post("/product-image", h.ProductImageUpload)
	})

	if wsServer != nil {
		r.Get("/ws/admin/orders", wsServer.AdminOrdersWS)
	}

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
