package ws

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"storefront-api/internal/auth"
	"storefront-api/internal/config"
	"storefront-api/internal/middleware"
	"storefront-api/internal/utils"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Server pushes newly placed orders to connected admin dashboards. Each
// connection runs its own poll loop against the orders table; connections
// share nothing.
type Server struct {
	db       *pgxpool.Pool
	log      *zap.Logger
	cfg      config.Config
	upgrader websocket.Upgrader
}

func New(db *pgxpool.Pool, log *zap.Logger, cfg config.Config) *Server {
	return &Server{
		db:  db,
		log: log,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type orderFeedMessage struct {
	Type        string    `json:"type"`
	OrderID     int64     `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	TotalPrice  float64   `json:"totalPrice"`
	IsPaid      bool      `json:"isPaid"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AdminOrdersWS authenticates from a query token (browsers cannot set
// headers on websocket dials) and streams orders created after connect.
func (s *Server) AdminOrdersWS(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.VerifyAccessToken(r.URL.Query().Get("token"), s.cfg.JWTSecret)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var userID int64
	if _, err := fmt.Sscan(claims.UserID, &userID); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	authCtx, err := middleware.ResolveUser(r.Context(), s.db, userID)
	if err != nil || !authCtx.IsAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reader only services control frames and surfaces disconnects.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	lastID, err := s.latestOrderID(ctx)
	if err != nil {
		s.log.Error("order feed bootstrap failed", zap.Error(err))
		return
	}

	poll := time.NewTicker(s.cfg.WSOrderFeedPoll)
	defer poll.Stop()
	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-poll.C:
			messages, maxID, err := s.ordersAfter(ctx, lastID)
			if err != nil {
				s.log.Error("order feed poll failed", zap.Error(err))
				return
			}
			lastID = maxID
			for _, msg := range messages {
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			}
		}
	}
}

func (s *Server) latestOrderID(ctx context.Context) (int64, error) {
	var id pgtype.Int8
	if err := s.db.QueryRow(ctx, `select max(id) from orders`).Scan(&id); err != nil {
		return 0, err
	}
	if !id.Valid {
		return 0, nil
	}
	return id.Int64, nil
}

func (s *Server) ordersAfter(ctx context.Context, lastID int64) ([]orderFeedMessage, int64, error) {
	rows, err := s.db.Query(ctx, `
		select id, order_number, total_price, is_paid, created_at
		from orders
		where id > $1
		order by id
		limit 100
	`, lastID)
	if err != nil {
		return nil, lastID, err
	}
	defer rows.Close()

	out := make([]orderFeedMessage, 0)
	maxID := lastID
	for rows.Next() {
		var (
			msg   orderFeedMessage
			total pgtype.Numeric
		)
		if err := rows.Scan(&msg.OrderID, &msg.OrderNumber, &total, &msg.IsPaid, &msg.CreatedAt); err != nil {
			return nil, lastID, err
		}
		msg.Type = "order.created"
		msg.TotalPrice = utils.NumericToFloat64(total)
		if msg.OrderID > maxID {
			maxID = msg.OrderID
		}
		out = append(out, msg)
	}
	return out, maxID, rows.Err()
}
