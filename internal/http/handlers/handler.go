package handlers

import (
	"storefront-api/internal/config"
	"storefront-api/internal/queue"
	"storefront-api/internal/reports"
	"storefront-api/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Handler struct {
	DB      *pgxpool.Pool
	Logger  *zap.Logger
	Config  config.Config
	Queue   *queue.Client
	Reports *reports.Engine
	Objects *storage.ObjectStore
}
