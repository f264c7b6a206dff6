package handler

import (
	"context"
	"net/http"
	"time"

	"counterpos/internal/infra"
	"counterpos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// The database is required; redis is optional and reported as "disabled"
// when not configured.
func Health(db *gorm.DB, rdb *redis.Client, alertCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		body := gin.H{"db": dbStatus, "redis": "disabled"}
		if rdb != nil {
			body["redis"] = "connected"
			if rdb.Ping(ctx).Err() != nil {
				body["redis"] = "error"
			}
			if n, err := worker.DLQLength(ctx, rdb, worker.QueueStockAlert); err == nil {
				body["dlq_stock_alert"] = n
			}
		}
		if alertCB != nil {
			body["alerts_circuit"] = alertCB.State().String()
		}

		status := http.StatusOK
		if dbStatus != "connected" {
			status = http.StatusServiceUnavailable
		}
		body["ok"] = status == http.StatusOK
		c.JSON(status, body)
	}
}
