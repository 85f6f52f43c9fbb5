package handler

import (
	"net/http"

	"stockroom/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports liveness of the process and its backing services.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "ok"}
		code := http.StatusOK

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status["database"] = "down"
			code = http.StatusServiceUnavailable
		} else {
			status["database"] = "up"
		}

		if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
			status["redis"] = "down"
			code = http.StatusServiceUnavailable
		} else {
			status["redis"] = "up"
			// Undeliverable notifications pile up here; worth watching.
			if n, err := worker.DLQLength(c.Request.Context(), rdb, worker.QueueEmail); err == nil {
				status["email_dlq"] = n
			}
		}

		c.JSON(code, status)
	}
}
