package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/CuasDev/fel/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
// A nil rdb means the mail queue is disabled, which is not a failure.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		body := gin.H{"db": dbStatus}
		redisOK := true
		if rdb == nil {
			body["redis"] = "disabled"
		} else if rdb.Ping(ctx).Err() != nil {
			body["redis"] = "error"
			redisOK = false
		} else {
			body["redis"] = "connected"
			if n, err := worker.DLQLength(ctx, rdb, worker.QueueEmail); err == nil {
				body["emailDeadLetters"] = n
			}
		}

		status := http.StatusOK
		if dbStatus != "connected" || !redisOK {
			status = http.StatusServiceUnavailable
		}
		body["ok"] = status == http.StatusOK
		c.JSON(status, body)
	}
}
