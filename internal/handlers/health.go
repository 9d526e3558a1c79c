package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthCheck reports liveness and, when a database is given, whether it
// answers a ping.
func HealthCheck(database Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{
			"status":    "ok",
			"message":   "TaskPulse is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}

		if database != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()

			if err := database.PingContext(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body["database"] = "unreachable"
			} else {
				body["database"] = "ok"
			}
		}

		c.JSON(status, body)
	}
}
