package health

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Handlers reports liveness of the process and its backing stores.
type Handlers struct {
	DB  *gorm.DB
	Rdb *redis.Client
}

// JSON GET /health/json — per-dependency status, 503 when anything is down.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	dbStatus := "ok"
	if h.DB != nil {
		if sqlDB, err := h.DB.DB(); err != nil {
			dbStatus = "error: " + err.Error()
		} else if err := sqlDB.Ping(); err != nil {
			dbStatus = "error: " + err.Error()
		}
	} else {
		dbStatus = "not configured"
	}

	redisStatus := "ok"
	if h.Rdb != nil {
		if err := h.Rdb.Ping(c.Context()).Err(); err != nil {
			redisStatus = "error: " + err.Error()
		}
	} else {
		redisStatus = "not configured"
	}

	status := fiber.StatusOK
	if dbStatus != "ok" && dbStatus != "not configured" {
		status = fiber.StatusServiceUnavailable
	}
	if redisStatus != "ok" && redisStatus != "not configured" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status":    statusWord(status),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database":  dbStatus,
		"redis":     redisStatus,
	})
}

func statusWord(status int) string {
	if status == fiber.StatusOK {
		return "healthy"
	}
	return "degraded"
}
