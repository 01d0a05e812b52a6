package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/votopopular/civic-api/internal/database"
	"github.com/votopopular/civic-api/internal/dto"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db       *gorm.DB
	provider string
}

func NewHealthHandler(db *gorm.DB, provider string) *HealthHandler {
	return &HealthHandler{db: db, provider: provider}
}

// Check reports "degraded" while the store is unreachable; the process keeps
// serving either way.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status, dbStatus := "ok", "ok"
	if err := database.Ping(c.UserContext(), h.db); err != nil {
		status = "degraded"
		dbStatus = "unavailable"
	}

	return c.JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Identity:  h.provider,
	})
}
