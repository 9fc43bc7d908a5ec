package routes

import (
	"github.com/gofiber/fiber/v2"

	"face-attendance/interfaces/api/handlers"
	"face-attendance/interfaces/api/middleware"
	"face-attendance/pkg/config"
)

func SetupLogRoutes(api fiber.Router, h *handlers.Handlers, cfg *config.Config) {
	logs := api.Group("/admin/logs", middleware.AdminToken(cfg.Admin, cfg.JWT.Secret))

	logs.Get("/", h.Log.GetLogs)
	logs.Get("/files", h.Log.GetLogFiles)
	logs.Get("/stats", h.Log.GetLogStats)
}
