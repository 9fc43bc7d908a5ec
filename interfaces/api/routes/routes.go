package routes

import (
	"github.com/gofiber/fiber/v2"

	websocketManager "face-attendance/infrastructure/websocket"
	"face-attendance/interfaces/api/handlers"
	"face-attendance/pkg/config"
)

func SetupRoutes(app *fiber.App, h *handlers.Handlers, cfg *config.Config, manager *websocketManager.Manager) {
	SetupHealthRoutes(app, h.Health, cfg.App.Name)

	api := app.Group("/api/v1")

	SetupFaceSearchRoutes(api, h, cfg)
	SetupLogRoutes(api, h, cfg)

	// WebSocket needs the app, not the api group
	SetupWebSocketRoutes(app, manager, cfg.JWT.Secret)
}
