package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	websocketManager "face-attendance/infrastructure/websocket"
	"face-attendance/interfaces/api/middleware"
	websocketHandler "face-attendance/interfaces/api/websocket"
)

func SetupWebSocketRoutes(app *fiber.App, manager *websocketManager.Manager, jwtSecret string) {
	wsHandler := websocketHandler.NewWebSocketHandler(manager)

	// Browsers cannot set headers on upgrade, so the token may come as a query param
	app.Use("/ws", middleware.OptionalWithQueryToken(jwtSecret), wsHandler.WebSocketUpgrade)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))
}
