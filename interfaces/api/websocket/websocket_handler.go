package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	websocketManager "face-attendance/infrastructure/websocket"
	"face-attendance/pkg/logger"
	"face-attendance/pkg/utils"
)

type WebSocketHandler struct {
	manager *websocketManager.Manager
}

func NewWebSocketHandler(manager *websocketManager.Manager) *WebSocketHandler {
	return &WebSocketHandler{manager: manager}
}

// UnitRoom is the room capture notifications for a unit are broadcast to.
func UnitRoom(unitID int) string {
	return fmt.Sprintf("unit:%d", unitID)
}

// WebSocketUpgrade only lets authenticated upgrade requests through.
func (h *WebSocketHandler) WebSocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	user, ok := c.Locals("user").(*utils.UserContext)
	if !ok || user == nil {
		return utils.UnauthorizedResponse(c, "Authentication required")
	}
	if room := c.Query("room"); room != "" && room != UnitRoom(user.UnitID) {
		return utils.ForbiddenResponse(c, "Room not allowed")
	}
	return c.Next()
}

func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	user := c.Locals("user").(*utils.UserContext)
	room := UnitRoom(user.UnitID)

	logger.WebSocket("authenticated_connected", "Authenticated user connected", map[string]interface{}{
		"user_id": user.ID.String(),
		"room":    room,
	})

	h.manager.RegisterClient(c, user.ID, room)
	defer h.manager.UnregisterClient(c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			logger.WebSocket("read_message", "WebSocket closed: "+err.Error(), map[string]interface{}{"user_id": user.ID.String()})
			break
		}

		if !allowedMessage(message, room) {
			continue
		}
		h.manager.HandleMessage(c, messageType, message)
	}
}

// allowedMessage drops join requests for rooms outside the user's unit.
func allowedMessage(message []byte, room string) bool {
	var in struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	if err := json.Unmarshal(message, &in); err != nil {
		return false
	}
	return in.Type != "join" || in.Room == room
}
