package handler

import (
	"onechart-be/internal/pkg/logger"
	"onechart-be/internal/pkg/serverutils"
	internalWS "onechart-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// LiveHandler upgrades authenticated clients onto the hub, which pushes session list changes.
type LiveHandler struct {
	hub       *internalWS.Hub
	logger    logger.ILogger
	jwtSecret string
}

func NewLiveHandler(hub *internalWS.Hub, log logger.ILogger, jwtSecret string) *LiveHandler {
	return &LiveHandler{
		hub:       hub,
		logger:    log,
		jwtSecret: jwtSecret,
	}
}

// ServeWs expects the token as a query parameter (browsers) or bearer header (tooling).
func (h *LiveHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	userID, err := serverutils.CurrentUserID(c)
	if err != nil {
		h.logger.Warn("LiveHandler", "Rejected websocket handshake", map[string]interface{}{"error": err.Error()})
		return err
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("LiveHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userID.String()})
		internalWS.ServeWs(h.hub, conn, userID)
		h.logger.Info("LiveHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID.String()})
	})(c)
}

func (h *LiveHandler) RegisterRoutes(router fiber.Router) {
	live := router.Group("/live/v1")
	live.Use(serverutils.JwtMiddleware(h.jwtSecret))
	live.Get("/ws", h.ServeWs)
}
