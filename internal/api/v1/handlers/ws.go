package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"taskhub/internal/middleware"
	"taskhub/internal/service"
	myws "taskhub/internal/websocket"
	"taskhub/pkg/logger"
)

// RequireUpgrade rejects plain HTTP requests on websocket routes.
func RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// NotificationSocket keeps a connection registered with the hub until the
// client goes away. Incoming messages are ignored.
func (h *Handler) NotificationSocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		p, ok := conn.Locals(middleware.PrincipalKey).(service.Principal)
		if !ok || h.deps.Hub == nil {
			_ = conn.Close()
			return
		}

		client := &myws.Client{UserID: p.UserID, Conn: conn}
		h.deps.Hub.Register(client)
		logger.ContextLogger.Info("Websocket connected", zap.String("user_id", p.UserID))
		defer func() {
			h.deps.Hub.Unregister(client)
			logger.ContextLogger.Info("Websocket disconnected", zap.String("user_id", p.UserID))
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
