package handlers

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/dto"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/realtime"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/services"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	wsUserKey      = "ws_user"
	wsWriteWait    = 10 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingInterval = (wsPongWait * 9) / 10
	wsMaxMessage   = 4096
)

type RealtimeHandler struct {
	db       *gorm.DB
	tokens   *services.TokenIssuer
	registry *realtime.Registry
}

func NewRealtimeHandler(db *gorm.DB, tokens *services.TokenIssuer, registry *realtime.Registry) *RealtimeHandler {
	return &RealtimeHandler{db: db, tokens: tokens, registry: registry}
}

// Handshake authenticates the upgrade request with ?token=<access token>.
func (h *RealtimeHandler) Handshake(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	claims, err := h.tokens.ParseAccess(c.Query("token"))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Authentication error: invalid token"))
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", claims.UserID).Error; err != nil || !user.IsActive {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Authentication error: user not found"))
	}

	c.Locals(wsUserKey, &user)
	return c.Next()
}

// Serve registers the connection and pumps queued events to it until either
// side goes away.
func (h *RealtimeHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		user, ok := conn.Locals(wsUserKey).(*models.User)
		if !ok {
			_ = conn.Close()
			return
		}

		client := realtime.NewClient(user.ID, user.Role)
		h.registry.Register(client)
		slog.Info("realtime connected", "user_id", user.ID.String(), "conn_id", client.ID, "role", user.Role)

		done := make(chan struct{})
		go h.writePump(conn, client, done)

		conn.SetReadLimit(wsMaxMessage)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		h.registry.Unregister(client)
		<-done
		slog.Info("realtime disconnected", "user_id", user.ID.String(), "conn_id", client.ID)
	})
}

func (h *RealtimeHandler) writePump(conn *websocket.Conn, client *realtime.Client, done chan<- struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
		close(done)
	}()

	for {
		select {
		case msg, ok := <-client.Send():
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
