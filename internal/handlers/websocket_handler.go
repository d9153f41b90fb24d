// internal/handlers/websocket_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"progression/internal/config"
	"progression/internal/service"
)

// WebSocketHandler gère le flux temps réel (HP du boss, duels subis)
type WebSocketHandler struct {
	realtime service.RealtimeServiceInterface
	config   *config.Config
	upgrader websocket.Upgrader
}

// NewWebSocketHandler crée un nouveau handler WebSocket
func NewWebSocketHandler(realtime service.RealtimeServiceInterface, config *config.Config) *WebSocketHandler {
	return &WebSocketHandler{
		realtime: realtime,
		config:   config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handle upgrade la connexion HTTP et l'enregistre auprès du service
// temps réel. Le flux est en écriture seule côté serveur : la boucle de
// lecture ne sert qu'à détecter la fermeture.
func (h *WebSocketHandler) Handle(c *gin.Context) {
	userID, _ := actorIdentity(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	h.realtime.AddConnection(conn, userID)

	go func() {
		defer func() {
			h.realtime.RemoveConnection(conn)
			conn.Close()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
