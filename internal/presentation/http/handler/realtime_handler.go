package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Subscriber takes ownership of an upgraded connection.
type Subscriber interface {
	Register(conn *websocket.Conn)
}

// RealtimeHandler upgrades order-board clients to websockets
type RealtimeHandler struct {
	hub      Subscriber
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

// NewRealtimeHandler creates a new realtime handler. allowedOrigins empty
// accepts any origin.
func NewRealtimeHandler(hub Subscriber, allowedOrigins []string, log logrus.FieldLogger) *RealtimeHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &RealtimeHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
		log: log,
	}
}

// Orders subscribes the caller to new-order events
func (h *RealtimeHandler) Orders(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	h.hub.Register(conn)
}
