package realtime

import (
	"net/http"

	"foodcourt-be/internal/auth"
	"foodcourt-be/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler upgrades authenticated requests and attaches them to the hub.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler accepts browser origins equal to allowedOrigin; an empty value
// accepts any origin.
func NewHandler(hub *Hub, allowedOrigin string) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context()).With(zap.String("layer", "realtime"))

	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &Client{
		id:     uuid.NewString(),
		userID: actor.UserID,
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, clientBufferSize),
	}
	if err := h.hub.attach(c); err != nil {
		_ = conn.Close()
		return
	}
	log.Info("websocket connected", zap.String("conn_id", c.id))

	go c.writePump()
	go c.readPump()
}
