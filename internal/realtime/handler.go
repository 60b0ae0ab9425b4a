package realtime

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/chills-dance/camp-api/internal/auth"
	"github.com/chills-dance/camp-api/internal/httpx"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect cross-origin from the SPA; access control is
	// the handshake token, not the Origin header.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Handler authenticates WebSocket handshakes and attaches accepted
// connections to the hub.
type Handler struct {
	hub    *Hub
	issuer *auth.Issuer
}

func NewHandler(hub *Hub, issuer *auth.Issuer) *Handler {
	return &Handler{hub: hub, issuer: issuer}
}

// Serve handles GET /ws. The access token travels as a query parameter
// supplied at connect time; anonymous connections are rejected before any
// event handler attaches.
func (h *Handler) Serve(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return httpx.Fail(c, http.StatusUnauthorized, "Authentication token required", "UNAUTHORIZED")
	}
	claims, err := h.issuer.VerifyAccess(token)
	if err != nil {
		return httpx.Fail(c, http.StatusUnauthorized, "Invalid authentication token", "UNAUTHORIZED")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written its own error response.
		return nil
	}
	client := newClient(h.hub, conn, claims.UserID, claims.Email, claims.Role)
	h.hub.register <- client
	go client.writePump()
	go client.readPump()
	return nil
}
