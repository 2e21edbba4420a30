package rt

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"restaurant-pos-backend/internal/auth"
)

// Gateway turns an incoming websocket request into an authenticated,
// tenant-scoped hub member. It authenticates with the same token the HTTP
// surface uses, and refuses the connection before any upgrade when the
// credential is missing or invalid.
type Gateway struct {
	tokens   *auth.Tokens
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewGateway creates a gateway bound to a hub and token verifier.
func NewGateway(tokens *auth.Tokens, hub *Hub) *Gateway {
	return &Gateway{
		tokens: tokens,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin enforcement belongs to the deployment's proxy layer.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// token extracts the credential: the session cookie for browsers, a query
// parameter for non-browser staff clients.
func (g *Gateway) token(c *gin.Context) string {
	if cookie, err := c.Cookie(auth.SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	return c.Query("token")
}

// Handle authenticates and upgrades the connection, then hands it to the
// hub. Principals without a tenant are rejected: a bare customer device is
// never a socket participant.
func (g *Gateway) Handle(c *gin.Context) {
	principal, err := g.tokens.Verify(g.token(c))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}
	if principal.RestaurantID == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no tenant"})
		return
	}

	ws, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written its own error response.
		return
	}

	conn := newConn(principal, sendBufferSize)
	conn.ws = ws
	g.hub.Register(conn)

	go conn.writePump(g.hub)
	go conn.readPump(g.hub)
}
