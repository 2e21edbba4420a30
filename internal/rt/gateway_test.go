package rt

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos-backend/internal/auth"
)

func newGatewayServer(t *testing.T) (*httptest.Server, *Hub, *auth.Tokens) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokens("test-secret", time.Hour)
	hub := NewHub()
	gateway := NewGateway(tokens, hub)

	r := gin.New()
	r.GET("/ws", gateway.Handle)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server, hub, tokens
}

func wsURL(server *httptest.Server, token string) string {
	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	if token != "" {
		u += "?token=" + token
	}
	return u
}

func TestGateway_RejectsMissingAndInvalidTokens(t *testing.T) {
	server, _, _ := newGatewayServer(t)

	for name, token := range map[string]string{
		"missing": "",
		"garbage": "not.a.jwt",
	} {
		t.Run(name, func(t *testing.T) {
			conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server, token), nil)
			require.Error(t, err)
			require.Nil(t, conn)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestGateway_RejectsPrincipalWithoutTenant(t *testing.T) {
	server, _, tokens := newGatewayServer(t)

	token, err := tokens.Issue(auth.Principal{UserID: 1, Role: auth.RoleStaff, RestaurantID: 0}, time.Now())
	require.NoError(t, err)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server, token), nil)
	require.Error(t, err)
	require.Nil(t, conn)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGateway_DeliversTenantBroadcasts(t *testing.T) {
	server, hub, tokens := newGatewayServer(t)

	token, err := tokens.Issue(auth.Principal{UserID: 7, Role: auth.RoleStaff, RestaurantID: 3}, time.Now())
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, token), nil)
	require.NoError(t, err)
	defer conn.Close()

	// Registration happens before Handle returns, but give the server a
	// moment under race detectors.
	require.Eventually(t, func() bool { return hub.GroupSize(3) == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(3, Event{Name: EventOrderCreated, Payload: map[string]any{"tableNumber": 5}})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Name    string          `json:"event"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(message, &event))
	assert.Equal(t, EventOrderCreated, event.Name)
}

func TestGateway_DisconnectedPeerLeavesGroup(t *testing.T) {
	server, hub, tokens := newGatewayServer(t)

	token, err := tokens.Issue(auth.Principal{UserID: 7, Role: auth.RoleStaff, RestaurantID: 3}, time.Now())
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, token), nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.GroupSize(3) == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool { return hub.GroupSize(3) == 0 }, 2*time.Second, 10*time.Millisecond)
}
