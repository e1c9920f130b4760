package orderControllers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tung-Worramet/store-api/models"
)

func TestBroadcastWithoutClients(t *testing.T) {
	hub := NewHub()
	hub.BroadcastNewOrder(&models.Order{ID: "o1"})

	var nilHub *Hub
	nilHub.BroadcastNewOrder(&models.Order{ID: "o1"})
}

func TestBroadcastReachesConnectedClient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()

	r := gin.New()
	r.GET("/ws", hub.Handler())
	server := httptest.NewServer(r)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	// Give the handler a moment to register the connection.
	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 1
	}, time.Second, 10*time.Millisecond)

	hub.BroadcastNewOrder(&models.Order{ID: "o1", OrderNumber: "OR20250831-AAAAAAAA", Status: models.OrderStatusPending})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	msgType, data, err := conn.ReadMessage()
	require.NoError(t, err)

	assert.Equal(t, websocket.TextMessage, msgType)
	assert.Contains(t, string(data), "OR20250831-AAAAAAAA")
}
