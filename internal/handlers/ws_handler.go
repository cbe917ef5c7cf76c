package handlers

import (
	"net/http"
	"sync"
	"time"

	"boxing-arena-api/internal/logger"
	"boxing-arena-api/internal/middleware"
	"boxing-arena-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait    = 5 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingPeriod   = 30 * time.Second
	wsMaxReadBytes = 1024
)

// wsClient implements realtime.Client by wrapping a websocket connection.
// Both arenas publish through the hub, so writes are serialized by mu.
type wsClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsClient) Send(message []byte) bool {
	if c == nil || c.conn == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteMessage(websocket.TextMessage, message) == nil
}

func (c *wsClient) Close() {
	if c != nil && c.conn != nil {
		_ = c.conn.Close()
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is handled at the gin level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler streams bout events to subscribers.
type WSHandler struct {
	hub *realtime.Hub
	log logger.Logger
}

func NewWSHandler(hub *realtime.Hub, log logger.Logger) *WSHandler {
	return &WSHandler{hub: hub, log: log.Named("ws")}
}

// Subscribe handles GET /api/ws. Subscribers only receive; anything they
// send is discarded.
func (h *WSHandler) Subscribe(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn(c.Request.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	ctx := c.Request.Context()
	client := &wsClient{conn: conn}
	h.hub.Register(userID, client)
	h.log.Debug(ctx, "subscriber connected", logger.String("user_id", userID), logger.Int("subscribers", h.hub.ClientCount()))

	done := make(chan struct{})
	go keepAlive(conn, done)
	defer func() {
		close(done)
		h.hub.Unregister(userID, client)
		client.Close()
		h.log.Debug(ctx, "subscriber disconnected", logger.String("user_id", userID))
	}()

	drain(conn)
}

// keepAlive pings conn until done closes or a ping fails.
func keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

// drain reads until the peer goes away or stops answering pings.
func drain(conn *websocket.Conn) {
	conn.SetReadLimit(wsMaxReadBytes)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
