// Package websocket pushes domain events to connected operations panels.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"vaops/internal/events"
	"vaops/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the panel is served from another origin; the JWT is the gate
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one connected panel.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
	admin  bool
}

// wants reports whether an event addressed to audience should reach this client.
func (c *Client) wants(audience string) bool {
	return audience == "" || c.admin || c.userID == audience
}

type delivery struct {
	audience string
	msg      []byte
}

// Hub owns the client set. Only Run touches it.
type Hub struct {
	clients    map[*Client]struct{}
	deliver    chan delivery
	register   chan *Client
	unregister chan *Client
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		deliver:    make(chan delivery, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run routes events until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.log.Debug("websocket client connected", zap.String("user_id", c.userID), zap.Int("clients", len(h.clients)))
		case c := <-h.unregister:
			if _, found := h.clients[c]; found {
				h.drop(c)
				h.log.Debug("websocket client disconnected", zap.String("user_id", c.userID))
			}
		case d := <-h.deliver:
			for c := range h.clients {
				if !c.wants(d.audience) {
					continue
				}
				select {
				case c.send <- d.msg:
				default:
					// a panel that cannot keep up is cut off and will reconnect
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
}

// Publish implements events.Publisher. The event is dropped when the hub is saturated.
func (h *Hub) Publish(_ context.Context, ev events.Event) error {
	msg, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	select {
	case h.deliver <- delivery{audience: ev.Audience, msg: msg}:
	default:
		h.log.Warn("websocket event dropped", zap.String("type", ev.Type))
	}
	return nil
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, open := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !open {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// one frame per event; the panel parses each message as a single JSON object
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only drains control frames; panels never send data.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket read", zap.Error(err))
			}
			return
		}
	}
}

// ServeWs upgrades an authenticated request. The access token travels in ?token=
// because browsers cannot set headers on websocket handshakes. Pilots still awaiting
// approval are refused, like on every operational route.
func ServeWs(hub *Hub, c *gin.Context, secret []byte) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		hub.log.Info("websocket rejected: invalid token", zap.Error(err))
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	approved, _ := claims["approved"].(bool)
	if sub == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if role != model.RoleAdmin && !approved {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := &Client{hub: hub, conn: conn, send: make(chan []byte, sendBuffer), userID: sub, admin: role == model.RoleAdmin}
	hub.register <- client

	go client.writePump()
	go client.readPump()
}
