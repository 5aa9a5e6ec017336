package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/ghanu-pos/api/internal/auth"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
	pingInterval = idleTimeout * 9 / 10

	// Boards only send control frames.
	readLimit = 512
)

// Any origin may connect; the token query parameter is the credential.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Client is one connected board screen.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	topic string
	user  string
	send  chan []byte
}

// listen discards inbound frames and unregisters the client once the
// connection goes quiet or closes.
func (c *Client) listen() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	extend := func(string) error { return c.conn.SetReadDeadline(time.Now().Add(idleTimeout)) }
	extend("")
	c.conn.SetPongHandler(extend)

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws: %s read: %v", c.user, err)
			}
			return
		}
	}
}

// deliver writes one text frame per event so boards can decode each frame
// as a single JSON object. It pings on an interval to keep proxies open.
func (c *Client) deliver() {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, open := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !open {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("ws: %s write: %v", c.user, err)
				return
			}

		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWS upgrades an authenticated request and subscribes it to topic.
// Endpoint: WS /ws/orders?token=JWT
func ServeWS(hub *Hub, jwtSecret, topic string, w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	claims, err := auth.ValidateToken(jwtSecret, token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ERROR: ws upgrade: %v", err)
		return
	}

	c := &Client{hub: hub, conn: conn, topic: topic, user: claims.Username, send: make(chan []byte, 256)}
	hub.register <- c
	log.Printf("ws: %s joined %s", c.user, topic)

	go c.deliver()
	go c.listen()
}
