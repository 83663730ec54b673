package chat

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"classroom/entity"
	"classroom/impl/core"
	"classroom/lib/sl"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// Core is the slice of the application the hub needs.
type Core interface {
	AuthenticateByToken(token string) (*entity.Session, error)
	SendMessage(from, to, text string) (*entity.ChatMessage, error)
	NotifyTyping(from, to string, typing bool) error
}

// Hub upgrades websocket connections and wires each client to its own
// inbox subjects on the bus.
type Hub struct {
	core     Core
	bus      Bus
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewHub(core Core, bus Bus, log *slog.Logger) *Hub {
	return &Hub{
		core: core,
		bus:  bus,
		log:  log.With(sl.Module("chat.hub")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the session token authorizes the socket, not the origin
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}
}

// inboundEvent is what a connected client may send over the socket.
type inboundEvent struct {
	Event   string `json:"event"`
	To      string `json:"to"`
	Message string `json:"message"`
}

// ServeWS authenticates via the token query parameter, upgrades, and
// pumps events both ways until the socket closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	session, err := h.core.AuthenticateByToken(token)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade", sl.Err(err))
		return
	}
	logger := h.log.With(sl.Secret("phone", session.Subject))
	logger.Debug("client joined")

	client := &client{
		hub:     h,
		conn:    conn,
		session: session,
		send:    make(chan []byte, 16),
		done:    make(chan struct{}),
		log:     logger,
	}

	// join: inbox plus ephemeral typing events
	unsubMsg, err := h.bus.Subscribe(core.SubjectMessagePrefix+session.Subject, client.enqueue)
	if err != nil {
		logger.Error("subscribe inbox", sl.Err(err))
		_ = conn.Close()
		return
	}
	unsubTyping, err := h.bus.Subscribe(core.SubjectTypingPrefix+session.Subject, client.enqueue)
	if err != nil {
		unsubMsg()
		logger.Error("subscribe typing", sl.Err(err))
		_ = conn.Close()
		return
	}
	client.cleanup = func() {
		unsubMsg()
		unsubTyping()
	}

	go client.writePump()
	client.readPump()
}

type client struct {
	hub     *Hub
	conn    *websocket.Conn
	session *entity.Session
	send    chan []byte
	done    chan struct{}
	cleanup func()
	log     *slog.Logger
}

// enqueue drops the event when the client's buffer is full or the client
// is gone; a slow socket must not block the bus. A publish racing the
// unsubscribe may still land here, so done is checked instead of closing
// the send channel.
func (c *client) enqueue(data []byte) {
	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.log.Warn("client buffer full, event dropped")
	}
}

func (c *client) readPump() {
	defer func() {
		c.cleanup()
		close(c.done)
		_ = c.conn.Close()
		c.log.Debug("client left")
	}()
	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var event inboundEvent
		if err = json.Unmarshal(raw, &event); err != nil {
			c.log.Warn("bad client event", sl.Err(err))
			continue
		}
		c.handle(&event)
	}
}

func (c *client) handle(event *inboundEvent) {
	from := c.session.Subject
	switch event.Event {
	case "sendMessage":
		if _, err := c.hub.core.SendMessage(from, event.To, event.Message); err != nil {
			c.log.Warn("send message", sl.Err(err))
		}
	case "typing":
		_ = c.hub.core.NotifyTyping(from, event.To, true)
	case "stopTyping":
		_ = c.hub.core.NotifyTyping(from, event.To, false)
	default:
		c.log.Warn("unknown client event", slog.String("event", event.Event))
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
