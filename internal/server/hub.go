package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"queryquest/internal/game"
)

const (
	clientSendBuffer = 64
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = pongWait * 9 / 10
	maxMessageBytes  = 16 * 1024
)

// wsHub groups live connections by room code. Rooms broadcast while holding their
// own lock, so nothing here blocks: delivery only queues onto a client's buffer.
type wsHub struct {
	mu     sync.Mutex
	groups map[string]map[game.Sink]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{
		groups: make(map[string]map[game.Sink]struct{}),
	}
}

func (h *wsHub) Attach(code string, sink game.Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[code]
	if group == nil {
		group = make(map[game.Sink]struct{})
		h.groups[code] = group
	}
	group[sink] = struct{}{}
}

func (h *wsHub) Detach(code string, sink game.Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[code]
	if group == nil {
		return
	}
	delete(group, sink)
	if len(group) == 0 {
		delete(h.groups, code)
	}
}

func (h *wsHub) Broadcast(code string, ev game.Event) {
	h.mu.Lock()
	group := h.groups[code]
	sinks := make([]game.Sink, 0, len(group))
	for sink := range group {
		sinks = append(sinks, sink)
	}
	h.mu.Unlock()

	for _, sink := range sinks {
		sink.Deliver(ev)
	}
}

func (h *wsHub) Connections(code string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.groups[code])
}

// wsClient is one websocket connection. Events are written by writePump; a client
// that falls behind by a full buffer is dropped.
type wsClient struct {
	conn *websocket.Conn
	room string
	send chan game.Event
	quit chan struct{}
	once sync.Once
}

func newWSClient(conn *websocket.Conn, room string) *wsClient {
	return &wsClient{
		conn: conn,
		room: room,
		send: make(chan game.Event, clientSendBuffer),
		quit: make(chan struct{}),
	}
}

func (c *wsClient) Deliver(ev game.Event) {
	select {
	case <-c.quit:
	case c.send <- ev:
	default:
		log.Warn().Str("room", c.room).Str("event", ev.Name).Msg("ws client too slow, dropping")
		c.close()
	}
}

func (c *wsClient) close() {
	c.once.Do(func() {
		close(c.quit)
	})
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case ev := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.quit:
			c.flush()
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// flush writes whatever is already queued before the connection goes away.
func (c *wsClient) flush() {
	for {
		select {
		case ev := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		default:
			return
		}
	}
}

// CloseRoom ends every connection attached to code once their queued events are written.
func (h *wsHub) CloseRoom(code string) {
	h.mu.Lock()
	group := h.groups[code]
	delete(h.groups, code)
	h.mu.Unlock()

	for sink := range group {
		if client, ok := sink.(*wsClient); ok {
			client.close()
		}
	}
}
