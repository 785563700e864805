package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"example.com/gallows-bot/internal/game"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // read-only feed
}

// Envelope WS envelope: {"type":"...","payload":{...}}
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type clientConn struct {
	ws   *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

func (c *clientConn) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		_ = c.ws.Close()
	})
}

// Hub pushes game events to every connected websocket. It is a
// game.Observer.
type Hub struct {
	mu      sync.Mutex
	clients map[*clientConn]struct{}
	log     zerolog.Logger
}

var _ game.Observer = (*Hub)(nil)

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*clientConn]struct{}),
		log:     log,
	}
}

func (h *Hub) OnRound(ev game.RoundEvent) { h.broadcast("round", ev) }

func (h *Hub) OnFinish(res game.Result) { h.broadcast("result", res) }

// Clients is the number of connected websockets.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) broadcast(typ string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		h.log.Error().Err(err).Str("type", typ).Msg("encode ws payload")
		return
	}
	msg, _ := json.Marshal(Envelope{Type: typ, Payload: payload})

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// slow consumer
			h.removeLocked(c)
		}
	}
}

func (h *Hub) add(c *clientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) remove(c *clientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *clientConn) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.close()
}

// ServeHTTP upgrades the request and streams events until the peer leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	cc := &clientConn{
		ws:   ws,
		send: make(chan []byte, 64),
	}
	h.add(cc)
	h.log.Debug().Str("remote", r.RemoteAddr).Msg("ws client connected")

	// writer loop
	go func() {
		ticker := time.NewTicker(25 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case msg, ok := <-cc.send:
				if !ok {
					return
				}
				if err := ws.WriteMessage(websocket.TextMessage, msg); err != nil {
					_ = ws.Close()
					return
				}
			case <-ticker.C:
				_ = ws.WriteMessage(websocket.PingMessage, []byte{})
			}
		}
	}()

	// the feed is one-way; reading only detects disconnects
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(cc)
	h.log.Debug().Str("remote", r.RemoteAddr).Msg("ws client disconnected")
}
