// Package events pushes record changes to connected dashboards over
// websockets so they can refresh without polling.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/yourorg/salesdash/internal/logging"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// per-client queue; a client that falls this far behind loses messages
const clientBuffer = 16

// Event is the JSON frame sent to every client.
type Event struct {
	Type string    `json:"type"`
	ID   string    `json:"id"`
	At   time.Time `json:"at"`
}

// NewEvent builds an event like "product.created".
func NewEvent(kind, action, id string, at time.Time) Event {
	return Event{Type: kind + "." + action, ID: id, At: at.UTC()}
}

// Notifier receives record changes.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// Fanout delivers an event to several notifiers in order.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, ev Event) {
	for _, n := range f {
		n.Notify(ctx, ev)
	}
}

// Conn is the part of a websocket connection the hub needs.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type client struct {
	conn Conn
	send chan []byte
}

// Hub tracks websocket clients and broadcasts events to them. Only the Run
// goroutine touches the client set.
type Hub struct {
	log        logging.Logger
	clients    map[*client]struct{}
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}
	closeOnce  sync.Once
	count      atomic.Int64
	dropped    atomic.Uint64
}

func NewHub(log logging.Logger) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled or
// Close is called. Remaining clients are disconnected on exit.
func (h *Hub) Run(ctx context.Context) {
	defer h.Close()
	defer func() {
		for c := range h.clients {
			delete(h.clients, c)
			close(c.send)
		}
		h.count.Store(0)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Store(int64(len(h.clients)))
			h.log.Info(ctx, "dashboard connected", "clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.count.Store(int64(len(h.clients)))
				h.log.Info(ctx, "dashboard disconnected", "clients", len(h.clients))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.dropped.Add(1)
				}
			}
		}
	}
}

// Serve pumps events to conn until it fails or the hub stops.
func (h *Hub) Serve(conn Conn) {
	defer conn.Close()

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		return
	}

	go h.readLoop(c)

	for msg := range c.send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Debug(context.Background(), "websocket write failed", "error", err)
			h.drop(c)
			for range c.send {
			}
			return
		}
	}
}

// readLoop discards client frames; its only job is noticing disconnects.
func (h *Hub) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.drop(c)
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Handler upgrades the request and serves it. Authentication happens in
// middleware before the upgrade.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		h.Serve(conn)
	})
}

// Notify broadcasts ev without blocking; when the queue is full the event
// is dropped.
func (h *Hub) Notify(ctx context.Context, ev Event) {
	if h.ClientCount() == 0 {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error(ctx, "marshal event", "error", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.dropped.Add(1)
		h.log.Warn(ctx, "event queue full, dropping", "type", ev.Type)
	}
}

func (h *Hub) ClientCount() int { return int(h.count.Load()) }

// Dropped reports how many messages were discarded for slow clients or a
// full queue.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// Close stops Run; it is safe to call more than once.
func (h *Hub) Close() error {
	h.closeOnce.Do(func() { close(h.done) })
	return nil
}
