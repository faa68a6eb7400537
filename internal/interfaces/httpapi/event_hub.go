package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/soccer-rotation/internal/platform/logging"
	"github.com/riskibarqy/soccer-rotation/internal/usecase"
	"github.com/sourcegraph/conc"
)

const (
	eventSnapshot = "snapshot"

	eventClientBuffer = 16
	eventWriteWait    = 10 * time.Second
	eventPongWait     = 60 * time.Second
	eventPingPeriod   = eventPongWait * 9 / 10
	eventReadLimit    = 512
)

// EventHub fans game events out to websocket subscribers. A subscriber that
// falls behind by more than its buffer is disconnected.
type EventHub struct {
	logger   *logging.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*eventClient]struct{}
}

type eventClient struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *eventClient) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func NewEventHub(logger *logging.Logger, allowedOrigins []string) *EventHub {
	if logger == nil {
		logger = logging.Default()
	}

	return &EventHub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		clients: make(map[*eventClient]struct{}),
	}
}

func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowAll := false
	allowMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		candidate := strings.TrimSpace(origin)
		switch candidate {
		case "":
		case "*":
			allowAll = true
		default:
			allowMap[candidate] = struct{}{}
		}
	}

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" || allowAll {
			return true
		}
		_, ok := allowMap[origin]
		return ok
	}
}

// Publish implements usecase.GameObserver.
func (h *EventHub) Publish(ctx context.Context, event usecase.GameEvent) {
	payload, err := sonic.Marshal(gameEventToDTO(event))
	if err != nil {
		h.logger.ErrorContext(ctx, "encode game event failed", "type", event.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			delete(h.clients, c)
			c.close()
			h.logger.WarnContext(ctx, "dropped slow event subscriber", "remote_addr", c.conn.RemoteAddr().String())
		}
	}
}

// SnapshotFunc loads the initial state and calls attach with it. Events
// published after attach returns are delivered to the subscriber, so callers
// must keep publishers out until attach is done.
type SnapshotFunc func(ctx context.Context, attach func(initial gameEventDTO) error) error

// Serve upgrades the request and streams events until the peer goes away.
// The snapshot is queued ahead of any published event.
func (h *EventHub) Serve(w http.ResponseWriter, r *http.Request, snapshot SnapshotFunc) {
	ctx := r.Context()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.WarnContext(ctx, "websocket upgrade failed", "error", err)
		return
	}

	client := &eventClient{
		conn: conn,
		send: make(chan []byte, eventClientBuffer),
		done: make(chan struct{}),
	}
	err = snapshot(ctx, func(initial gameEventDTO) error {
		payload, err := sonic.Marshal(initial)
		if err != nil {
			return fmt.Errorf("encode snapshot event: %w", err)
		}
		client.send <- payload
		h.register(client)
		return nil
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "load snapshot for event stream failed", "error", err)
		closeMsg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "snapshot unavailable")
		_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(eventWriteWait))
		client.close()
		return
	}
	h.logger.InfoContext(ctx, "event subscriber connected", "remote_addr", conn.RemoteAddr().String(), "subscribers", h.Len())

	var wg conc.WaitGroup
	wg.Go(func() { h.writePump(client) })
	wg.Go(func() { h.readPump(client) })
	wg.Wait()

	h.unregister(client)
	h.logger.InfoContext(ctx, "event subscriber disconnected", "remote_addr", conn.RemoteAddr().String())
}

// Len reports the number of connected subscribers.
func (h *EventHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every subscriber.
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

func (h *EventHub) register(c *eventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *EventHub) unregister(c *eventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

func (h *EventHub) writePump(c *eventClient) {
	ticker := time.NewTicker(eventPingPeriod)
	defer ticker.Stop()
	defer c.close()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(eventWriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(eventWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only drains control frames; subscribers never send commands.
func (h *EventHub) readPump(c *eventClient) {
	defer c.close()

	c.conn.SetReadLimit(eventReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(eventPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(eventPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
