// Package realtime carries order events to browsers over websockets.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"foodcourt-be/internal/logger"
	"foodcourt-be/internal/metrics"
	"foodcourt-be/internal/notify"

	"go.uber.org/zap"
)

const (
	// clientBufferSize is the per-connection outbound queue.
	clientBufferSize = 32

	directoryTimeout = 2 * time.Second
)

var (
	ErrConnectionGone = errors.New("connection is not attached to this instance")
	ErrSlowConsumer   = errors.New("connection send buffer is full")
	ErrHubStopped     = errors.New("hub is stopped")
)

// Envelope is the JSON frame written to every socket.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

// Hub owns the connections attached to this process. Its lifetime is bound
// to Run; Stop closes every connection.
type Hub struct {
	directory notify.Directory
	stats     metrics.Delivery

	mu      sync.RWMutex
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopped    chan struct{}
	stopOnce   sync.Once
}

func NewHub(dir notify.Directory) *Hub {
	return &Hub{
		directory:  dir,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

var _ notify.Transport = (*Hub)(nil)

// Run processes registrations until ctx is cancelled or Stop is called.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			h.mu.Unlock()
			h.track(c, true)

		case c := <-h.unregister:
			if h.remove(c) {
				h.track(c, false)
			}

		case <-ctx.Done():
			h.shutdown()
			return

		case <-h.done:
			h.shutdown()
			return
		}
	}
}

// Stop ends Run and waits for every connection to be closed.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
	<-h.stopped
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		delete(h.clients, id)
		c.close()
	}
}

func (h *Hub) remove(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.clients[c.id]; !ok || cur != c {
		return false
	}
	delete(h.clients, c.id)
	c.close()
	return true
}

func (h *Hub) track(c *Client, attached bool) {
	if h.directory == nil || c.userID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), directoryTimeout)
	defer cancel()

	var err error
	if attached {
		err = h.directory.Register(ctx, c.userID, c.id)
	} else {
		err = h.directory.Unregister(ctx, c.userID, c.id)
	}
	if err != nil {
		logger.L().Warn("connection directory update failed",
			zap.String("layer", "realtime"),
			zap.String("conn_id", c.id),
			zap.Bool("attached", attached),
			zap.Error(err),
		)
	}
}

func (h *Hub) attach(c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

func (h *Hub) detach(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Stats reports delivery counters since start.
func (h *Hub) Stats() metrics.DeliverySnapshot {
	return h.stats.Snapshot()
}

// ClientCount reports how many sockets are attached.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues the event on every local connection. Slow consumers
// miss the event.
func (h *Hub) Broadcast(ctx context.Context, event string, payload any) error {
	frame, err := encode(event, payload)
	if err != nil {
		return err
	}
	h.deliverAll(ctx, frame)
	return nil
}

// SendToConnection queues the event on one local connection.
func (h *Hub) SendToConnection(ctx context.Context, connID, event string, payload any) error {
	frame, err := encode(event, payload)
	if err != nil {
		return err
	}
	return h.deliverTo(connID, frame)
}

func (h *Hub) deliverAll(ctx context.Context, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	queued, dropped := 0, 0
	for _, c := range h.clients {
		select {
		case c.send <- frame:
			queued++
		default:
			dropped++
		}
	}
	h.stats.Queued.Add(queued)
	h.stats.Dropped.Add(dropped)
	if dropped > 0 {
		logger.FromCtx(ctx).Warn("dropped event for slow connections",
			zap.String("layer", "realtime"),
			zap.Int("dropped", dropped),
		)
	}
}

func (h *Hub) deliverTo(connID string, frame []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[connID]
	if !ok {
		return ErrConnectionGone
	}
	select {
	case c.send <- frame:
		h.stats.Queued.Inc()
		return nil
	default:
		h.stats.Dropped.Inc()
		return ErrSlowConsumer
	}
}
