package notifications

import (
	"context"
	"errors"
	"sync"

	"postboard/internal/observability"

	"github.com/gofiber/websocket/v2"
)

// Max total connections
const maxTotalConns = 10000

// ErrConnectionLimit is returned by Register when the hub is full.
var ErrConnectionLimit = errors.New("server connection limit reached")

// ErrHubClosed is returned by Register after Shutdown.
var ErrHubClosed = errors.New("subscription hub is shutting down")

// Hub tracks the open subscription connections so they can be counted and
// closed together at shutdown.
type Hub struct {
	mu       sync.Mutex
	clients  map[*Client]struct{}
	limit    int
	shutdown bool
	log      *observability.WSLogger
}

// NewHub creates a Hub for the given endpoint.
func NewHub(endpoint string) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		limit:   maxTotalConns,
		log:     observability.NewWSLogger(endpoint),
	}
}

// Register adds a connection and returns its Client.
func (h *Hub) Register(conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.shutdown {
		return nil, ErrHubClosed
	}
	if len(h.clients) >= h.limit {
		return nil, ErrConnectionLimit
	}

	client := newClient(h, conn)
	h.clients[client] = struct{}{}
	observability.WebSocketConnectionsTotal.Inc()
	return client, nil
}

// UnregisterClient forgets client. Unknown clients are ignored.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		observability.WebSocketConnectionsTotal.Dec()
	}
}

// Count returns the number of registered connections.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Logger returns the connection logger of this hub.
func (h *Hub) Logger() *observability.WSLogger {
	return h.log
}

// Shutdown closes every registered client and refuses new ones.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.shutdown = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
	h.log.LogDisconnect(ctx, "server shutdown")
	return nil
}
