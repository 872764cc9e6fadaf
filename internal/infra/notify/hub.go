package notify

import (
	"sync"

	"go.uber.org/zap"

	domnotify "example.com/storefront/internal/domain/notify"
)

// maxPending bounds the toast backlog; the surface is transient, so old
// undelivered messages are dropped first.
const maxPending = 64

// Hub implements the toast surface: every notification is logged and held
// until the presentation layer drains it.
type Hub struct {
	log *zap.Logger

	mu      sync.Mutex
	pending []domnotify.Notification
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{log: log.Named("notify")}
}

func (h *Hub) Notify(n domnotify.Notification) {
	switch n.Severity {
	case domnotify.SeverityDestructive:
		h.log.Warn(n.Title, zap.String("description", n.Description))
	default:
		h.log.Info(n.Title, zap.String("description", n.Description))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.pending) >= maxPending {
		h.pending = h.pending[1:]
	}
	h.pending = append(h.pending, n)
}

// Drain returns the accumulated notifications and clears the backlog.
// The hub assumes a single consumer: whichever response drains next
// carries every pending toast, including ones produced by background
// flows in between. Not suitable for per-user delivery.
func (h *Hub) Drain() []domnotify.Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	drained := h.pending
	h.pending = nil
	return drained
}
