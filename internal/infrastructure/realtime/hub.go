package realtime

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-admin/internal/domain/entity"
)

// Hub fans notifications out to gateway subscribers such as SSE streams.
// A subscriber that falls behind loses events rather than blocking others.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan entity.Notification]struct{}
	buffer int
	logger *logrus.Logger
}

func NewHub(buffer int, logger *logrus.Logger) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{subs: map[chan entity.Notification]struct{}{}, buffer: buffer, logger: logger}
}

// Subscribe returns the event channel and a func that unsubscribes and closes it.
func (h *Hub) Subscribe() (<-chan entity.Notification, func()) {
	ch := make(chan entity.Notification, h.buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Broadcast(n entity.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- n:
		default:
			droppedEvents.Add(1)
			h.logger.WithField("notification_id", n.ID).Warn("subscriber lagging, event dropped")
		}
	}
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
