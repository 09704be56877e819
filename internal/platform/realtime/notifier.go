package realtime

import (
	"sync"
	"time"
)

// Broadcaster is the hub-side contract the notifier publishes to.
type Broadcaster interface {
	Broadcast(topic string, event Event)
}

type pendingChange struct {
	lastAction string
	lastID     string
	count      int
	timer      *time.Timer
}

// Notifier collapses change reports into at most one event per topic per
// window. Services call Changed after every successful write; subscribers get
// a single notification for a burst of writes instead of one per write.
type Notifier struct {
	hub    Broadcaster
	window time.Duration

	mu      sync.Mutex
	pending map[string]*pendingChange
	closed  bool
}

// NewNotifier creates a notifier with the given coalescing window. A window
// of zero broadcasts immediately.
func NewNotifier(hub Broadcaster, window time.Duration) *Notifier {
	return &Notifier{
		hub:     hub,
		window:  window,
		pending: make(map[string]*pendingChange),
	}
}

// Changed records a write on topic. The first report in a window arms a
// timer; further reports before it fires are folded into the same event.
func (n *Notifier) Changed(topic, action, id string) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}

	if n.window <= 0 {
		n.mu.Unlock()
		n.hub.Broadcast(topic, Event{
			Type:       "change",
			Topic:      topic,
			Action:     action,
			ResourceID: id,
			Changes:    1,
			Timestamp:  time.Now().UTC(),
		})
		return
	}

	p, ok := n.pending[topic]
	if !ok {
		p = &pendingChange{}
		p.timer = time.AfterFunc(n.window, func() { n.flush(topic) })
		n.pending[topic] = p
	}
	p.lastAction = action
	p.lastID = id
	p.count++
	n.mu.Unlock()
}

func (n *Notifier) flush(topic string) {
	n.mu.Lock()
	p, ok := n.pending[topic]
	if !ok {
		n.mu.Unlock()
		return
	}
	delete(n.pending, topic)
	n.mu.Unlock()

	n.hub.Broadcast(topic, Event{
		Type:       "change",
		Topic:      topic,
		Action:     p.lastAction,
		ResourceID: p.lastID,
		Changes:    p.count,
		Timestamp:  time.Now().UTC(),
	})
}

// Close flushes pending events and stops accepting new reports. Idempotent.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	topics := make([]string, 0, len(n.pending))
	for topic, p := range n.pending {
		p.timer.Stop()
		topics = append(topics, topic)
	}
	n.mu.Unlock()

	for _, topic := range topics {
		n.flush(topic)
	}
}
