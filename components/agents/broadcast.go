package agents

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Broadcast fans out agent events to in-process subscribers. It satisfies
// EventHook so it can be wired straight into the service.
type Broadcast struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

// NewBroadcast creates a broadcast hook.
func NewBroadcast() *Broadcast {
	return &Broadcast{subs: make(map[int]chan Event)}
}

var _ EventHook = (*Broadcast)(nil)

// AgentEvent delivers the event to every subscriber. Slow subscribers drop
// events rather than blocking ingestion.
func (b *Broadcast) AgentEvent(ctx context.Context, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of agent events and a cancel func.
func (b *Broadcast) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan Event, 8)
	b.subs[id] = ch
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams agent events as JSON.
func (b *Broadcast) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer conn.Close()

	events, cancel := b.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}
