package widgets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/edgekit/go-widgets/components/datasource"
)

// BroadcastHook fans out widget events to in-process subscribers. Transports
// (WebSocket, SSE) subscribe and push RefreshMessage envelopes to clients.
type BroadcastHook struct {
	mu   sync.RWMutex
	subs map[int]chan WidgetEvent
	next int
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{
		subs: make(map[int]chan WidgetEvent),
	}
}

// WidgetUpdated satisfies the RefreshHook interface and broadcasts events.
// Slow subscribers drop events rather than blocking the caller.
func (h *BroadcastHook) WidgetUpdated(ctx context.Context, event WidgetEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of widget events and a cancel func.
func (h *BroadcastHook) Subscribe() (<-chan WidgetEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan WidgetEvent, 8)
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// RefreshMessage is the wire form of a widget event. Event folds the change
// reason into a dotted name clients can route on ("widget.bind",
// "widget.reorder"), and Sources carries the bound selection keys so clients
// can invalidate per-source state without refetching the layout.
type RefreshMessage struct {
	Event    string                    `json:"event"`
	AreaCode string                    `json:"area_code,omitempty"`
	WidgetID string                    `json:"widget_id,omitempty"`
	Reason   string                    `json:"reason,omitempty"`
	Sources  []datasource.SelectedItem `json:"sources,omitempty"`
}

// NewRefreshMessage converts an internal event into its wire envelope.
func NewRefreshMessage(event WidgetEvent) RefreshMessage {
	reason := event.Reason
	if reason == "" {
		reason = "refresh"
	}
	return RefreshMessage{
		Event:    "widget." + reason,
		AreaCode: event.AreaCode,
		WidgetID: event.Instance.ID,
		Reason:   reason,
		Sources:  datasource.SelectedItems(event.Instance.Sources),
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams refresh envelopes as JSON.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer conn.Close()

	events, cancel := h.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(NewRefreshMessage(event)); err != nil {
				return
			}
		}
	}
}

// ServeSSE provides a Server-Sent Events endpoint for refresh events. Each
// event is named after its reason so EventSource listeners can register per
// change kind.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	events, cancel := h.Subscribe()
	defer cancel()

	flusher, _ := w.(http.Flusher)

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeSSE(w, event); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, event WidgetEvent) error {
	msg := NewRefreshMessage(event)
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, payload)
	return err
}
