// Package events broadcasts catalog notifications (state changes, theme
// switches, toasts, refresh outcomes) to interested subscribers such as the
// server-sent events endpoint. Calling any method on a nil *Bus is a no-op.
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// Kind constants describe what happened.
const (
	// KindStateChanged signals that AppState was mutated.
	// Data: reason.
	KindStateChanged = "state_changed"
	// KindTheme signals a theme switch.
	// Data: theme.
	KindTheme = "theme"
	// KindToast carries a short user-facing message.
	// Data: message, kind.
	KindToast = "toast"
	// KindRefresh signals the end of a catalog refresh.
	// Data: trigger, categories, prompts, failed, version, duration_ms.
	KindRefresh = "refresh"
)

// Toast kinds.
const (
	ToastSuccess = "success"
	ToastInfo    = "info"
	ToastError   = "error"
)

// Event is a single notification.
type Event struct {
	Timestamp time.Time      `json:"ts"`
	Kind      string         `json:"kind"`
	Data      map[string]any `json:"data,omitempty"`
}

// Bus is a non-blocking broadcast bus. A subscriber whose buffer is full
// misses events instead of blocking the publisher.
type Bus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
	// recvToSend maps the receive-only channel handed out by Subscribe back
	// to the channel stored in subs so Unsubscribe can close it.
	recvToSend map[<-chan Event]chan Event

	dropped atomic.Uint64
	now     func() time.Time
}

// New creates a bus ready for use.
func New() *Bus {
	return &Bus{
		subs:       make(map[chan Event]struct{}),
		recvToSend: make(map[<-chan Event]chan Event),
		now:        time.Now,
	}
}

// Publish sends e to every subscriber without blocking.
// A zero Timestamp is set to the current time.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = b.now().UTC()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.dropped.Add(1)
		}
	}
}

// Subscribe returns a channel receiving published events. Callers must
// Unsubscribe when done.
func (b *Bus) Subscribe(bufSize int) <-chan Event {
	if b == nil {
		ch := make(chan Event)
		close(ch)
		return ch
	}
	if bufSize < 1 {
		bufSize = 1
	}
	ch := make(chan Event, bufSize)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[ch] = struct{}{}
	b.recvToSend[ch] = ch
	return ch
}

// Unsubscribe removes a subscription and closes its channel. Unknown or
// already removed channels are ignored.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	sendCh, ok := b.recvToSend[ch]
	if !ok {
		return
	}
	delete(b.subs, sendCh)
	delete(b.recvToSend, ch)
	close(sendCh)
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber
// was full.
func (b *Bus) Dropped() uint64 {
	if b == nil {
		return 0
	}
	return b.dropped.Load()
}

// NotifyTheme publishes a theme switch.
func (b *Bus) NotifyTheme(theme string) {
	b.Publish(Event{Kind: KindTheme, Data: map[string]any{"theme": theme}})
}

// NotifyToast publishes a user-facing message.
func (b *Bus) NotifyToast(message, kind string) {
	b.Publish(Event{Kind: KindToast, Data: map[string]any{"message": message, "kind": kind}})
}

// NotifyStateChanged publishes a state mutation.
func (b *Bus) NotifyStateChanged(reason string) {
	b.Publish(Event{Kind: KindStateChanged, Data: map[string]any{"reason": reason}})
}

// NotifyRefresh publishes the outcome of a catalog refresh.
func (b *Bus) NotifyRefresh(data map[string]any) {
	b.Publish(Event{Kind: KindRefresh, Data: data})
}
