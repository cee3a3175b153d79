package events

import (
	"sync"
	"testing"
	"time"
)

func TestNilBus(t *testing.T) {
	var b *Bus
	// Must not panic.
	b.Publish(Event{Kind: KindStateChanged})
	b.NotifyToast("hello", ToastInfo)
	b.Unsubscribe(nil)
	if got := b.SubscriberCount(); got != 0 {
		t.Errorf("SubscriberCount() on nil bus = %d, want 0", got)
	}
	if got := b.Dropped(); got != 0 {
		t.Errorf("Dropped() on nil bus = %d, want 0", got)
	}
}

func TestNotifyToast(t *testing.T) {
	b := New()
	ch := b.Subscribe(4)
	defer b.Unsubscribe(ch)

	b.NotifyToast("Data updated in background", ToastSuccess)

	select {
	case got := <-ch:
		if got.Kind != KindToast {
			t.Errorf("Kind = %s, want %s", got.Kind, KindToast)
		}
		if got.Data["message"] != "Data updated in background" || got.Data["kind"] != ToastSuccess {
			t.Errorf("Data = %v", got.Data)
		}
		if got.Timestamp.IsZero() {
			t.Errorf("Timestamp not set")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPublishMultipleSubscribers(t *testing.T) {
	b := New()
	const n = 5
	channels := make([]<-chan Event, n)
	for i := range n {
		channels[i] = b.Subscribe(8)
	}
	defer func() {
		for _, ch := range channels {
			b.Unsubscribe(ch)
		}
	}()

	b.NotifyTheme("dark")

	for i, ch := range channels {
		select {
		case got := <-ch:
			if got.Kind != KindTheme || got.Data["theme"] != "dark" {
				t.Errorf("subscriber %d got %v", i, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d timed out", i)
		}
	}
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	b := New()
	ch := b.Subscribe(1)
	defer b.Unsubscribe(ch)

	b.NotifyStateChanged("first")
	b.NotifyStateChanged("second")
	b.NotifyStateChanged("third")

	if got := b.Dropped(); got != 2 {
		t.Errorf("Dropped() = %d, want 2", got)
	}
	got := <-ch
	if got.Data["reason"] != "first" {
		t.Errorf("first buffered event = %v, want reason=first", got.Data)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New()
	ch := b.Subscribe(1)

	b.Unsubscribe(ch)
	b.Unsubscribe(ch) // second call is a no-op

	if _, ok := <-ch; ok {
		t.Errorf("channel still open after Unsubscribe")
	}
	if b.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", b.SubscriberCount())
	}
}

func TestConcurrentPublishSubscribe(t *testing.T) {
	b := New()
	var wg sync.WaitGroup

	for range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ch := b.Subscribe(4)
			b.Unsubscribe(ch)
		}()
		go func() {
			defer wg.Done()
			b.NotifyRefresh(map[string]any{"trigger": "manual"})
		}()
	}
	wg.Wait()

	if b.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", b.SubscriberCount())
	}
}
