package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// drain collects every message already queued on ch.
func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishGroupEvent(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishGroupEvent(GroupCreated, "shared product group")

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.HasPrefix(s, "event: group.created\n") {
			t.Errorf("event type wrong in %q", s)
		}
		if !strings.Contains(s, `"group":"shared product group"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishGroupEvent_CatalogThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishGroupEvent(GroupCreated, "a")
	b.PublishGroupEvent(GroupUpdated, "b")
	b.PublishGroupEvent(GroupDeleted, "a")
	time.Sleep(50 * time.Millisecond)

	catalog, groups := 0, 0
	for _, s := range drain(ch) {
		if strings.Contains(s, "catalog.updated") {
			catalog++
		} else {
			groups++
		}
	}
	if groups != 3 {
		t.Errorf("group events = %d, want 3", groups)
	}
	if catalog != 1 {
		t.Errorf("catalog events = %d, want 1", catalog)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishGroupEvent(GroupUpdated, "orders")
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "event: group.updated") {
		t.Errorf("handler output missing event: %q", w.Body.String())
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for range 100 {
		b.Publish(Event{Type: "test", Data: "x"})
	}
	time.Sleep(50 * time.Millisecond)
	if n := len(drain(ch)); n != cap(ch) {
		t.Errorf("delivered %d, want buffer size %d", n, cap(ch))
	}
}

func TestClose(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// No-ops after close.
	b.Publish(Event{Type: "x"})
	b.PublishGroupEvent(GroupUpdated, "x")
	if _, ok := <-b.Subscribe(); ok {
		t.Error("subscribe after close returned an open channel")
	}
}
