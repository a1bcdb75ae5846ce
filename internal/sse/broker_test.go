package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func next(t *testing.T, ch <-chan []byte) string {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
	return ""
}

func TestClientCount(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	if n := b.ClientCount(); n != 0 {
		t.Fatalf("clients = %d, want 0", n)
	}
	ch := b.Subscribe()
	if n := b.ClientCount(); n != 1 {
		t.Fatalf("clients = %d, want 1", n)
	}
	b.Unsubscribe(ch)
	if n := b.ClientCount(); n != 0 {
		t.Fatalf("clients after unsubscribe = %d, want 0", n)
	}
	if _, ok := <-ch; ok {
		t.Error("unsubscribed channel should be closed")
	}
}

func TestPublish_FramesWithSequentialIDs(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()

	b.Publish(
		Event{Type: EventSectionUpdated, Data: map[string]string{"slug": "a"}},
		Event{Type: EventReload, Data: map[string]int{"sections": 1}},
	)

	first := next(t, ch)
	if first != "id: 1\nevent: section.updated\ndata: {\"slug\":\"a\"}\n\n" {
		t.Errorf("first frame = %q", first)
	}
	if second := next(t, ch); !strings.HasPrefix(second, "id: 2\nevent: reload\n") {
		t.Errorf("second frame = %q", second)
	}
}

func TestPublishChange_ReloadLast(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()

	b.PublishChange([]string{"hero", "about"})

	frames := []string{next(t, ch), next(t, ch), next(t, ch)}
	if !strings.Contains(frames[0], `"slug":"hero"`) || !strings.Contains(frames[1], `"slug":"about"`) {
		t.Errorf("section frames = %q", frames[:2])
	}
	if !strings.Contains(frames[2], "event: reload") || !strings.Contains(frames[2], `"sections":2`) {
		t.Errorf("last frame = %q", frames[2])
	}
}

func TestPublish_UnencodableEventSkipped(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()

	b.Publish(Event{Type: "bad", Data: make(chan int)}, Event{Type: EventReload, Data: nil})
	if got := next(t, ch); !strings.Contains(got, "event: reload") {
		t.Errorf("frame = %q", got)
	}
}

func TestPublish_SlowClientDoesNotBlock(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	_ = b.Subscribe()

	for range clientBuffer + 10 {
		b.Publish(Event{Type: EventReload})
	}
	// The loop must still answer once the buffer overflowed.
	if n := b.ClientCount(); n != 1 {
		t.Errorf("clients = %d", n)
	}
}

// syncRecorder guards the body so the test can read it while the handler
// is still streaming.
type syncRecorder struct {
	*httptest.ResponseRecorder
	mu sync.Mutex
}

func (r *syncRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(p)
}

func (r *syncRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Body.String()
}

func TestServeHTTP(t *testing.T) {
	b := NewBroker(WithKeepAlive(10 * time.Millisecond))
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for b.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("handler never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	b.PublishChange([]string{"x"})

	for !strings.Contains(w.body(), "event: reload") || !strings.Contains(w.body(), ": keep-alive") {
		if time.Now().After(deadline) {
			t.Fatalf("body = %q", w.body())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	body := w.body()
	if !strings.HasPrefix(body, "retry: 2000\n\n") {
		t.Errorf("body should open with retry hint: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	if n := b.ClientCount(); n != 0 {
		t.Errorf("clients after disconnect = %d", n)
	}
}

func TestClose(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe()

	b.Close()
	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
	if n := b.ClientCount(); n != 0 {
		t.Errorf("clients after close = %d", n)
	}

	late := b.Subscribe()
	if _, ok := <-late; ok {
		t.Error("subscribe after close should return a closed channel")
	}
	b.Publish(Event{Type: EventReload})
	b.PublishChange([]string{"x"})
	b.Unsubscribe(late)
}
