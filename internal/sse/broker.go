// Package sse streams change notifications to preview clients.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Event names sent to clients.
const (
	EventSectionUpdated = "section.updated"
	EventReload         = "reload"
)

const (
	clientBuffer     = 64
	defaultKeepAlive = 25 * time.Second
	// retryMillis is the reconnect delay suggested to EventSource clients.
	retryMillis = 2000
)

// Event is one server-sent event. Data is JSON encoded.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Broker fans events out to connected preview clients.
//
// The client set belongs to the goroutine started by NewBroker; every
// other method reaches it over a channel. Each published event gets the
// next id so clients can tell batches apart.
type Broker struct {
	join    chan chan []byte
	leave   chan chan []byte
	batches chan []Event
	count   chan chan int

	keepAlive time.Duration

	stop     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// Option configures a Broker.
type Option func(*Broker)

// WithKeepAlive sets how often ServeHTTP writes a comment line to keep
// idle connections open. Zero or less disables keep-alives.
func WithKeepAlive(d time.Duration) Option {
	return func(b *Broker) { b.keepAlive = d }
}

// NewBroker starts a broker.
func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		join:      make(chan chan []byte),
		leave:     make(chan chan []byte),
		batches:   make(chan []Event, 64),
		count:     make(chan chan int),
		keepAlive: defaultKeepAlive,
		stop:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var seq uint64

	for {
		select {
		case <-b.stop:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.join:
			clients[ch] = struct{}{}

		case ch := <-b.leave:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case batch := <-b.batches:
			for _, ev := range batch {
				seq++
				msg, err := frame(seq, ev)
				if err != nil {
					continue
				}
				for ch := range clients {
					select {
					case ch <- msg:
					default:
						// slow client, drop
					}
				}
			}

		case reply := <-b.count:
			reply <- len(clients)
		}
	}
}

// frame renders ev in the text/event-stream wire format.
func frame(id uint64, ev Event) ([]byte, error) {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return nil, fmt.Errorf("sse: encode %s: %w", ev.Type, err)
	}
	return fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", id, ev.Type, data), nil
}

func (b *Broker) isStopped() bool {
	select {
	case <-b.stop:
		return true
	default:
		return false
	}
}

// Close stops the broker and closes every client channel. It is safe to
// call more than once.
func (b *Broker) Close() {
	b.stopOnce.Do(func() { close(b.stop) })
	<-b.stopped
}

// Subscribe registers a client. The returned channel is closed by
// Unsubscribe or Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.isStopped() {
		close(ch)
		return ch
	}
	select {
	case b.join <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client registered by Subscribe.
func (b *Broker) Unsubscribe(ch chan []byte) {
	select {
	case b.leave <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	reply := make(chan int, 1)
	select {
	case b.count <- reply:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish broadcasts events in order. Calls after Close are dropped.
func (b *Broker) Publish(events ...Event) {
	if len(events) == 0 || b.isStopped() {
		return
	}
	select {
	case b.batches <- events:
	case <-b.stopped:
	}
}

// PublishChange announces each changed section and then a single reload
// carrying the number of sections touched.
func (b *Broker) PublishChange(slugs []string) {
	batch := make([]Event, 0, len(slugs)+1)
	for _, slug := range slugs {
		batch = append(batch, Event{Type: EventSectionUpdated, Data: map[string]string{"slug": slug}})
	}
	batch = append(batch, Event{Type: EventReload, Data: map[string]int{"sections": len(slugs)}})
	b.Publish(batch...)
}

// ServeHTTP streams events to one client until it disconnects or the
// broker closes.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	var tick <-chan time.Time
	if b.keepAlive > 0 {
		t := time.NewTicker(b.keepAlive)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-tick:
			_, _ = w.Write([]byte(": keep-alive\n\n"))
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
		}
		flusher.Flush()
	}
}
