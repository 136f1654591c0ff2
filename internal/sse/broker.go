// Package sse implements a Server-Sent Events broker that streams layout
// frames and selection changes to browsers.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types sent on the stream.
const (
	EventFrame     = "graph.frame"
	EventSelection = "selection.changed"
)

// DefaultFrameInterval is the minimum spacing between two graph.frame events.
const DefaultFrameInterval = 50 * time.Millisecond

// Event represents an SSE event to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Option configures a Broker.
type Option func(*Broker)

// WithClientGauge calls fn with the client count whenever it changes.
func WithClientGauge(fn func(n int)) Option {
	return func(b *Broker) { b.onClients = fn }
}

// Broker manages SSE client connections and broadcasts events.
//
// A single internal event loop owns the client set and the frame coalescing
// state. Public methods talk to it through channels.
type Broker struct {
	frameMin  time.Duration
	onClients func(int)

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	frameCh       chan interface{}
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that sends at most one frame per frameInterval.
func NewBroker(frameInterval time.Duration, opts ...Option) *Broker {
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}

	b := &Broker{
		frameMin:      frameInterval,
		onClients:     func(int) {},
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		frameCh:       make(chan interface{}, 16),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, o := range opts {
		o(b)
	}

	go b.run()
	return b
}

func encode(event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)), nil
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})

	var (
		lastSent   time.Time
		lastFrame  []byte // most recent frame, replayed to new clients
		pending    []byte // coalesced frame waiting for the timer
		frameTimer *time.Timer
		frameFire  <-chan time.Time
	)

	send := func(raw []byte) {
		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking the loop.
			}
		}
	}

	sendFrame := func(raw []byte) {
		lastSent = time.Now()
		send(raw)
	}

	for {
		select {
		case <-b.stopCh:
			if frameTimer != nil {
				frameTimer.Stop()
			}
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}
			if lastFrame != nil {
				ch <- lastFrame
			}
			b.onClients(len(clients))

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
				b.onClients(len(clients))
			}

		case event := <-b.publishCh:
			raw, err := encode(event)
			if err != nil {
				continue
			}
			send(raw)

		case data := <-b.frameCh:
			raw, err := encode(Event{Type: EventFrame, Data: data})
			if err != nil {
				continue
			}
			lastFrame = raw
			if wait := b.frameMin - time.Since(lastSent); wait > 0 {
				if pending == nil {
					if frameTimer == nil {
						frameTimer = time.NewTimer(wait)
						frameFire = frameTimer.C
					} else {
						frameTimer.Reset(wait)
					}
				}
				pending = raw
				continue
			}
			sendFrame(raw)

		case <-frameFire:
			if pending != nil {
				sendFrame(pending)
				pending = nil
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel. The latest frame, if
// any, is the first message on it.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients without coalescing.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishFrame queues a layout frame. Frames arriving faster than the frame
// interval are coalesced; the latest one is always delivered.
func (b *Broker) PublishFrame(frame interface{}) {
	if b.closed.Load() {
		return
	}
	select {
	case b.frameCh <- frame:
	case <-b.stopped:
	}
}

// PublishSelection sends a selection.changed event.
func (b *Broker) PublishSelection(selection interface{}) {
	b.Publish(Event{Type: EventSelection, Data: selection})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
