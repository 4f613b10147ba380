// Package event provides an in-process pub/sub bus for search lifecycle
// notifications. Publishing is non-blocking and decoupled from the search
// engine's control flow; a lost event never affects correctness.
package event

import (
	"log/slog"
	"sync"
	"time"
)

// Type identifies a category of event.
type Type string

// Known event types.
const (
	SearchStarted   Type = "search.started"
	SearchProgress  Type = "search.progress"
	SearchCompleted Type = "search.completed"
	SearchFailed    Type = "search.failed"
	SessionSaved    Type = "session.saved"
)

// Event represents something that happened in the system.
type Event struct {
	Type      Type           `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Handler is a function that processes an event.
type Handler func(Event)

// Bus is an in-process event bus backed by a buffered channel.
type Bus struct {
	events chan Event
	quit   chan struct{}
	logger *slog.Logger

	mu     sync.RWMutex
	subs   map[Type][]Handler
	closed bool
}

// NewBus creates a new event bus with the given buffer size.
func NewBus(logger *slog.Logger, bufSize int) *Bus {
	if bufSize <= 0 {
		bufSize = 256
	}
	return &Bus{
		events: make(chan Event, bufSize),
		quit:   make(chan struct{}),
		subs:   make(map[Type][]Handler),
		logger: logger,
	}
}

// Subscribe registers a handler for the given event type.
func (b *Bus) Subscribe(t Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[t] = append(b.subs[t], h)
}

// Publish sends an event to the bus without blocking. When the buffer is
// full the event is dropped and a warning logged.
func (b *Bus) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	select {
	case b.events <- e:
	default:
		b.logger.Warn("event bus full, dropping event", slog.String("type", string(e.Type)))
	}
}

// Start dispatches events to subscribers until Stop is called, then drains
// whatever is still buffered. Run it in a goroutine.
func (b *Bus) Start() {
	for {
		select {
		case e := <-b.events:
			b.dispatch(e)
		case <-b.quit:
			b.drain()
			return
		}
	}
}

// Stop signals Start to drain outstanding events and return. Safe to call
// more than once.
func (b *Bus) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.quit)
}

func (b *Bus) drain() {
	for {
		select {
		case e := <-b.events:
			b.dispatch(e)
		default:
			return
		}
	}
}

// dispatch runs every handler for the event's type. A panicking handler is
// logged and must not take the bus down with it.
func (b *Bus) dispatch(e Event) {
	b.mu.RLock()
	handlers := b.subs[e.Type]
	b.mu.RUnlock()

	for _, h := range handlers {
		b.invoke(h, e)
	}
}

func (b *Bus) invoke(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				slog.String("type", string(e.Type)), slog.Any("panic", r))
		}
	}()
	h(e)
}
