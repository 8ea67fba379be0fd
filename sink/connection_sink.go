package sink

import (
	"context"
	"direct-chat/domain/event"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

var connectionIDCounter atomic.Uint64

var ErrSinkClosed = fmt.Errorf("connection sink closed")

// ConnectionSink is the server-side handle of one live connection.
// The fan-out writes into it, the connection's write pump drains Events.
type ConnectionSink struct {
	id     uint64
	log    *slog.Logger
	events chan event.DomainEvent
	mu     sync.RWMutex
	closed bool
}

func NewConnectionSink(log *slog.Logger, bufferSize int) *ConnectionSink {
	return &ConnectionSink{
		id:     connectionIDCounter.Add(1),
		log:    log,
		events: make(chan event.DomainEvent, bufferSize),
	}
}

func (s *ConnectionSink) ID() uint64 {
	return s.id
}

// Events is drained by the owner of the connection.
func (s *ConnectionSink) Events() <-chan event.DomainEvent {
	return s.events
}

// Consume is called by the fan-out.
// It never blocks: when the connection lags behind and its buffer is full
// the event is dropped for this connection only.
func (s *ConnectionSink) Consume(ctx context.Context, e event.DomainEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrSinkClosed
	}
	select {
	case s.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.log.Warn("Connection buffer full, event dropped", "connection", s.id, "channel", e.Channel())
		return nil
	}
}

// Close stops accepting events. Safe to call more than once.
func (s *ConnectionSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
}
