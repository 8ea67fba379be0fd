package workers

import (
	"context"
	"direct-chat/contract"
	"direct-chat/domain"
	"direct-chat/domain/event"
	"log/slog"
	"time"
)

type registry interface {
	GetSinks(key domain.ChannelKey) []contract.EventSink
}

// EventFanout pushes delivery events to the connections subscribed to their key.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// durability, or retries. Sinks are consumed inline and in order, each call
// bounded by sinkTimeout, so events of one key reach a connection in the order
// they were queued.
type EventFanout struct {
	log         *slog.Logger
	registry    registry
	events      <-chan event.DomainEvent
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, registry registry, events <-chan event.DomainEvent,
	sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{log: log, registry: registry, events: events, sinkTimeout: sinkTimeout}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt, ok := <-w.events:
			if !ok {
				return nil
			}
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return nil
		}
	}
}

// Fanout hands the event to every subscribed sink, one after the other.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	sinks := w.registry.GetSinks(evt.Channel())
	if len(sinks) == 0 {
		w.log.Debug("No subscriber", "channel", evt.Channel(), "type", evt.Type())
		return
	}
	for _, sink := range sinks {
		w.consume(ctx, sink, evt)
	}
}

func (w *EventFanout) consume(ctx context.Context, sink contract.EventSink, evt event.DomainEvent) {
	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()
	if err := sink.Consume(sinkCtx, evt); err != nil {
		w.log.Debug("Event not delivered",
			"connection", sink.ID(),
			"channel", evt.Channel(),
			"error", err)
	}
}
