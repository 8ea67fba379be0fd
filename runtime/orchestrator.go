// Package runtime owns the live delivery channel: the subscription registry,
// the delivery queue and the supervised fan-out workers.
// It contains no business rules.
package runtime

import (
	"context"
	"direct-chat/contract"
	"direct-chat/domain"
	"direct-chat/domain/event"
	"direct-chat/runtime/workers"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

type Orchestrator struct {
	mu          sync.Mutex
	log         *slog.Logger
	numWorkers  int
	supervisor  contract.ISupervisor
	registry    *Registry
	queues      []chan event.DomainEvent
	sinkTimeout time.Duration
	started     bool

	metricInterval       time.Duration
	lowCapacityThreshold int
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, registry *Registry,
	numWorkers, bufferSize int, sinkTimeout time.Duration) *Orchestrator {
	o := &Orchestrator{
		log:         log,
		numWorkers:  max(numWorkers, 1),
		supervisor:  supervisor,
		registry:    registry,
		sinkTimeout: sinkTimeout,
	}
	o.queues = make([]chan event.DomainEvent, o.numWorkers)
	for i := range o.queues {
		o.queues[i] = make(chan event.DomainEvent, bufferSize)
	}
	return o
}

// queueFor always maps a key to the same worker queue, so one key is
// served by a single worker and keeps its order.
func (o *Orchestrator) queueFor(key domain.ChannelKey) chan event.DomainEvent {
	return o.queues[xxhash.Sum64String(string(key))%uint64(len(o.queues))]
}

// WithCapacitySampling makes Start also run a worker reporting the delivery
// queue usage every interval. A zero interval disables it.
func (o *Orchestrator) WithCapacitySampling(interval time.Duration, lowCapacityThreshold int) *Orchestrator {
	o.metricInterval = interval
	o.lowCapacityThreshold = lowCapacityThreshold
	return o
}

// Dispatch queues delivery events on the queue owning their key and returns immediately.
// A full queue drops the event: live delivery is best-effort and the
// conversation history stays the source of truth.
func (o *Orchestrator) Dispatch(events ...event.DomainEvent) {
	for _, evt := range events {
		select {
		case o.queueFor(evt.Channel()) <- evt:
		default:
			o.log.Warn("Delivery queue full, dropping event", "channel", evt.Channel(), "type", evt.Type())
		}
	}
}

// Bind attaches a freshly authenticated connection to its user.
// The connection immediately listens on the user's personal channel.
func (o *Orchestrator) Bind(userID string, sink contract.EventSink) {
	o.registry.Subscribe(domain.PersonalChannel(userID), sink)
	o.log.Debug("Connection bound", "user_id", userID, "connection", sink.ID())
}

// OpenConversation subscribes the connection to messages coming from partnerID
// and replaces whichever conversation it listened to before.
// Returns the key now listened on.
func (o *Orchestrator) OpenConversation(userID, partnerID string, sink contract.EventSink) domain.ChannelKey {
	o.CloseConversation(sink)
	key := domain.ConversationChannel(partnerID, userID)
	o.registry.Subscribe(key, sink)
	o.log.Debug("Conversation opened", "user_id", userID, "channel", key)
	return key
}

// CloseConversation drops the conversation subscription, keeping the personal one.
func (o *Orchestrator) CloseConversation(sink contract.EventSink) {
	for _, key := range o.registry.Keys(sink) {
		if !key.IsPersonal() {
			o.registry.Unsubscribe(key, sink)
		}
	}
}

// Disconnect discards the binding and every subscription of the connection.
func (o *Orchestrator) Disconnect(sink contract.EventSink) {
	o.registry.UnsubscribeAll(sink)
	o.log.Debug("Connection unbound", "connection", sink.ID())
}

// Start registers the fan-out workers and runs them under supervision in the background.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started {
		return fmt.Errorf("orchestrator already started")
	}
	channels := make([]workers.NamedChannel, 0, len(o.queues))
	for i, queue := range o.queues {
		o.supervisor.Add(workers.NewEventFanout(o.log, o.registry, queue, o.sinkTimeout))
		channels = append(channels, workers.NamedChannel{Name: fmt.Sprintf("delivery-%d", i), Channel: queue})
	}
	if o.metricInterval > 0 {
		o.supervisor.Add(workers.NewChannelCapacityWorker(o.log, channels,
			o.metricInterval, o.lowCapacityThreshold))
	}
	o.started = true

	o.log.Info("Starting orchestrator and all supervised workers", "workers", o.numWorkers)
	go o.supervisor.Run(ctx)
	return nil
}

// Stop cancels the supervised context; workers return on their next select.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
