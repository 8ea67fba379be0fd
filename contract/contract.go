//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"direct-chat/domain"
	"direct-chat/domain/event"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker
// for logging and supervision purposes.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is the server-side handle of one live connection.
type EventSink interface {
	ID() uint64
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry is the subscription table of the live delivery channel.
type IRegistry interface {
	Subscribe(key domain.ChannelKey, sink EventSink)
	Unsubscribe(key domain.ChannelKey, sink EventSink)
	UnsubscribeAll(sink EventSink)
	GetSinks(key domain.ChannelKey) []EventSink
}

// IDispatcher hands delivery events to the live channel without waiting for them.
type IDispatcher interface {
	Dispatch(events ...event.DomainEvent)
}
