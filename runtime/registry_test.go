package runtime

import (
	"context"
	"direct-chat/domain"
	"direct-chat/domain/event"
	"testing"

	"github.com/stretchr/testify/require"
)

type Sink struct {
	id uint64
}

func (s Sink) ID() uint64 { return s.id }

func (s Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

func TestRegistry_Subscribe_One_Key_One_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	key := domain.ConversationChannel("1", "2")
	sink := Sink{id: 1}

	// Given no connection is bound
	req.Empty(registry.channels)
	req.Empty(registry.bindings)

	// When a connection subscribes a key
	registry.Subscribe(key, sink)

	// Then
	req.Len(registry.GetSinks(key), 1)
	req.Contains(registry.GetSinks(key), sink)
	req.Equal([]domain.ChannelKey{key}, registry.Keys(sink))
}

func TestRegistry_Exact_Key_Match_Only(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := Sink{id: 1}

	// Given user 2 listens for messages from user 1
	registry.Subscribe(domain.ConversationChannel("1", "2"), sink)

	// Then nothing is resolved for the reverse direction or unrelated pairs
	req.Nil(registry.GetSinks(domain.ConversationChannel("2", "1")))
	req.Nil(registry.GetSinks(domain.ConversationChannel("3", "2")))
	req.Nil(registry.GetSinks(domain.PersonalChannel("1")))
}

func TestRegistry_Subscribe_Twice_Does_Not_Duplicate(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	key := domain.ConversationChannel("1", "2")
	sink := Sink{id: 1}

	registry.Subscribe(key, sink)
	registry.Subscribe(key, sink)

	req.Len(registry.GetSinks(key), 1)
}

func TestRegistry_Multiple_Connections_Sorted(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	key := domain.PersonalChannel("2")

	registry.Subscribe(key, Sink{id: 3})
	registry.Subscribe(key, Sink{id: 1})
	registry.Subscribe(key, Sink{id: 2})

	sinks := registry.GetSinks(key)
	req.Len(sinks, 3)
	req.Equal([]uint64{1, 2, 3}, []uint64{sinks[0].ID(), sinks[1].ID(), sinks[2].ID()})
}

func TestRegistry_Unsubscribe_Cleans_Empty_Keys(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	key := domain.ConversationChannel("1", "2")
	sink := Sink{id: 1}

	registry.Subscribe(key, sink)
	registry.Unsubscribe(key, sink)

	req.Empty(registry.channels)
	req.Empty(registry.bindings)
	req.Nil(registry.GetSinks(key))
}

func TestRegistry_UnsubscribeAll(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	leaving := Sink{id: 1}
	staying := Sink{id: 2}
	personal := domain.PersonalChannel("2")
	conversation := domain.ConversationChannel("1", "2")

	registry.Subscribe(personal, leaving)
	registry.Subscribe(conversation, leaving)
	registry.Subscribe(personal, staying)

	// When the connection disconnects
	registry.UnsubscribeAll(leaving)

	// Then only the other connection is left
	req.Empty(registry.Keys(leaving))
	req.Nil(registry.GetSinks(conversation))
	req.Equal([]uint64{2}, []uint64{registry.GetSinks(personal)[0].ID()})
	req.Len(registry.GetSinks(personal), 1)
}
