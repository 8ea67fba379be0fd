package runtime

import (
	"direct-chat/contract"
	"direct-chat/domain"
	"sort"
	"sync"
)

type sinkSet map[uint64]contract.EventSink

// Registry is the process-wide subscription table of the live channel.
// It is mutated only by connection lifecycle events (bind, subscribe,
// disconnect) and read by the fan-out.
type Registry struct {
	mu       sync.RWMutex
	channels map[domain.ChannelKey]sinkSet           // key -> subscribed connections
	bindings map[uint64]map[domain.ChannelKey]struct{} // connection -> its keys
}

func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[domain.ChannelKey]sinkSet),
		bindings: make(map[uint64]map[domain.ChannelKey]struct{}),
	}
}

// Subscribe registers a connection on a key. Subscribing twice is a no-op,
// so a connection never receives the same event twice for one key.
func (r *Registry) Subscribe(key domain.ChannelKey, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.channels[key]; !ok {
		r.channels[key] = make(sinkSet)
	}
	r.channels[key][sink.ID()] = sink

	if _, ok := r.bindings[sink.ID()]; !ok {
		r.bindings[sink.ID()] = make(map[domain.ChannelKey]struct{})
	}
	r.bindings[sink.ID()][key] = struct{}{}
}

func (r *Registry) Unsubscribe(key domain.ChannelKey, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unsubscribe(key, sink.ID())
}

// UnsubscribeAll discards every subscription of a connection. Called on disconnect.
func (r *Registry) UnsubscribeAll(sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.bindings[sink.ID()] {
		r.unsubscribe(key, sink.ID())
	}
	delete(r.bindings, sink.ID())
}

// GetSinks returns a snapshot of the connections subscribed to exactly this key,
// ordered by connection id. Returns nil if nobody listens.
func (r *Registry) GetSinks(key domain.ChannelKey) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.channels[key]
	if !ok {
		return nil
	}
	sinks := make([]contract.EventSink, 0, len(members))
	for _, sink := range members {
		sinks = append(sinks, sink)
	}
	sort.Slice(sinks, func(i, j int) bool { return sinks[i].ID() < sinks[j].ID() })
	return sinks
}

// Keys returns the keys a connection is currently subscribed to.
func (r *Registry) Keys(sink contract.EventSink) []domain.ChannelKey {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]domain.ChannelKey, 0, len(r.bindings[sink.ID()]))
	for key := range r.bindings[sink.ID()] {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// unsubscribe must be called with the lock held.
// Empty sets are removed so the maps don't grow with dead keys.
func (r *Registry) unsubscribe(key domain.ChannelKey, sinkID uint64) {
	if members, ok := r.channels[key]; ok {
		delete(members, sinkID)
		if len(members) == 0 {
			delete(r.channels, key)
		}
	}
	if keys, ok := r.bindings[sinkID]; ok {
		delete(keys, key)
		if len(keys) == 0 {
			delete(r.bindings, sinkID)
		}
	}
}
