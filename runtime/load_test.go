package runtime_test

import (
	"context"
	"direct-chat/domain"
	"direct-chat/domain/event"
	"direct-chat/runtime"
	"direct-chat/runtime/workers"
	"direct-chat/sink"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestOrchestrator_LoadTest(t *testing.T) {
	if testing.Short() {
		t.Skip("load test")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := slog.New(slog.DiscardHandler)
	const (
		connections = 200
		perSender   = 50
	)
	o := runtime.NewOrchestrator(log, workers.NewSupervisor(log), runtime.NewRegistry(),
		8, connections*perSender*2, 500*time.Millisecond)
	if err := o.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer o.Stop()

	// Every receiver listens to its own sender
	var delivered atomic.Int64
	var wg sync.WaitGroup
	sinks := make([]*sink.ConnectionSink, connections)
	for i := range sinks {
		receiver := fmt.Sprintf("receiver_%d", i)
		sinks[i] = sink.NewConnectionSink(log, perSender*2)
		o.Bind(receiver, sinks[i])
		o.OpenConversation(receiver, fmt.Sprintf("sender_%d", i), sinks[i])

		wg.Add(1)
		go func(s *sink.ConnectionSink) {
			defer wg.Done()
			for range s.Events() {
				delivered.Add(1)
			}
		}(sinks[i])
	}

	start := time.Now()
	for i := 0; i < connections; i++ {
		for j := 0; j < perSender; j++ {
			o.Dispatch(event.FromMessage(domain.EnrichedMessage{
				ID:       uint64(i*perSender + j),
				Sender:   domain.UserSummary{ID: fmt.Sprintf("sender_%d", i)},
				Receiver: domain.UserSummary{ID: fmt.Sprintf("receiver_%d", i)},
				Content:  "load",
			})...)
		}
	}

	want := int64(connections * perSender * 2)
	deadline := time.After(10 * time.Second)
	for delivered.Load() < want {
		select {
		case <-deadline:
			t.Fatalf("delivered %d of %d events", delivered.Load(), want)
		case <-time.After(10 * time.Millisecond):
		}
	}
	t.Logf("%d events delivered in %v", want, time.Since(start))

	for _, s := range sinks {
		o.Disconnect(s)
		s.Close()
	}
	wg.Wait()
}
