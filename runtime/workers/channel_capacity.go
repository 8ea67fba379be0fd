package workers

import (
	"context"
	"log/slog"
	"reflect"
	"time"
)

type NamedChannel struct {
	Name    string
	Channel any
}

type ChannelCapacity struct {
	Name     string
	Capacity int
	Length   int
}

// Free is the number of slots still available.
func (c ChannelCapacity) Free() int {
	return c.Capacity - c.Length
}

// ChannelCapacityWorker periodically samples the length of the delivery queues.
// Reading len and cap never blocks the goroutines using the channels.
type ChannelCapacityWorker struct {
	log                  *slog.Logger
	channels             []NamedChannel
	metricInterval       time.Duration
	lowCapacityThreshold int
}

func NewChannelCapacityWorker(log *slog.Logger, channels []NamedChannel,
	metricInterval time.Duration, lowCapacityThreshold int) *ChannelCapacityWorker {
	return &ChannelCapacityWorker{
		log:                  log,
		channels:             channels,
		metricInterval:       metricInterval,
		lowCapacityThreshold: lowCapacityThreshold,
	}
}

func (w *ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping capacity sampling")
			return nil
		case <-ticker.C:
			for _, c := range w.Sample() {
				if c.Free() <= w.lowCapacityThreshold {
					w.log.Warn("Channel close to saturation", "name", c.Name, "length", c.Length, "capacity", c.Capacity)
					continue
				}
				w.log.Debug("Channel capacity", "name", c.Name, "length", c.Length, "capacity", c.Capacity)
			}
		}
	}
}

// Sample reads the current length and capacity of every registered channel.
func (w *ChannelCapacityWorker) Sample() []ChannelCapacity {
	samples := make([]ChannelCapacity, 0, len(w.channels))
	for _, nc := range w.channels {
		v := reflect.ValueOf(nc.Channel)
		if v.Kind() != reflect.Chan {
			w.log.Error("Provided object is not a channel", "name", nc.Name)
			continue
		}
		samples = append(samples, ChannelCapacity{Name: nc.Name, Capacity: v.Cap(), Length: v.Len()})
	}
	return samples
}
