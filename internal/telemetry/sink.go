package telemetry

import (
	"context"
	"sync"

	"github.com/phermann/shopcore/pkg/logger"
)

// Sink accepts telemetry events. Publish is fire-and-forget: callers never
// learn whether delivery succeeded and must not block on it.
type Sink interface {
	Publish(ctx context.Context, event Event)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Publish(context.Context, Event) {}

// LogSink writes events to the structured log, used in dev environments
// where no eventing transport is configured.
type LogSink struct {
	logg *logger.Logger
}

func NewLogSink(logg *logger.Logger) *LogSink {
	return &LogSink{logg: logg}
}

func (s *LogSink) Publish(ctx context.Context, event Event) {
	if s == nil || s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"event":  event.Name,
		"params": event.Params,
	})
	s.logg.Info(ctx, "telemetry event")
}

// CaptureSink records events for assertions in tests.
type CaptureSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *CaptureSink) Publish(_ context.Context, event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

// Events returns a copy of everything published so far.
func (s *CaptureSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Named returns the captured events with the given name.
func (s *CaptureSink) Named(name string) []Event {
	var out []Event
	for _, e := range s.Events() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
