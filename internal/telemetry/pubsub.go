package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/phermann/shopcore/pkg/logger"
	"github.com/phermann/shopcore/pkg/pubsub"
)

const publishTimeout = 10 * time.Second

// PubSubSink publishes events as JSON envelopes on the telemetry topic.
// Delivery results are consumed on a background goroutine; failures are
// logged and otherwise dropped, keeping the sink fire-and-forget.
type PubSubSink struct {
	publisher *gcppubsub.Publisher
	logg      *logger.Logger
}

// NewPubSubSink builds the sink from the shared Pub/Sub client.
func NewPubSubSink(client *pubsub.Client, logg *logger.Logger) (*PubSubSink, error) {
	if client == nil {
		return nil, fmt.Errorf("pubsub client is required")
	}
	publisher := client.TelemetryPublisher()
	if publisher == nil {
		return nil, fmt.Errorf("telemetry topic is required")
	}
	return &PubSubSink{publisher: publisher, logg: logg}, nil
}

func (s *PubSubSink) Publish(ctx context.Context, event Event) {
	if s == nil || s.publisher == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "marshal telemetry event", err)
		}
		return
	}

	msg := &gcppubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_name":  event.Name,
			"occurred_at": time.Now().UTC().Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	result := s.publisher.Publish(publishCtx, msg)

	go func() {
		defer cancel()
		if _, err := result.Get(publishCtx); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(publishCtx, "event", event.Name), "telemetry publish failed")
		}
	}()
}
