package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"taskmanager-api/domain/ports"
	"taskmanager-api/pkg/logger"
)

// Publisher publishes task lifecycle events to JetStream
type Publisher struct {
	client *Client
}

func NewPublisher(client *Client) ports.TaskEventPublisherPort {
	return &Publisher{
		client: client,
	}
}

func (p *Publisher) Publish(ctx context.Context, event *ports.TaskEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal task event: %w", err)
	}

	msg := &nats.Msg{
		Subject: SubjectFor(event.Type),
		Data:    data,
		Header:  nats.Header{},
	}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		msg.Header.Set("X-Request-ID", requestID)
	}

	// A retried publish of the same event is dropped by the stream's duplicate window.
	ack, err := p.client.js.PublishMsg(ctx, msg,
		jetstream.WithMsgID(fmt.Sprintf("%s-%s-%d", event.Type, event.TaskID, event.OccurredAt.UnixNano())),
	)
	if err != nil {
		return fmt.Errorf("failed to publish task event: %w", err)
	}

	logger.DebugContext(ctx, "Task event published",
		"type", event.Type,
		"task_id", event.TaskID,
		"stream", ack.Stream,
		"sequence", ack.Sequence,
	)
	return nil
}

// NoopPublisher drops events; used when NATS_URL is not configured.
type NoopPublisher struct{}

func NewNoopPublisher() ports.TaskEventPublisherPort {
	return NoopPublisher{}
}

func (NoopPublisher) Publish(context.Context, *ports.TaskEvent) error {
	return nil
}
