package kafka

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"

	"hrflow/internal/domain/notifications"
	"hrflow/internal/platform/config"
)

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, notifications.Event) error {
	return nil
}

func (noopPublisher) Close() error {
	return nil
}

// Publisher writes notification events to a single topic.
type Publisher struct {
	writer *kafkago.Writer
}

type PublishCloser interface {
	notifications.Publisher
	Close() error
}

func New(cfg config.Config) PublishCloser {
	if len(cfg.KafkaBrokers) == 0 || cfg.KafkaNotificationTopic == "" {
		return noopPublisher{}
	}
	return &Publisher{writer: &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaNotificationTopic,
		Balancer:               &kafkago.LeastBytes{},
		AllowAutoTopicCreation: true,
	}}
}

func (p *Publisher) Publish(ctx context.Context, evt notifications.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(evt.Recipient),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(evt.Template)},
		},
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
