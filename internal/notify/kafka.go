package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ipguard/internal/platform/kafka/producer"
)

const sinkKafka = "kafka"

// Producer is the subset of the Kafka producer the sink needs.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// Kafka publishes notifications as JSON records keyed by principal id.
type Kafka struct {
	producer Producer
	topic    string
}

func NewKafka(p Producer, topic string) (*Kafka, error) {
	if p == nil {
		return nil, errors.New("kafka producer is required")
	}
	if topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	return &Kafka{producer: p, topic: topic}, nil
}

func (k *Kafka) Send(ctx context.Context, n Notification) error {
	value, err := json.Marshal(n)
	if err != nil {
		return &Error{Sink: sinkKafka, Err: fmt.Errorf("encode notification: %w", err)}
	}
	msg := &producer.Message{
		Topic: k.topic,
		Key:   []byte(n.Principal.String()),
		Value: value,
		Headers: map[string]string{
			"kind": string(n.Kind),
		},
	}
	if err := k.producer.Produce(ctx, msg); err != nil {
		return &Error{Sink: sinkKafka, Err: err}
	}
	return nil
}
