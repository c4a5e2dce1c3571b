package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/nao1215/spider/internal/model"
)

// DefaultTopic is used when neither the tag nor the options name a topic.
const DefaultTopic = "spider"

// MessageWriter is the part of *kafka.Writer the sink uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaOptions configures a Kafka sink.
type KafkaOptions struct {
	// Brokers are the bootstrap addresses.
	Brokers []string

	// Topic is the default topic.
	Topic string
}

// Kafka publishes each data row as a JSON object keyed by header.
type Kafka struct {
	writer MessageWriter
	topic  string
}

// NewKafka creates a sink backed by a kafka-go writer.
// The writer does not connect until the first Save.
func NewKafka(opts KafkaOptions) (*Kafka, error) {
	if len(opts.Brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	// Topic is left empty on the writer so each message can pick its own.
	w := &kafka.Writer{
		Addr:                   kafka.TCP(opts.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
	}
	return NewKafkaWithWriter(w, opts.Topic), nil
}

// NewKafkaWithWriter creates a sink on an existing writer.
func NewKafkaWithWriter(w MessageWriter, topic string) *Kafka {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Kafka{writer: w, topic: topic}
}

// Save implements Sink. All rows are written in one batch.
func (k *Kafka) Save(ctx context.Context, matrix model.Matrix, tag string) error {
	if err := checkMatrix(matrix); err != nil {
		return err
	}
	rows := matrix.Maps()
	if len(rows) == 0 {
		return nil
	}

	topic := k.topic
	if tag != "" {
		topic = tag
	}

	msgs := make([]kafka.Message, len(rows))
	for i, row := range rows {
		value, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to encode row %d: %w", i+1, err)
		}
		msgs[i] = kafka.Message{Topic: topic, Value: value}
	}

	if err := k.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (k *Kafka) Close() error {
	return k.writer.Close()
}
