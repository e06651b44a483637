package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	kgo "github.com/segmentio/kafka-go"
)

const (
	ConfessionCreated  = "confession.created"
	ConfessionDeleted  = "confession.deleted"
	ConfessionReported = "confession.reported"
)

type Event struct {
	Type         string    `json:"type"`
	ConfessionID string    `json:"confession_id"`
	Mood         string    `json:"mood,omitempty"`
	ReportCount  int       `json:"report_count,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kgo.Message) error
	Close() error
}

type KafkaPublisher struct {
	w messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kgo.Writer{
		Addr:                   kgo.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kgo.Hash{},
		RequiredAcks:           kgo.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	log.Printf("[Events] Kafka publisher ready | brokers=%v topic=%s", brokers, topic)
	return &KafkaPublisher{w: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", e.Type, err)
	}

	msg := kgo.Message{
		Key:   []byte(e.ConfessionID),
		Value: b,
		Time:  e.OccurredAt,
		Headers: []kgo.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", e.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }

// Noop is used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// New picks the Kafka publisher when brokers are configured.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		log.Println("[Events] No Kafka brokers configured, events disabled")
		return Noop{}
	}
	return NewKafkaPublisher(brokers, topic)
}
