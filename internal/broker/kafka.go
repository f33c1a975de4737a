// Package broker publishes committed participation changes to the change stream.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
)

// envelope is the JSON value written for every change.
type envelope struct {
	Topic      string             `json:"topic"`
	OccurredAt time.Time          `json:"occurred_at"`
	Payload    domain.ChangeEvent `json:"payload"`
}

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes change events to one kafka topic. A nil
// *KafkaPublisher is valid and drops everything.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaPublisher returns nil when no brokers are configured.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaPublisher{writer: writer, topic: topic}
}

// Publish serializes evt and writes it keyed by its subject so changes to the
// same club or event stay ordered within a partition.
func (p *KafkaPublisher) Publish(ctx context.Context, evt domain.ChangeEvent) error {
	if p == nil || p.writer == nil || evt == nil {
		return nil
	}
	payload, err := json.Marshal(envelope{Topic: evt.Topic(), OccurredAt: time.Now().UTC(), Payload: evt})
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	logger.ExternalServiceCall("kafka", "WriteMessages", "topic", p.topic, "type", evt.Topic())
	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(messageKey(evt)),
		Value: payload,
	})
	logger.ExternalServiceResult("kafka", "WriteMessages", err, "type", evt.Topic())
	return err
}

// Close closes the kafka writer. Safe on a nil publisher.
func (p *KafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func messageKey(evt domain.ChangeEvent) string {
	switch e := evt.(type) {
	case domain.MembershipChanged:
		return fmt.Sprintf("club-%d", e.ClubID)
	case *domain.MembershipChanged:
		return fmt.Sprintf("club-%d", e.ClubID)
	case domain.EnrollmentChanged:
		return fmt.Sprintf("event-%d", e.EventID)
	case *domain.EnrollmentChanged:
		return fmt.Sprintf("event-%d", e.EventID)
	case domain.AnnouncementPosted:
		return fmt.Sprintf("event-%d", e.EventID)
	case *domain.AnnouncementPosted:
		return fmt.Sprintf("event-%d", e.EventID)
	default:
		return evt.Topic()
	}
}
