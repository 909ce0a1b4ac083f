package membership

import (
	"context"
	"encoding/json"
	"time"

	"github.com/devexchange/orgs-backend/v1/model"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of kafka.Writer the producer needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes membership notifications to Kafka instead of mailing them inline
type Producer struct {
	Writer MessageWriter
}

// NewProducer initializes a Kafka writer for membership events
func NewProducer(brokers []string, topic string, transport *kafka.Transport) *Producer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
	if transport != nil {
		w.Transport = transport
	}
	return &Producer{Writer: w}
}

// SendMessages publishes one MembershipEvent keyed by org so events of an org stay ordered
func (p *Producer) SendMessages(ctx context.Context, notification string, recipients []model.User, data model.MessageData) error {
	event := MembershipEvent{
		EventType:     EventTypePrefix + notification,
		EventID:       uuid.New().String(),
		EventTime:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
		Notification:  notification,
		Recipients:    recipients,
		Data:          data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var key []byte
	if data.Org != nil {
		key = []byte(data.Org.Key)
	}

	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: payload,
	})
}

// Close cleans up the Kafka writer
func (p *Producer) Close() error {
	return p.Writer.Close()
}
