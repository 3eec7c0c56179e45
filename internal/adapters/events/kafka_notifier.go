package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

// KafkaNotifier publishes invitation notices for the mailer to pick up.
type KafkaNotifier struct {
	writer *kafka.Writer
	topic  string
	nowFn  func() time.Time
}

func NewKafkaNotifier(brokers []string, topic string) (*KafkaNotifier, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka notifier requires at least one broker")
	}
	if topic == "" {
		topic = EventInvitationCreated
	}
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topic: topic,
		nowFn: func() time.Time { return time.Now().UTC() },
	}, nil
}

// Envelope is the message body written to the topic.
type Envelope struct {
	EventID    string                 `json:"event_id"`
	EventType  string                 `json:"event_type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       ports.InvitationNotice `json:"data"`
}

// BuildInvitationMessage keys messages by email so notices for one
// recipient stay ordered on a partition.
func BuildInvitationMessage(topic string, notice ports.InvitationNotice, now time.Time) (kafka.Message, error) {
	payload, err := json.Marshal(Envelope{
		EventID:    uuid.NewString(),
		EventType:  EventInvitationCreated,
		OccurredAt: now,
		Data:       notice,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal invitation notice: %w", err)
	}
	return kafka.Message{
		Topic: topic,
		Key:   []byte(notice.Email),
		Value: payload,
		Time:  now,
	}, nil
}

func (n *KafkaNotifier) NotifyInvitation(ctx context.Context, notice ports.InvitationNotice) error {
	msg, err := BuildInvitationMessage(n.topic, notice, n.nowFn())
	if err != nil {
		return err
	}
	return n.writer.WriteMessages(ctx, msg)
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
