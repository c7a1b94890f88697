package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eventlane/admission-service/internal/domain"
	"github.com/eventlane/admission-service/pkg/kafka"
	"github.com/eventlane/admission-service/pkg/retry"
	"github.com/google/uuid"
)

// RequestEventType identifies a request lifecycle event on the wire
type RequestEventType string

const (
	RequestEventAdmitted  RequestEventType = "request.admitted"
	RequestEventConfirmed RequestEventType = "request.confirmed"
	RequestEventRejected  RequestEventType = "request.rejected"
	RequestEventCanceled  RequestEventType = "request.canceled"
)

// RequestEvent is the payload published for each lifecycle transition
type RequestEvent struct {
	EventID     string                       `json:"event_id"`
	Type        RequestEventType             `json:"type"`
	Request     *domain.ParticipationRequest `json:"request"`
	PublishedAt time.Time                    `json:"published_at"`
}

// Key returns the partition key; all events of one event stay ordered
func (e *RequestEvent) Key() string {
	return e.Request.EventID
}

// RequestPublisher defines the interface for publishing request lifecycle events
type RequestPublisher interface {
	// PublishAdmitted publishes an event for a newly admitted request
	PublishAdmitted(ctx context.Context, req *domain.ParticipationRequest) error

	// PublishConfirmed publishes an event for an owner-confirmed request
	PublishConfirmed(ctx context.Context, req *domain.ParticipationRequest) error

	// PublishRejected publishes an event for a rejected request
	PublishRejected(ctx context.Context, req *domain.ParticipationRequest) error

	// PublishCanceled publishes an event for a requester-canceled request
	PublishCanceled(ctx context.Context, req *domain.ParticipationRequest) error

	// Close closes the publisher
	Close() error
}

// KafkaRequestPublisher implements RequestPublisher using Kafka
type KafkaRequestPublisher struct {
	producer    *kafka.Producer
	dlq         retry.DLQPublisher
	topic       string
	serviceName string
}

// RequestPublisherConfig contains configuration for the request publisher
type RequestPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaRequestPublisher creates a new Kafka request publisher
func NewKafkaRequestPublisher(ctx context.Context, cfg *RequestPublisherConfig) (*KafkaRequestPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("request publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "participation-events"
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "admission-service"
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "admission-service-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:  cfg.Brokers,
		ClientID: clientID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	dlq := retry.NewKafkaDLQPublisher(
		&retry.KafkaProducerAdapter{Producer: producer},
		&retry.DLQConfig{TopicSuffix: ".dlq", Source: serviceName},
	)

	return &KafkaRequestPublisher{
		producer:    producer,
		dlq:         dlq,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishAdmitted publishes an event for a newly admitted request
func (p *KafkaRequestPublisher) PublishAdmitted(ctx context.Context, req *domain.ParticipationRequest) error {
	return p.publish(ctx, RequestEventAdmitted, req)
}

// PublishConfirmed publishes an event for an owner-confirmed request
func (p *KafkaRequestPublisher) PublishConfirmed(ctx context.Context, req *domain.ParticipationRequest) error {
	return p.publish(ctx, RequestEventConfirmed, req)
}

// PublishRejected publishes an event for a rejected request
func (p *KafkaRequestPublisher) PublishRejected(ctx context.Context, req *domain.ParticipationRequest) error {
	return p.publish(ctx, RequestEventRejected, req)
}

// PublishCanceled publishes an event for a requester-canceled request
func (p *KafkaRequestPublisher) PublishCanceled(ctx context.Context, req *domain.ParticipationRequest) error {
	return p.publish(ctx, RequestEventCanceled, req)
}

// Close closes the publisher
func (p *KafkaRequestPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

func (p *KafkaRequestPublisher) publish(ctx context.Context, eventType RequestEventType, req *domain.ParticipationRequest) error {
	event := &RequestEvent{
		EventID:     uuid.New().String(),
		Type:        eventType,
		Request:     req,
		PublishedAt: time.Now(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.Key()),
		Value: value,
		Headers: map[string]string{
			"event_type":   string(eventType),
			"event_id":     event.EventID,
			"source":       p.serviceName,
			"content_type": "application/json",
		},
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		// Park the event on the DLQ topic so a lost broker ack never
		// silently drops a lifecycle notification
		dlqErr := p.dlq.PublishToDLQ(ctx, &retry.DLQMessage{
			ID:             event.EventID,
			OriginalTopic:  p.topic,
			OriginalKey:    event.Key(),
			Payload:        value,
			Headers:        msg.Headers,
			Error:          err.Error(),
			Attempts:       1,
			FirstAttemptAt: event.PublishedAt,
			LastAttemptAt:  time.Now(),
		})
		if dlqErr != nil {
			return fmt.Errorf("failed to publish %s event: %w", eventType, err)
		}
		return nil
	}
	return nil
}

// NoOpRequestPublisher is a no-op implementation of RequestPublisher
type NoOpRequestPublisher struct{}

// NewNoOpRequestPublisher creates a new no-op request publisher
func NewNoOpRequestPublisher() *NoOpRequestPublisher {
	return &NoOpRequestPublisher{}
}

// PublishAdmitted is a no-op
func (p *NoOpRequestPublisher) PublishAdmitted(ctx context.Context, req *domain.ParticipationRequest) error {
	return nil
}

// PublishConfirmed is a no-op
func (p *NoOpRequestPublisher) PublishConfirmed(ctx context.Context, req *domain.ParticipationRequest) error {
	return nil
}

// PublishRejected is a no-op
func (p *NoOpRequestPublisher) PublishRejected(ctx context.Context, req *domain.ParticipationRequest) error {
	return nil
}

// PublishCanceled is a no-op
func (p *NoOpRequestPublisher) PublishCanceled(ctx context.Context, req *domain.ParticipationRequest) error {
	return nil
}

// Close is a no-op
func (p *NoOpRequestPublisher) Close() error {
	return nil
}

// Ensure implementations satisfy RequestPublisher
var (
	_ RequestPublisher = (*KafkaRequestPublisher)(nil)
	_ RequestPublisher = (*NoOpRequestPublisher)(nil)
)
