package retry

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type capturingPublisher struct {
	topic   string
	key     string
	data    interface{}
	headers map[string]string
	err     error
}

func (p *capturingPublisher) PublishJSON(ctx context.Context, topic, key string, data interface{}, headers map[string]string) error {
	p.topic = topic
	p.key = key
	p.data = data
	p.headers = headers
	return p.err
}

func TestGetDLQTopicSuffix(t *testing.T) {
	p := NewKafkaDLQPublisher(&capturingPublisher{}, nil)

	if got := p.GetDLQTopic("participation-events"); got != "participation-events.dlq" {
		t.Errorf("GetDLQTopic = %s, want participation-events.dlq", got)
	}
}

func TestGetDLQTopicPrefix(t *testing.T) {
	p := NewKafkaDLQPublisher(&capturingPublisher{}, &DLQConfig{
		TopicPrefix: "dlq.",
		UsePrefix:   true,
	})

	if got := p.GetDLQTopic("participation-events"); got != "dlq.participation-events" {
		t.Errorf("GetDLQTopic = %s, want dlq.participation-events", got)
	}
}

func TestPublishToDLQ(t *testing.T) {
	capture := &capturingPublisher{}
	p := NewKafkaDLQPublisher(capture, &DLQConfig{
		TopicSuffix: ".dlq",
		Source:      "admission-service",
	})

	msg := &DLQMessage{
		ID:             "msg-1",
		OriginalTopic:  "participation-events",
		OriginalKey:    "event-42",
		Payload:        json.RawMessage(`{"type":"request.admitted"}`),
		Headers:        map[string]string{"event_type": "request.admitted"},
		Error:          "broker unreachable",
		Attempts:       4,
		FirstAttemptAt: time.Now().Add(-time.Minute),
		LastAttemptAt:  time.Now(),
	}

	if err := p.PublishToDLQ(context.Background(), msg); err != nil {
		t.Fatalf("PublishToDLQ returned error: %v", err)
	}

	if capture.topic != "participation-events.dlq" {
		t.Errorf("topic = %s, want participation-events.dlq", capture.topic)
	}
	if capture.key != "event-42" {
		t.Errorf("key = %s, want event-42", capture.key)
	}
	if msg.Source != "admission-service" {
		t.Errorf("Source = %s, want admission-service", msg.Source)
	}
	if msg.MovedToDLQAt.IsZero() {
		t.Error("MovedToDLQAt not set")
	}
	if capture.headers["original_topic"] != "participation-events" {
		t.Errorf("original_topic header = %s", capture.headers["original_topic"])
	}
	if capture.headers["original_event_type"] != "request.admitted" {
		t.Errorf("original_event_type header = %s", capture.headers["original_event_type"])
	}
}

func TestPublishToDLQNilMessage(t *testing.T) {
	p := NewKafkaDLQPublisher(&capturingPublisher{}, nil)

	if err := p.PublishToDLQ(context.Background(), nil); err == nil {
		t.Error("expected error for nil message")
	}
}

func TestPublishToDLQPropagatesProducerError(t *testing.T) {
	wantErr := errors.New("produce failed")
	p := NewKafkaDLQPublisher(&capturingPublisher{err: wantErr}, nil)

	err := p.PublishToDLQ(context.Background(), &DLQMessage{OriginalTopic: "t"})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}

func TestNoOpDLQPublisher(t *testing.T) {
	p := NewNoOpDLQPublisher()

	if err := p.PublishToDLQ(context.Background(), &DLQMessage{}); err != nil {
		t.Errorf("PublishToDLQ = %v, want nil", err)
	}
	if got := p.GetDLQTopic("events"); got != "events.dlq" {
		t.Errorf("GetDLQTopic = %s, want events.dlq", got)
	}
}
