package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers       []string
	ClientID      string
	MaxRetries    int
	RetryInterval time.Duration
	LingerMs      int
}

// DefaultProducerConfig returns default producer configuration
func DefaultProducerConfig() *ProducerConfig {
	return &ProducerConfig{
		Brokers:       []string{"localhost:9092"},
		ClientID:      "admission-service",
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		LingerMs:      10,
	}
}

// Message is a Kafka record to produce
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Producer wraps a franz-go client for producing messages
type Producer struct {
	client *kgo.Client
	config *ProducerConfig
}

// NewProducer creates a new Kafka producer with retry logic on the initial ping
func NewProducer(ctx context.Context, cfg *ProducerConfig) (*Producer, error) {
	if cfg == nil {
		cfg = DefaultProducerConfig()
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.ProducerLinger(time.Duration(cfg.LingerMs) * time.Millisecond),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	// Verify broker connectivity with retry
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	interval := cfg.RetryInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(interval)
		}
		if lastErr = client.Ping(ctx); lastErr == nil {
			return &Producer{client: client, config: cfg}, nil
		}
	}

	client.Close()
	return nil, fmt.Errorf("failed to connect to kafka after %d attempts: %w", maxRetries+1, lastErr)
}

// Produce sends a message and waits for the broker acknowledgment
func (p *Producer) Produce(ctx context.Context, msg *Message) error {
	record := p.toRecord(msg)

	result := p.client.ProduceSync(ctx, record)
	if err := result.FirstErr(); err != nil {
		return fmt.Errorf("failed to produce message to %s: %w", msg.Topic, err)
	}
	return nil
}

// ProduceJSON marshals data and sends it as a message to the given topic
func (p *Producer) ProduceJSON(ctx context.Context, topic, key string, data interface{}, headers map[string]string) error {
	value, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal message for %s: %w", topic, err)
	}
	return p.Produce(ctx, &Message{
		Topic:   topic,
		Key:     []byte(key),
		Value:   value,
		Headers: headers,
	})
}

// ProduceAsync sends a message without blocking on the acknowledgment
func (p *Producer) ProduceAsync(ctx context.Context, msg *Message) error {
	record := p.toRecord(msg)
	p.client.Produce(ctx, record, nil)
	return nil
}

// Flush waits for all buffered records to be produced
func (p *Producer) Flush(ctx context.Context) error {
	return p.client.Flush(ctx)
}

// Close flushes and closes the underlying client
func (p *Producer) Close() {
	if p.client != nil {
		p.client.Close()
	}
}

func (p *Producer) toRecord(msg *Message) *kgo.Record {
	record := &kgo.Record{
		Topic: msg.Topic,
		Key:   msg.Key,
		Value: msg.Value,
	}
	if !msg.Timestamp.IsZero() {
		record.Timestamp = msg.Timestamp
	}
	for k, v := range msg.Headers {
		record.Headers = append(record.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	return record
}
