package mq

import (
	"context"
	"time"
)

// MessageQueue is the unified interface for durable queue operations.
// The abstraction keeps the workers independent of the broker
// implementation (Kafka today, anything with at-least-once delivery
// tomorrow).
type MessageQueue interface {
	Producer
	Consumer

	// Ping verifies the broker connection is alive.
	Ping(ctx context.Context) error

	// Close closes the broker connection.
	Close() error
}

// Producer publishes messages to a topic.
type Producer interface {
	// Publish persists a message durably and returns once the broker
	// acknowledges receipt.
	Publish(ctx context.Context, topic string, message *Message) error
}

// Consumer subscribes to topics and processes messages.
type Consumer interface {
	// Subscribe registers a handler for a topic. A nil error from the
	// handler acknowledges the message; an error leaves it in-flight
	// for redelivery per the subscribe options.
	Subscribe(ctx context.Context, topic string, handler HandlerFunc, opts *SubscribeOptions) error

	// Start starts consuming messages for all subscriptions.
	Start() error

	// Stop drains in-flight handlers and stops consumption.
	Stop() error
}

// Message is one unit of work on a queue.
type Message struct {
	ID         string            `json:"id"`
	Body       []byte            `json:"body"`
	Headers    map[string]string `json:"headers"`
	Timestamp  time.Time         `json:"timestamp"`
	RetryCount int               `json:"retry_count"`
}

// HandlerFunc processes one message. Returning nil acknowledges it.
type HandlerFunc func(ctx context.Context, message *Message) error

// SubscribeOptions controls consumption behavior for one subscription.
type SubscribeOptions struct {
	// ConsumerGroup names the consumer group sharing the topic.
	ConsumerGroup string

	// Workers caps concurrent handlers. Each worker slot holds at most
	// one in-flight message; the fetch loop does not read ahead of the
	// pool (bounded prefetch of one per slot).
	Workers int

	// MaxRetries bounds handler retries before the message is dropped
	// or dead-lettered. Zero means retry indefinitely.
	MaxRetries int

	// RetryDelay is the fixed delay between handler retries.
	RetryDelay time.Duration

	// ReconnectDelay is the fixed delay between broker reconnect
	// attempts. Reconnects are unbounded: consumption simply stalls
	// until the broker returns.
	ReconnectDelay time.Duration

	// DeadLetterTopic, when set, receives messages that exhausted
	// MaxRetries instead of being dropped.
	DeadLetterTopic string
}

// SetDefaults fills zero-valued options.
func (o *SubscribeOptions) SetDefaults() {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = time.Second
	}
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = 5 * time.Second
	}
}

// NewMessage creates a message with the given body.
func NewMessage(body []byte) *Message {
	return &Message{
		Body:      body,
		Headers:   make(map[string]string),
		Timestamp: time.Now(),
	}
}

// SetHeader sets a header value.
func (m *Message) SetHeader(key, value string) {
	if m.Headers == nil {
		m.Headers = make(map[string]string)
	}
	m.Headers[key] = value
}

// GetHeader retrieves a header value.
func (m *Message) GetHeader(key string) (string, bool) {
	if m.Headers == nil {
		return "", false
	}
	val, ok := m.Headers[key]
	return val, ok
}
