package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/NguyenZak/longhai-ticket-sub001/pkg/logger"

	"github.com/IBM/sarama"
)

// Publisher emits booking change messages after the ledger commits
type Publisher interface {
	PublishBookingEvent(ctx context.Context, msg *BookingMessage) error
	Close() error
}

// KafkaProducerConfig contains configuration for the booking event producer
type KafkaProducerConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	Timeout          time.Duration
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig(brokers []string, topic string) *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          brokers,
		Topic:            topic,
		RetryMax:         3,
		Timeout:          10 * time.Second,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000,
	}
}

// SaramaConfig builds the sarama producer settings
func (c *KafkaProducerConfig) SaramaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.RequiredAcks = c.RequiredAcks
	cfg.Producer.Compression = c.CompressionType
	cfg.Producer.Retry.Max = c.RetryMax
	cfg.Producer.Timeout = c.Timeout
	cfg.Producer.Idempotent = c.IdempotentWrites
	cfg.Producer.MaxMessageBytes = c.MaxMessageBytes
	cfg.Producer.Partitioner = sarama.NewHashPartitioner

	if c.IdempotentWrites {
		cfg.Net.MaxOpenRequests = 1
	}
	return cfg
}

// KafkaPublisher publishes booking messages with a sync producer
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewKafkaPublisher dials the brokers and returns a ready publisher
func NewKafkaPublisher(config *KafkaProducerConfig, log *logger.Logger) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(config.Brokers, config.SaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, config.Topic, log), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		log:      log.WithComponent("booking-publisher"),
	}
}

func (p *KafkaPublisher) PublishBookingEvent(ctx context.Context, msg *BookingMessage) error {
	payload, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal booking message: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(msg.PartitionKey()),
		Value:     sarama.ByteEncoder(payload),
		Headers:   createHeaders(msg),
		Timestamp: msg.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("failed to send booking message to Kafka: %w", err)
	}

	p.log.DebugContext(ctx, "Booking message published",
		"topic", p.topic,
		"partition", partition,
		"offset", offset,
		"type", string(msg.Type),
		"booking_id", msg.BookingID.String(),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}

func createHeaders(msg *BookingMessage) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("message_type"), Value: []byte(msg.Type)},
		{Key: []byte("booking_id"), Value: []byte(msg.BookingID.String())},
		{Key: []byte("tier_id"), Value: []byte(msg.TierID.String())},
		{Key: []byte("event_id"), Value: []byte(msg.EventID.String())},
		{Key: []byte("version"), Value: []byte("1")},
		{Key: []byte("producer"), Value: []byte("ticketing-ledger")},
	}
}

// NoopPublisher drops messages. Used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishBookingEvent(context.Context, *BookingMessage) error { return nil }
func (NoopPublisher) Close() error                                             { return nil }
