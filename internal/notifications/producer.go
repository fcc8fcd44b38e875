package notifications

import (
	"context"
	"fmt"
	"time"

	"stagepass/pkg/logger"

	"github.com/IBM/sarama"
)

// Publisher enqueues outbound notifications. Calls are fire-and-forget from
// the caller's perspective; failures are logged, never propagated into the
// booking flow.
type Publisher interface {
	Publish(ctx context.Context, message *Message) error
	Close() error
}

// ProducerConfig contains configuration for the Kafka publisher
type ProducerConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	Timeout          time.Duration
	RequiredAcks     sarama.RequiredAcks
	Compression      sarama.CompressionCodec
	IdempotentWrites bool
}

// DefaultProducerConfig returns a default publisher configuration
func DefaultProducerConfig(brokers []string, topic string) *ProducerConfig {
	return &ProducerConfig{
		Brokers:          brokers,
		Topic:            topic,
		RetryMax:         3,
		Timeout:          10 * time.Second,
		RequiredAcks:     sarama.WaitForAll,
		Compression:      sarama.CompressionSnappy,
		IdempotentWrites: true,
	}
}

// KafkaPublisher publishes notification messages to Kafka
type KafkaPublisher struct {
	producer sarama.SyncProducer
	config   *ProducerConfig
	log      *logger.Logger
}

// NewKafkaPublisher creates a publisher backed by a sarama sync producer
func NewKafkaPublisher(config *ProducerConfig) (*KafkaPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.Compression
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = config.Timeout
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps one recipient's messages ordered
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &KafkaPublisher{
		producer: producer,
		config:   config,
		log:      logger.GetDefault(),
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, message *Message) error {
	payload, err := message.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	kafkaMessage := &sarama.ProducerMessage{
		Topic:     p.config.Topic,
		Key:       sarama.StringEncoder(message.PartitionKey()),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: message.CreatedAt,
		Headers: []sarama.RecordHeader{
			{Key: []byte("notification_id"), Value: []byte(message.ID.String())},
			{Key: []byte("notification_type"), Value: []byte(message.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(kafkaMessage)
	if err != nil {
		return fmt.Errorf("failed to send notification to Kafka: %w", err)
	}

	p.log.InfoWithContext(ctx, "notification published", map[string]interface{}{
		"type":      string(message.Type),
		"recipient": message.RecipientEmail,
		"partition": partition,
		"offset":    offset,
	})
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		if err := p.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}

// NopPublisher drops messages. Used when Kafka is not configured so the
// booking flow keeps working in development.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, message *Message) error { return nil }
func (NopPublisher) Close() error                                        { return nil }
