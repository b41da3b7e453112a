package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"fno-signals/internal/models"
)

// KafkaChannel publishes signals to a Kafka topic for downstream
// consumers.
type KafkaChannel struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaChannel connects a synchronous producer to the brokers.
func NewKafkaChannel(brokers []string, topic string) (*KafkaChannel, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Return.Successes = true
	config.Version = sarama.V2_8_0_0

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("creating kafka producer: %w", err)
	}
	return &KafkaChannel{producer: producer, topic: topic}, nil
}

func (k *KafkaChannel) Name() string { return "kafka" }

// Send publishes the signal as JSON keyed by instrument, so one
// instrument's signals stay ordered within a partition.
func (k *KafkaChannel) Send(ctx context.Context, sig *models.Signal) error {
	payload, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("marshaling signal: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(sig.Instrument),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := k.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("publishing signal %s: %w", sig.ID, err)
	}
	return nil
}

// Close shuts down the producer.
func (k *KafkaChannel) Close() error {
	return k.producer.Close()
}
