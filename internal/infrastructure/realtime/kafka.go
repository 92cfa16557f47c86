package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sirupsen/logrus"
)

// KafkaPublisher writes new-order events to a topic, keyed by order id so
// events for one order stay on one partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      logrus.FieldLogger
}

// NewKafkaProducer connects a synchronous producer that waits for all in-sync replicas.
func NewKafkaProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to start Sarama producer: %w", err)
	}
	return producer, nil
}

// NewKafkaPublisher creates a publisher on topic.
func NewKafkaPublisher(producer sarama.SyncProducer, topic string, log logrus.FieldLogger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, log: log}
}

func (p *KafkaPublisher) PublishNewOrder(_ context.Context, order *entity.Order) error {
	payload, err := json.Marshal(newOrderMessage(order))
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(order.ID.String()),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send to kafka topic %s: %w", p.topic, err)
	}
	p.log.WithFields(logrus.Fields{
		"order_id":  order.ID,
		"topic":     p.topic,
		"partition": partition,
		"offset":    offset,
	}).Debug("New order event sent")
	return nil
}

// Close flushes and closes the producer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
