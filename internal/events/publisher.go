// Package events publishes committed orders to Kafka so downstream consumers
// (analytics, receipts) can react without polling the history table.
package events

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/yuchialin/canteend/internal/models"
)

type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaPublisher(brokerList, topic string) (*KafkaPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // Must be true for SyncProducer
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second

	brokers := strings.Split(brokerList, ",")
	producer, err := sarama.NewSyncProducer(brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Printf("Kafka producer created successfully with brokers %v", brokers)
	return &KafkaPublisher{producer: producer, topic: topic}, nil
}

func (k *KafkaPublisher) PublishCommitted(record models.HistoryRecord) error {
	if k.producer == nil {
		return fmt.Errorf("Kafka producer is closed")
	}

	msg, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode order event: %w", err)
	}

	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(record.OwnerID),
		Value: sarama.ByteEncoder(msg),
	})
	if err != nil {
		return fmt.Errorf("failed to send order event to topic %s: %w", k.topic, err)
	}
	return nil
}

func (k *KafkaPublisher) Close() error {
	if k.producer != nil {
		return k.producer.Close()
	}
	return nil
}
