package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/coffeestats/coffee-trade-etl/internal/config"
	"github.com/coffeestats/coffee-trade-etl/internal/logging"
	"github.com/coffeestats/coffee-trade-etl/internal/types"
)

var p *kafka.Producer = nil
var log *logrus.Logger = nil

func producerConfig(cfg *config.Config) kafka.ConfigMap {
	if cfg.KafkaSASLMechanism != "" {
		return kafka.ConfigMap{
			"bootstrap.servers":        cfg.KafkaBootstrapServers,
			"go.delivery.reports":      true,
			"security.protocol":        cfg.KafkaSecurityProtocol,
			"sasl.mechanism":           cfg.KafkaSASLMechanism,
			"ssl.ca.location":          cfg.KafkaCA,
			"sasl.username":            cfg.KafkaUsername,
			"sasl.password":            cfg.KafkaPassword,
			"allow.auto.create.topics": true,
		}
	}
	return kafka.ConfigMap{
		"bootstrap.servers":        cfg.KafkaBootstrapServers,
		"go.delivery.reports":      true,
		"allow.auto.create.topics": true,
	}
}

func startProducer() error {
	configMap := producerConfig(config.GetConfig())
	producer, err := kafka.NewProducer(&configMap)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	p = producer
	return nil
}

func SendMessage(msg []byte, topic string, key string) error {
	if p == nil {
		log = logging.GetLogger()
		log.Info("initializing kafka producer")
		if err := startProducer(); err != nil {
			log.Error(err)
			return err
		}
	}
	delivery_chan := make(chan kafka.Event)
	defer close(delivery_chan)
	err := p.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          msg,
	}, delivery_chan)
	if err != nil {
		log.Errorf("Failed to produce message to kafka: %v\n", err)
		return err
	}
	e := <-delivery_chan
	m := e.(*kafka.Message)
	if m.TopicPartition.Error != nil {
		log.Errorf("Delivery failed: %v\n", m.TopicPartition.Error)
		return m.TopicPartition.Error
	}
	log.Debugf("Delivered message to topic %s [%d] at offset %v\n",
		*m.TopicPartition.Topic, m.TopicPartition.Partition, m.TopicPartition.Offset)
	return nil
}

// EncodeRunEvent validates event and returns its JSON encoding.
func EncodeRunEvent(event types.RunEvent) ([]byte, error) {
	if err := validator.New().Struct(event); err != nil {
		return nil, fmt.Errorf("invalid run event: %w", err)
	}
	return json.Marshal(event)
}

// PublishRunEvent sends event to topic keyed by its run id.
func PublishRunEvent(event types.RunEvent, topic string) error {
	msg, err := EncodeRunEvent(event)
	if err != nil {
		return err
	}
	return SendMessage(msg, topic, event.Run_id)
}

// Close flushes pending deliveries and closes the producer.
func Close() {
	if p == nil {
		return
	}
	p.Flush(5000)
	p.Close()
	p = nil
}
