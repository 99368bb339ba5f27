package events

import (
	"context"
	"time"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
)

// KafkaPublisher writes every event to one topic keyed by room, so events of
// a room stay ordered within a partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func kafkaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	cfg.Net.DialTimeout = 10 * time.Second
	cfg.Net.WriteTimeout = 30 * time.Second
	return cfg
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	p, err := sarama.NewSyncProducer(brokers, kafkaConfig())
	if err != nil {
		return nil, errors.Wrap(err, "kafka producer")
	}
	return &KafkaPublisher{producer: p, topic: topic}, nil
}

func (p *KafkaPublisher) message(e Envelope) (*sarama.ProducerMessage, error) {
	body, err := e.Encode()
	if err != nil {
		return nil, err
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(e.Type)},
			{Key: []byte("id"), Value: []byte(e.ID)},
		},
		Timestamp: e.OccurredAt,
	}
	if e.Key != "" {
		msg.Key = sarama.StringEncoder(e.Key)
	}
	return msg, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := p.message(e)
	if err != nil {
		return err
	}
	_, _, err = p.producer.SendMessage(msg)
	return errors.Wrap(err, "kafka send")
}

func (p *KafkaPublisher) Close() error {
	return errors.Wrap(p.producer.Close(), "close kafka producer")
}
