package eventcollectorservice

import (
	"context"
	"encoding/json"
	"math/big"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	BLOCK_OVER       = "BlockOver"
	SYNC_KAFKA_EVENT = "Sync"
)

type syncEventData struct {
	Reserve0 *big.Int `json:"reserve0"`
	Reserve1 *big.Int `json:"reserve1"`
}

type pairEvent struct {
	Type        string         `json:"type"`
	Data        *syncEventData `json:"data,omitempty"`
	BlockNumber uint64         `json:"block_number"`
	Address     string         `json:"address,omitempty"`
	TxHash      string         `json:"tx_hash,omitempty"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaClientConfig struct {
	KafkaTopic  string
	KafkaServer string
}

type kafkaClient struct {
	writer messageWriter
}

func newKafkaClient(config kafkaClientConfig) kafkaClient {
	return kafkaClient{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(config.KafkaServer),
			Topic:        config.KafkaTopic,
			BatchTimeout: 1 * time.Millisecond,
			Async:        false,
		},
	}
}

func (c *kafkaClient) sendPairEvents(ctx context.Context, events ...pairEvent) error {
	messages := make([]kafka.Message, len(events))
	for i, event := range events {
		eventJSON, err := json.Marshal(&event)
		if err != nil {
			return err
		}
		messages[i] = kafka.Message{
			Key:   []byte(event.Address),
			Value: eventJSON,
		}
	}

	return c.writer.WriteMessages(ctx, messages...)
}

func (c *kafkaClient) close() error {
	return c.writer.Close()
}
