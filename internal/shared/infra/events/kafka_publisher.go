package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedBus "github.com/davicafu/hexasalon/shared/platform/bus"
)

// MessageWriter es el subconjunto de *kafka.Writer que usamos; permite fakes en tests.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	writer MessageWriter
	log    *zap.Logger
}

func NewKafkaPublisher(writer MessageWriter, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, log: log}
}

// Publish serializa el evento a JSON; si implementa Keyer se usa como clave de partición.
func (p *KafkaPublisher) Publish(ctx context.Context, event interface{}) error {
	var key string
	if keyer, ok := event.(sharedBus.Keyer); ok {
		key = keyer.PartitionKey()
	}
	return p.PublishWithKey(ctx, key, event)
}

// PublishWithKey publica con una clave explícita (vacía = reparto round-robin del writer).
func (p *KafkaPublisher) PublishWithKey(ctx context.Context, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{Value: data}
	if key != "" {
		msg.Key = []byte(key)
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("Error publishing to Kafka", zap.String("key", key), zap.Error(err))
		return err
	}

	p.log.Debug("Event published successfully", zap.String("key", key))
	return nil
}

// Verificación estática
var _ sharedBus.EventBus = (*KafkaPublisher)(nil)
