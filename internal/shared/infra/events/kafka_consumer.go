package events

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler define la interfaz que debe cumplir cualquier consumidor de eventos.
type MessageHandler interface {
	HandleMessage(ctx context.Context, key string, payload []byte)
}

// MessageReader es el subconjunto de *kafka.Reader que usa el adapter.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// ConsumerAdapter escucha un topic de Kafka y entrega cada mensaje al handler.
type ConsumerAdapter struct {
	reader  MessageReader
	handler MessageHandler
	topic   string
	log     *zap.Logger
}

func NewConsumerAdapter(reader MessageReader, topic string, handler MessageHandler, log *zap.Logger) *ConsumerAdapter {
	return &ConsumerAdapter{
		reader:  reader,
		handler: handler,
		topic:   topic,
		log:     log,
	}
}

// Start inicia el bucle de consumo en una goroutine y devuelve un canal que se
// cierra cuando el bucle termina.
func (c *ConsumerAdapter) Start(ctx context.Context) <-chan struct{} {
	c.log.Info("🎧 Iniciando consumidor de Kafka...", zap.String("topic", c.topic))

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for {
			// ReadMessage es una llamada bloqueante.
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				// Si el contexto se cancela, el error es normal y salimos limpiamente.
				if ctx.Err() != nil {
					c.log.Info("Consumidor de Kafka detenido.", zap.String("topic", c.topic))
					return
				}
				c.log.Error("Error al leer mensaje de Kafka", zap.String("topic", c.topic), zap.Error(err))
				continue
			}

			c.handler.HandleMessage(ctx, string(msg.Key), msg.Value)
		}
	}()
	return stopped
}
