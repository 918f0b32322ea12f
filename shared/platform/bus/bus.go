package bus

import "context"

type Keyer interface {
	PartitionKey() string
}

// Handler reacciona a un evento de dominio. Se ejecuta en la goroutine de quien publica,
// así que no debe bloquear: el trabajo real se delega a una cola.
type Handler func(ctx context.Context, payload interface{})

// EventDispatcher es el pub/sub en proceso para eventos de dominio.
// Publish invoca, en orden de registro, todos los handlers del nombre dado.
// Un nombre sin handlers no es un error.
type EventDispatcher interface {
	Subscribe(eventName string, handler Handler)
	Publish(ctx context.Context, eventName string, payload interface{})
}

// La semántica de topic/nombre y formato del payload la decides en los adapters.
type EventBus interface {
	Publish(ctx context.Context, event interface{}) error
}
