package bus

import (
	"context"
	"sync"

	sharedBus "github.com/davicafu/hexasalon/shared/platform/bus"
)

// InMemoryDispatcher implementa el pub/sub de eventos de dominio dentro del proceso.
// Publish es síncrono: corre los handlers en la goroutine de quien publica.
type InMemoryDispatcher struct {
	handlers map[string][]sharedBus.Handler
	mu       sync.RWMutex
}

// Verifica en tiempo de compilación que cumple la interfaz
var _ sharedBus.EventDispatcher = (*InMemoryDispatcher)(nil)

func NewInMemoryDispatcher() *InMemoryDispatcher {
	return &InMemoryDispatcher{
		handlers: make(map[string][]sharedBus.Handler),
	}
}

// Subscribe añade el handler al final de la lista del evento. No deduplica:
// evitar registros dobles es responsabilidad de quien arma los bindings.
func (d *InMemoryDispatcher) Subscribe(eventName string, handler sharedBus.Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[eventName] = append(d.handlers[eventName], handler)
}

// Publish invoca cada handler en orden de registro.
func (d *InMemoryDispatcher) Publish(ctx context.Context, eventName string, payload interface{}) {
	d.mu.RLock()
	// Copiamos para no sostener el lock mientras corren los handlers.
	subs := make([]sharedBus.Handler, len(d.handlers[eventName]))
	copy(subs, d.handlers[eventName])
	d.mu.RUnlock()

	for _, h := range subs {
		h(ctx, payload)
	}
}

// HandlerCount devuelve cuántos handlers hay registrados para un evento.
func (d *InMemoryDispatcher) HandlerCount(eventName string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[eventName])
}
