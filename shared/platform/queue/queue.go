package queue

import "context"

// Task es una unidad de trabajo diferido. El ctx lo aporta la cola, no el request original.
type Task func(ctx context.Context) error

// TaskQueue desacopla el trabajo del contexto de quien lo encola.
// Enqueue vuelve inmediatamente y no entrega resultado alguno.
type TaskQueue interface {
	Enqueue(task Task)
}
