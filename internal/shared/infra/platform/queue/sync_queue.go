package queue

import (
	"context"

	"go.uber.org/zap"

	sharedQueue "github.com/davicafu/hexasalon/shared/platform/queue"
)

// SyncQueue ejecuta cada tarea en línea dentro de Enqueue. Sirve para tests
// deterministas; mantiene el aislamiento de fallos de AsyncQueue.
type SyncQueue struct {
	ctx context.Context
	log *zap.Logger
}

var _ sharedQueue.TaskQueue = (*SyncQueue)(nil)

func NewSyncQueue(ctx context.Context, log *zap.Logger) *SyncQueue {
	return &SyncQueue{ctx: ctx, log: log}
}

func (q *SyncQueue) Enqueue(task sharedQueue.Task) {
	if task == nil {
		return
	}
	if err := runIsolated(q.ctx, task); err != nil {
		q.log.Error("❌ Tarea fallida", zap.Error(err))
	}
}
