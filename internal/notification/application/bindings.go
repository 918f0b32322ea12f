package application

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/davicafu/hexasalon/internal/notification/domain"
	sharedBus "github.com/davicafu/hexasalon/shared/platform/bus"
	sharedQueue "github.com/davicafu/hexasalon/shared/platform/queue"
)

// DraftSource es lo que las bindings necesitan del DraftBuilder.
type DraftSource interface {
	BuildFor(eventName string, payload interface{}) []domain.Draft
}

// DraftSink es lo que las bindings necesitan del Writer.
type DraftSink interface {
	Send(ctx context.Context, drafts []domain.Draft) SendReport
}

// LifecycleBindings conecta los eventos del ciclo de vida de la cita con el pipeline
// builder → writer. Cada handler sólo encola: quien publica nunca espera la escritura.
type LifecycleBindings struct {
	builder DraftSource
	writer  DraftSink
	queue   sharedQueue.TaskQueue
	log     *zap.Logger

	once       sync.Once
	registered atomic.Bool
}

func NewLifecycleBindings(builder DraftSource, writer DraftSink, queue sharedQueue.TaskQueue, log *zap.Logger) *LifecycleBindings {
	return &LifecycleBindings{
		builder: builder,
		writer:  writer,
		queue:   queue,
		log:     log,
	}
}

// Register suscribe un handler por evento. Llamadas repetidas no duplican handlers.
func (b *LifecycleBindings) Register(dispatcher sharedBus.EventDispatcher) {
	b.once.Do(func() {
		for _, name := range domain.EventNames() {
			dispatcher.Subscribe(name, b.handlerFor(name))
		}
		b.registered.Store(true)
		b.log.Info("✅ Bindings de notificaciones registradas", zap.Strings("events", domain.EventNames()))
	})
}

// Registered indica si Register ya se ejecutó.
func (b *LifecycleBindings) Registered() bool {
	return b.registered.Load()
}

func (b *LifecycleBindings) handlerFor(eventName string) sharedBus.Handler {
	return func(_ context.Context, payload interface{}) {
		b.queue.Enqueue(func(ctx context.Context) error {
			drafts := b.builder.BuildFor(eventName, payload)
			if len(drafts) == 0 {
				return nil
			}
			report := b.writer.Send(ctx, drafts)
			b.log.Debug("Evento procesado",
				zap.String("event", eventName),
				zap.Int("created", report.Created),
				zap.Int("skipped", report.Skipped),
				zap.Int("failed", report.Failed),
			)
			// La cola reintenta si está configurada; los drafts ya creados se omiten
			if report.Failed > 0 {
				return fmt.Errorf("%s: %d de %d drafts fallaron", eventName, report.Failed, len(drafts))
			}
			return nil
		})
	}
}

var (
	_ DraftSource = (*DraftBuilder)(nil)
	_ DraftSink   = (*Writer)(nil)
)
