package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	sharedQueue "github.com/davicafu/hexasalon/shared/platform/queue"
	sharedUtils "github.com/davicafu/hexasalon/shared/utils"
)

// Options configura el drenado de la cola.
type Options struct {
	// Concurrency es el número de workers. 1 serializa todas las tareas del proceso.
	Concurrency int
	// MaxAttempts incluye el primer intento; 1 significa sin reintentos.
	MaxAttempts int
	RetryDelay  time.Duration
}

func DefaultOptions() Options {
	return Options{Concurrency: 1, MaxAttempts: 1}
}

// Stats son contadores acumulados desde que arrancó la cola.
type Stats struct {
	Succeeded int64
	Failed    int64
	Dropped   int64
}

// AsyncQueue es una cola FIFO en memoria, sin límite de tamaño ni persistencia:
// lo que quede sin drenar se pierde si el proceso muere.
type AsyncQueue struct {
	opts Options
	log  *zap.Logger

	mu      sync.Mutex
	buffer  []sharedQueue.Task
	closed  bool
	started bool

	signal chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup

	succeeded atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

var _ sharedQueue.TaskQueue = (*AsyncQueue)(nil)

func NewAsyncQueue(opts Options, log *zap.Logger) *AsyncQueue {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &AsyncQueue{
		opts:   opts,
		log:    log,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Enqueue agrega la tarea al final del buffer y vuelve enseguida.
func (q *AsyncQueue) Enqueue(task sharedQueue.Task) {
	if task == nil {
		return
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.dropped.Add(1)
		q.log.Warn("⚠️ Cola cerrada, tarea descartada")
		return
	}
	q.buffer = append(q.buffer, task)
	q.mu.Unlock()

	q.notify()
}

// Start lanza los workers. Las tareas corren con ctx; si se cancela, los workers
// salen y lo pendiente se pierde.
func (q *AsyncQueue) Start(ctx context.Context) {
	q.mu.Lock()
	if q.started {
		q.mu.Unlock()
		return
	}
	q.started = true
	q.mu.Unlock()

	q.log.Info("🚀 Cola de tareas iniciada",
		zap.Int("concurrency", q.opts.Concurrency),
		zap.Int("max_attempts", q.opts.MaxAttempts),
	)

	for i := 0; i < q.opts.Concurrency; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
}

// Close deja de aceptar tareas, espera a que se drene el buffer y a que
// terminen los workers, o a que venza ctx.
func (q *AsyncQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	started := q.started
	pending := len(q.buffer)
	q.mu.Unlock()
	close(q.done)

	if !started {
		if pending > 0 {
			q.dropped.Add(int64(pending))
			q.log.Warn("⚠️ Cola cerrada sin haber iniciado", zap.Int("pending", pending))
		}
		return nil
	}

	finished := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		q.log.Info("🛑 Cola de tareas detenida")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("queue close: %w", ctx.Err())
	}
}

// Len devuelve las tareas en espera (sin contar las que se están ejecutando).
func (q *AsyncQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buffer)
}

func (q *AsyncQueue) Stats() Stats {
	return Stats{
		Succeeded: q.succeeded.Load(),
		Failed:    q.failed.Load(),
		Dropped:   q.dropped.Load(),
	}
}

func (q *AsyncQueue) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
		// ya hay una señal pendiente
	}
}

func (q *AsyncQueue) next() (sharedQueue.Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.buffer) == 0 {
		return nil, false
	}
	task := q.buffer[0]
	q.buffer[0] = nil
	q.buffer = q.buffer[1:]
	if len(q.buffer) > 0 {
		// Despierta a otro worker si queda trabajo
		q.notify()
	}
	return task, true
}

func (q *AsyncQueue) worker(ctx context.Context) {
	defer q.wg.Done()

	for {
		if task, ok := q.next(); ok {
			q.run(ctx, task)
			continue
		}

		select {
		case <-q.signal:
		case <-q.done:
			// Cerrada: drenamos lo que quede y salimos
			for {
				task, ok := q.next()
				if !ok {
					return
				}
				q.run(ctx, task)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (q *AsyncQueue) run(ctx context.Context, task sharedQueue.Task) {
	err := sharedUtils.Retry(ctx, q.opts.MaxAttempts, q.opts.RetryDelay, func(attempt int) error {
		err := runIsolated(ctx, task)
		if err != nil && attempt < q.opts.MaxAttempts {
			q.log.Warn("🔁 Tarea fallida, reintentando",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		return err
	})
	if err != nil {
		q.failed.Add(1)
		q.log.Error("❌ Tarea fallida, se descarta",
			zap.Int("attempts", q.opts.MaxAttempts),
			zap.Error(err),
		)
		return
	}
	q.succeeded.Add(1)
}

// runIsolated convierte un panic de la tarea en error para que el worker siga vivo.
func runIsolated(ctx context.Context, task sharedQueue.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task(ctx)
}
