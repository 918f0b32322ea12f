package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/davicafu/hexasalon/internal/notification/domain"
	sharedCache "github.com/davicafu/hexasalon/shared/platform/cache"
)

// SendReport resume qué pasó con cada draft de una llamada a Send.
type SendReport struct {
	Created int
	Skipped int
	Failed  int
}

// Writer persiste drafts de forma idempotente: la clave de deduplicación decide
// si la fila ya existe y una fila existente nunca se modifica.
type Writer struct {
	repo       domain.NotificationRepository
	cache      sharedCache.Cache
	cacheTTL   int
	publishers []domain.NotificationPublisher
	log        *zap.Logger
	now        func() time.Time
}

// WriterOption configura colaboradores opcionales del Writer.
type WriterOption func(*Writer)

// WithSeenCache activa la caché de claves ya vistas. Sólo ahorra la consulta al store.
func WithSeenCache(c sharedCache.Cache, ttl time.Duration) WriterOption {
	return func(w *Writer) {
		w.cache = c
		w.cacheTTL = int(ttl.Seconds())
	}
}

// WithPublisher entrega cada fila recién creada a un canal externo. Se puede repetir.
func WithPublisher(p domain.NotificationPublisher) WriterOption {
	return func(w *Writer) {
		if p != nil {
			w.publishers = append(w.publishers, p)
		}
	}
}

func NewWriter(repo domain.NotificationRepository, log *zap.Logger, opts ...WriterOption) *Writer {
	w := &Writer{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Send procesa cada draft por separado; el fallo de uno no frena al resto.
func (w *Writer) Send(ctx context.Context, drafts []domain.Draft) SendReport {
	var report SendReport
	for _, d := range drafts {
		switch w.sendOne(ctx, d) {
		case outcomeCreated:
			report.Created++
		case outcomeSkipped:
			report.Skipped++
		default:
			report.Failed++
		}
	}
	return report
}

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeSkipped
	outcomeFailed
)

func (w *Writer) sendOne(ctx context.Context, d domain.Draft) outcome {
	fields := []zap.Field{
		zap.String("dedup_key", d.DedupKey),
		zap.String("recipient_id", d.RecipientID),
	}

	// 1. Caché de claves vistas
	if w.seen(ctx, d.DedupKey) {
		w.log.Debug("Notificación ya vista (caché), se omite", fields...)
		return outcomeSkipped
	}

	// 2. Lookup por clave
	_, err := w.repo.FindByKey(ctx, d.DedupKey)
	switch {
	case err == nil:
		w.log.Debug("Notificación ya existente, se omite", fields...)
		w.remember(ctx, d.DedupKey)
		return outcomeSkipped
	case !errors.Is(err, domain.ErrNotificationNotFound):
		w.log.Error("❌ Error buscando notificación por clave", append(fields, zap.Error(err))...)
		return outcomeFailed
	}

	// 3. Crear
	n := domain.NewNotification(d, w.now())
	if err := w.repo.Create(ctx, n); err != nil {
		if errors.Is(err, domain.ErrNotificationAlreadyExists) {
			// Otro worker u otra instancia ganó la carrera
			w.log.Debug("Notificación creada en paralelo, se omite", fields...)
			w.remember(ctx, d.DedupKey)
			return outcomeSkipped
		}
		w.log.Error("❌ Error creando notificación", append(fields, zap.Error(err))...)
		return outcomeFailed
	}

	w.log.Info("🔔 Notificación creada", append(fields, zap.String("notification_id", n.ID.String()))...)
	w.remember(ctx, d.DedupKey)

	// Un fallo de entrega no deshace la fila
	for _, p := range w.publishers {
		if err := p.PublishCreated(ctx, n); err != nil {
			w.log.Warn("⚠️ No se pudo publicar la notificación creada",
				append(fields, zap.String("notification_id", n.ID.String()), zap.Error(err))...)
		}
	}
	return outcomeCreated
}

func (w *Writer) seen(ctx context.Context, dedupKey string) bool {
	if w.cache == nil {
		return false
	}
	var hit bool
	ok, err := w.cache.Get(ctx, domain.CacheKeyByDedupKey(dedupKey), &hit)
	if err != nil {
		w.log.Warn("⚠️ Cache lookup failed", zap.String("dedup_key", dedupKey), zap.Error(err))
		return false
	}
	return ok && hit
}

func (w *Writer) remember(ctx context.Context, dedupKey string) {
	if w.cache == nil {
		return
	}
	if err := w.cache.Set(ctx, domain.CacheKeyByDedupKey(dedupKey), true, w.cacheTTL); err != nil {
		w.log.Warn("⚠️ Cache update failed", zap.String("dedup_key", dedupKey), zap.Error(err))
	}
}
