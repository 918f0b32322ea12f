package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davicafu/hexasalon/internal/notification/domain"
	sharedUtils "github.com/davicafu/hexasalon/shared/utils"
)

// NotificationService define los casos de uso de lectura y gestión que consume la API.
// Toda operación va acotada al destinatario autenticado.
type NotificationService struct {
	repo domain.NotificationRepository
	log  *zap.Logger
	now  func() time.Time

	// Lectura tras escritura: una fila recién creada puede tardar en verse (réplicas)
	getAttempts int
	getDelay    time.Duration
}

func NewNotificationService(repo domain.NotificationRepository, log *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:        repo,
		log:         log,
		now:         time.Now,
		getAttempts: 3,
		getDelay:    100 * time.Millisecond,
	}
}

// List devuelve la página pedida, más recientes primero. Aplica los valores por defecto.
func (s *NotificationService) List(ctx context.Context, recipientID string, q domain.ListQuery) (*domain.NotificationPage, error) {
	if recipientID == "" {
		return nil, fmt.Errorf("%w: recipient is required", domain.ErrInvalidNotification)
	}
	q.PageRequest = q.PageRequest.Normalize()
	if q.ReadStatus == "" {
		q.ReadStatus = domain.ReadStatusAll
	}
	if !q.ReadStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidNotification, q.ReadStatus)
	}

	page, err := s.repo.FindAll(ctx, recipientID, q)
	if err != nil {
		s.log.Error("Failed to list notifications", zap.String("recipient_id", recipientID), zap.Error(err))
		return nil, err
	}
	return page, nil
}

// Get devuelve la notificación sólo si pertenece al destinatario.
func (s *NotificationService) Get(ctx context.Context, recipientID string, id uuid.UUID) (*domain.Notification, error) {
	var n *domain.Notification
	err := sharedUtils.Retry(ctx, s.getAttempts, s.getDelay, func(int) error {
		var errRetry error
		n, errRetry = s.repo.GetByID(ctx, id)
		return errRetry
	})
	if errors.Is(err, domain.ErrNotificationNotFound) {
		s.log.Warn("Notification not found", zap.String("notification_id", id.String()))
		return nil, domain.ErrNotificationNotFound
	}
	if err != nil {
		s.log.Error("Failed to fetch notification", zap.String("notification_id", id.String()), zap.Error(err))
		return nil, err
	}

	// Una fila ajena se reporta igual que una inexistente
	if n == nil || n.RecipientID != recipientID {
		s.log.Warn("Notification not found", zap.String("notification_id", id.String()))
		return nil, domain.ErrNotificationNotFound
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, recipientID string, id uuid.UUID) error {
	if err := s.repo.DeleteByID(ctx, id, recipientID); err != nil {
		if !errors.Is(err, domain.ErrNotificationNotFound) {
			s.log.Error("Failed to delete notification", zap.String("notification_id", id.String()), zap.Error(err))
		}
		return err
	}
	return nil
}

// MarkManyAsRead marca como leídas las filas del destinatario que sigan sin leer.
// Ids ajenos o inexistentes se ignoran; devuelve cuántas filas cambiaron.
func (s *NotificationService) MarkManyAsRead(ctx context.Context, recipientID string, ids []uuid.UUID) (int, error) {
	if recipientID == "" {
		return 0, fmt.Errorf("%w: recipient is required", domain.ErrInvalidNotification)
	}
	unique := dedupeIDs(ids)
	switch {
	case len(unique) == 0:
		return 0, fmt.Errorf("%w: at least one id is required", domain.ErrInvalidNotification)
	case len(unique) > domain.MaxBulkReadIDs:
		return 0, fmt.Errorf("%w: got %d, max %d", domain.ErrTooManyIDs, len(unique), domain.MaxBulkReadIDs)
	}

	updated, err := s.repo.MarkManyAsRead(ctx, unique, recipientID, s.now().UTC())
	if err != nil {
		s.log.Error("Failed to mark notifications as read", zap.String("recipient_id", recipientID), zap.Error(err))
		return 0, err
	}

	s.log.Debug("Notificaciones marcadas como leídas",
		zap.String("recipient_id", recipientID),
		zap.Int("requested", len(unique)),
		zap.Int("updated", updated),
	)
	return updated, nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
