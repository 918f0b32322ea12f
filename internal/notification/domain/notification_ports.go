package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	sharedQuery "github.com/davicafu/hexasalon/shared/platform/query"
)

// ---------- Errores de dominio ----------
var (
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrNotificationAlreadyExists indica violación de unicidad sobre la clave de deduplicación.
	ErrNotificationAlreadyExists = errors.New("notification already exists")
	ErrInvalidNotification       = errors.New("invalid notification")
	ErrTooManyIDs                = errors.New("too many notification ids")
)

// MaxBulkReadIDs es el tope de ids por llamada a MarkManyAsRead.
const MaxBulkReadIDs = 1000

type ReadStatus string

const (
	ReadStatusAll    ReadStatus = "ALL"
	ReadStatusRead   ReadStatus = "READ"
	ReadStatusUnread ReadStatus = "UNREAD"
)

func (s ReadStatus) Valid() bool {
	switch s {
	case ReadStatusAll, ReadStatusRead, ReadStatusUnread:
		return true
	}
	return false
}

// ListQuery filtra el listado de un destinatario.
type ListQuery struct {
	sharedQuery.PageRequest
	ReadStatus ReadStatus
}

type NotificationPage = sharedQuery.Page[*Notification]

// ---------- Interfaces (Ports) ----------

// NotificationRepository es el store de notificaciones.
// La unicidad de DedupKey es la única primitiva de sincronización entre procesos.
type NotificationRepository interface {
	// Debe devolver ErrNotificationNotFound si no existe.
	FindByKey(ctx context.Context, dedupKey string) (*Notification, error)

	// Debe devolver ErrNotificationAlreadyExists si ya hay una fila con esa DedupKey.
	Create(ctx context.Context, n *Notification) error

	// Debe devolver ErrNotificationNotFound si no existe.
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// Borra sólo si la fila pertenece al destinatario; si no, ErrNotificationNotFound.
	DeleteByID(ctx context.Context, id uuid.UUID, recipientID string) error

	// Marca como leídas las filas del set de ids que sean del destinatario y sigan sin leer.
	// Devuelve cuántas filas cambiaron.
	MarkManyAsRead(ctx context.Context, ids []uuid.UUID, recipientID string, at time.Time) (int, error)

	// FindAll lista las notificaciones del destinatario, más recientes primero.
	FindAll(ctx context.Context, recipientID string, q ListQuery) (*NotificationPage, error)
}

// NotificationPublisher entrega una fila recién creada a un canal externo.
type NotificationPublisher interface {
	PublishCreated(ctx context.Context, n *Notification) error
}

// CustomerDirectory devuelve los clientes que cumplen años en el día/mes de 'day'.
type CustomerDirectory interface {
	ListBirthdays(ctx context.Context, day time.Time) ([]Party, error)
}
