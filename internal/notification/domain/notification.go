package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypeAppointment NotificationType = "APPOINTMENT"
	TypeSystem      NotificationType = "SYSTEM"
)

type RecipientType string

const (
	RecipientCustomer     RecipientType = "CUSTOMER"
	RecipientProfessional RecipientType = "PROFESSIONAL"
)

func (r RecipientType) Valid() bool {
	return r == RecipientCustomer || r == RecipientProfessional
}

// Notification es un aviso dirigido a un único destinatario.
// Fan-out a N destinatarios son N filas, nunca una fila compartida.
type Notification struct {
	ID            uuid.UUID        `json:"id"`
	DedupKey      string           `json:"dedupKey"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	Type          NotificationType `json:"type"`
	RecipientID   string           `json:"recipientId"`
	RecipientType RecipientType    `json:"recipientType"`
	ReadAt        *time.Time       `json:"readAt"`
	AppointmentID *string          `json:"appointmentId"`
	CreatedAt     time.Time        `json:"createdAt"`
}

func (n *Notification) PartitionKey() string {
	return n.RecipientID
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// MarkRead fija ReadAt una sola vez; devuelve false si ya estaba leída.
func (n *Notification) MarkRead(at time.Time) bool {
	if n.ReadAt != nil {
		return false
	}
	t := at.UTC()
	n.ReadAt = &t
	return true
}

// Draft es una notificación aún no persistida, salida del DraftBuilder.
// No tiene ReadAt: las filas creadas en tiempo real nacen sin leer.
type Draft struct {
	DedupKey      string
	Title         string
	Message       string
	Type          NotificationType
	RecipientID   string
	RecipientType RecipientType
	AppointmentID *string
}

// NewNotification materializa un draft con ID nuevo y CreatedAt en UTC.
func NewNotification(d Draft, now time.Time) *Notification {
	var appointmentID *string
	if d.AppointmentID != nil {
		id := *d.AppointmentID
		appointmentID = &id
	}
	return &Notification{
		ID:            uuid.New(),
		DedupKey:      d.DedupKey,
		Title:         d.Title,
		Message:       d.Message,
		Type:          d.Type,
		RecipientID:   d.RecipientID,
		RecipientType: d.RecipientType,
		AppointmentID: appointmentID,
		CreatedAt:     now.UTC(),
	}
}
