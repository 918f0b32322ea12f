package events

import (
	"context"

	"github.com/davicafu/hexasalon/internal/notification/domain"
	sharedEvents "github.com/davicafu/hexasalon/shared/events"
)

// KeyedPublisher es lo que necesitamos del KafkaPublisher compartido.
type KeyedPublisher interface {
	PublishWithKey(ctx context.Context, key string, event interface{}) error
}

// KafkaNotificationPublisher publica notification.created con el destinatario como key,
// así las notificaciones de una misma persona quedan en orden dentro de su partición.
type KafkaNotificationPublisher struct {
	publisher KeyedPublisher
}

var _ domain.NotificationPublisher = (*KafkaNotificationPublisher)(nil)

func NewKafkaNotificationPublisher(publisher KeyedPublisher) *KafkaNotificationPublisher {
	return &KafkaNotificationPublisher{publisher: publisher}
}

func (p *KafkaNotificationPublisher) PublishCreated(ctx context.Context, n *domain.Notification) error {
	evt, err := sharedEvents.NewIntegrationEvent(domain.NotificationCreated, toNotificationCreated(n))
	if err != nil {
		return err
	}
	return p.publisher.PublishWithKey(ctx, n.PartitionKey(), evt)
}

func toNotificationCreated(n *domain.Notification) sharedEvents.NotificationCreated {
	return sharedEvents.NotificationCreated{
		ID:            n.ID.String(),
		DedupKey:      n.DedupKey,
		Type:          string(n.Type),
		Title:         n.Title,
		Message:       n.Message,
		RecipientID:   n.RecipientID,
		RecipientType: string(n.RecipientType),
		AppointmentID: n.AppointmentID,
		CreatedAt:     n.CreatedAt,
	}
}
