package events

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/davicafu/hexasalon/internal/notification/domain"
	sharedUtils "github.com/davicafu/hexasalon/internal/shared/infra/utils"
	sharedEvents "github.com/davicafu/hexasalon/shared/events"
	sharedBus "github.com/davicafu/hexasalon/shared/platform/bus"
)

// AppointmentEventConsumer traduce eventos de integración que llegan por Kafka a
// eventos de dominio y los publica en el dispatcher local. Los duplicados entre
// instancias los absorbe la clave de deduplicación.
type AppointmentEventConsumer struct {
	dispatcher sharedBus.EventDispatcher
	log        *zap.Logger
}

func NewAppointmentEventConsumer(dispatcher sharedBus.EventDispatcher, logger *zap.Logger) *AppointmentEventConsumer {
	return &AppointmentEventConsumer{
		dispatcher: dispatcher,
		log:        logger,
	}
}

// HandleMessage es el punto de entrada para un nuevo mensaje/evento.
func (c *AppointmentEventConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		c.log.Warn("Failed to unmarshal integration event", zap.String("key", key), zap.Error(err))
		return
	}

	switch base.Type {
	case domain.AppointmentCreated, domain.AppointmentConfirmed, domain.AppointmentCancelled, domain.AppointmentFinished:
		sharedUtils.UnmarshalAndHandle[sharedEvents.AppointmentChanged](c.log, base.Data, func(evt sharedEvents.AppointmentChanged) {
			c.log.Debug("📥 Evento de cita recibido", zap.String("type", base.Type), zap.String("appointment_id", evt.ID))
			c.dispatcher.Publish(ctx, base.Type, toAppointmentEvent(evt))
		})

	case domain.BirthdayNotify:
		sharedUtils.UnmarshalAndHandle[sharedEvents.BirthdayDue](c.log, base.Data, func(evt sharedEvents.BirthdayDue) {
			date := evt.Date
			if date.IsZero() {
				date = base.Timestamp
			}
			c.dispatcher.Publish(ctx, base.Type, domain.BirthdayEvent{
				Customer: domain.Party{ID: evt.Customer.ID, Name: evt.Customer.Name},
				Date:     date,
			})
		})

	default:
		c.log.Warn("Unknown appointment event type", zap.String("type", base.Type), zap.String("key", key))
	}
}

func toAppointmentEvent(evt sharedEvents.AppointmentChanged) domain.AppointmentEvent {
	return domain.AppointmentEvent{
		Appointment: domain.AppointmentSnapshot{
			ID:              evt.ID,
			Status:          domain.AppointmentStatus(strings.ToUpper(evt.Status)),
			AppointmentDate: evt.AppointmentDate,
			Customer:        domain.Party{ID: evt.Customer.ID, Name: evt.Customer.Name},
			Professional:    domain.Party{ID: evt.Professional.ID, Name: evt.Professional.Name},
			Service:         domain.Service{Name: evt.Service.Name},
		},
		CancelledBy: domain.Actor(strings.ToUpper(evt.CancelledBy)),
	}
}
