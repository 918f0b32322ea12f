package application

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/davicafu/hexasalon/internal/notification/domain"
	sharedUtils "github.com/davicafu/hexasalon/internal/shared/infra/utils"
)

// Etiquetas genéricas cuando el snapshot no trae el nombre.
const (
	fallbackCustomer     = "cliente"
	fallbackProfessional = "profesional"
	fallbackService      = "servicio"
	fallbackDate         = "fecha por confirmar"
)

const dateLayout = "02/01/2006 15:04"

// view son los textos ya resueltos (con fallback) que usan las plantillas.
type view struct {
	Customer     string
	Professional string
	Service      string
	Date         string
}

type messageKey struct {
	event     string
	recipient domain.RecipientType
}

type messageFunc func(v view) (title, message string)

var defaultMessages = map[messageKey]messageFunc{
	{domain.AppointmentCreated, domain.RecipientProfessional}: func(v view) (string, string) {
		return "Nueva cita agendada",
			fmt.Sprintf("%s agendó %s para el %s.", v.Customer, v.Service, v.Date)
	},
	{domain.AppointmentConfirmed, domain.RecipientCustomer}: func(v view) (string, string) {
		return "Cita confirmada",
			fmt.Sprintf("Tu cita de %s con %s el %s fue confirmada.", v.Service, v.Professional, v.Date)
	},
	{domain.AppointmentCancelled, domain.RecipientCustomer}: func(v view) (string, string) {
		return "Cita cancelada",
			fmt.Sprintf("Tu cita de %s con %s el %s fue cancelada.", v.Service, v.Professional, v.Date)
	},
	{domain.AppointmentCancelled, domain.RecipientProfessional}: func(v view) (string, string) {
		return "Cita cancelada",
			fmt.Sprintf("La cita de %s para %s el %s fue cancelada.", v.Customer, v.Service, v.Date)
	},
	{domain.AppointmentFinished, domain.RecipientCustomer}: func(v view) (string, string) {
		return "Cita finalizada",
			fmt.Sprintf("Gracias por tu visita. Tu cita de %s con %s fue finalizada.", v.Service, v.Professional)
	},
	{domain.BirthdayNotify, domain.RecipientCustomer}: func(v view) (string, string) {
		return "¡Feliz cumpleaños!",
			fmt.Sprintf("¡Feliz cumpleaños, %s! Te esperamos para celebrarlo.", v.Customer)
	},
}

// DraftBuilder traduce un evento de dominio a 0..N drafts. No hace I/O y nunca
// falla; un destinatario que no se pueda armar se omite sin afectar a los demás.
// El reloj sólo se consulta para un cumpleaños sin fecha.
type DraftBuilder struct {
	loc      *time.Location
	log      *zap.Logger
	messages map[messageKey]messageFunc
	now      func() time.Time
}

func NewDraftBuilder(loc *time.Location, log *zap.Logger) *DraftBuilder {
	if loc == nil {
		loc = time.UTC
	}
	return &DraftBuilder{
		loc:      loc,
		log:      log,
		messages: defaultMessages,
		now:      time.Now,
	}
}

// BuildFor arma los drafts del evento. Nombres o payloads desconocidos devuelven nil.
func (b *DraftBuilder) BuildFor(eventName string, payload interface{}) []domain.Draft {
	if eventName == domain.BirthdayNotify {
		evt, ok := asBirthdayEvent(payload)
		if !ok {
			b.log.Warn("Payload inválido para evento de cumpleaños", zap.String("event", eventName))
			return nil
		}
		return b.birthdayDrafts(evt)
	}

	eventType, ok := domain.EventTypeFromName(eventName)
	if !ok {
		return nil
	}
	evt, ok := asAppointmentEvent(payload)
	if !ok {
		b.log.Warn("Payload inválido para evento de cita", zap.String("event", eventName))
		return nil
	}

	appt := evt.Appointment
	var recipients []domain.RecipientType

	switch eventType {
	case domain.EventTypeCreated:
		recipients = []domain.RecipientType{domain.RecipientProfessional}
	case domain.EventTypeConfirmed:
		// FINISHED implica que alguna vez fue confirmada
		if appt.Status == domain.StatusConfirmed || appt.Status == domain.StatusFinished {
			recipients = []domain.RecipientType{domain.RecipientCustomer}
		}
	case domain.EventTypeCancelled:
		if appt.Status == domain.StatusCancelled {
			recipients = cancellationRecipients(evt.CancelledBy)
		}
	case domain.EventTypeFinished:
		if appt.Status == domain.StatusFinished {
			recipients = []domain.RecipientType{domain.RecipientCustomer}
		}
	}

	if len(recipients) == 0 {
		b.log.Debug("Evento sin destinatarios para el estado actual",
			zap.String("event", eventName),
			zap.String("appointment_id", appt.ID),
			zap.String("status", string(appt.Status)),
		)
		return nil
	}

	v := b.appointmentView(appt)
	drafts := make([]domain.Draft, 0, len(recipients))
	for _, r := range recipients {
		if d, ok := b.appointmentDraft(eventName, eventType, appt, r, v); ok {
			drafts = append(drafts, d)
		}
	}
	return drafts
}

// cancellationRecipients excluye a quien canceló. MANAGER (o un actor desconocido)
// notifica a ambas partes.
func cancellationRecipients(by domain.Actor) []domain.RecipientType {
	switch by {
	case domain.ActorCustomer:
		return []domain.RecipientType{domain.RecipientProfessional}
	case domain.ActorProfessional:
		return []domain.RecipientType{domain.RecipientCustomer}
	default:
		return []domain.RecipientType{domain.RecipientCustomer, domain.RecipientProfessional}
	}
}

func (b *DraftBuilder) appointmentDraft(
	eventName string,
	eventType domain.AppointmentEventType,
	appt domain.AppointmentSnapshot,
	recipient domain.RecipientType,
	v view,
) (domain.Draft, bool) {
	recipientID := appt.Customer.ID
	if recipient == domain.RecipientProfessional {
		recipientID = appt.Professional.ID
	}
	if recipientID == "" || appt.ID == "" {
		b.log.Warn("Draft omitido: faltan ids",
			zap.String("event", eventName),
			zap.String("appointment_id", appt.ID),
			zap.String("recipient_type", string(recipient)),
		)
		return domain.Draft{}, false
	}

	title, message, ok := b.render(eventName, recipient, v)
	if !ok {
		return domain.Draft{}, false
	}

	appointmentID := appt.ID
	return domain.Draft{
		DedupKey:      domain.AppointmentDedupKey(appt.ID, eventType, recipientID),
		Title:         title,
		Message:       message,
		Type:          domain.TypeAppointment,
		RecipientID:   recipientID,
		RecipientType: recipient,
		AppointmentID: &appointmentID,
	}, true
}

func (b *DraftBuilder) birthdayDrafts(evt domain.BirthdayEvent) []domain.Draft {
	if evt.Customer.ID == "" {
		b.log.Warn("Draft de cumpleaños omitido: cliente sin id")
		return nil
	}
	date := evt.Date
	if date.IsZero() {
		date = b.now()
	}

	v := view{Customer: sharedUtils.FirstNonBlank(evt.Customer.Name, fallbackCustomer)}
	title, message, ok := b.render(domain.BirthdayNotify, domain.RecipientCustomer, v)
	if !ok {
		return nil
	}

	return []domain.Draft{{
		DedupKey:      domain.BirthdayDedupKey(evt.Customer.ID, date, b.loc),
		Title:         title,
		Message:       message,
		Type:          domain.TypeSystem,
		RecipientID:   evt.Customer.ID,
		RecipientType: domain.RecipientCustomer,
	}}
}

// render aísla cada plantilla: un panic se registra y sólo se pierde ese destinatario.
func (b *DraftBuilder) render(eventName string, recipient domain.RecipientType, v view) (title, message string, ok bool) {
	fn, found := b.messages[messageKey{event: eventName, recipient: recipient}]
	if !found {
		b.log.Error("Sin plantilla para el evento",
			zap.String("event", eventName),
			zap.String("recipient_type", string(recipient)),
		)
		return "", "", false
	}

	defer func() {
		if r := recover(); r != nil {
			b.log.Error("Fallo al renderizar la notificación",
				zap.String("event", eventName),
				zap.String("recipient_type", string(recipient)),
				zap.Any("panic", r),
			)
			title, message, ok = "", "", false
		}
	}()

	title, message = fn(v)
	return title, message, true
}

func (b *DraftBuilder) appointmentView(appt domain.AppointmentSnapshot) view {
	date := fallbackDate
	if !appt.AppointmentDate.IsZero() {
		date = appt.AppointmentDate.In(b.loc).Format(dateLayout)
	}
	return view{
		Customer:     sharedUtils.FirstNonBlank(appt.Customer.Name, fallbackCustomer),
		Professional: sharedUtils.FirstNonBlank(appt.Professional.Name, fallbackProfessional),
		Service:      sharedUtils.FirstNonBlank(appt.Service.Name, fallbackService),
		Date:         date,
	}
}

func asAppointmentEvent(payload interface{}) (domain.AppointmentEvent, bool) {
	switch p := payload.(type) {
	case domain.AppointmentEvent:
		return p, true
	case *domain.AppointmentEvent:
		if p != nil {
			return *p, true
		}
	}
	return domain.AppointmentEvent{}, false
}

func asBirthdayEvent(payload interface{}) (domain.BirthdayEvent, bool) {
	switch p := payload.(type) {
	case domain.BirthdayEvent:
		return p, true
	case *domain.BirthdayEvent:
		if p != nil {
			return *p, true
		}
	}
	return domain.BirthdayEvent{}, false
}
