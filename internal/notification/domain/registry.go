package domain

// Nombres de los eventos de dominio que dispara el ciclo de vida de la cita.
const (
	AppointmentCreated   = "appointment.created"
	AppointmentConfirmed = "appointment.confirmed"
	AppointmentCancelled = "appointment.cancelled"
	AppointmentFinished  = "appointment.finished"
	BirthdayNotify       = "birthday.notify"
)

// Evento de integración que se publica hacia afuera al crear una fila.
const NotificationCreated = "notification.created"

// EventNames devuelve los eventos que generan notificaciones, en orden estable.
func EventNames() []string {
	return []string{
		AppointmentCreated,
		AppointmentConfirmed,
		AppointmentCancelled,
		AppointmentFinished,
		BirthdayNotify,
	}
}
