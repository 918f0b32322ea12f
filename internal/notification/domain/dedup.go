package domain

import (
	"fmt"
	"strings"
	"time"
)

// AppointmentEventType es el segmento de evento dentro de la clave de deduplicación.
type AppointmentEventType string

const (
	EventTypeCreated   AppointmentEventType = "created"
	EventTypeConfirmed AppointmentEventType = "confirmed"
	EventTypeCancelled AppointmentEventType = "cancelled"
	EventTypeFinished  AppointmentEventType = "finished"
)

// EventTypeFromName traduce "appointment.confirmed" a "confirmed".
func EventTypeFromName(eventName string) (AppointmentEventType, bool) {
	t, ok := strings.CutPrefix(eventName, "appointment.")
	if !ok {
		return "", false
	}
	switch AppointmentEventType(t) {
	case EventTypeCreated, EventTypeConfirmed, EventTypeCancelled, EventTypeFinished:
		return AppointmentEventType(t), true
	}
	return "", false
}

// AppointmentDedupKey es un contrato persistido: el formato no puede cambiar.
func AppointmentDedupKey(appointmentID string, eventType AppointmentEventType, recipientID string) string {
	return fmt.Sprintf("appointment:%s:%s:recipient:%s", appointmentID, eventType, recipientID)
}

// BirthdayDedupKey permite un saludo por cliente y año calendario (en loc).
func BirthdayDedupKey(customerID string, date time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return fmt.Sprintf("birthday:%s:%d:recipient:%s", customerID, date.In(loc).Year(), customerID)
}

// CacheKeyByDedupKey forma la key de la caché de claves ya vistas.
func CacheKeyByDedupKey(dedupKey string) string {
	return "notification:seen:" + dedupKey
}
