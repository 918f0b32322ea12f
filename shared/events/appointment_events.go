package events

import "time"

// Estos son contratos de integración, NO entidades del dominio.
// Llegan por Kafka cuando otra instancia emite la transición.

type PartyRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ServiceRef struct {
	Name string `json:"name"`
}

type AppointmentChanged struct {
	ID              string     `json:"id"`
	Status          string     `json:"status"`
	AppointmentDate time.Time  `json:"appointmentDate"`
	Customer        PartyRef   `json:"customer"`
	Professional    PartyRef   `json:"professional"`
	Service         ServiceRef `json:"service"`
	CancelledBy     string     `json:"cancelledBy,omitempty"`
}

type BirthdayDue struct {
	Customer PartyRef  `json:"customer"`
	Date     time.Time `json:"date"`
}

type NotificationCreated struct {
	ID            string    `json:"id"`
	DedupKey      string    `json:"dedupKey"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	RecipientID   string    `json:"recipientId"`
	RecipientType string    `json:"recipientType"`
	AppointmentID *string   `json:"appointmentId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
