package domain

import "time"

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusCancelled AppointmentStatus = "CANCELLED"
	StatusFinished  AppointmentStatus = "FINISHED"
)

// Actor es quién ejecutó la cancelación.
type Actor string

const (
	ActorCustomer     Actor = "CUSTOMER"
	ActorProfessional Actor = "PROFESSIONAL"
	ActorManager      Actor = "MANAGER"
)

type Party struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Service struct {
	Name string `json:"name"`
}

// AppointmentSnapshot es la foto de la cita en el momento de la transición.
type AppointmentSnapshot struct {
	ID              string            `json:"id"`
	Status          AppointmentStatus `json:"status"`
	AppointmentDate time.Time         `json:"appointmentDate"`
	Customer        Party             `json:"customer"`
	Professional    Party             `json:"professional"`
	Service         Service           `json:"service"`
}

// AppointmentEvent es el payload de todos los eventos appointment.*.
// CancelledBy sólo tiene sentido en appointment.cancelled.
type AppointmentEvent struct {
	Appointment AppointmentSnapshot `json:"appointment"`
	CancelledBy Actor               `json:"cancelledBy,omitempty"`
}

// BirthdayEvent es el payload de birthday.notify. Date fija el año del saludo.
type BirthdayEvent struct {
	Customer Party     `json:"customer"`
	Date     time.Time `json:"date"`
}
